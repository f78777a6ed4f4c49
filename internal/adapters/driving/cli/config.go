package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/draftaid-io/draftaid/internal/adapters/driven/analysis"
	configfile "github.com/draftaid-io/draftaid/internal/adapters/driven/config/file"
	"github.com/draftaid-io/draftaid/internal/core/domain"
	"github.com/draftaid-io/draftaid/internal/core/services"
)

var (
	configModel   string
	configAPIKey  string
	configBaseURL string
	configRPM     int
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage draftaid configuration",
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configProviderCmd = &cobra.Command{
	Use:   "provider [anthropic|openai|ollama]",
	Short: "Configure the analysis provider",
	Long: `Selects and validates the analysis provider.

Cloud providers (anthropic, openai) require --api-key. Ollama runs
locally and needs no key; use --base-url if it is not on the default
port.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigProvider,
}

func init() {
	configProviderCmd.Flags().StringVar(&configModel, "model", "", "model name (default: provider default)")
	configProviderCmd.Flags().StringVar(&configAPIKey, "api-key", "", "API key for cloud providers")
	configProviderCmd.Flags().StringVar(&configBaseURL, "base-url", "", "override the provider endpoint")
	configProviderCmd.Flags().IntVar(&configRPM, "rpm", 0, "max analysis requests per minute (0 = unlimited)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configProviderCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	settingsService, err := openSettings()
	if err != nil {
		return err
	}

	provider := settingsService.Provider()
	engine := settingsService.Engine()

	cmd.Println("[Provider]")
	if provider.Provider.IsValid() {
		cmd.Printf("  Name: %s\n", provider.Provider)
		if provider.Model != "" {
			cmd.Printf("  Model: %s\n", provider.Model)
		}
		if provider.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", provider.BaseURL)
		}
		if provider.Provider.RequiresAPIKey() {
			if provider.APIKey != "" {
				cmd.Printf("  API Key: %s\n", maskAPIKey(provider.APIKey))
			} else {
				cmd.Println("  API Key: (not set)")
			}
		}
		if provider.RequestsPerMinute > 0 {
			cmd.Printf("  Rate limit: %d req/min\n", provider.RequestsPerMinute)
		}
	} else {
		cmd.Println("  (not configured)")
	}

	cmd.Println()
	cmd.Println("[Engine]")
	cmd.Printf("  Categories: %v\n", engine.Categories)
	cmd.Printf("  Debounce: %s (%s - %s)\n", engine.DebounceBase, engine.DebounceMin, engine.DebounceMax)
	cmd.Printf("  Cache: %d entries, TTL %s\n", engine.CacheSize, engine.CacheTTL)

	if !provider.IsConfigured() {
		cmd.Println()
		cmd.Println("Run 'draftaid config provider' to configure an analysis provider.")
	}
	return nil
}

func runConfigProvider(cmd *cobra.Command, args []string) error {
	settingsService, err := openSettings()
	if err != nil {
		return err
	}

	provider := domain.AnalysisProvider(args[0])
	if err := settingsService.SetProvider(provider, configModel, configAPIKey); err != nil {
		return err
	}

	settings := settingsService.Provider()
	if configBaseURL != "" {
		settings.BaseURL = configBaseURL
	}
	settings.RequestsPerMinute = configRPM
	if err := settingsService.SaveProvider(settings); err != nil {
		return err
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := analysis.ValidateConfig(settings); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("provider validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Analysis provider configured: %s\n", provider)
	return nil
}

// openSettings builds a settings service without requiring a configured
// provider.
func openSettings() (*services.SettingsService, error) {
	configStore, err := configfile.NewConfigStore(flagConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return services.NewSettingsService(configStore), nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
