// Package cli implements the draftaid command line interface. It is a
// stand-in driving adapter for the browser editing surface: commands
// load an essay into an in-memory surface and drive the suggestion
// engine against it.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/draftaid-io/draftaid/internal/adapters/driven/analysis"
	configfile "github.com/draftaid-io/draftaid/internal/adapters/driven/config/file"
	"github.com/draftaid-io/draftaid/internal/adapters/driven/storage/sqlite"
	"github.com/draftaid-io/draftaid/internal/core/ports/driven"
	"github.com/draftaid-io/draftaid/internal/core/ports/driving"
	"github.com/draftaid-io/draftaid/internal/core/services"
	"github.com/draftaid-io/draftaid/internal/logger"
)

// version is set by Execute from the build's main package.
var version = "dev"

var (
	flagVerbose   bool
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:   "draftaid",
	Short: "Writing suggestions for essay drafts",
	Long: `draftaid analyses essay drafts with an AI analysis service and
reports grammar, tone, evidence and argumentation suggestions.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.draftaid)")
}

// Execute runs the root command.
func Execute(ver string) error {
	if ver != "" {
		version = ver
	}
	return rootCmd.Execute()
}

// session bundles the services a command needs against one essay.
type session struct {
	settings  driving.SettingsService
	analysis  driven.AnalysisService
	decisions driven.DecisionStore
}

// close releases session resources.
func (s *session) close() {
	if s.analysis != nil {
		s.analysis.Close()
	}
	if s.decisions != nil {
		s.decisions.Close()
	}
}

// openSession wires the driven adapters for a command run. The analysis
// service is required; the decision store falls back to nothing when
// the database cannot be opened.
func openSession() (*session, error) {
	configStore, err := configfile.NewConfigStore(flagConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	provider := settingsService.Provider()
	if !provider.IsConfigured() {
		return nil, fmt.Errorf("no analysis provider configured, run 'draftaid config provider' first")
	}

	analysisService, err := analysis.CreateAndValidateService(provider)
	if err != nil {
		return nil, err
	}

	s := &session{
		settings: settingsService,
		analysis: analysisService,
	}

	store, err := sqlite.NewStore(dataDir())
	if err != nil {
		logger.Warn("CLI: decision store unavailable, decisions will not persist: %v", err)
	} else {
		s.decisions = store
	}
	return s, nil
}

// dataDir returns the decision database directory for the active
// config dir, or "" for the default.
func dataDir() string {
	if flagConfigDir == "" {
		return ""
	}
	return flagConfigDir + "/data"
}
