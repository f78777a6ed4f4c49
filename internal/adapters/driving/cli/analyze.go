package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	surfacemem "github.com/draftaid-io/draftaid/internal/adapters/driven/surface/memory"
	"github.com/draftaid-io/draftaid/internal/core/domain"
	"github.com/draftaid-io/draftaid/internal/core/ports/driving"
	"github.com/draftaid-io/draftaid/internal/core/services"
	"github.com/draftaid-io/draftaid/internal/markdown"
)

var analyzeCategories []string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyse an essay draft and print suggestions",
	Long: `Loads a markdown or plain-text essay, runs one analysis pass per
category and prints the resulting suggestions.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringSliceVarP(&analyzeCategories, "category", "c", nil,
		"categories to analyse (default: all)")
	rootCmd.AddCommand(analyzeCmd)
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	fragStyle    = lipgloss.NewStyle().Italic(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

func runAnalyze(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	settings := sess.settings.Engine()
	if categories, err := parseCategories(analyzeCategories); err != nil {
		return err
	} else if len(categories) > 0 {
		settings.Categories = categories
	}

	surface := surfacemem.NewSurface(doc)
	engine := services.NewEngine(surface, sess.analysis, sess.decisions, settings)
	defer engine.Close()

	engine.DocumentChanged()
	if err := engine.Flush(cmd.Context()); err != nil {
		return err
	}

	printReport(cmd, engine, settings.Categories)
	return nil
}

// loadDocument reads a file and parses it into the document tree.
// Markdown files keep their structure; anything else becomes plain
// paragraphs.
func loadDocument(path string) (*domain.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return markdown.Parse(string(content)), nil
	default:
		paragraphs := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
		return domain.NewTextDocument(paragraphs...), nil
	}
}

// parseCategories validates the --category flag values.
func parseCategories(names []string) ([]domain.Category, error) {
	var categories []domain.Category
	for _, name := range names {
		c := domain.Category(strings.ToLower(strings.TrimSpace(name)))
		if !c.IsTopLevel() {
			return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, name)
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// printReport prints annotations grouped by category.
func printReport(cmd *cobra.Command, engine driving.SuggestionEngine, categories []domain.Category) {
	total := 0
	for _, category := range categories {
		annotations := engine.Annotations(category)
		status := engine.CategoryStatus(category)

		cmd.Println(headerStyle.Render(fmt.Sprintf("%s (%d)", category.Description(), len(annotations))))
		if status.LastError != "" {
			cmd.Println("  " + errorStyle.Render("analysis failed: "+status.LastError))
		}
		for _, ann := range annotations {
			total++
			printAnnotation(cmd, ann)
		}
		cmd.Println()
	}

	if total == 0 {
		cmd.Println("No suggestions.")
	} else {
		cmd.Printf("%d suggestions.\n", total)
	}
}

func printAnnotation(cmd *cobra.Command, ann domain.Annotation) {
	s := ann.Suggestion

	badge := severityStyle(s.Severity).Render(strings.ToUpper(s.Severity.String()))
	cmd.Printf("  [%s] %s\n", badge, fragStyle.Render(s.Original))
	if s.HasReplacement() {
		cmd.Printf("        suggest: %s\n", s.Replacement)
	}
	if !s.Category.IsTopLevel() {
		cmd.Printf("        %s\n", faintStyle.Render(s.Category.Description()))
	}
	if s.Explanation != "" {
		cmd.Printf("        %s\n", faintStyle.Render(s.Explanation))
	}
}

func severityStyle(severity domain.Severity) lipgloss.Style {
	switch severity {
	case domain.SeverityError:
		return errorStyle
	case domain.SeverityInfo:
		return infoStyle
	default:
		return warningStyle
	}
}
