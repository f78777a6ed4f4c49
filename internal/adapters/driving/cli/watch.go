package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	surfacemem "github.com/draftaid-io/draftaid/internal/adapters/driven/surface/memory"
	"github.com/draftaid-io/draftaid/internal/core/services"
	"github.com/draftaid-io/draftaid/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Watch an essay file and re-analyse on save",
	Long: `Keeps an analysis session open against a file. Every save reloads
the document and re-runs the due categories; the updated suggestion
report is printed after each pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	doc, err := loadDocument(path)
	if err != nil {
		return err
	}

	settings := sess.settings.Engine()
	surface := surfacemem.NewSurface(doc)
	engine := services.NewEngine(surface, sess.analysis, sess.decisions, settings)
	defer engine.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors commonly replace the file on save,
	// which drops a watch placed on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	runPass := func() {
		engine.DocumentChanged()
		if err := engine.Flush(cmd.Context()); err != nil {
			cmd.PrintErrln("flush:", err)
			return
		}
		printReport(cmd, engine, settings.Categories)
	}

	cmd.Printf("Watching %s (Ctrl-C to stop)\n\n", path)
	runPass()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	// Save events arrive in bursts; coalesce them before reloading.
	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || abs != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("CLI: file event %s", event.Op)
			pending = time.After(250 * time.Millisecond)

		case <-pending:
			pending = nil
			doc, err := loadDocument(path)
			if err != nil {
				cmd.PrintErrln("reload:", err)
				continue
			}
			surface.SetDocument(doc)
			runPass()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmd.PrintErrln("watch:", err)

		case <-interrupt:
			cmd.Println("Stopping.")
			return nil

		case <-cmd.Context().Done():
			return cmd.Context().Err()
		}
	}
}
