package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/pactlint/pactlint/internal/adapters/outbound/tui"
)

const watchDebounce = 300 * time.Millisecond

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-lint on every file change",
		Long:  "Watch the project tree and run the lint pipeline whenever a Go file or the manifest changes.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runWatch(cmd, absPath)
		},
	}
	return cmd
}

func runWatch(cmd *cobra.Command, root string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init: %w", err)
	}
	defer watcher.Close()

	if err := addWatchRecursive(watcher, root); err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}

	svc := newLintService()
	relint := func() {
		report, err := svc.LintProject(cmd.Context(), root)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "lint failed: %v\n", err)
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(report))
	}
	relint()

	var timer *time.Timer
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantChange(ev.Name) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, relint)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
		}
	}
}

func relevantChange(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".go") ||
		strings.HasSuffix(base, ".yaml") ||
		strings.HasSuffix(base, ".yml")
}

func addWatchRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			name := info.Name()
			if name != "." && (strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules") && path != root {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}
