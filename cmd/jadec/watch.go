package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-jade/internal/config"
)

func newWatchCommand(configPath *string) *cobra.Command {
	var flags compileFlags
	var out string

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Render every tree under dir and re-render on change",
		Long: `watch renders each tree document under dir to an .html file in the output
directory, then re-renders trees when they or their locals change. Locals
for page.yaml are read from page.locals.yaml when it exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			fsw, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create file watcher: %w", err)
			}
			defer fsw.Close()

			w := &watcher{cmd: cmd, cfg: cfg, flags: &flags, root: args[0], out: out, fs: fsw}
			if err := w.addDirs(); err != nil {
				return fmt.Errorf("watch %s: %w", w.root, err)
			}
			w.renderAll()
			log.Println(mutedStyle.Render("watching " + w.root + " (ctrl+c to stop)"))
			return w.loop(ctx)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "dist", "output directory")
	return cmd
}

type watcher struct {
	cmd   *cobra.Command
	cfg   *config.Config
	flags *compileFlags
	root  string
	out   string
	fs    *fsnotify.Watcher
}

func (w *watcher) addDirs() error {
	outAbs, _ := filepath.Abs(w.out)
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == outAbs {
			return filepath.SkipDir
		}
		if path != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

func (w *watcher) trees() ([]string, error) {
	var trees []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != w.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if w.cfg.Watches(path) && !isLocalsFile(path) {
			trees = append(trees, path)
		}
		return nil
	})
	return trees, err
}

func (w *watcher) renderAll() {
	trees, err := w.trees()
	if err != nil {
		log.Println(errorStyle.Render("✗ " + err.Error()))
		return
	}
	for _, tree := range trees {
		w.renderLogged(tree)
	}
}

func (w *watcher) loop(ctx context.Context) error {
	debounce := time.NewTimer(0)
	<-debounce.C

	pending := map[string]struct{}{}
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.fs.Add(event.Name); err != nil {
						log.Println(errorStyle.Render("✗ watch " + event.Name + ": " + err.Error()))
					}
					continue
				}
			}
			if !w.cfg.Watches(event.Name) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				continue
			}
			pending[treeFor(event.Name)] = struct{}{}
			debounce.Reset(w.cfg.Watch.Debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			log.Println(errorStyle.Render("✗ watcher: " + err.Error()))

		case <-debounce.C:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			clear(pending)
			sort.Strings(changed)
			for _, path := range changed {
				if _, err := os.Stat(path); err != nil {
					continue
				}
				w.renderLogged(path)
			}
		}
	}
}

func (w *watcher) renderLogged(path string) {
	started := time.Now()
	target, err := w.render(path)
	if err != nil {
		log.Println(errorStyle.Render("✗ " + path + ": " + err.Error()))
		return
	}
	log.Println(successStyle.Render("✓ "+target) + mutedStyle.Render(fmt.Sprintf(" (%s)", time.Since(started).Round(time.Millisecond))))
}

func (w *watcher) render(path string) (string, error) {
	tmpl, err := w.flags.compile(w.cmd, w.cfg, path)
	if err != nil {
		return "", err
	}
	locals, err := loadLocals(localsFor(path))
	if err != nil {
		return "", err
	}
	html, err := tmpl.RenderContext(w.cmd.Context(), locals)
	if err != nil {
		return "", err
	}

	target, err := outputPath(w.root, w.out, path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}
	return target, nil
}

// outputPath maps root/a/page.yaml to out/a/page.html.
func outputPath(root, out, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", errors.New(path + " is outside " + root)
	}
	return filepath.Join(out, strings.TrimSuffix(rel, filepath.Ext(rel))+".html"), nil
}

func isLocalsFile(path string) bool {
	return strings.HasSuffix(strings.TrimSuffix(path, filepath.Ext(path)), ".locals")
}

// localsFor returns the locals file of a tree, or "" when it has none.
func localsFor(tree string) string {
	ext := filepath.Ext(tree)
	path := strings.TrimSuffix(tree, ext) + ".locals" + ext
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// treeFor maps a locals file back to its tree.
func treeFor(path string) string {
	if !isLocalsFile(path) {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(strings.TrimSuffix(path, ext), ".locals") + ext
}
