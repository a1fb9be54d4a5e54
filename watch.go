package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func watchCmd(configPath *string) *cobra.Command {
	var output, debug string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the layout whenever the edition or style sheet changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, output, debug)
			if err != nil {
				return err
			}
			logger := cfg.Log.NewLogger(os.Stderr)
			b := newBuilder(cfg, logger)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, b, cfg.Watch.Debounce, logger)
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", "", "PDF 输出路径（覆盖配置）")
	cmd.Flags().StringVar(&debug, "debug", "", "布局调试 JSON 输出路径（覆盖配置）")
	return cmd
}

// watch runs the layout once and again after every debounced change of an
// input file. A stylesheet change rebuilds the session; an edition change
// recompiles and re-paginates the main text within it.
func watch(ctx context.Context, b *builder, debounce time.Duration, logger *slog.Logger) error {
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听失败: %w", err)
	}
	defer fsw.Close()

	// 监听所在目录：编辑器常以替换文件的方式保存
	inputs := map[string]reload{}
	for i, f := range b.cfg.WatchedFiles() {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		if i == 0 {
			inputs[abs] = reloadEdition
		} else {
			inputs[abs] = reloadAll
		}
		if err := fsw.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("监听 %s 失败: %w", filepath.Dir(abs), err)
		}
	}

	rebuild := func(what reload) {
		res, err := b.run(what)
		if err != nil {
			// 不再提供基于旧分页的校勘记
			if b.session != nil {
				b.session.Invalidate()
			}
			logger.Error("layout failed", "error", err)
			return
		}
		logger.Info("layout refreshed", "pdf", res.pdfPath, "pages", res.pages)
	}
	rebuild(reloadAll)

	timer := time.NewTimer(debounce)
	timer.Stop()
	pending, dirty := reloadEdition, false
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(event.Name)
			what, watched := inputs[abs]
			if !watched || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("input changed", "path", abs, "op", event.Op.String())
			if !dirty || what > pending {
				pending = what
			}
			dirty = true
			timer.Reset(debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		case <-timer.C:
			if dirty {
				rebuild(pending)
				pending, dirty = reloadEdition, false
			}
		}
	}
}
