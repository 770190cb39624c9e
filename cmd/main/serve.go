package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"gogofolio/modules/cache"
	"gogofolio/modules/coalescer"
	"gogofolio/modules/config"
	"gogofolio/modules/fileaccess"
	"gogofolio/modules/filemanager"
	"gogofolio/modules/fileserver"
	"gogofolio/modules/handlers"
	"gogofolio/modules/logger"
	"gogofolio/modules/metrics"
	"gogofolio/modules/minifier"
	"gogofolio/modules/pages"
	"gogofolio/modules/posts"
	"gogofolio/modules/profiler"
	"gogofolio/modules/server"
	"gogofolio/modules/watcher"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site (default command)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, v)
		},
	}
	cmd.Flags().String("templates", "", "read page templates from this directory instead of the binary")
	cmd.Flags().String("cpuprofile", "", "write a CPU profile to this file")
	cmd.Flags().String("memprofile", "", "write a heap profile to this file on exit")
	return cmd
}

// root is one directory the server reads from, with its own cache.
type root struct {
	dir   string
	cache *cache.Cache
	files *filemanager.FileManager
}

func newRoot(cfg config.Config, dir string, co *coalescer.Coalescer) root {
	var c *cache.Cache
	if cfg.Server.CachingEnabled {
		c = cache.NewCache(cfg.Cache.MaxSize)
	}
	return root{
		dir:   dir,
		cache: c,
		files: filemanager.New(fileaccess.New(dir), c, co, filemanager.Config{Expiration: cfg.Cache.DefaultExpiration}),
	}
}

// contains returns path relative to the root when it lies inside it.
func (r root) contains(path string) (string, bool) {
	rel, err := filepath.Rel(r.dir, path)
	if err != nil || !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	flags := cmd.Flags()
	cpuProfile, _ := flags.GetString("cpuprofile")
	memProfile, _ := flags.GetString("memprofile")
	if cpuProfile != "" || memProfile != "" {
		prof := profiler.New()
		if err := prof.Start(cpuProfile, memProfile); err != nil {
			return err
		}
		defer func() {
			stats := prof.GetStats()
			if err := prof.Stop(); err != nil {
				log.Error("profiler", logger.Err(err))
			}
			log.Info("profile written",
				logger.Duration("uptime", stats.Uptime),
				logger.Int64("num_gc", int64(stats.NumGC)))
		}()
	}

	co := coalescer.NewCoalescer()
	postsRoot := newRoot(cfg, cfg.Directories.Posts, co)
	publicRoot := newRoot(cfg, cfg.Directories.Public, co)
	distRoot := newRoot(cfg, cfg.Directories.Dist, co)

	store := posts.NewStore(postsRoot.files)

	siteCfg := pages.Config{Posts: store, Author: cfg.Site.Author, Production: true, Logger: log}
	if dir, _ := flags.GetString("templates"); dir != "" {
		siteCfg.Templates = os.DirFS(dir)
		siteCfg.Production = false
	}

	opts := handlers.Options{
		Posts:        store,
		Site:         pages.New(siteCfg),
		Static:       fileserver.NewFileServer(publicRoot.files, distRoot.files),
		Logger:       log,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Profiler:     cfg.Server.ProfilerEnabled,
	}
	if cfg.Server.MinifyHTML {
		opts.Minifier = minifier.New()
	}
	if cfg.Server.MetricsEnabled {
		opts.Metrics = metrics.New()
		for name, r := range map[string]root{"posts": postsRoot, "public": publicRoot, "dist": distRoot} {
			if r.cache != nil {
				opts.Metrics.RegisterCache(name, r.cache)
			}
		}
	}

	srv := server.NewServer(&server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		MaxHeaderBytes:  cfg.Server.MaxHeaderBytes,
		EnableHTTP2:     cfg.Server.EnableHTTP2,
		GracefulTimeout: cfg.Server.GracefulTimeout,
		TCPKeepAlive:    cfg.Server.TCPKeepAlive,
	}, log)
	srv.SetHandler(handlers.New(opts))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })

	if cfg.Server.WatchPosts {
		roots := []root{postsRoot, publicRoot, distRoot}
		w, err := watcher.New(existing(roots), 0, func(path string) {
			for i, r := range roots {
				rel, ok := r.contains(path)
				if !ok {
					continue
				}
				if i == 0 {
					if store.InvalidatePath(rel) {
						log.Info("post changed", logger.String("path", rel))
					}
				} else {
					r.files.Invalidate(rel)
					log.Debug("static file changed", logger.String("path", rel))
				}
				return
			}
		}, log)
		if err != nil {
			return err
		}
		g.Go(func() error { return w.Run(ctx) })
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func existing(roots []root) []string {
	var dirs []string
	for _, r := range roots {
		if info, err := os.Stat(r.dir); err == nil && info.IsDir() {
			dirs = append(dirs, r.dir)
		}
	}
	return dirs
}
