package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	site "github.com/iwilldev/site"
	"github.com/iwilldev/site/imagecache"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "serve":
		err = runServe(args)
	case "new":
		err = runNew(args)
	case "render":
		err = runRender(args)
	case "purge":
		err = runPurge(args)
	case "version":
		fmt.Printf("iwilldev %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`iwilldev - portfolio and blog server for iwill.dev

Usage:
  iwilldev <command> [flags]

Commands:
  serve           Run the HTTP server
  new <slug>      Create a post from the scaffold template
  render <slug>   Render a preview image to a file
  purge           Drop old entries from the image cache
  version         Print the version
  help            Show this help message

Examples:
  iwilldev serve --config site.yml --env development
  iwilldev new hello-world --title "Hello World" --tags go,web
  iwilldev render hello-world --lang en -o hello.png
  iwilldev render feed --page --format svg`)
}

// configFlags are shared by every command that reads site.yml.
type configFlags struct {
	path  string
	addr  string
	posts string
	env   string
}

func addConfigFlags(fs *flag.FlagSet, f *configFlags) {
	fs.StringVarP(&f.path, "config", "c", "site.yml", "site config file")
	fs.StringVar(&f.addr, "addr", "", "listen address (overrides config)")
	fs.StringVar(&f.posts, "posts", "", "posts directory (overrides config)")
	fs.StringVar(&f.env, "env", "", "development or production (overrides config)")
}

func (f configFlags) load() (site.SiteConfig, error) {
	cfg, err := site.LoadConfig(f.path)
	if err != nil {
		return cfg, err
	}
	if f.addr != "" {
		cfg.Addr = f.addr
	}
	if f.posts != "" {
		cfg.PostsDir = f.posts
	}
	if f.env != "" {
		cfg.Env = f.env
	}
	return cfg, nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	var cf configFlags
	addConfigFlags(fs, &cf)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := cf.load()
	if err != nil {
		return err
	}

	logger, err := site.NewLogger(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	_, _ = maxprocs.Set(maxprocs.Logger(logger.Sugar().Infof))

	app, err := site.New(cfg, site.WithLogger(logger))
	if err != nil {
		return err
	}
	defer app.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

func runPurge(args []string) error {
	fs := flag.NewFlagSet("purge", flag.ContinueOnError)
	var cf configFlags
	addConfigFlags(fs, &cf)
	olderThan := fs.Duration("older-than", 30*24*time.Hour, "drop images cached before now minus this duration")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := cf.load()
	if err != nil {
		return err
	}
	if cfg.ImageCachePath == "" {
		return errors.New("image cache is disabled (image_cache_path is empty)")
	}
	logger, err := site.NewLogger(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := imagecache.Open(cfg.ImageCachePath)
	if err != nil {
		return err
	}
	defer store.Close()
	n, err := store.Purge(context.Background(), time.Now().Add(-*olderThan))
	if err != nil {
		return err
	}
	logger.Info("image cache purged", zap.Int64("removed", n), zap.Duration("older_than", *olderThan))
	return nil
}
