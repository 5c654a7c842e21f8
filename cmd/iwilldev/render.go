package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	site "github.com/iwilldev/site"
	"github.com/iwilldev/site/ogimage"
)

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var cf configFlags
	addConfigFlags(fs, &cf)
	lang := fs.String("lang", "", "translation to render")
	page := fs.Bool("page", false, "treat the argument as a static page slug (index, path, feed, links)")
	format := fs.StringP("format", "f", "png", "output format: png, svg or html")
	output := fs.StringP("output", "o", "", "output file (default <slug>.<format>)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: iwilldev render <slug> [--page] [--lang xx] [--format png|svg|html] [-o file]")
	}
	slug := fs.Arg(0)

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	// Offline renders neither read nor fill the image cache.
	cfg.ImageCachePath = ""
	cfg.RenderRate = -1

	app, err := site.New(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	var tpl *ogimage.Template
	if *page {
		tpl = app.PagePreview(slug)
	} else if tpl, err = app.PostPreview(ctx, slug, *lang); err != nil {
		return fmt.Errorf("post %q: %w", slug, err)
	}

	var data []byte
	switch *format {
	case "png":
		data, err = app.Rasterizer().Rasterize(ctx, tpl)
	case "svg":
		var scene *ogimage.Scene
		if scene, err = app.Rasterizer().Layout(tpl); err == nil {
			data = []byte(scene.SVG())
		}
	case "html":
		data = []byte(tpl.Markup())
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		return err
	}

	out := *output
	if out == "" {
		out = slug + "." + *format
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("  created %s (%d bytes)\n", out, len(data))
	return nil
}
