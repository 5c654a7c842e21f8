package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/iwilldev/site/scaffold"
)

func runNew(args []string) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	var cf configFlags
	addConfigFlags(fs, &cf)
	var p scaffold.Post
	fs.StringVarP(&p.Title, "title", "t", "", "post title (default derived from the slug)")
	fs.StringVarP(&p.Description, "description", "d", "", "short description")
	fs.StringSliceVar(&p.Tags, "tags", nil, "comma-separated tags")
	fs.StringVar(&p.Date, "date", "", "publication date, YYYY-MM-DD (default today)")
	fs.StringVar(&p.Author, "author", "", "author, when not the site author")
	fs.StringVar(&p.Background, "background", "", "preview background token")
	fs.StringVar(&p.Lang, "lang", "", "write a translation into <posts>/<lang>/")
	fs.StringVar(&p.I18n, "i18n", "", "language of an existing translation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: iwilldev new <slug> [--title ...] [--tags a,b] [--lang xx]")
	}
	p.Slug = fs.Arg(0)

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	path, err := scaffold.WritePost(cfg.PostsDir, p)
	if err != nil {
		return err
	}
	fmt.Printf("  created %s\n", path)
	fmt.Printf("\nPreview it with 'iwilldev render %s' or run 'iwilldev serve'.\n", p.Slug)
	return nil
}
