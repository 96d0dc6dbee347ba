package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"pdf-presenter/internal/models"
	"pdf-presenter/internal/services"
)

func recentCommand() *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "manage the recently opened documents",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list documents, newest first",
				Action: withStore(func(c *cli.Context, store *services.RecentStore) error {
					files, err := store.List(c.Context)
					if err != nil {
						return err
					}
					return printRecent(c, files)
				}),
			},
			{
				Name:      "search",
				Usage:     "fuzzy search document names",
				ArgsUsage: "QUERY",
				Action: withStore(func(c *cli.Context, store *services.RecentStore) error {
					files, err := store.Search(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					return printRecent(c, files)
				}),
			},
			{
				Name:      "remove",
				Usage:     "forget one document",
				ArgsUsage: "ID",
				Action: withStore(func(c *cli.Context, store *services.RecentStore) error {
					err := store.Remove(c.Context, c.Args().First())
					if errors.Is(err, services.ErrRecentNotFound) {
						return cli.Exit(fmt.Sprintf("no recent file with id %q", c.Args().First()), 1)
					}
					return err
				}),
			},
			{
				Name:  "clear",
				Usage: "forget every document",
				Action: withStore(func(c *cli.Context, store *services.RecentStore) error {
					return store.Clear(c.Context)
				}),
			},
			{
				Name:      "history",
				Usage:     "show or set whether opened documents are recorded",
				ArgsUsage: "[on|off]",
				Action: withStore(func(c *cli.Context, store *services.RecentStore) error {
					settings, err := store.Settings(c.Context)
					if err != nil {
						return err
					}
					switch c.Args().First() {
					case "":
					case "on":
						settings.SaveHistory = true
					case "off":
						settings.SaveHistory = false
					default:
						return cli.Exit("expected on or off", 2)
					}
					if c.Args().Present() {
						if err := store.UpdateSettings(c.Context, settings); err != nil {
							return err
						}
					}
					fmt.Fprintf(c.App.Writer, "save history: %t\n", settings.SaveHistory)
					return nil
				}),
			},
		},
	}
}

func withStore(fn func(c *cli.Context, store *services.RecentStore) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		store, closeStore, err := openStore(c, newLogger(c))
		if err != nil {
			return err
		}
		defer closeStore()
		return fn(c, store)
	}
}

func printRecent(c *cli.Context, files []*models.RecentFile) error {
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLAST OPENED\tPATH")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.ID, f.Name, f.LastOpened.Local().Format(time.DateTime), f.Path)
	}
	return w.Flush()
}
