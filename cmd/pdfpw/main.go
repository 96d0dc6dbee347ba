package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"pdf-presenter/internal/broadcast"
	"pdf-presenter/internal/config"
	"pdf-presenter/internal/db"
	"pdf-presenter/internal/services"
)

// Version information (set during build)
var Version = "dev"

func main() {
	app := &cli.App{
		Name:    "pdfpw",
		Usage:   "present a PDF with pdfpc notes and a separate audience view",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "recent files database",
				Value:   defaultDBPath(),
				EnvVars: []string{"PDFPW_DB"},
			},
		},
		Commands: []*cli.Command{
			resolveCommand(),
			presentCommand(),
			audienceCommand(),
			recentCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serverFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "relay server URL",
		Value:   "http://localhost:8080",
		EnvVars: []string{"PDFPW_SERVER"},
	}
}

func maxMessageFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "max-message-mb",
		Usage:   "relay frame limit in MB, must match the server",
		Value:   64,
		EnvVars: []string{"MAX_MESSAGE_MB"},
	}
}

func relayOpener(c *cli.Context, logger *logrus.Logger) *broadcast.WSOpener {
	return &broadcast.WSOpener{
		BaseURL:        c.String("server"),
		MaxMessageSize: int64(c.Int("max-message-mb")) * 1024 * 1024,
		Logger:         logger,
	}
}

func newLogger(c *cli.Context) *logrus.Logger {
	return config.NewLogger(config.ParseLogLevel(c.String("log-level"), logrus.WarnLevel))
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "data", "pdfpw.db")
	}
	return filepath.Join(dir, "pdfpw", "pdfpw.db")
}

// openStore opens the recent files store; call the returned func to close it
func openStore(c *cli.Context, logger *logrus.Logger) (*services.RecentStore, func(), error) {
	database, err := db.InitDatabase(c.String("db"), logger)
	if err != nil {
		return nil, nil, err
	}
	return services.NewRecentStore(database, logger), func() { database.Close() }, nil
}
