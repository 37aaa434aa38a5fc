package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/contendgo/contendgo/contend"
)

const AppName = "contendgo"

// App is the command-line front-end embedded by suite binaries.
type App struct {
	logger   zerolog.Logger
	cli      *cli.App
	registry *contend.Registry
	suite    string
	out      io.Writer
}

// New builds the CLI around a populated registry. The suite name labels
// reports and history records; when empty the binary name is used.
func New(suite string, registry *contend.Registry) *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	if suite == "" {
		suite = filepath.Base(os.Args[0])
	}

	app := &App{
		logger:   logger,
		registry: registry,
		suite:    suite,
		out:      os.Stdout,
		cli: &cli.App{
			Name:  AppName,
			Usage: fmt.Sprintf("Run the %q contention suite", suite),
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	runFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "dispatch",
			Usage: "Dispatch strategy: sequential, thread or process",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-test execution deadline (0 disables it)",
		},
		&cli.IntFlag{
			Name:  "jobs",
			Usage: "Concurrent workers for the thread strategy",
		},
		&cli.IntFlag{
			Name:  "memory-limit",
			Usage: "Per-test RSS limit in MiB for the process strategy (0 disables it)",
		},
		&cli.StringFlag{
			Name:  "run",
			Usage: "Only run tests whose name matches this regular expression",
		},
		&cli.StringFlag{
			Name:  "scratch-root",
			Usage: "Directory under which per-test scratch directories are created",
		},
		&cli.BoolFlag{
			Name:  "keep-scratch",
			Usage: "Keep per-test scratch directories after execution",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Config file path (default: .contendgo.yaml if present)",
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Skip recording the run under .contendgo/history",
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "run",
		Usage:  "Run the suite and report the outcome",
		Action: app.runSuite,
		Flags:  runFlags,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "exec",
		Usage:  "Execute a single test in child mode (internal)",
		Hidden: true,
		Action: app.execChild,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "test",
				Usage:    "Registered test name to execute",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "scratch",
				Usage: "Scratch directory prepared by the parent",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List previous suite runs",
		Action: app.list,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "suite",
				Aliases: []string{"s"},
				Usage:   "Filter by suite name",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of results (default: 20)",
				Value:   20,
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "view",
		Usage:     "View a recorded run from history",
		ArgsUsage: "[ID|INDEX]",
		Action:    app.view,
		Description: `View a recorded suite run from history.

Arguments:
  0           View last run (default)
  -1          View 2nd last run
  -2          View 3rd last run
  <hex-id>    View run matching the hex ID prefix`,
	})
	// Bare invocation runs the suite with defaults.
	app.cli.Action = app.runSuite
	app.cli.Flags = append(app.cli.Flags, runFlags...)
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}
