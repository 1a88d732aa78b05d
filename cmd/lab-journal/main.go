package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/labjournal/internal"
	"github.com/starford/labjournal/internal/index"
	"github.com/starford/labjournal/internal/models"
	"github.com/starford/labjournal/internal/scaffold"
	pkgconfig "github.com/starford/labjournal/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// action builds a cli action running command with the options derived
// from the parsed arguments.
func action(command internal.Command, options func(cmd *cli.Command) ([]internal.Option, error)) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
		}
		if options != nil {
			extra, err := options(cmd)
			if err != nil {
				return fmt.Errorf("%s: %w", command, err)
			}
			opts = append(opts, extra...)
		}

		if err := internal.Run(ctx, command, opts...); err != nil {
			return fmt.Errorf("%s: %w", command, err)
		}
		return nil
	}
}

// positionalPath reads the optional [path] argument.
func positionalPath(cmd *cli.Command) ([]internal.Option, error) {
	return []internal.Option{internal.WithPath(cmd.Args().First())}, nil
}

// newOptions reads `new <slug> [--depends ID...]`. Ids following the
// --depends flag are parsed as positional arguments and are appended to
// the flag values; stray arguments without --depends are an error.
func newOptions(cmd *cli.Command) ([]internal.Option, error) {
	depends := cmd.StringSlice("depends")
	if tail := cmd.Args().Tail(); len(tail) > 0 {
		if !cmd.IsSet("depends") {
			return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(tail, " "))
		}
		depends = append(depends, tail...)
	}
	return []internal.Option{
		internal.WithPath(cmd.String("path")),
		internal.WithExperiment(scaffold.Params{
			Slug:      cmd.Args().First(),
			Type:      cmd.String("type"),
			DependsOn: depends,
		}),
	}, nil
}

func pathFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "path",
		Aliases: []string{"p"},
		Usage:   "Path to the lab journal (default: discovered from the working directory)",
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "lab-journal",
		Usage: "Structured experiment journal with a derived dependency index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "none",
				Sources:     cli.EnvVars("LAB_JOURNAL_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Create a new lab journal",
				ArgsUsage: "[path]",
				Action:    action(internal.CommandInit, positionalPath),
			},
			{
				Name:      "build-index",
				Usage:     "Rebuild index.json from the experiment documents",
				ArgsUsage: "[path]",
				Action:    action(internal.CommandBuildIndex, positionalPath),
			},
			{
				Name:      "new",
				Usage:     "Scaffold a new experiment document",
				ArgsUsage: "<slug>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Experiment type: hypothesis, optimization or exploration",
						Value:   models.TypeExploration,
					},
					&cli.StringSliceFlag{
						Name:    "depends",
						Aliases: []string{"d"},
						Usage:   "Ids of prerequisite experiments (--depends 001 002, repeatable or comma-separated)",
					},
					pathFlag(),
				},
				Action: action(internal.CommandNew, newOptions),
			},
			{
				Name:      "show",
				Usage:     "Print one indexed experiment as JSON",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{pathFlag()},
				Action: action(internal.CommandShow, func(cmd *cli.Command) ([]internal.Option, error) {
					return []internal.Option{
						internal.WithPath(cmd.String("path")),
						internal.WithID(cmd.Args().First()),
					}, nil
				}),
			},
			{
				Name:      "search",
				Usage:     "Search experiments by text, status, type or tag",
				ArgsUsage: "[query]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "Only experiments with this status"},
					&cli.StringFlag{Name: "type", Usage: "Only experiments of this type"},
					&cli.StringFlag{Name: "tag", Usage: "Only experiments carrying this tag"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of results", Value: 20},
					pathFlag(),
				},
				Action: action(internal.CommandSearch, func(cmd *cli.Command) ([]internal.Option, error) {
					filter := index.Filter{
						Status: cmd.String("status"),
						Type:   cmd.String("type"),
						Tag:    cmd.String("tag"),
					}
					return []internal.Option{
						internal.WithPath(cmd.String("path")),
						internal.WithSearch(cmd.Args().First(), filter, int(cmd.Int("limit"))),
					}, nil
				}),
			},
			{
				Name:      "watch",
				Usage:     "Rebuild the index whenever an experiment changes",
				ArgsUsage: "[path]",
				Action:    action(internal.CommandWatch, positionalPath),
			},
			{
				Name:      "mcp",
				Usage:     "Serve journal tools over MCP on stdio",
				ArgsUsage: "[path]",
				Action:    action(internal.CommandMCP, positionalPath),
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
