// Package internal provides the command dispatch and runtime wiring.
package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/labjournal/internal/index"
	"github.com/starford/labjournal/internal/journal"
	"github.com/starford/labjournal/internal/mcpserver"
	"github.com/starford/labjournal/internal/storage"
)

// Command identifies one lab-journal subcommand.
type Command int

// Commands.
const (
	CommandInit Command = iota + 1
	CommandBuildIndex
	CommandNew
	CommandShow
	CommandSearch
	CommandWatch
	CommandMCP
)

func (c Command) String() string {
	switch c {
	case CommandInit:
		return "init"
	case CommandBuildIndex:
		return "build-index"
	case CommandNew:
		return "new"
	case CommandShow:
		return "show"
	case CommandSearch:
		return "search"
	case CommandWatch:
		return "watch"
	case CommandMCP:
		return "mcp"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

const defaultSearchLimit = 20

// Run executes cmd with the given options.
func Run(ctx context.Context, cmd Command, opts ...Option) error {
	app := &application{
		stdout: os.Stdout,
		stderr: os.Stderr,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if app.cwd == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		app.cwd = cwd
	}

	logger := app.config.App.NewLogger(app.stderr)
	logger.Debug("Configuration loaded",
		slog.String("command", cmd.String()),
		slog.String("dir_name", app.config.Journal.DirName),
		slog.String("log_level", app.config.App.LogLevel.String()))

	switch cmd {
	case CommandInit:
		return app.runInit(logger)
	case CommandBuildIndex:
		return app.runBuildIndex(ctx, logger)
	case CommandNew:
		return app.runNew(ctx, logger)
	case CommandShow:
		return app.runShow(ctx, logger)
	case CommandSearch:
		return app.runSearch(ctx, logger)
	case CommandWatch:
		return app.runWatch(ctx, logger)
	case CommandMCP:
		return app.runMCP(logger)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// open resolves the journal root and builds the service over it.
func (a *application) open(logger *slog.Logger) (*storage.FS, *journal.Service, error) {
	layout := a.config.Journal.Layout()
	root, err := storage.Resolve(a.path, a.cwd, layout.DirName)
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.NewFS(root)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	logger.Debug("journal resolved", slog.String("root", root))
	return store, journal.NewService(store, layout, logger), nil
}

func (a *application) runInit(logger *slog.Logger) error {
	root, err := journal.Init(a.path, a.cwd, a.config.Journal.Layout(), a.now())
	if err != nil {
		return err
	}
	logger.Debug("journal initialized", slog.String("root", root))
	_, err = fmt.Fprintf(a.stdout, "Initialized lab journal at %s\n", root)
	return err
}

func (a *application) runBuildIndex(ctx context.Context, logger *slog.Logger) error {
	_, svc, err := a.open(logger)
	if err != nil {
		return err
	}
	idx, err := svc.BuildIndex(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "Indexed %d experiments → %s\n", len(idx.Experiments), svc.IndexPath())
	return err
}

func (a *application) runNew(ctx context.Context, logger *slog.Logger) error {
	_, svc, err := a.open(logger)
	if err != nil {
		return err
	}
	p := a.experiment
	if p.Created.IsZero() {
		p.Created = a.now()
	}
	path, err := svc.NewExperiment(ctx, p)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "Created %s\n", path)
	return err
}

func (a *application) runShow(ctx context.Context, logger *slog.Logger) error {
	_, svc, err := a.open(logger)
	if err != nil {
		return err
	}
	e, err := svc.Show(ctx, a.id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

func (a *application) runSearch(ctx context.Context, logger *slog.Logger) error {
	_, svc, err := a.open(logger)
	if err != nil {
		return err
	}
	limit := a.limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	results, err := svc.Search(ctx, a.query, a.filter, limit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		_, err = fmt.Fprintln(a.stdout, "No matching experiments")
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s", r.ID, r.Status, r.Title)
		if len(r.LeadsTo) > 0 {
			fmt.Fprintf(tw, "\t→ %s", strings.Join(r.LeadsTo, ", "))
		}
		fmt.Fprintln(tw)
		if snippet := strings.Join(strings.Fields(r.Snippet), " "); snippet != "" {
			fmt.Fprintf(tw, "\t\t%s\n", snippet)
		}
	}
	return tw.Flush()
}

func (a *application) runWatch(ctx context.Context, logger *slog.Logger) error {
	_, svc, err := a.open(logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if _, err := svc.RebuildIfChanged(ctx); err != nil {
		return err
	}
	dir := filepath.Join(svc.Root(), storage.ExperimentsDir)
	if _, err := fmt.Fprintf(a.stdout, "Watching %s\n", dir); err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return index.Watch(gCtx, dir, a.config.Watch.Debounce, logger, func() error {
			_, err := svc.RebuildIfChanged(gCtx)
			return err
		})
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

func (a *application) runMCP(logger *slog.Logger) error {
	store, svc, err := a.open(logger)
	if err != nil {
		return err
	}
	logger.Info("MCP server starting", slog.String("root", svc.Root()))
	return mcpserver.New(store, svc).ServeStdio()
}
