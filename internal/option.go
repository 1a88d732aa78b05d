package internal

import (
	"io"
	"time"

	"github.com/starford/labjournal/internal/index"
	"github.com/starford/labjournal/internal/scaffold"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	path   string // explicit journal path, may be empty
	cwd    string
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	experiment scaffold.Params
	id         string
	query      string
	filter     index.Filter
	limit      int
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithPath sets the explicit journal path given on the command line.
func WithPath(path string) Option {
	return func(a *application) {
		a.path = path
	}
}

// WithWorkDir overrides the directory journal resolution starts from.
func WithWorkDir(dir string) Option {
	return func(a *application) {
		a.cwd = dir
	}
}

// WithOutput sets where command output and logs are written.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *application) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// WithClock overrides the current time source.
func WithClock(now func() time.Time) Option {
	return func(a *application) {
		a.now = now
	}
}

// WithExperiment sets the parameters of the experiment to scaffold.
func WithExperiment(p scaffold.Params) Option {
	return func(a *application) {
		a.experiment = p
	}
}

// WithID selects the experiment to show.
func WithID(id string) Option {
	return func(a *application) {
		a.id = id
	}
}

// WithSearch sets the search query, filters and result limit.
func WithSearch(query string, f index.Filter, limit int) Option {
	return func(a *application) {
		a.query = query
		a.filter = f
		a.limit = limit
	}
}
