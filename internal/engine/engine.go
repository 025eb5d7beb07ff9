package engine

import (
	"context"
	"log/slog"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/roach88/confql/internal/cursor"
	"github.com/roach88/confql/internal/document"
	"github.com/roach88/confql/internal/ir"
	"github.com/roach88/confql/internal/shape"
)

// DefaultParallelism bounds how many requests ResolveFields runs at once.
const DefaultParallelism = 8

// Engine resolves addresses against one document tree.
//
// Thread-safety model:
//   - Resolve, ResolveFields: safe from any goroutine
//   - The Engine holds no per-query state; each call owns its cursors
//     and values
type Engine struct {
	loader      *document.Loader
	logger      *slog.Logger
	ids         QueryIDGenerator
	parallelism int
}

// Option configures an Engine.
type Option func(*config)

type config struct {
	layout      document.Layout
	codecs      []document.LoaderOption
	logger      *slog.Logger
	ids         QueryIDGenerator
	parallelism int
}

// WithLayout sets the index name and document extensions.
//
// Default: document.DefaultLayout() ("index", "yml")
func WithLayout(l document.Layout) Option {
	return func(c *config) {
		c.layout = l
	}
}

// WithCodec registers a codec for an extension in addition to the
// built-in yml, yaml, json and hcl codecs.
func WithCodec(ext string, codec document.Codec) Option {
	return func(c *config) {
		c.codecs = append(c.codecs, document.WithCodec(ext, codec))
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithQueryIDGenerator sets the query ID source. Default: UUIDv7Generator.
func WithQueryIDGenerator(g QueryIDGenerator) Option {
	return func(c *config) {
		c.ids = g
	}
}

// WithParallelism bounds concurrent requests in ResolveFields.
// Values below 1 mean DefaultParallelism.
func WithParallelism(n int) Option {
	return func(c *config) {
		c.parallelism = n
	}
}

// New creates an Engine reading documents from fsys. The root of fsys is
// the root of the document tree.
func New(fsys billy.Filesystem, opts ...Option) *Engine {
	cfg := config{
		layout:      document.DefaultLayout(),
		ids:         UUIDv7Generator{},
		parallelism: DefaultParallelism,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.parallelism < 1 {
		cfg.parallelism = DefaultParallelism
	}

	return &Engine{
		loader:      document.NewLoader(fsys, cfg.layout, cfg.codecs...),
		logger:      cfg.logger,
		ids:         cfg.ids,
		parallelism: cfg.parallelism,
	}
}

// Layout returns the normalized layout in use.
func (e *Engine) Layout() document.Layout {
	return e.loader.Layout()
}

// Validate checks that every layout extension has a codec.
func (e *Engine) Validate() error {
	return e.loader.Validate()
}

// Resolve resolves address against the tree root with shape s.
//
// Errors are *QueryError wrapping an *ir.Error (DATA_NOT_FOUND,
// TYPE_MISMATCH, INCOMPATIBLE_MERGE, CANNOT_MERGE_INTO_NON_MAPPING, or the
// PARSE_ERROR / IO_ERROR that hid a required value), ErrInvalidAddress, or
// the context's error.
func (e *Engine) Resolve(ctx context.Context, address []string, s shape.Shape) (ir.Value, error) {
	v, _, err := e.resolve(ctx, address, s)
	return v, err
}

// ResolvePath is Resolve over the directory root on the local filesystem.
func ResolvePath(ctx context.Context, root string, address []string, s shape.Shape, opts ...Option) (ir.Value, error) {
	return New(osfs.New(root), opts...).Resolve(ctx, address, s)
}

func (e *Engine) resolve(ctx context.Context, address []string, s shape.Shape) (ir.Value, string, error) {
	queryID := e.ids.Generate()
	address = append([]string(nil), address...)

	fail := func(err error) (ir.Value, string, error) {
		return nil, queryID, &QueryError{QueryID: queryID, Address: address, Err: err}
	}
	if err := validateAddress(address); err != nil {
		return fail(err)
	}

	log := e.logger.With("query_id", queryID, "address", dotted(address))
	start := time.Now()
	log.Debug("query started", "shape", shapeName(s))

	r := &resolver{
		ctx:        ctx,
		log:        log,
		suppressed: make(map[string]error),
	}
	v, err := r.resolve(cursor.New(e.loader, "", address), s, address)
	if err != nil {
		log.Debug("query failed", "error", err, "duration", time.Since(start))
		return fail(err)
	}

	log.Debug("query finished", "kind", ir.KindOf(v).String(), "duration", time.Since(start))
	return v, queryID, nil
}

func shapeName(s shape.Shape) string {
	if s == nil {
		return "<nil>"
	}
	return s.String()
}
