package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/roach88/confql/internal/compiler"
	"github.com/roach88/confql/internal/engine"
	"github.com/roach88/confql/internal/ir"
	"github.com/roach88/confql/internal/shape"
	"github.com/roach88/confql/internal/testutil"
)

// QueryID is the fixed query ID used for every scenario query.
const QueryID = "scenario"

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger sends engine logs to l. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// An error is returned when the scenario itself is unusable (schema does
// not compile or validate, tree cannot be built). Failed expectations are
// reported in the result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	schema, err := compiler.CompileSchemaSource(scenario.Name+".cue", []byte(scenario.Schema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	if errs := compiler.Validate(schema); len(errs) > 0 {
		return nil, fmt.Errorf("invalid schema: %w", errs[0])
	}

	fsys, err := BuildTree(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to build tree: %w", err)
	}

	eng := engine.New(fsys,
		engine.WithLayout(scenario.DocumentLayout()),
		engine.WithLogger(cfg.logger),
		engine.WithQueryIDGenerator(testutil.NewFixedIDGenerator(QueryID)),
	)
	if err := eng.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	result := NewResult()
	for i, q := range scenario.Queries {
		outcome, err := runQuery(ctx, eng, schema, q)
		if err != nil {
			return nil, fmt.Errorf("queries[%d]: %w", i, err)
		}
		result.Outcomes = append(result.Outcomes, outcome)
		for _, msg := range checkOutcome(q, outcome) {
			result.AddError(fmt.Sprintf("queries[%d] %q: %s", i, q.Address, msg))
		}
	}
	return result, nil
}

// BuildTree writes the scenario's files into a fresh in-memory filesystem.
func BuildTree(scenario *Scenario) (billy.Filesystem, error) {
	mem := memfs.New()
	if err := mem.MkdirAll("/tree", 0o755); err != nil {
		return nil, err
	}
	fsys := chroot.New(mem, "/tree")

	for _, name := range scenario.FileNames() {
		if dir := path.Dir(name); dir != "." {
			if err := fsys.MkdirAll(dir, os.ModeDir|0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		if err := util.WriteFile(fsys, name, []byte(scenario.Files[name]), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	return fsys, nil
}

func runQuery(ctx context.Context, eng *engine.Engine, schema *shape.Schema, q Query) (Outcome, error) {
	address, err := engine.ParseAddress(q.Address)
	if err != nil {
		return Outcome{}, err
	}

	var s shape.Shape
	if q.Type != "" {
		s, err = shape.ParseType(q.Type, schema.Types)
	} else {
		s, err = schema.Lookup(address)
	}
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{Address: q.Address, Type: s.String()}

	v, err := eng.Resolve(ctx, address, s)
	if err != nil {
		outcome.Error = string(ir.CodeOf(err))
		if outcome.Error == "" {
			outcome.Error = "ERROR"
		}
		outcome.Message = err.Error()
		return outcome, nil
	}

	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return Outcome{}, err
	}
	if err := checkIdempotent(ctx, eng, address, s, v); err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", q.Address, err)
	}
	outcome.Value = string(data)
	return outcome, nil
}

// checkIdempotent resolves address a second time and compares content
// hashes. An unchanged tree must resolve to an equal value.
func checkIdempotent(ctx context.Context, eng *engine.Engine, address []string, s shape.Shape, first ir.Value) error {
	again, err := eng.Resolve(ctx, address, s)
	if err != nil {
		return fmt.Errorf("re-resolving: %w", err)
	}
	want, err := ir.Hash(first)
	if err != nil {
		return err
	}
	got, err := ir.Hash(again)
	if err != nil {
		return err
	}
	if want != got {
		return fmt.Errorf("re-resolving changed the value (%s, then %s)", want, got)
	}
	return nil
}

// checkOutcome compares an outcome with the query's expectations.
func checkOutcome(q Query, o Outcome) []string {
	switch {
	case q.ExpectError != "":
		if o.Error != q.ExpectError {
			return []string{fmt.Sprintf("expected error %s, got %s", q.ExpectError, describe(o))}
		}
	case q.HasExpect():
		if o.Error != "" {
			return []string{fmt.Sprintf("expected a value, got %s", describe(o))}
		}
		want, err := q.ExpectedValue()
		if err != nil {
			return []string{fmt.Sprintf("expect: %v", err)}
		}
		wantJSON, err := ir.MarshalCanonical(want)
		if err != nil {
			return []string{fmt.Sprintf("expect: %v", err)}
		}
		if string(wantJSON) != o.Value {
			return []string{fmt.Sprintf("expected %s, got %s", wantJSON, o.Value)}
		}
	default:
		if o.Error != "" {
			return []string{fmt.Sprintf("unexpected %s", describe(o))}
		}
	}
	return nil
}

func describe(o Outcome) string {
	if o.Error != "" {
		return o.Message
	}
	return "value " + o.Value
}
