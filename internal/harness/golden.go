package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/confql/internal/ir"
)

// GoldenDir is where golden snapshots live, relative to the test's package.
const GoldenDir = "testdata/golden"

// Snapshot renders a scenario result as canonical JSON for golden
// comparison. Error messages are left out so snapshots survive wording
// changes; the code is kept.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	outcomes := make(ir.Sequence, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		entry := ir.Mapping{
			"address": ir.String(o.Address),
			"type":    ir.String(o.Type),
		}
		if o.Error != "" {
			entry["error"] = ir.String(o.Error)
		} else {
			entry["value"] = ir.String(o.Value)
		}
		outcomes = append(outcomes, entry)
	}

	return ir.MarshalCanonical(ir.Mapping{
		"scenario_name": ir.String(scenario.Name),
		"outcomes":      outcomes,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot run. Snapshot mismatches fail t
// through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
