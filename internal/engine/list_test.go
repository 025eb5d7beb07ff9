package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/confql/internal/ir"
	"github.com/roach88/confql/internal/shape"
)

func derive(role shape.Role) *shape.Directive {
	return &shape.Directive{DeriveFromName: true, Role: role}
}

// thingRecord is
//
//	type Thing { name: String @derive(role), alias: String @derive(filename), size: Float! }
func thingRecord(role shape.Role) *shape.Record {
	return &shape.Record{
		Name: "Thing",
		Fields: []shape.Field{
			{Name: "name", Shape: shape.Optional{Inner: stringShape}, Directive: derive(role)},
			{Name: "alias", Shape: shape.Optional{Inner: stringShape}, Directive: derive(shape.RoleFilename)},
			{Name: "size", Shape: floatShape},
		},
	}
}

func thing(name, alias string, size float64) ir.Mapping {
	return ir.NewMapping(
		ir.O("name", ir.String(name)),
		ir.O("alias", ir.String(alias)),
		ir.O("size", ir.Number(size)),
	)
}

func TestListFromSiblings(t *testing.T) {
	rec := &shape.Record{Name: "Thing", Fields: []shape.Field{{Name: "size", Shape: floatShape}}}
	e := newTestEngine(t, map[string]string{
		"things/widget.yml": "{size: 1.1}",
		"things/dongle.yml": "{size: 2.2}",
	})

	got, err := resolve(t, e, []string{"things"}, shape.List{Inner: rec})
	require.NoError(t, err)
	assert.ElementsMatch(t, ir.NewSequence(
		ir.NewMapping(ir.O("size", ir.Number(1.1))),
		ir.NewMapping(ir.O("size", ir.Number(2.2))),
	), got)
}

func TestFilenameDerivedDefaultOverriddenByExplicitValue(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"things/widget.yml": "{alias: Widgy, size: 1.1}",
		"things/dongle.yml": "{size: 2.2}",
	})

	got, err := resolve(t, e, []string{"things"}, shape.List{Inner: thingRecord(shape.RoleFilename)})
	require.NoError(t, err)
	assert.ElementsMatch(t, ir.NewSequence(
		thing("widget", "Widgy", 1.1),
		thing("dongle", "dongle", 2.2),
	), got)
}

func TestDerivedNameFromDirectory(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"things/widget/index.yml": "{size: 1.1}",
		"things/dongle/size.yml":  "2.2",
		"things/dongle/name.yml":  "Dongle Mk II",
	})

	got, err := resolve(t, e, []string{"things"}, shape.List{Inner: thingRecord(shape.RoleFilename)})
	require.NoError(t, err)
	assert.ElementsMatch(t, ir.NewSequence(
		thing("widget", "widget", 1.1),
		thing("Dongle Mk II", "dongle", 2.2),
	), got)
}

func TestHashKeyAsArrayField(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"things/index.yml": "{widget: {size: 1.1}, dongle: {size: 2.2}}",
	})

	got, err := resolve(t, e, []string{"things"}, shape.List{Inner: thingRecord(shape.RoleIdentifier)})
	require.NoError(t, err)
	assert.Equal(t, ir.NewSequence(
		thing("dongle", "dongle", 2.2),
		thing("widget", "widget", 1.1),
	), got)
}

func TestKeyedListMergesSiblings(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"things/index.yml":  "{widget: {size: 1.1}, dongle: {size: 2.2, alias: D}}",
		"things/widget.yml": "{alias: Widgy}",
		"things/gizmo.yml":  "{size: 3.3}",
	})

	got, err := resolve(t, e, []string{"things"}, shape.List{Inner: thingRecord(shape.RoleIdentifier)})
	require.NoError(t, err)
	assert.Equal(t, ir.NewSequence(
		thing("dongle", "D", 2.2),
		thing("gizmo", "gizmo", 3.3),
		thing("widget", "Widgy", 1.1),
	), got)
}

func TestKeyedListAtBroaderLevel(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"index.yml": "{things: {widget: {size: 1.1}}}",
	})

	got, err := resolve(t, e, []string{"things"}, shape.List{Inner: thingRecord(shape.RoleIdentifier)})
	require.NoError(t, err)
	assert.Equal(t, ir.NewSequence(thing("widget", "widget", 1.1)), got)
}

func TestKeyedListMergesLevelsByName(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  ir.Sequence
	}{
		{
			name: "sibling on top of broad entry",
			files: map[string]string{
				"index.yml":         "{things: {widget: {size: 1.1}}}",
				"things/widget.yml": "{alias: Widgy, size: 5}",
			},
			want: ir.NewSequence(thing("widget", "Widgy", 5)),
		},
		{
			name: "directory index on top of broad entry",
			files: map[string]string{
				"index.yml":        "{things: {widget: {size: 1.1}}}",
				"things/index.yml": "{widget: {alias: W}}",
			},
			want: ir.NewSequence(thing("widget", "W", 1.1)),
		},
		{
			name: "explicit sequence keyed by identifier",
			files: map[string]string{
				"index.yml":  "{things: {widget: {size: 1.1}}}",
				"things.yml": "[{name: widget, alias: W}, {name: dongle, size: 2.2}]",
			},
			want: ir.NewSequence(
				thing("dongle", "dongle", 2.2),
				thing("widget", "W", 1.1),
			),
		},
		{
			name: "broad entries without a sibling survive",
			files: map[string]string{
				"index.yml":         "{things: {widget: {size: 1.1}, gizmo: {size: 3.3}}}",
				"things/widget.yml": "{size: 5}",
			},
			want: ir.NewSequence(
				thing("gizmo", "gizmo", 3.3),
				thing("widget", "widget", 5),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.files)

			got, err := resolve(t, e, []string{"things"}, shape.List{Inner: thingRecord(shape.RoleIdentifier)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyBy(t *testing.T) {
	rec := thingRecord(shape.RoleIdentifier)
	widget := ir.NewMapping(ir.O("name", ir.String("widget")), ir.O("size", ir.Number(1)))

	tests := []struct {
		name string
		in   ir.Value
		want ir.Value
	}{
		{
			name: "keys by identifier",
			in:   ir.NewSequence(widget),
			want: ir.NewMapping(ir.O("widget", widget)),
		},
		{
			name: "numeric identifiers",
			in:   ir.NewSequence(ir.NewMapping(ir.O("name", ir.Number(7)))),
			want: ir.NewMapping(ir.O("7", ir.NewMapping(ir.O("name", ir.Number(7))))),
		},
		{
			name: "duplicates merge in order",
			in: ir.NewSequence(widget, ir.NewMapping(
				ir.O("name", ir.String("widget")),
				ir.O("size", ir.Number(2)),
			)),
			want: ir.NewMapping(ir.O("widget", ir.NewMapping(
				ir.O("name", ir.String("widget")),
				ir.O("size", ir.Number(2)),
			))),
		},
		{
			name: "element without identifier",
			in:   ir.NewSequence(widget, ir.NewMapping(ir.O("size", ir.Number(2)))),
			want: ir.NewSequence(widget, ir.NewMapping(ir.O("size", ir.Number(2)))),
		},
		{
			name: "scalar element",
			in:   ir.NewSequence(ir.String("widget")),
			want: ir.NewSequence(ir.String("widget")),
		},
		{
			name: "mapping untouched",
			in:   ir.NewMapping(ir.O("widget", ir.Null{})),
			want: ir.NewMapping(ir.O("widget", ir.Null{})),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keyBy(tt.in, rec))
		})
	}
}

func TestMappingInUnkeyedListFails(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"things/index.yml": "{widget: {size: 1.1}}",
	})

	_, err := resolve(t, e, []string{"things"}, shape.List{Inner: thingRecord(shape.RoleFilename)})
	require.Error(t, err)
	assert.Equal(t, ir.ErrCodeIncompatibleMerge, ir.CodeOf(err))
}

func TestExplicitSequenceWinsOverSiblings(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"nums/index.yml": "[7, 8]",
		"nums/a.yml":     "1",
	})

	got, err := resolve(t, e, []string{"nums"}, shape.List{Inner: intShape})
	require.NoError(t, err)
	assert.Equal(t, ir.NewSequence(ir.Number(7), ir.Number(8)), got)
}

func TestSequencesConcatenateAcrossLevels(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"index.yml":  "{nums: [1]}",
		"nums.yml":   "[2]",
		"nums/a.yml": "3",
	})

	got, err := resolve(t, e, []string{"nums"}, shape.List{Inner: intShape})
	require.NoError(t, err)
	assert.Equal(t, ir.NewSequence(ir.Number(1), ir.Number(2), ir.Number(3)), got)
}

func TestDerivedValuesAreTyped(t *testing.T) {
	rec := &shape.Record{
		Name: "Item",
		Fields: []shape.Field{
			{Name: "id", Shape: intShape, Directive: derive(shape.RoleIdentifier)},
			{Name: "label", Shape: stringShape},
		},
	}
	e := newTestEngine(t, map[string]string{
		"items/1.yml": "{label: one}",
		"items/2.yml": "{label: two}",
		"items/x.yml": "{label: bad}",
	})

	got, err := resolve(t, e, []string{"items"}, shape.List{Inner: rec})
	require.NoError(t, err)
	assert.Equal(t, ir.NewSequence(
		ir.NewMapping(ir.O("id", ir.Number(1)), ir.O("label", ir.String("one"))),
		ir.NewMapping(ir.O("id", ir.Number(2)), ir.O("label", ir.String("two"))),
	), got, "x is not an Int and is dropped")
}

func TestDerivedNamesAreNFC(t *testing.T) {
	rec := &shape.Record{
		Name:   "Cafe",
		Fields: []shape.Field{{Name: "name", Shape: stringShape, Directive: derive(shape.RoleFilename)}},
	}
	e := newTestEngine(t, map[string]string{
		"cafes/cafe\u0301.yml": "",
	})

	got, err := resolve(t, e, []string{"cafes"}, shape.List{Inner: rec})
	require.NoError(t, err)
	assert.Equal(t, ir.NewSequence(ir.NewMapping(ir.O("name", ir.String("caf\u00e9")))), got)
}

func TestBrokenElementIsDropped(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"things/widget.yml": "{size: [",
		"things/dongle.yml": "{size: 2.2}",
		"things/gadget.yml": "{size: big}",
	})

	got, err := resolve(t, e, []string{"things"}, shape.List{Inner: thingRecord(shape.RoleFilename)})
	require.NoError(t, err)
	assert.Equal(t, ir.NewSequence(thing("dongle", "dongle", 2.2)), got)
}

func TestIncompatibleElementIsDropped(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"things/widget.yml": "just a string",
		"things/dongle.yml": "{size: 2.2}",
	})

	got, err := resolve(t, e, []string{"things"}, shape.List{Inner: thingRecord(shape.RoleFilename)})
	require.NoError(t, err)
	assert.Equal(t, ir.NewSequence(thing("dongle", "dongle", 2.2)), got)
}

func TestMissingListIsEmpty(t *testing.T) {
	e := newTestEngine(t, nil)

	got, err := resolve(t, e, []string{"things"}, shape.List{Inner: intShape})
	require.NoError(t, err)
	assert.Equal(t, ir.Sequence{}, got)
}

func TestNestedListOfLists(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"grid/a/x.yml": "1",
		"grid/a/y.yml": "2",
		"grid/b.yml":   "[3]",
	})

	got, err := resolve(t, e, []string{"grid"}, shape.List{Inner: shape.List{Inner: intShape}})
	require.NoError(t, err)
	assert.Equal(t, ir.NewSequence(
		ir.NewSequence(ir.Number(1), ir.Number(2)),
		ir.NewSequence(ir.Number(3)),
	), got)
}

func TestSeedValue(t *testing.T) {
	tests := []struct {
		shape shape.Shape
		name  string
		want  ir.Value
	}{
		{intShape, "42", ir.Number(42)},
		{shape.Optional{Inner: floatShape}, "1.5", ir.Number(1.5)},
		{floatShape, "NaN", ir.String("NaN")},
		{shape.Scalar{Kind: shape.Boolean}, "true", ir.Bool(true)},
		{shape.Scalar{Kind: shape.Boolean}, "yes", ir.String("yes")},
		{shape.Scalar{Kind: shape.ID}, "007", ir.String("007")},
		{stringShape, "widget", ir.String("widget")},
	}

	for _, tt := range tests {
		t.Run(tt.shape.String()+"/"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, seedValue(tt.shape, tt.name))
		})
	}
}
