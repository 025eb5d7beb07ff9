package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/confql/internal/ir"
	"github.com/roach88/confql/internal/shape"
)

func TestScalarKinds(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		kind    shape.ScalarKind
		want    ir.Value
		wantErr ir.ErrorCode
	}{
		{"int", "3", shape.Int, ir.Number(3), ""},
		{"int from float", "3.5", shape.Int, nil, ir.ErrCodeTypeMismatch},
		{"int out of range", "4294967296", shape.Int, nil, ir.ErrCodeTypeMismatch},
		{"float from int", "3", shape.Float, ir.Number(3), ""},
		{"float from string", `"3"`, shape.Float, nil, ir.ErrCodeTypeMismatch},
		{"string", "hello", shape.String, ir.String("hello"), ""},
		{"string from number", "12", shape.String, nil, ir.ErrCodeTypeMismatch},
		{"boolean", "true", shape.Boolean, ir.Bool(true), ""},
		{"boolean from string", `"true"`, shape.Boolean, nil, ir.ErrCodeTypeMismatch},
		{"id from string", "abc", shape.ID, ir.String("abc"), ""},
		{"id from number", "42", shape.ID, ir.String("42"), ""},
		{"id from sequence", "[1]", shape.ID, nil, ir.ErrCodeTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, map[string]string{"v.yml": tt.doc})
			got, err := resolve(t, e, []string{"v"}, shape.Scalar{Kind: tt.kind})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, ir.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionalTypeMismatchIsNull(t *testing.T) {
	e := newTestEngine(t, map[string]string{"v.yml": "[1, 2]"})

	got, err := resolve(t, e, []string{"v"}, shape.Optional{Inner: intShape})
	require.NoError(t, err)
	assert.Equal(t, ir.Null{}, got)
}

func TestRecordProjectsDeclaredFields(t *testing.T) {
	rec := &shape.Record{
		Name: "Thing",
		Fields: []shape.Field{
			{Name: "size", Shape: floatShape},
			{Name: "note", Shape: shape.Optional{Inner: stringShape}},
		},
	}
	e := newTestEngine(t, map[string]string{
		"thing.yml": "{size: 1.1, colour: red}",
	})

	got, err := resolve(t, e, []string{"thing"}, rec)
	require.NoError(t, err)
	assert.Equal(t, ir.NewMapping(ir.O("size", ir.Number(1.1)), ir.O("note", ir.Null{})), got)
}

func TestRecordWithMissingRequiredField(t *testing.T) {
	types := objTypes()
	e := newTestEngine(t, map[string]string{
		"index.yml": "{id: 1}",
	})

	_, err := resolve(t, e, nil, types["MyObj"])
	require.Error(t, err)
	assert.True(t, ir.IsDataNotFound(err))

	var ie *ir.Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "name", ie.Path)
}

func TestRecordOfWrongKind(t *testing.T) {
	types := objTypes()
	e := newTestEngine(t, map[string]string{
		"obj.yml": "[1, 2]",
	})

	_, err := resolve(t, e, []string{"obj"}, types["MyObj"])
	require.Error(t, err)
	assert.Equal(t, ir.ErrCodeTypeMismatch, ir.CodeOf(err))
}

func TestRecordFieldIntoScalarFails(t *testing.T) {
	types := objTypes()
	e := newTestEngine(t, map[string]string{
		"obj/index.yml": "just text",
		"obj/id.yml":    "1",
	})

	_, err := resolve(t, e, []string{"obj"}, types["MyObj"])
	require.Error(t, err)
	assert.Equal(t, ir.ErrCodeCannotMergeIntoNonMapping, ir.CodeOf(err))
}

func TestOptionalRecordAbsent(t *testing.T) {
	types := objTypes()
	e := newTestEngine(t, nil)

	got, err := resolve(t, e, []string{"obj"}, shape.Optional{Inner: types["MyObj"]})
	require.NoError(t, err)
	assert.Equal(t, ir.Null{}, got)

	_, err = resolve(t, e, []string{"obj"}, types["MyObj"])
	assert.True(t, ir.IsDataNotFound(err))
}

func TestUnreadableDocumentTolerated(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"index.yml": "{a: {b: 1}}",
		"a.yml":     "{b: [",
	})

	got, err := resolve(t, e, []string{"a", "b"}, intShape)
	require.NoError(t, err)
	assert.Equal(t, ir.Number(1), got)
}

func TestUnreadableDocumentReportedWhenRequired(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"a.yml": "{b: [",
	})

	_, err := resolve(t, e, []string{"a", "b"}, intShape)
	require.Error(t, err)
	assert.Equal(t, ir.ErrCodeParse, ir.CodeOf(err))
	assert.Contains(t, err.Error(), "a.yml")

	got, err := resolve(t, e, []string{"a", "b"}, shape.Optional{Inner: intShape})
	require.NoError(t, err)
	assert.Equal(t, ir.Null{}, got)
}

func TestUnreadableFieldDocumentReported(t *testing.T) {
	types := objTypes()
	e := newTestEngine(t, map[string]string{
		"obj/index.yml": "{id: 1}",
		"obj/name.yml":  "[broken",
	})

	_, err := resolve(t, e, []string{"obj"}, types["MyObj"])
	require.Error(t, err)
	assert.Equal(t, ir.ErrCodeParse, ir.CodeOf(err))
	assert.Contains(t, err.Error(), "name.yml")
}

func TestListElementsFailingCheckAreDropped(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"index.yml": "{nums: [1, two, 3, null]}",
	})

	got, err := resolve(t, e, []string{"nums"}, shape.List{Inner: intShape})
	require.NoError(t, err)
	assert.Equal(t, ir.NewSequence(ir.Number(1), ir.Number(3)), got)

	got, err = resolve(t, e, []string{"nums"}, shape.List{Inner: shape.Optional{Inner: intShape}})
	require.NoError(t, err)
	assert.Equal(t, ir.NewSequence(ir.Number(1), ir.Null{}, ir.Number(3), ir.Null{}), got)
}
