package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashWithDomainNullSeparator(t *testing.T) {
	// "foo" + 0x00 + "bar" differs from "foob" + 0x00 + "ar"
	assert.NotEqual(t, hashWithDomain("foo", []byte("bar")), hashWithDomain("foob", []byte("ar")))
}

func TestHashWithDomainSeparatesDomains(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t, hashWithDomain(DomainValue, data), hashWithDomain("confql/other/v1", data))
	assert.Equal(t, hashWithDomain(DomainValue, data), hashWithDomain(DomainValue, data))
}

func TestHashHexEncoding(t *testing.T) {
	h := hashWithDomain(DomainValue, []byte("x"))
	assert.Len(t, h, 64)
	assert.Regexp(t, `^[0-9a-f]{64}$`, h)
}

func TestHashNestedValues(t *testing.T) {
	a := NewMapping(O("list", NewSequence(NewMapping(O("k", String("v")), O("n", Number(1))))))
	b := NewMapping(O("list", NewSequence(NewMapping(O("n", Number(1)), O("k", String("v"))))))

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	reordered, err := Hash(NewMapping(O("list", NewSequence(Number(1), String("v")))))
	require.NoError(t, err)
	assert.NotEqual(t, ha, reordered)
}

func TestHashErrorHandling(t *testing.T) {
	_, err := Hash(NewMapping(O("bad", Number(math.NaN()))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Hash: failed to marshal")
}
