package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGDWeavePreservesTypes(t *testing.T) {
	t.Parallel()

	data := []byte(`{"zebra": true, "alpha": "hi", "count": 3, "ratio": 1.5}`)
	f, err := ParseGDWeave(data)
	require.NoError(t, err)

	v, ok := f.Get("count")
	require.True(t, ok)
	assert.Equal(t, int64(3), v)

	v, ok = f.Get("ratio")
	require.True(t, ok)
	assert.Equal(t, 1.5, v)

	out, err := f.Serialize()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"zebra": true`)
	assert.Contains(t, string(out), `"count": 3`)
}

func TestGDWeaveSetInsertsOrReplaces(t *testing.T) {
	t.Parallel()

	f, err := ParseGDWeave([]byte(`{"a": 1}`))
	require.NoError(t, err)

	f.Set("a", 2)
	f.Set("b", "new")

	va, _ := f.Get("a")
	assert.Equal(t, 2, va)
	vb, _ := f.Get("b")
	assert.Equal(t, "new", vb)
}
