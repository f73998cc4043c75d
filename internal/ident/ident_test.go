package ident

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersionRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []string{
		"Bob-Foo-1.0.0",
		"some-owner-with-dashes-ModName-2.3.4",
		"A-B-1.0.0-rc1",
	}

	for _, s := range tests {
		s := s
		t.Run(s, func(t *testing.T) {
			t.Parallel()

			v, err := ParseVersion(s)
			require.NoError(t, err)
			assert.Equal(t, s, v.String())
			assert.NotEmpty(t, v.Owner())
			assert.NotEmpty(t, v.Name())
			assert.NotEmpty(t, v.Version())
			assert.Equal(t, v.Owner()+"-"+v.Name(), v.FullName())
		})
	}
}

func TestParseVersionErrors(t *testing.T) {
	t.Parallel()

	tests := []string{
		"",
		"NoSeparators",
		"Only-One",
		"-Foo-1.0.0",
		"Bob--1.0.0",
		"Bob-Foo-",
	}

	for _, s := range tests {
		s := s
		t.Run(s, func(t *testing.T) {
			t.Parallel()
			_, err := ParseVersion(s)
			assert.Error(t, err)
		})
	}
}

func TestVersionPackageDemotion(t *testing.T) {
	t.Parallel()

	v := MustParseVersion("Bob-Foo-1.0.0")
	p := v.Package()

	assert.Equal(t, "Bob-Foo", p.String())
	assert.Equal(t, "Bob", p.Owner())
	assert.Equal(t, "Foo", p.Name())
}

func TestPath(t *testing.T) {
	t.Parallel()

	v := MustParseVersion("Bob-Foo-1.0.0")
	assert.Equal(t, "Bob/Foo/1.0.0", v.Path())
}

func TestSemVer(t *testing.T) {
	t.Parallel()

	v := MustParseVersion("Bob-Foo-1.2.3")
	major, minor, patch, ok := v.SemVer()
	require.True(t, ok)
	assert.Equal(t, 1, major)
	assert.Equal(t, 2, minor)
	assert.Equal(t, 3, patch)

	_, _, _, ok = MustParseVersion("Bob-Foo-notasemver").SemVer()
	assert.False(t, ok)
}

func TestParsePackage(t *testing.T) {
	t.Parallel()

	p, err := ParsePackage("Bob-Foo")
	require.NoError(t, err)
	assert.Equal(t, "Bob", p.Owner())
	assert.Equal(t, "Foo", p.Name())

	_, err = ParsePackage("NoSeparator")
	assert.Error(t, err)
}

func TestWithVersion(t *testing.T) {
	t.Parallel()

	p := PackageIdent{}
	p, err := ParsePackage("Bob-Foo")
	require.NoError(t, err)

	v := p.WithVersion("1.0.0")
	assert.Equal(t, "Bob-Foo-1.0.0", v.String())
}

func TestVersionIdentJSONRoundTrip(t *testing.T) {
	t.Parallel()

	type holder struct {
		Ident VersionIdent `json:"ident"`
	}

	in := holder{Ident: MustParseVersion("Bob-Foo-1.0.0")}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ident": "Bob-Foo-1.0.0"}`, string(data))

	var out holder
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, in.Ident.Equal(out.Ident))
	assert.Equal(t, "Foo", out.Ident.Name())
}
