package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCfg = `## Settings file was created by plugin Example Mod 1.2.3
## Plugin GUID: com.example.mod

[General]

## Whether the feature is on
# Setting type: Boolean
# Default value: true
Enabled = true

## How many times to repeat
# Setting type: Int32
# Default value: 1
# Acceptable value range: From 0 to 10
Repeats = 3

[Orphan]

SomeOldKey = leftover
`

func TestParseBepInExBasics(t *testing.T) {
	t.Parallel()

	f, err := ParseBepInEx([]byte(sampleCfg))
	require.NoError(t, err)

	assert.Equal(t, "Example Mod", f.PluginName)
	assert.Equal(t, "1.2.3", f.PluginVersion)
	assert.Equal(t, "com.example.mod", f.PluginGUID)
	require.Len(t, f.Sections, 2)

	e, ok := f.EntryByName("General", "Repeats")
	require.True(t, ok)
	assert.Equal(t, "3", e.Value)
	assert.Equal(t, "0", e.RangeMin)
	assert.Equal(t, "10", e.RangeMax)
	assert.False(t, e.Orphaned)

	orphan, ok := f.EntryByName("Orphan", "SomeOldKey")
	require.True(t, ok)
	assert.True(t, orphan.Orphaned)
}

func TestBepInExSetAndReset(t *testing.T) {
	t.Parallel()

	f, err := ParseBepInEx([]byte(sampleCfg))
	require.NoError(t, err)

	require.NoError(t, f.Set("General", "Repeats", "7"))
	e, _ := f.EntryByName("General", "Repeats")
	assert.Equal(t, "7", e.Value)

	require.NoError(t, f.Reset("General", "Repeats"))
	e, _ = f.EntryByName("General", "Repeats")
	assert.Equal(t, "1", e.Value)

	err = f.Set("Orphan", "SomeOldKey", "x")
	assert.Error(t, err)
}

func TestBepInExSerializeRoundTrip(t *testing.T) {
	t.Parallel()

	f, err := ParseBepInEx([]byte(sampleCfg))
	require.NoError(t, err)

	out := f.Serialize()
	reparsed, err := ParseBepInEx(out)
	require.NoError(t, err)

	assert.Equal(t, f.PluginName, reparsed.PluginName)
	assert.Equal(t, f.PluginGUID, reparsed.PluginGUID)
	require.Len(t, reparsed.Sections, len(f.Sections))

	for si, s := range f.Sections {
		require.Len(t, reparsed.Sections[si].Entries, len(s.Entries))
		for ei, e := range s.Entries {
			assert.Equal(t, e.Name, reparsed.Sections[si].Entries[ei].Name)
			assert.Equal(t, e.Value, reparsed.Sections[si].Entries[ei].Value)
			assert.Equal(t, e.Orphaned, reparsed.Sections[si].Entries[ei].Orphaned)
		}
	}
}

func TestParseNumericAcceptsCommaDecimal(t *testing.T) {
	t.Parallel()

	v, err := ParseNumeric("3,14")
	require.NoError(t, err)
	assert.InDelta(t, 3.14, v, 0.0001)
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"A", "B"}, ParseFlags("A, B"))
}

func TestStripBOM(t *testing.T) {
	t.Parallel()

	withBOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte(sampleCfg)...)
	f, err := ParseBepInEx(withBOM)
	require.NoError(t, err)
	assert.Equal(t, "Example Mod", f.PluginName)
}

const enumeratedCfg = `## Settings file was created by plugin Example Mod 1.2.3
## Plugin GUID: com.example.mod

[Text]

## A message shown on two lines
# Setting type: String
# Default value: Hello\nWorld
Greeting = First\nSecond

[Choices]

## Which difficulty to use
# Setting type: Difficulty
# Default value: Normal
# Acceptable values: Easy, Normal, Hard
Mode = Hard

## Which layers to draw
# Setting type: Layers
# Default value: Background
# Acceptable values: Background, Foreground, Overlay
# Multiple values can be set at the same time by separating them with , 
DrawLayers = Background, Overlay
`

func TestParseBepInExUnescapesStringValues(t *testing.T) {
	t.Parallel()

	f, err := ParseBepInEx([]byte(enumeratedCfg))
	require.NoError(t, err)

	e, ok := f.EntryByName("Text", "Greeting")
	require.True(t, ok)
	assert.Equal(t, "First\nSecond", e.Value)
	assert.Equal(t, "Hello\nWorld", e.Default)

	out := string(f.Serialize())
	assert.Contains(t, out, `Greeting = First\nSecond`)
	assert.Contains(t, out, `# Default value: Hello\nWorld`)
}

func TestParseBepInExConvertsEnumToIndex(t *testing.T) {
	t.Parallel()

	f, err := ParseBepInEx([]byte(enumeratedCfg))
	require.NoError(t, err)

	e, ok := f.EntryByName("Choices", "Mode")
	require.True(t, ok)
	assert.False(t, e.IsFlags)
	assert.Equal(t, "2", e.Value)
	assert.Equal(t, "1", e.Default)

	out := string(f.Serialize())
	assert.Contains(t, out, "Mode = Hard")
	assert.Contains(t, out, "# Default value: Normal")
}

func TestParseBepInExConvertsFlagsToIndices(t *testing.T) {
	t.Parallel()

	f, err := ParseBepInEx([]byte(enumeratedCfg))
	require.NoError(t, err)

	e, ok := f.EntryByName("Choices", "DrawLayers")
	require.True(t, ok)
	assert.True(t, e.IsFlags)
	assert.Equal(t, "0, 2", e.Value)
	assert.Equal(t, "0", e.Default)

	out := string(f.Serialize())
	assert.Contains(t, out, "DrawLayers = Background, Overlay")
	assert.Contains(t, out, "# Multiple values can be set at the same time by separating them with , ")
}

func TestBepInExEnumeratedRoundTrip(t *testing.T) {
	t.Parallel()

	f, err := ParseBepInEx([]byte(enumeratedCfg))
	require.NoError(t, err)

	reparsed, err := ParseBepInEx(f.Serialize())
	require.NoError(t, err)
	assert.Equal(t, f, reparsed)
}
