package exportpkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validArgs() PublishArgs {
	return PublishArgs{
		Name:        "MyPack",
		Author:      "Alice",
		Description: "A pack",
		Version:     "1.0.0",
		Readme:      "# MyPack",
	}
}

func TestPublishArgsValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validArgs().Validate())

	a := validArgs()
	a.Name = ""
	assert.Error(t, a.Validate())

	a = validArgs()
	a.Description = strings.Repeat("x", 251)
	assert.Error(t, a.Validate())

	a = validArgs()
	a.Readme = ""
	assert.Error(t, a.Validate())

	a = validArgs()
	a.Version = "1.0"
	assert.Error(t, a.Validate())

	a = validArgs()
	a.Website = "not a url"
	assert.Error(t, a.Validate())

	a = validArgs()
	a.Website = "https://example.com/pack"
	assert.NoError(t, a.Validate())
}

func TestWithModpacksCategoryIsIdempotent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"modpacks"}, withModpacksCategory(nil))
	assert.Equal(t, []string{"mods", "modpacks"}, withModpacksCategory([]string{"mods"}))
	assert.Equal(t, []string{"modpacks", "mods"}, withModpacksCategory([]string{"modpacks", "mods"}))
}

func TestMatchesInclude(t *testing.T) {
	t.Parallel()

	assert.True(t, matchesInclude("anything/at/all.cfg", nil))
	assert.True(t, matchesInclude("BepInEx/config/mod.cfg", []string{"BepInEx/config/**"}))
	assert.False(t, matchesInclude("BepInEx/patchers/mod.cfg", []string{"BepInEx/config/**"}))
	assert.True(t, matchesInclude("top.cfg", []string{"*.txt", "*.cfg"}))
}

func TestExtractLatestChangelogSection(t *testing.T) {
	t.Parallel()

	changelog := "## 1.1.0\n\n- added things\n- fixed things\n\n## 1.0.0\n\n- initial release\n"
	got := ExtractLatestChangelogSection(changelog)
	assert.Equal(t, "- added things\n- fixed things", got)

	assert.Equal(t, "", ExtractLatestChangelogSection("no headings here"))
}
