package installer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/galeproject/gale/internal/game"
)

func bepinexInstaller() *SubdirInstaller {
	return newSubdir(bepinexRules(game.ModLoader{}), &game.Subdir{Target: "BepInEx/plugins", Mode: game.ModeSeparate, Mutable: true}, false)
}

func TestMapFilePluginsSeparate(t *testing.T) {
	t.Parallel()

	s := bepinexInstaller()
	target, ok := s.mapFile("plugins/MyMod.dll", "Owner-MyMod")
	assert.True(t, ok)
	assert.Equal(t, "BepInEx/plugins/Owner-MyMod/MyMod.dll", target)
}

func TestMapFileNestedPlugins(t *testing.T) {
	t.Parallel()

	s := bepinexInstaller()
	target, ok := s.mapFile("plugins/sub/dir/MyMod.dll", "Owner-MyMod")
	assert.True(t, ok)
	assert.Equal(t, "BepInEx/plugins/Owner-MyMod/sub/dir/MyMod.dll", target)
}

func TestMapFileDefaultFallback(t *testing.T) {
	t.Parallel()

	s := bepinexInstaller()
	target, ok := s.mapFile("MyMod.dll", "Owner-MyMod")
	assert.True(t, ok)
	assert.Equal(t, "BepInEx/plugins/Owner-MyMod/MyMod.dll", target)
}

func TestMapFileIgnoredTopLevel(t *testing.T) {
	t.Parallel()

	s := bepinexInstaller()
	_, ok := s.mapFile("icon.png", "Owner-MyMod")
	assert.False(t, ok)

	_, ok = s.mapFile("README.md", "Owner-MyMod")
	assert.False(t, ok)
}

func TestMapFileConfigNoneMode(t *testing.T) {
	t.Parallel()

	s := bepinexInstaller()
	target, ok := s.mapFile("config/com.example.mymod.cfg", "Owner-MyMod")
	assert.True(t, ok)
	assert.Equal(t, "BepInEx/config/com.example.mymod.cfg", target)
}

func TestMapFileCoreTrackMode(t *testing.T) {
	t.Parallel()

	s := bepinexInstaller()
	target, ok := s.mapFile("core/BepInEx.dll", "Owner-BepInExPack")
	assert.True(t, ok)
	assert.Equal(t, "BepInEx/core/BepInEx.dll", target)
}

func TestStripRedundantBepisPrefix(t *testing.T) {
	t.Parallel()

	rule := &game.Subdir{Name: "plugins", Target: "BepInEx/plugins"}
	got := stripRedundantBepisPrefix("BepInEx/plugins/plugins/Extra.dll", rule)
	assert.Equal(t, "BepInEx/plugins/Extra.dll", got)
}

func TestMelonSeparateFlatten(t *testing.T) {
	t.Parallel()

	s := newSubdir(melonRules(game.ModLoader{}), &game.Subdir{Target: "Mods", Mode: game.ModeSeparateFlatten, Mutable: true}, false)
	target, ok := s.mapFile("Mods/nested/Extra/MyMod.dll", "Owner-MyMod")
	assert.True(t, ok)
	assert.Equal(t, "Mods/Owner-MyMod/MyMod.dll", target)
}
