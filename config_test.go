package vkgrid_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celer/vkgrid"
)

func TestDefaultConfig(t *testing.T) {
	cfg := vkgrid.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 800, cfg.Window.Height)
	assert.Equal(t, "Vulkan Snake", cfg.Window.Title)
	assert.Equal(t, 10, cfg.Game.GridSize)
	assert.Equal(t, 80, cfg.Game.TileSize)
	assert.Equal(t, 4, cfg.Game.TileInset)
	assert.Equal(t, float64(10), cfg.Game.TickRate)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, cfg.ClearColor4())
}

func TestLoadConfigWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := vkgrid.LoadConfig(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, vkgrid.DefaultConfig(), cfg)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snake.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
window:
  title: test board
game:
  grid_size: 5
  tick_rate: 4
logging:
  level: debug
`), 0o600))

	cfg, err := vkgrid.LoadConfig(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "test board", cfg.Window.Title)
	assert.Equal(t, 5, cfg.Game.GridSize)
	assert.Equal(t, float64(4), cfg.Game.TickRate)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 800, cfg.Window.Width, "unset keys keep their defaults")
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("VKGRID_GAME_TILE_SIZE", "40")
	cfg, err := vkgrid.LoadConfig(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Game.TileSize)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := vkgrid.LoadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(c *vkgrid.Config){
		"zero width":       func(c *vkgrid.Config) { c.Window.Width = 0 },
		"short clear":      func(c *vkgrid.Config) { c.Render.ClearColor = []float32{0, 0} },
		"stopped clock":    func(c *vkgrid.Config) { c.Game.TickRate = 0 },
		"empty grid":       func(c *vkgrid.Config) { c.Game.GridSize = 0 },
		"huge grid":        func(c *vkgrid.Config) { c.Game.GridSize = 200 },
		"inset eats tile":  func(c *vkgrid.Config) { c.Game.TileInset = 40 },
		"grid overflows":   func(c *vkgrid.Config) { c.Game.TileSize = 81 },
		"unknown loglevel": func(c *vkgrid.Config) { c.Logging.Level = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := vkgrid.DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
