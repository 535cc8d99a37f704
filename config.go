package vkgrid

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

type RenderConfig struct {
	Debug      bool      `mapstructure:"debug"`
	ClearColor []float32 `mapstructure:"clear_color"`
	ShaderDir  string    `mapstructure:"shader_dir"`

	// DeviceLocalVertices stages tile quads into device local memory instead of keeping
	// them host visible.
	DeviceLocalVertices bool `mapstructure:"device_local_vertices"`
}

type GameConfig struct {
	TickRate  float64 `mapstructure:"tick_rate"`
	GridSize  int     `mapstructure:"grid_size"`
	TileSize  int     `mapstructure:"tile_size"`
	TileInset int     `mapstructure:"tile_inset"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Config is the full set of tunables for a grid game window.
type Config struct {
	Window  WindowConfig  `mapstructure:"window"`
	Render  RenderConfig  `mapstructure:"render"`
	Game    GameConfig    `mapstructure:"game"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// EnvPrefix prefixes environment overrides, window.width is read from VKGRID_WINDOW_WIDTH.
const EnvPrefix = "VKGRID"

func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  800,
			Height: 800,
			Title:  "Vulkan Snake",
		},
		Render: RenderConfig{
			Debug:      false,
			ClearColor: []float32{0, 0, 0, 1},
			ShaderDir:  "shaders",

			DeviceLocalVertices: true,
		},
		Game: GameConfig{
			TickRate:  10,
			GridSize:  10,
			TileSize:  80,
			TileInset: 4,
		},
		Logging: LoggingConfig{
			Level: logrus.InfoLevel.String(),
		},
	}
}

// SetDefaults registers every default value with v, so keys resolve even when no config
// file is present.
func SetDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("window.width", def.Window.Width)
	v.SetDefault("window.height", def.Window.Height)
	v.SetDefault("window.title", def.Window.Title)
	v.SetDefault("render.debug", def.Render.Debug)
	v.SetDefault("render.clear_color", def.Render.ClearColor)
	v.SetDefault("render.shader_dir", def.Render.ShaderDir)
	v.SetDefault("render.device_local_vertices", def.Render.DeviceLocalVertices)
	v.SetDefault("game.tick_rate", def.Game.TickRate)
	v.SetDefault("game.grid_size", def.Game.GridSize)
	v.SetDefault("game.tile_size", def.Game.TileSize)
	v.SetDefault("game.tile_inset", def.Game.TileInset)
	v.SetDefault("logging.level", def.Logging.Level)
}

// LoadConfig resolves the configuration from defaults, the optional file at path and
// environment variables, in increasing order of precedence, and validates the result.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the values describe a drawable board.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return errors.Newf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	case len(c.Render.ClearColor) != 4:
		return errors.Newf("clear color needs 4 components, got %d", len(c.Render.ClearColor))
	case c.Game.TickRate <= 0:
		return errors.Newf("tick rate %v must be positive", c.Game.TickRate)
	case c.Game.GridSize <= 0 || c.Game.GridSize > 127:
		return errors.Newf("grid size %d must be between 1 and 127", c.Game.GridSize)
	case c.Game.TileSize <= 0:
		return errors.Newf("tile size %d must be positive", c.Game.TileSize)
	case c.Game.TileInset < 0 || 2*c.Game.TileInset >= c.Game.TileSize:
		return errors.Newf("tile inset %d does not fit a %d pixel tile", c.Game.TileInset, c.Game.TileSize)
	case c.Game.GridSize*c.Game.TileSize > c.Window.Width || c.Game.GridSize*c.Game.TileSize > c.Window.Height:
		return errors.Newf("%d tiles of %d pixels do not fit a %dx%d window",
			c.Game.GridSize, c.Game.TileSize, c.Window.Width, c.Window.Height)
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return errors.Wrap(err, "logging level")
	}
	return nil
}

// ClearColor4 returns the clear color as a fixed size array.
func (c *Config) ClearColor4() [4]float32 {
	var out [4]float32
	copy(out[:], c.Render.ClearColor)
	return out
}
