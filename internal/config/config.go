package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/vancomm/minefield/internal/mines"
)

type Config struct {
	App       App       `yaml:"app"`
	Game      Game      `yaml:"game"`
	Store     Store     `yaml:"store"`
	Database  Database  `yaml:"database"`
	Token     Token     `yaml:"token"`
	WebSocket WebSocket `yaml:"websocket"`
}

type App struct {
	Addr        string `yaml:"addr" env:"APP_ADDR" env-default:":8080"`
	BasePath    string `yaml:"base-path" env:"APP_BASE_PATH"`
	Development bool   `yaml:"development" env:"DEVELOPMENT" env-default:"false"`
	LogLevel    string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
}

// Game holds the board every new game gets unless the request asks for
// something else.
type Game struct {
	Width     int `yaml:"width" env:"GAME_WIDTH" env-default:"9"`
	Height    int `yaml:"height" env:"GAME_HEIGHT" env-default:"9"`
	MineCount int `yaml:"mine-count" env:"GAME_MINE_COUNT" env-default:"10"`
	// MaxCells bounds width*height of a requested board.
	MaxCells int `yaml:"max-cells" env:"GAME_MAX_CELLS" env-default:"10000"`
}

func (g Game) Params() mines.Params {
	return mines.Params{Width: g.Width, Height: g.Height, MineCount: g.MineCount}
}

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Store struct {
	Kind          string        `yaml:"kind" env:"STORE" env-default:"memory"`
	TTL           time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
	SweepInterval time.Duration `yaml:"sweep-interval" env:"SESSION_SWEEP_INTERVAL" env-default:"1m"`
	RedisAddr     string        `yaml:"redis-addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string        `yaml:"redis-password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis-db" env:"REDIS_DB" env-default:"0"`
}

type Token struct {
	Secret     string        `yaml:"secret" env:"JWT_SECRET"`
	SecretFile string        `yaml:"secret-file" env:"JWT_SECRET_FILE"`
	Lifetime   time.Duration `yaml:"lifetime" env:"JWT_TOKEN_LIFETIME" env-default:"24h"`
}

type WebSocket struct {
	AllowedOrigins []string `yaml:"allowed-origins" env:"WS_ALLOWED_ORIGINS" env-separator:","`
}

// Load reads the configuration from the YAML file at path, if path is not
// empty, and then from the environment.
func Load(path string) (*Config, error) {
	var cfg Config

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if err := cfg.Database.LoadPassword(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if err := c.Game.Params().Validate(); err != nil {
		return fmt.Errorf("invalid default game: %w", err)
	}
	if c.Game.MaxCells < c.Game.Params().Size() {
		return fmt.Errorf(
			"max cells %d is smaller than the default %dx%d board",
			c.Game.MaxCells, c.Game.Width, c.Game.Height,
		)
	}
	switch c.Store.Kind {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown store kind %q (want %q or %q)", c.Store.Kind, StoreMemory, StoreRedis)
	}
	return nil
}

func Usage(header string) string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, &header)
	if err != nil {
		return header
	}
	return text
}
