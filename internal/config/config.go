package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/tictactoe-mvc/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-mvc/internal/game"
)

const (
	UITerminal = "terminal"
	UIWeb      = "web"
)

// configFile is searched for in the XDG config directories.
const configFile = "tictactoe/config.yml"

const defaultBoardSize = 3

type Config struct {
	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	// BoardSize is read as a number so that 2.5 is rejected instead of truncated.
	// It has no env-default: cleanenv would replace an explicit 0 with it.
	BoardSize      float64   `yaml:"board-size" env:"BOARD_SIZE"`
	UI             string    `yaml:"ui" env:"UI" env-default:"terminal"`
	HTTPPort       string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	OriginPatterns []string  `yaml:"origin-patterns" env:"ORIGIN_PATTERNS" env-separator:","`
	Terminal       Terminal  `yaml:"terminal"`
	Telemetry      Telemetry `yaml:"telemetry"`

	size int
}

type Terminal struct {
	SymbolX string        `yaml:"symbol-x" env-default:"X"`
	SymbolO string        `yaml:"symbol-o" env-default:"O"`
	Empty   string        `yaml:"empty" env-default:"·"`
	Cursor  string        `yaml:"cursor" env-default:"_"`
	Locale  string        `yaml:"locale" env:"LOCALE" env-default:"en"`
	LogFile string        `yaml:"log-file" env:"LOG_FILE"`
	Refresh time.Duration `yaml:"refresh" env-default:"1s"`
}

type Telemetry struct {
	Endpoint    string `yaml:"endpoint" env:"OTEL_ENDPOINT"`
	ServiceName string `yaml:"service-name" env-default:"tictactoe"`
}

// Locate returns the first config file found in the XDG config directories or
// the working directory. An empty path means configuration comes from env only.
func Locate() string {
	if path, err := xdg.SearchConfigFile(configFile); err == nil {
		return path
	}

	baseDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	path := filepath.Join(baseDir, "./config.yml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}

	return path
}

// Load - reads path (or only the environment when path is empty) and validates the result.
func Load(path string) (*Config, error) {
	config := &Config{BoardSize: defaultBoardSize}

	if path == "" {
		if err := cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read config from env: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// MustLoad - load all configurations, panics when they are unusable.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Size is the validated board size.
func (that *Config) Size() int {
	return that.size
}

func (that *Config) validate() error {
	size, err := game.CheckSize(that.BoardSize)
	if err != nil {
		return fmt.Errorf("invalid board-size: %w", err)
	}
	that.size = size

	switch that.UI {
	case UITerminal, UIWeb:
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownUIMode, that.UI)
	}

	if that.Terminal.Refresh <= 0 {
		return errors.New("terminal refresh must be positive")
	}

	return nil
}
