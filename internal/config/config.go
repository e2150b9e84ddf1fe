package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Log     LogConfig
	Library LibraryConfig
	// TuningPath points at the playback tuning file.
	TuningPath string `envconfig:"SNOWVIZ_TUNING_PATH" default:"./configs/tuning.yaml"`
}

type ServerConfig struct {
	HTTPAddr   string `envconfig:"SNOWVIZ_HTTP_ADDR" default:":8080"`
	StreamAddr string `envconfig:"SNOWVIZ_STREAM_ADDR" default:":8081"`
}

type StorageConfig struct {
	DSN           string `envconfig:"SNOWVIZ_DB_DSN"`
	SQLitePath    string `envconfig:"SNOWVIZ_SQLITE_PATH"`
	MigrationsDir string `envconfig:"SNOWVIZ_MIGRATIONS_DIR" default:"./migrations"`
}

type LogConfig struct {
	Level    string `envconfig:"LOG_LEVEL" default:"info"`
	Encoding string `envconfig:"LOG_ENCODING" default:"json"`
}

type LibraryConfig struct {
	Root string `envconfig:"SNOWVIZ_LIBRARY_ROOT" default:"./plans"`
}

type StorageBackend string

const (
	StoragePostgres StorageBackend = "postgres"
	StorageSQLite   StorageBackend = "sqlite"
	StorageMemory   StorageBackend = "memory"
)

// Backend picks postgres when a DSN is set, then SQLite, then memory.
func (s StorageConfig) Backend() StorageBackend {
	switch {
	case s.DSN != "":
		return StoragePostgres
	case s.SQLitePath != "":
		return StorageSQLite
	default:
		return StorageMemory
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Tuning controls synthesis and playback.
type Tuning struct {
	Substeps            int     `yaml:"substeps"`
	FrameRateHz         int     `yaml:"frame_rate_hz"`
	DefaultSpeed        float64 `yaml:"default_speed"`
	MaxSpeed            float64 `yaml:"max_speed"`
	MaxFramesPerRequest int     `yaml:"max_frames_per_request"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Substeps:            10,
		FrameRateHz:         60,
		DefaultSpeed:        1,
		MaxSpeed:            10,
		MaxFramesPerRequest: 5000,
	}
}

// LoadTuning reads path over the defaults. A missing file yields the
// defaults.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	switch {
	case t.Substeps < 1:
		return fmt.Errorf("substeps must be >= 1, got %d", t.Substeps)
	case t.FrameRateHz < 1:
		return fmt.Errorf("frame_rate_hz must be >= 1, got %d", t.FrameRateHz)
	case t.MaxSpeed <= 0:
		return fmt.Errorf("max_speed must be > 0, got %v", t.MaxSpeed)
	case t.DefaultSpeed <= 0 || t.DefaultSpeed > t.MaxSpeed:
		return fmt.Errorf("default_speed must be in (0, %v], got %v", t.MaxSpeed, t.DefaultSpeed)
	case t.MaxFramesPerRequest < 1:
		return fmt.Errorf("max_frames_per_request must be >= 1, got %d", t.MaxFramesPerRequest)
	}
	return nil
}
