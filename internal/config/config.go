package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Workbook  WorkbookConfig  `yaml:"workbook" mapstructure:"workbook"`
	Reference ReferenceConfig `yaml:"reference" mapstructure:"reference"`
	Backfill  BackfillConfig  `yaml:"backfill" mapstructure:"backfill"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects and configures the inventory database.
type StoreConfig struct {
	Driver      string      `yaml:"driver" mapstructure:"driver"` // sqlite or postgres
	DatabaseURL string      `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32       `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32       `yaml:"min_conns" mapstructure:"min_conns"`
	Retry       RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig bounds retries of transient store errors.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// SheetConfig locates one sheet of the laboratory workbook.
type SheetConfig struct {
	Name     string `yaml:"name" mapstructure:"name"`
	SkipRows int    `yaml:"skip_rows" mapstructure:"skip_rows"`
}

// WorkbookConfig names the sheets of the raw laboratory workbook.
type WorkbookConfig struct {
	Chemicals   SheetConfig `yaml:"chemicals" mapstructure:"chemicals"`
	Budget      SheetConfig `yaml:"budget" mapstructure:"budget"`
	Consumables SheetConfig `yaml:"consumables" mapstructure:"consumables"`
}

// ReferenceConfig configures the chemical knowledge base.
type ReferenceConfig struct {
	Path     string `yaml:"path" mapstructure:"path"` // empty uses the embedded base
	TieBreak string `yaml:"tie_break" mapstructure:"tie_break"`
}

// BackfillConfig tunes the backfill runner.
type BackfillConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LABINV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "inventory.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("store.retry.max_attempts", 3)
	v.SetDefault("store.retry.initial_backoff_ms", 200)
	v.SetDefault("store.retry.max_backoff_ms", 5000)
	v.SetDefault("workbook.chemicals.name", "3_Chemicals&Reagents")
	v.SetDefault("workbook.chemicals.skip_rows", 2)
	v.SetDefault("workbook.budget.name", "1_Overall Budget ")
	v.SetDefault("workbook.budget.skip_rows", 11)
	v.SetDefault("workbook.consumables.name", "2_Consumables")
	v.SetDefault("workbook.consumables.skip_rows", 2)
	v.SetDefault("reference.path", "")
	v.SetDefault("reference.tie_break", "longest")
	v.SetDefault("backfill.concurrency", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	if c.Store.Retry.MaxAttempts < 0 || c.Store.Retry.MaxAttempts > 10 {
		errs = append(errs, "store.retry.max_attempts must be between 0 and 10")
	}

	switch mode {
	case "organize", "import", "imports", "migrate", "lookup":
	case "backfill":
		if c.Backfill.Concurrency < 1 || c.Backfill.Concurrency > 64 {
			errs = append(errs, "backfill.concurrency must be between 1 and 64")
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch strings.ToLower(c.Reference.TieBreak) {
	case "", "longest", "declared":
	default:
		errs = append(errs, "reference.tie_break must be longest or declared")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
