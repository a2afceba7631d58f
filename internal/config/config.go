package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bidlevel/internal/engine"
)

// Config is the YAML server + engine configuration. Every engine threshold
// has a default, so an empty file (or no file) yields a working setup.
type Config struct {
	ServerAddress string `yaml:"server_address"`
	PostgresConn  string `yaml:"postgres_conn"`
	MigrationsDir string `yaml:"migrations_dir"`

	OutlierStdDevs   float64 `yaml:"outlier_std_devs"`
	RiskHighOutliers int     `yaml:"risk_high_outliers"`
	RiskHighCoV      float64 `yaml:"risk_high_cov"`
	RiskMediumCoV    float64 `yaml:"risk_medium_cov"`
	RankPriceWeight  float64 `yaml:"rank_price_weight"`
	JournalLimit     int     `yaml:"journal_limit"`
}

// Load reads the config file if it exists and applies defaults and env
// overrides. POSTGRES_CONN and SERVER_ADDRESS always win over the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if v := os.Getenv("POSTGRES_CONN"); v != "" {
		cfg.PostgresConn = v
	}
	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		cfg.ServerAddress = v
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := engine.DefaultConfig()
	if c.ServerAddress == "" {
		c.ServerAddress = "0.0.0.0:8080"
	}
	if c.MigrationsDir == "" {
		c.MigrationsDir = "./migrations"
	}
	if c.OutlierStdDevs == 0 {
		c.OutlierStdDevs = def.OutlierStdDevs
	}
	if c.RiskHighOutliers == 0 {
		c.RiskHighOutliers = def.RiskHighOutliers
	}
	if c.RiskHighCoV == 0 {
		c.RiskHighCoV = def.RiskHighCoV
	}
	if c.RiskMediumCoV == 0 {
		c.RiskMediumCoV = def.RiskMediumCoV
	}
	if c.RankPriceWeight == 0 {
		c.RankPriceWeight = def.RankPriceWeight
	}
	if c.JournalLimit == 0 {
		c.JournalLimit = def.JournalLimit
	}
}

// Engine maps the file values onto the engine's config.
func (c *Config) Engine() engine.Config {
	return engine.Config{
		OutlierStdDevs:   c.OutlierStdDevs,
		RiskHighOutliers: c.RiskHighOutliers,
		RiskHighCoV:      c.RiskHighCoV,
		RiskMediumCoV:    c.RiskMediumCoV,
		RankPriceWeight:  c.RankPriceWeight,
		JournalLimit:     c.JournalLimit,
	}
}
