package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	DB      DBConfig
	Log     LogConfig
	Ledger  LedgerConfig
	Seed    SeedConfig
	Export  ExportConfig
	Metrics MetricsConfig
	Stats   StatsConfig
}

type DBConfig struct {
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
	File   string `mapstructure:"file"`
}

type LedgerConfig struct {
	// AllowNegative lets OUTBOUND movements drive stock below zero.
	AllowNegative bool `mapstructure:"allow_negative"`
}

type SeedConfig struct {
	Demo bool `mapstructure:"demo"`
}

type ExportConfig struct {
	XLSX string `mapstructure:"xlsx"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

type StatsConfig struct {
	RecentLimit int `mapstructure:"recent_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.path", "data/stockledger.db")
	v.SetDefault("db.busy_timeout", 5*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("ledger.allow_negative", false)
	v.SetDefault("seed.demo", false)
	v.SetDefault("export.xlsx", "")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("stats.recent_limit", 10)
}

// Flags registers the command line overrides on fs.
func Flags(fs *pflag.FlagSet) {
	fs.String("db", "", "path of the SQLite store (db.path)")
	fs.String("log-level", "", "trace|debug|info|warn|error (log.level)")
	fs.String("log-format", "", "console|json (log.format)")
	fs.Bool("seed-demo", false, "insert demo data when the store is empty (seed.demo)")
	fs.Bool("allow-negative", false, "permit outbound movements below zero stock (ledger.allow_negative)")
	fs.String("export", "", "write an xlsx inventory report to this path (export.xlsx)")
	fs.String("metrics-textfile", "", "write prometheus metrics to this file on exit (metrics.textfile)")
}

var flagKeys = map[string]string{
	"db":               "db.path",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"seed-demo":        "seed.demo",
	"allow-negative":   "ledger.allow_negative",
	"export":           "export.xlsx",
	"metrics-textfile": "metrics.textfile",
}

// Load reads defaults, an optional stockledger.{yaml,env} file, STOCKLEDGER_*
// environment variables and, when fs is not nil, changed flags, in increasing
// order of precedence.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("stockledger")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("STOCKLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Stats.RecentLimit <= 0 {
		cfg.Stats.RecentLimit = 10
	}
	return cfg, nil
}
