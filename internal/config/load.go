package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/zjrosen/sieve/internal/log"
)

// ProjectConfigPath is the config file looked up in the working directory
// and the location a default config is written to.
var ProjectConfigPath = filepath.Join(".sieve", "config.yaml")

// Load reads configuration into v and decodes it. An explicit cfgFile wins;
// otherwise .sieve/config.yaml and then ~/.config/sieve/config.yaml are
// tried. When no file exists a default one is written to
// .sieve/config.yaml. Environment variables prefixed with SIEVE_ override
// file values.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("SIEVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case cfgFile != "":
		v.SetConfigFile(cfgFile)
	case fileExists(ProjectConfigPath):
		v.SetConfigFile(ProjectConfigPath)
	default:
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "sieve"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if writeErr := WriteDefaultConfig(ProjectConfigPath); writeErr == nil {
			v.SetConfigFile(ProjectConfigPath)
			_ = v.ReadInConfig()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	log.Debug(log.CatConfig, "Loaded config", "path", v.ConfigFileUsed(), "filters", len(cfg.SavedFilters))
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("database", d.Database)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_path", d.LogPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("query.timezone", d.Query.Timezone)
	v.SetDefault("query.cache_ttl", d.Query.CacheTTL)
	v.SetDefault("query.current_user", d.Query.CurrentUser)
	v.SetDefault("query.with_current_user_criteria", d.Query.WithCurrentUserCriteria)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
