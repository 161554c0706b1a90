package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds runtime settings for vaultctl.
type Config struct {
	// Server is host:port of the omnivault gRPC endpoint.
	Server string `mapstructure:"server"`
	// Timeout bounds every RPC.
	Timeout time.Duration `mapstructure:"timeout"`
	// State is the path of the local SQLite file keeping the session.
	State string `mapstructure:"state"`
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() map[string]any {
	return map[string]any{
		"server":  "127.0.0.1:50051",
		"timeout": 10 * time.Second,
		"state":   defaultStatePath(),
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "vaultctl.db"
	}
	return filepath.Join(dir, "vaultctl", "vaultctl.db")
}

// Load builds a Config from defaults, the YAML file, the environment and
// flags. file may be empty to search the standard locations. A missing
// file is not an error.
func Load(flags *pflag.FlagSet, file string) (*Config, error) {
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName("vaultctl")
	v.SetConfigType("yaml")
	if file != "" {
		v.SetConfigFile(file)
	}
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "vaultctl"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	v.SetEnvPrefix("vaultctl")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range []string{"server", "timeout", "state"} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, err
	}
	return c, nil
}
