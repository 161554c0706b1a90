package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/omnivault/internal/flagx"
	"github.com/dmitrijs2005/omnivault/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations accept
// both strings such as "15m" and integer nanoseconds. Absent fields keep the
// value already present in Config.
type JsonConfig struct {
	EndpointAddrGRPC             string            `json:"endpoint_addr_grpc"`
	StorageDriver                string            `json:"storage_driver"`
	DatabaseDSN                  string            `json:"database_dsn"`
	SecretKey                    string            `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration   `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration   `json:"refresh_token_validity_duration"`
	LogLevel                     string            `json:"log_level"`
	LogFormat                    string            `json:"log_format"`
	OTelEndpoint                 string            `json:"otel_endpoint"`
	S3AccessKey                  string            `json:"s3_access_key"`
	S3SecretKey                  string            `json:"s3_secret_key"`
	S3Bucket                     string            `json:"s3_bucket"`
	S3Region                     string            `json:"s3_region"`
	S3BaseEndpoint               string            `json:"s3_base_endpoint"`
	Prices                       map[string]string `json:"prices"`
	SignerSeed                   string            `json:"signer_seed"`
}

// parseJson loads the file named by -c/-config, if any, into config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.StorageDriver, c.StorageDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.OTelEndpoint, c.OTelEndpoint)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if len(c.Prices) > 0 {
		config.Prices = c.Prices
	}
	setString(&config.SignerSeed, c.SignerSeed)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
