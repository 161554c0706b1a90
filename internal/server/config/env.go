package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig mirrors Config with OMNIVAULT_* variable names. Pointer fields
// stay nil when the variable is unset so earlier layers are preserved.
type envConfig struct {
	EndpointAddrGRPC             *string           `env:"OMNIVAULT_GRPC_ADDR"`
	StorageDriver                *string           `env:"OMNIVAULT_STORAGE"`
	DatabaseDSN                  *string           `env:"OMNIVAULT_DATABASE_DSN"`
	SecretKey                    *string           `env:"OMNIVAULT_SECRET_KEY"`
	AccessTokenValidityDuration  *time.Duration    `env:"OMNIVAULT_ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration *time.Duration    `env:"OMNIVAULT_REFRESH_TOKEN_TTL"`
	LogLevel                     *string           `env:"OMNIVAULT_LOG_LEVEL"`
	LogFormat                    *string           `env:"OMNIVAULT_LOG_FORMAT"`
	OTelEndpoint                 *string           `env:"OMNIVAULT_OTEL_ENDPOINT"`
	S3AccessKey                  *string           `env:"OMNIVAULT_S3_ACCESS_KEY"`
	S3SecretKey                  *string           `env:"OMNIVAULT_S3_SECRET_KEY"`
	S3Bucket                     *string           `env:"OMNIVAULT_S3_BUCKET"`
	S3Region                     *string           `env:"OMNIVAULT_S3_REGION"`
	S3BaseEndpoint               *string           `env:"OMNIVAULT_S3_ENDPOINT"`
	Prices                       map[string]string `env:"OMNIVAULT_PRICES" envSeparator:"," envKeyValSeparator:":"`
	SignerSeed                   *string           `env:"OMNIVAULT_SIGNER_SEED"`
}

func parseEnv(config *Config) error {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setPtr(&config.EndpointAddrGRPC, e.EndpointAddrGRPC)
	setPtr(&config.StorageDriver, e.StorageDriver)
	setPtr(&config.DatabaseDSN, e.DatabaseDSN)
	setPtr(&config.SecretKey, e.SecretKey)
	setPtr(&config.AccessTokenValidityDuration, e.AccessTokenValidityDuration)
	setPtr(&config.RefreshTokenValidityDuration, e.RefreshTokenValidityDuration)
	setPtr(&config.LogLevel, e.LogLevel)
	setPtr(&config.LogFormat, e.LogFormat)
	setPtr(&config.OTelEndpoint, e.OTelEndpoint)
	setPtr(&config.S3AccessKey, e.S3AccessKey)
	setPtr(&config.S3SecretKey, e.S3SecretKey)
	setPtr(&config.S3Bucket, e.S3Bucket)
	setPtr(&config.S3Region, e.S3Region)
	setPtr(&config.S3BaseEndpoint, e.S3BaseEndpoint)
	if len(e.Prices) > 0 {
		config.Prices = e.Prices
	}
	setPtr(&config.SignerSeed, e.SignerSeed)
	return nil
}

func setPtr[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
