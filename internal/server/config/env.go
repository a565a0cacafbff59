package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces the environment variables read by parseEnv,
// e.g. PASSVAULT_DATABASE_DSN.
const EnvPrefix = "PASSVAULT"

// parseEnv overlays PASSVAULT_* environment variables onto config.
// Durations use time.ParseDuration syntax ("15m").
func parseEnv(config *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	strs := map[string]*string{
		"endpoint_addr_http":    &config.EndpointAddrHTTP,
		"database_dsn":          &config.DatabaseDSN,
		"secret_key":            &config.SecretKey,
		"encryption_key":        &config.EncryptionKey,
		"encryption_key_source": &config.EncryptionKeySource,
		"logger":                &config.Logger,
		"s3_root_user":          &config.S3RootUser,
		"s3_root_password":      &config.S3RootPassword,
		"s3_bucket":             &config.S3Bucket,
		"s3_region":             &config.S3Region,
		"s3_base_endpoint":      &config.S3BaseEndpoint,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	if v.IsSet("access_token_validity_duration") {
		config.AccessTokenValidityDuration = v.GetDuration("access_token_validity_duration")
	}
	if v.IsSet("revocation_prune_interval") {
		config.RevocationPruneInterval = v.GetDuration("revocation_prune_interval")
	}
}
