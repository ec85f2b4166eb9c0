package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/casegraph/internal/flagx"
	"github.com/dmitrijs2005/casegraph/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "10s" and integer nanoseconds are accepted.
// Absent keys leave the current value untouched.
type JsonConfig struct {
	DatabaseDriver        string            `json:"database_driver"`
	DatabaseDSN           string            `json:"database_dsn"`
	SecretKey             string            `json:"secret_key"`
	TokenValidityDuration *timex.Duration   `json:"token_validity_duration"`
	VaultPassphrase       string            `json:"vault_passphrase"`
	VaultSalt             string            `json:"vault_salt"`
	ProviderTimeout       *timex.Duration   `json:"provider_timeout"`
	PollAttempts          int               `json:"poll_attempts"`
	PollInterval          *timex.Duration   `json:"poll_interval"`
	ProviderEndpoints     map[string]string `json:"provider_endpoints"`
	S3RootUser            string            `json:"s3_root_user"`
	S3RootPassword        string            `json:"s3_root_password"`
	S3Bucket              string            `json:"s3_bucket"`
	S3Region              string            `json:"s3_region"`
	S3BaseEndpoint        string            `json:"s3_base_endpoint"`
	LogLevel              string            `json:"log_level"`
	MetricsTextfile       string            `json:"metrics_textfile"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag into config. Without either flag nothing is loaded. An
// unreadable or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.TokenValidityDuration, c.TokenValidityDuration)
	setString(&config.VaultPassphrase, c.VaultPassphrase)
	setString(&config.VaultSalt, c.VaultSalt)
	setDuration(&config.ProviderTimeout, c.ProviderTimeout)
	if c.PollAttempts > 0 {
		config.PollAttempts = c.PollAttempts
	}
	setDuration(&config.PollInterval, c.PollInterval)
	if len(c.ProviderEndpoints) > 0 {
		if config.ProviderEndpoints == nil {
			config.ProviderEndpoints = make(map[string]string, len(c.ProviderEndpoints))
		}
		for k, v := range c.ProviderEndpoints {
			config.ProviderEndpoints[k] = v
		}
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.MetricsTextfile, c.MetricsTextfile)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
