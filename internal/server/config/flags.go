package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/casegraph/internal/flagx"
)

// flagNames are the flags handled by parseFlags; everything else on the
// command line belongs to the CLI commands.
var flagNames = []string{"-driver", "-d", "-s", "-k", "-t", "-n", "-i", "-u", "-p", "-b", "-g", "-e", "-l", "-m"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-driver string  database driver ("pgx" or "sqlite")
//	-d string       database DSN
//	-s string       JWT HMAC secret key
//	-k string       vault passphrase
//	-t int          owner token validity, minutes
//	-n int          URLScan poll attempts
//	-i int          URLScan poll interval, seconds
//	-u string       S3 root user
//	-p string       S3 root password
//	-b string       S3 bucket name (empty disables the archive)
//	-g string       S3 region
//	-e string       S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string       log level (debug|info|warn|error)
//	-m string       Prometheus textfile receiving enrichment metrics
//
// Provider endpoint overrides are read from the JSON file only.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], flagNames)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver (pgx|sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.VaultPassphrase, "k", config.VaultPassphrase, "vault passphrase")

	tokenValidityDuration := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")
	fs.IntVar(&config.PollAttempts, "n", config.PollAttempts, "URLScan poll attempts")
	pollInterval := fs.Int("i", int(config.PollInterval.Seconds()), "URLScan poll interval (in seconds)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 archive bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&config.MetricsTextfile, "m", config.MetricsTextfile, "metrics textfile path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidityDuration) * time.Minute
	config.PollInterval = time.Duration(*pollInterval) * time.Second
}

// FlagNames lists every process-level flag, including the JSON file flags,
// so command parsers can skip them.
func FlagNames() []string {
	return append(append([]string{}, flagNames...), "-c", "-config")
}
