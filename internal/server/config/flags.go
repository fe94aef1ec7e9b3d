package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
)

var (
	valuedFlags = []string{"-a", "-m", "-b", "-d", "-u", "-n", "-s", "-t", "-o", "-r", "-l"}
	boolFlags   = []string{"-q"}
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   metrics bind address, empty disables
//	-b string   storage backend: postgres, mongo, memory
//	-d string   PostgreSQL DSN
//	-u string   MongoDB URI
//	-n string   MongoDB database name
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-o int      verification/reset token validity, minutes
//	-r float    credential calls per second per peer, 0 disables throttling
//	-l string   log level
//	-q          enforce the daily limit on feature use
func parseFlags(config *Config, args []string) error {
	// Filter args to include only the flags handled here.
	args = flagx.Filter(args, valuedFlags, boolFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "u", config.MongoURI, "mongo URI")
	fs.StringVar(&config.MongoDatabase, "n", config.MongoDatabase, "mongo database")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	tokenValidity := fs.Int("o", int(config.TokenValidityDuration.Minutes()), "verification and reset token validity (in minutes)")

	fs.Float64Var(&config.AuthRateLimit, "r", config.AuthRateLimit, "credential requests per second per peer")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.EnforceFeatureQuota, "q", config.EnforceFeatureQuota, "enforce daily limit on feature use")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	return nil
}
