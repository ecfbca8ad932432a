package config

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/upeosoft/cms/internal/flagx"
	"github.com/upeosoft/cms/internal/timex"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":5000")
//	-d string   PostgreSQL DSN
//	-s string   token signing secret
//	-t string   default token lifetime ("720h", "30d")
//	-w int      bcrypt work factor
//	-o string   comma-separated CORS origins
//	-l string   log level
//
// Only these flags are picked out of args (see flagx.FilterArgs), so
// -c/-config and anything else on the command line are left alone.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-w", "-o", "-l"})

	fs := flag.NewFlagSet("cms", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	ttl := fs.String("t", config.TokenValidityDuration.String(), "default token lifetime")
	fs.IntVar(&config.BcryptCost, "w", config.BcryptCost, "bcrypt work factor")
	origins := fs.String("o", strings.Join(config.CORSAllowedOrigins, ","), "comma-separated CORS origins")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	d, err := timex.ParseDuration(*ttl)
	if err != nil {
		return fmt.Errorf("flag -t: %w", err)
	}
	config.TokenValidityDuration = d
	config.CORSAllowedOrigins = splitList(*origins)
	return nil
}
