package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/filepond/internal/flagx"
)

var configFlags = flagx.Spec{
	Flags:     []string{"-d", "-s", "-j", "-m", "-t", "-l", "-n", "-v", "-u", "-p", "-b", "-g", "-e", "-f"},
	BoolFlags: []string{"-o", "-x"},
}

// CommandArgs drops the configuration flags (including -c/-config) from
// args, leaving what the command tree should parse.
func CommandArgs(args []string) []string {
	spec := configFlags
	spec.Flags = append([]string{"-c", "-config"}, spec.Flags...)
	_, rest := spec.Split(args)
	return rest
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-s string   reference token secret
//	-j string   JWT HMAC secret
//	-m string   upload table
//	-t string   temporary disk name
//	-l string   local disk root
//	-o bool     ownership-aware lookups
//	-x bool     soft delete
//	-n int      upload expiration, minutes
//	-v string   log level
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-f string   S3 key prefix
//
// Bool flags take their value joined with '=' (-o=false). Expiration is
// only replaced when -n is given, so a sub-minute value from the JSON file
// survives.
func parseFlags(config *Config) {
	args := configFlags.Filter(os.Args[1:])

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.JWTSecret, "j", config.JWTSecret, "JWT secret")
	fs.StringVar(&config.Model, "m", config.Model, "upload table")
	fs.StringVar(&config.TempDisk, "t", config.TempDisk, "temporary disk")
	fs.StringVar(&config.LocalRoot, "l", config.LocalRoot, "local disk root")
	fs.BoolVar(&config.OwnershipAware, "o", config.OwnershipAware, "ownership-aware lookups")
	fs.BoolVar(&config.SoftDelete, "x", config.SoftDelete, "soft delete")

	expiration := fs.Int("n", int(config.Expiration.Minutes()), "upload expiration (in minutes)")

	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3Prefix, "f", config.S3Prefix, "S3 key prefix")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "n" {
			config.Expiration = time.Duration(*expiration) * time.Minute
		}
	})
}
