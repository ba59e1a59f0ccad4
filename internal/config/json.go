package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/filepond/internal/flagx"
	"github.com/dmitrijs2005/filepond/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Pointer
// fields distinguish "absent" from a false/empty value, so the file only
// overrides what it names.
type JsonConfig struct {
	DatabaseDSN    *string         `json:"database_dsn"`
	SecretKey      *string         `json:"secret_key"`
	JWTSecret      *string         `json:"jwt_secret"`
	Model          *string         `json:"model"`
	TempDisk       *string         `json:"temp_disk"`
	LocalRoot      *string         `json:"local_root"`
	OwnershipAware *bool           `json:"ownership_aware"`
	SoftDelete     *bool           `json:"soft_delete"`
	Expiration     *timex.Duration `json:"expiration"`
	LogLevel       *string         `json:"log_level"`
	S3RootUser     *string         `json:"s3_root_user"`
	S3RootPassword *string         `json:"s3_root_password"`
	S3Bucket       *string         `json:"s3_bucket"`
	S3Region       *string         `json:"s3_region"`
	S3BaseEndpoint *string         `json:"s3_base_endpoint"`
	S3Prefix       *string         `json:"s3_prefix"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// parseJson overlays values from the JSON file named by -c or -config.
// Without either flag nothing is loaded. An unreadable file or invalid
// JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

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

	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	set(&config.JWTSecret, c.JWTSecret)
	set(&config.Model, c.Model)
	set(&config.TempDisk, c.TempDisk)
	set(&config.LocalRoot, c.LocalRoot)
	set(&config.OwnershipAware, c.OwnershipAware)
	set(&config.SoftDelete, c.SoftDelete)
	if c.Expiration != nil {
		config.Expiration = c.Expiration.Duration
	}
	set(&config.LogLevel, c.LogLevel)
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	set(&config.S3Prefix, c.S3Prefix)
}
