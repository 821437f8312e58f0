package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// WithDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are skipped. With no paths it reads ".env".
func WithDotEnv(paths ...string) Option {
	return func(c *ServerConfig) error {
		if len(paths) == 0 {
			paths = []string{".env"}
		}
		for _, path := range paths {
			if err := godotenv.Load(path); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
		}
		return nil
	}
}

// WithEnv reads the configuration from environment variables. Unset
// variables take their env-default values.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// WithFile reads a YAML configuration file. Environment variables still
// take precedence over values from the file.
func WithFile(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			return nil
		}
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}
}

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabaseURL sets the document store connection string and database
// name. An empty url selects the in-memory store.
func WithDatabaseURL(url, dbName string) Option {
	return func(c *ServerConfig) error {
		c.MongoURL = url
		if dbName != "" {
			c.DBName = dbName
		}
		return nil
	}
}

// WithStorageURL sets the media backend URL
func WithStorageURL(url string) Option {
	return func(c *ServerConfig) error {
		c.StorageURL = url
		return nil
	}
}

// WithSeeding turns startup seeding on or off and optionally points it at
// a fixtures file.
func WithSeeding(enabled bool, file string) Option {
	return func(c *ServerConfig) error {
		c.SeedOnStartup = enabled
		c.SeedFile = file
		return nil
	}
}

// WithAdminKey protects write routes with the API key whose SHA-256 hex
// digest is given.
func WithAdminKey(sha256Hex string) Option {
	return func(c *ServerConfig) error {
		c.AdminAPIKeySHA256 = sha256Hex
		return nil
	}
}

// WithAdminJWT lets write routes accept bearer tokens signed with secret
func WithAdminJWT(secret string) Option {
	return func(c *ServerConfig) error {
		c.AdminJWTSecret = secret
		return nil
	}
}

// WithLogging sets the log level and format
func WithLogging(level, format string) Option {
	return func(c *ServerConfig) error {
		if level != "" {
			c.LogLevel = level
		}
		if format != "" {
			c.LogFormat = format
		}
		return nil
	}
}
