package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Env         string
	Storage     StorageConfig
	Mongo       MongoConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Password    PasswordConfig
	Instruments InstrumentsConfig
	Logging     LoggingConfig
}

type StorageConfig struct {
	Type string `validate:"oneof=mongo postgres memory"`
}

type MongoConfig struct {
	URI        string        `validate:"required_if=Enabled true"`
	Database   string        `validate:"required_if=Enabled true"`
	Collection string        `validate:"required_if=Enabled true"`
	Timeout    time.Duration `validate:"gte=0"`
	Enabled    bool
}

type DatabaseConfig struct {
	Host     string `validate:"required_if=Enabled true"`
	Port     int    `validate:"gte=0,lte=65535"`
	User     string `validate:"required_if=Enabled true"`
	Password string
	DBName   string `validate:"required_if=Enabled true"`
	SSLMode  string
	Enabled  bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string `validate:"required_if=Enabled true"`
	Port     int    `validate:"gte=0,lte=65535"`
	Password string
	DB       int           `validate:"gte=0"`
	TTL      time.Duration `validate:"gte=0"`
}

type PasswordConfig struct {
	// Cost is the bcrypt work factor.
	Cost int `validate:"gte=4,lte=31"`
}

type InstrumentsConfig struct {
	MaxRetries int `validate:"gte=1"`
}

type LoggingConfig struct {
	Level string `validate:"omitempty,oneof=debug info warn error"`
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()
	setDefaults(v)

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = v.ReadInConfig()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("STORAGE_TYPE", StorageMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "bandmate")
	v.SetDefault("MONGO_COLLECTION", "profiles")
	v.SetDefault("MONGO_TIMEOUT", 10*time.Second)
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_TTL", 10*time.Minute)
	v.SetDefault("PASSWORD_COST", 10)
	v.SetDefault("INSTRUMENT_MAX_RETRIES", 3)
	v.SetDefault("LOG_LEVEL", "info")
}

func fromViper(v *viper.Viper) (*Config, error) {
	storageType := v.GetString("STORAGE_TYPE")

	config := &Config{
		Env: v.GetString("ENV"),
		Storage: StorageConfig{
			Type: storageType,
		},
		Mongo: MongoConfig{
			URI:        v.GetString("MONGO_URI"),
			Database:   v.GetString("MONGO_DATABASE"),
			Collection: v.GetString("MONGO_COLLECTION"),
			Timeout:    v.GetDuration("MONGO_TIMEOUT"),
			Enabled:    storageType == StorageMongo,
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
			Enabled:  storageType == StoragePostgres,
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("REDIS_TTL"),
		},
		Password: PasswordConfig{
			Cost: v.GetInt("PASSWORD_COST"),
		},
		Instruments: InstrumentsConfig{
			MaxRetries: v.GetInt("INSTRUMENT_MAX_RETRIES"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
