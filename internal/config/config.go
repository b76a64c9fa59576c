package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	AWS         AWSConfig
	DynamoDB    DynamoDBConfig
	Server      ServerConfig
	Redis       RedisConfig
	NATS        NATSConfig
	OAuth       OAuthConfig
	Courseville CoursevilleConfig
	Sync        SyncConfig
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

type DynamoDBConfig struct {
	TableName        string
	MaxRetries       int
	UseLocalEndpoint bool
}

type ServerConfig struct {
	HTTPPort    int
	Environment string
	LogLevel    string
	FrontendURL string
}

type RedisConfig struct {
	Address  string
	Password string
}

type NATSConfig struct {
	URL                  string
	MaxReconnect         int
	ReconnectWaitSeconds int
	TimeoutSeconds       int
	Enabled              bool
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
}

type CoursevilleConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// SyncConfig pins the academic term whose assignments are mirrored.
type SyncConfig struct {
	Year     string
	Semester int
}

func Load(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath(configPath)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("COURSECAL")

	viper.SetDefault("courseville.baseurl", "https://www.mycourseville.com")
	viper.SetDefault("courseville.timeoutseconds", 15)
	viper.SetDefault("sync.year", "2022")
	viper.SetDefault("sync.semester", 2)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
