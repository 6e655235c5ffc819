package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

const ConfigPathEnvVar = "CONFIG_PATH"

type AppConfig struct {
	Server   ServerConfig   `koanf:"server"`
	Mongo    MongoConfig    `koanf:"mongo"`
	Redis    RedisConfig    `koanf:"redis"`
	JWT      JWTConfig      `koanf:"jwt"`
	SMTP     SMTPConfig     `koanf:"smtp"`
	Storage  StorageConfig  `koanf:"storage"`
	Firebase FirebaseConfig `koanf:"firebase"`
	CORS     CORSConfig     `koanf:"cors"`
	Logging  LoggingConfig  `koanf:"logging"`
	Site     SiteConfig     `koanf:"site"`
}

type ServerConfig struct {
	Port         string        `koanf:"port"`
	Env          string        `koanf:"env"`
	RequestLimit time.Duration `koanf:"request_timeout"`
}

type MongoConfig struct {
	URI      string        `koanf:"uri"`
	Database string        `koanf:"database"`
	Timeout  time.Duration `koanf:"timeout"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type JWTConfig struct {
	Secret string        `koanf:"secret"`
	Expire time.Duration `koanf:"expire"`
}

type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	FromName string `koanf:"from_name"`
}

// StorageConfig selects the blob backend. Driver is "local" or "s3".
type StorageConfig struct {
	Driver      string `koanf:"driver"`
	LocalDir    string `koanf:"local_dir"`
	Bucket      string `koanf:"bucket"`
	Region      string `koanf:"region"`
	Endpoint    string `koanf:"endpoint"`
	AccessKeyID string `koanf:"access_key_id"`
	SecretKey   string `koanf:"secret_key"`
	UseSSL      bool   `koanf:"use_ssl"`
}

type FirebaseConfig struct {
	Enabled           bool   `koanf:"enabled"`
	ProjectID         string `koanf:"project_id"`
	CredentialsFile   string `koanf:"credentials_file"`
	CredentialsBase64 string `koanf:"credentials_base64"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// SiteConfig describes the public frontend, used for links in mail and sitemaps.
type SiteConfig struct {
	Name      string `koanf:"name"`
	URL       string `koanf:"url"`
	ClientURL string `koanf:"client_url"`
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         "5000",
			Env:          "development",
			RequestLimit: 15 * time.Second,
		},
		Mongo: MongoConfig{
			Database: "streamcart",
			Timeout:  10 * time.Second,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		JWT: JWTConfig{
			Expire: 30 * 24 * time.Hour,
		},
		SMTP: SMTPConfig{
			Port:     587,
			FromName: "StreamCart",
		},
		Storage: StorageConfig{
			Driver:   "local",
			LocalDir: "uploads",
			Region:   "us-east-1",
			UseSSL:   true,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Site: SiteConfig{
			Name:      "StreamCart",
			URL:       "http://localhost:3000",
			ClientURL: "http://localhost:3000",
		},
	}
}

// Load layers defaults, an optional YAML file and the environment, in that order.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &AppConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Mongo.URI == "" {
		return errors.New("MONGO_URI or MONGODB_URI is required")
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("S3_BUCKET_NAME is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Firebase.Enabled && c.Firebase.CredentialsFile == "" && c.Firebase.CredentialsBase64 == "" {
		return errors.New("firebase is enabled but no credentials were provided")
	}
	return nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Server.Env == "production"
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{"cors.allowed_origins"}

// processSliceFields splits comma separated env values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"port":                           "server.port",
	"node_env":                       "server.env",
	"env":                            "server.env",
	"request_timeout":                "server.request_timeout",
	"mongo_uri":                      "mongo.uri",
	"mongodb_uri":                    "mongo.uri",
	"db_name":                        "mongo.database",
	"mongo_timeout":                  "mongo.timeout",
	"redis_addr":                     "redis.addr",
	"redis_password":                 "redis.password",
	"redis_db":                       "redis.db",
	"jwt_secret":                     "jwt.secret",
	"jwt_expire":                     "jwt.expire",
	"smtp_host":                      "smtp.host",
	"smtp_port":                      "smtp.port",
	"smtp_user":                      "smtp.user",
	"smtp_pass":                      "smtp.password",
	"smtp_password":                  "smtp.password",
	"from_email":                     "smtp.from",
	"from_name":                      "smtp.from_name",
	"storage_driver":                 "storage.driver",
	"upload_dir":                     "storage.local_dir",
	"s3_bucket_name":                 "storage.bucket",
	"aws_region":                     "storage.region",
	"aws_endpoint":                   "storage.endpoint",
	"aws_access_key_id":              "storage.access_key_id",
	"aws_secret_access_key":          "storage.secret_key",
	"s3_use_ssl":                     "storage.use_ssl",
	"firebase_enabled":               "firebase.enabled",
	"firebase_project_id":            "firebase.project_id",
	"google_application_credentials": "firebase.credentials_file",
	"firebase_credentials_base64":    "firebase.credentials_base64",
	"cors_allowed_origins":           "cors.allowed_origins",
	"log_level":                      "logging.level",
	"log_format":                     "logging.format",
	"site_name":                      "site.name",
	"site_url":                       "site.url",
	"client_url":                     "site.client_url",
}

// envTransformFunc maps known environment variables to config paths and
// drops everything else.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
