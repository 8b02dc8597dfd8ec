package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverPGX      = "pgx"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Server struct {
		Port            int `yaml:"port"`
		MaxUploadMB     int `yaml:"maxUploadMB"`
		ShutdownSeconds int `yaml:"shutdownSeconds"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	AI struct {
		Provider       string `yaml:"provider"`
		OpenAIKey      string `yaml:"openaiKey"`
		GeminiKey      string `yaml:"geminiKey"`
		DetectionModel string `yaml:"detectionModel"`
		AnalysisModel  string `yaml:"analysisModel"`
	} `yaml:"ai"`

	// Auth maps tenant -> API key. Empty disables authentication.
	Auth map[string]string `yaml:"auth"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`
}

// Load baca file config.yaml, apply env overrides and defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML bytes, then applies env overrides and defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"OPENAI_API_KEY", &c.AI.OpenAIKey},
		{"GOOGLE_API_KEY", &c.AI.GeminiKey},
		{"MINIO_SECRET_KEY", &c.Minio.SecretKey},
		{"DB_PASSWORD", &c.Database.Password},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 10
	}
	if c.Server.ShutdownSeconds == 0 {
		c.Server.ShutdownSeconds = 5
	}
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMySQL
	}
	if c.Database.Port == 0 {
		if c.Database.Driver == DriverMySQL {
			c.Database.Port = 3306
		} else {
			c.Database.Port = 5432
		}
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Minio.BucketName == "" {
		c.Minio.BucketName = "component-images"
	}
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.Provider == "" {
		c.AI.Provider = ProviderGemini
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 60
	}
	if c.RateLimit.RefillRate == 0 {
		c.RateLimit.RefillRate = 1
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
}

// Validate checks the values main cannot start without.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverPGX:
	default:
		return fmt.Errorf("database.driver %q not supported (mysql, postgres, pgx)", c.Database.Driver)
	}
	switch c.AI.Provider {
	case ProviderOpenAI:
		if c.AI.OpenAIKey == "" {
			return fmt.Errorf("ai.openaiKey or OPENAI_API_KEY is required for provider openai")
		}
	case ProviderGemini:
		if c.AI.GeminiKey == "" {
			return fmt.Errorf("ai.geminiKey or GOOGLE_API_KEY is required for provider gemini")
		}
	default:
		return fmt.Errorf("ai.provider %q not supported (openai, gemini)", c.AI.Provider)
	}
	if c.Minio.Endpoint == "" {
		return fmt.Errorf("minio.endpoint is required")
	}
	return nil
}

// DSN builds the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.Database.Driver == DriverMySQL {
		return c.MySQLDSN()
	}
	return c.PostgresDSN()
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN is the keyword/value form understood by both lib/pq and pgx.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// MaxUploadBytes is the multipart body limit for image uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}
