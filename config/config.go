package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/princinho/climaquote/notify"
	"github.com/princinho/climaquote/storage"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	PublicBaseURL   string        `mapstructure:"public_base_url"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	ImageTimeout    time.Duration `mapstructure:"image_timeout"`
}

// Addr is the listen address for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// Driver is "mongo" or "memory".
	Driver  string        `mapstructure:"driver"`
	URI     string        `mapstructure:"uri"`
	Name    string        `mapstructure:"name"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Driver          string `mapstructure:"driver"`
	Bucket          string `mapstructure:"bucket"`
	CredentialsFile string `mapstructure:"credentials_file"`
	LocalDir        string `mapstructure:"local_dir"`
	LocalBaseURL    string `mapstructure:"local_base_url"`
	R2Bucket        string `mapstructure:"r2_bucket"`
	R2AccessKeyID   string `mapstructure:"r2_access_key_id"`
	R2SecretKey     string `mapstructure:"r2_secret_access_key"`
	R2Endpoint      string `mapstructure:"r2_endpoint"`
	R2PublicDomain  string `mapstructure:"r2_public_domain"`
}

// Blob maps the section onto the storage package configuration.
func (s StorageConfig) Blob() storage.Config {
	return storage.Config{
		Driver:          s.Driver,
		Bucket:          s.Bucket,
		CredentialsFile: s.CredentialsFile,
		LocalDir:        s.LocalDir,
		LocalBaseURL:    s.LocalBaseURL,
		R2: storage.R2Config{
			Bucket:          s.R2Bucket,
			AccessKeyID:     s.R2AccessKeyID,
			SecretAccessKey: s.R2SecretKey,
			Endpoint:        s.R2Endpoint,
			PublicDomain:    s.R2PublicDomain,
		},
	}
}

type AuthConfig struct {
	// AdminSecretHash is a bcrypt hash; AdminSecret is compared in constant
	// time and only used when no hash is configured.
	AdminSecret     string        `mapstructure:"admin_secret"`
	AdminSecretHash string        `mapstructure:"admin_secret_hash"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	TokenTTL        time.Duration `mapstructure:"token_ttl"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	Bcc      string `mapstructure:"bcc"`
}

func (s SMTPConfig) Notify() notify.Config {
	return notify.Config{
		Host:     s.Host,
		Port:     s.Port,
		Username: s.Username,
		Password: s.Password,
		From:     s.From,
		Bcc:      s.Bcc,
	}
}

type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type UploadsConfig struct {
	MaxSizeMB         int      `mapstructure:"max_size_mb"`
	AllowedMimeTypes  []string `mapstructure:"allowed_mime_types"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// Load reads an optional config file, a .env file and the environment, in
// increasing order of precedence. Environment keys are upper-case section
// and key joined by an underscore, e.g. DATABASE_URI.
func Load(path string) (*Config, error) {
	// a missing .env is the normal case in production
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mongo":
		if c.Database.URI == "" {
			return fmt.Errorf("database.uri is required for the mongo driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	if c.Uploads.MaxSizeMB <= 0 {
		return fmt.Errorf("uploads.max_size_mb must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.public_base_url", "http://localhost:8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.image_timeout", 10*time.Second)

	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.name", "climaquote")
	v.SetDefault("database.timeout", 10*time.Second)

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "./uploads")
	v.SetDefault("storage.local_base_url", "http://localhost:8080/files")

	v.SetDefault("auth.token_ttl", 12*time.Hour)

	v.SetDefault("smtp.port", 587)

	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.timeout", 60*time.Second)

	v.SetDefault("uploads.max_size_mb", 10)
	v.SetDefault("uploads.allowed_mime_types", []string{"image/jpeg", "image/png", "image/webp", "application/pdf"})
	v.SetDefault("uploads.allowed_extensions", []string{".jpg", ".jpeg", ".png", ".webp", ".pdf"})

	v.SetDefault("rate_limit.requests_per_second", 2.0)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnv registers the keys that have no default, so AutomaticEnv can
// reach them during Unmarshal. It also keeps the legacy names of the old
// deployment working.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("server.allowed_origins", "SERVER_ALLOWED_ORIGINS", "ALLOWED_ORIGINS")
	_ = v.BindEnv("database.uri", "DATABASE_URI", "MONGODB_URI")
	_ = v.BindEnv("database.name", "DATABASE_NAME", "MONGODB_DATABASE")
	_ = v.BindEnv("storage.bucket", "STORAGE_BUCKET", "GCS_BUCKET")
	_ = v.BindEnv("storage.credentials_file", "STORAGE_CREDENTIALS_FILE", "CREDENTIALS_FILE_LOCATION")
	_ = v.BindEnv("storage.r2_bucket", "STORAGE_R2_BUCKET", "R2_BUCKET")
	_ = v.BindEnv("storage.r2_access_key_id", "STORAGE_R2_ACCESS_KEY_ID", "R2_ACCESS_KEY_ID")
	_ = v.BindEnv("storage.r2_secret_access_key", "STORAGE_R2_SECRET_ACCESS_KEY", "R2_SECRET_ACCESS_KEY")
	_ = v.BindEnv("storage.r2_endpoint", "STORAGE_R2_ENDPOINT", "R2_ENDPOINT")
	_ = v.BindEnv("storage.r2_public_domain", "STORAGE_R2_PUBLIC_DOMAIN", "R2_PUBLIC_DOMAIN")
	_ = v.BindEnv("auth.admin_secret", "AUTH_ADMIN_SECRET", "ADMIN_SECRET")
	_ = v.BindEnv("auth.admin_secret_hash", "AUTH_ADMIN_SECRET_HASH", "ADMIN_SECRET_HASH")
	_ = v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("smtp.host", "SMTP_HOST")
	_ = v.BindEnv("smtp.username", "SMTP_USERNAME", "SMTP_USER")
	_ = v.BindEnv("smtp.password", "SMTP_PASSWORD", "SMTP_PASS")
	_ = v.BindEnv("smtp.from", "SMTP_FROM")
	_ = v.BindEnv("smtp.bcc", "SMTP_BCC")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("uploads.max_size_mb", "UPLOADS_MAX_SIZE_MB", "MAX_UPLOAD_SIZE_MB")
}
