package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultConfigPath = "config/config.yaml"
	minSecretLength   = 32
)

type FilesConfig struct {
	RootDir string `yaml:"root_dir"`
}

type StorageConfig struct {
	Region        string `yaml:"region"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Endpoint      string `yaml:"endpoint"`
	PublicBucket  string `yaml:"public_bucket"`
	PrivateBucket string `yaml:"private_bucket"`
	// PublicBaseURL overrides the https://<bucket>.s3.<region>.amazonaws.com form.
	PublicBaseURL string `yaml:"public_base_url"`
}

type MidtransConfig struct {
	ServerKey  string `yaml:"server_key"`
	Production bool   `yaml:"production"`
}

type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
		// AppURL is the frontend origin allowed by CORS.
		AppURL string `yaml:"app_url"`
	} `yaml:"server"`
	Database struct {
		URI  string `yaml:"uri"`
		Name string `yaml:"name"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret        string `yaml:"jwt_secret"`
		VerificationLink string `yaml:"verification_link"`
		AuthSuccessURL   string `yaml:"auth_success_url"`
	} `yaml:"auth"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`
	Files    FilesConfig    `yaml:"files"`
	Storage  StorageConfig  `yaml:"storage"`
	Midtrans MidtransConfig `yaml:"midtrans"`
}

// IsDevelopment reports whether cookies should use the relaxed local attributes.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == EnvDevelopment
}

// LoadConfig reads the yaml file and environment overrides, panicking on failure.
func LoadConfig() *Config {
	path := os.Getenv("CONFIG_PATH")
	cfg, err := Load(path)
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return cfg
}

// Load builds a Config from defaults, the yaml file at path and the environment.
// An empty path means config/config.yaml, which may be absent.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.setDefaults()

	optional := path == ""
	if optional {
		path = defaultConfigPath
	}
	if err := cfg.readFile(path, optional); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	c.Server.Port = 8989
	c.Server.Env = EnvDevelopment
	c.Server.AppURL = "http://localhost:3000"
	c.Database.URI = "mongodb://localhost:27017"
	c.Database.Name = "digiread"
	c.Email.SMTPHost = "sandbox.smtp.mailtrap.io"
	c.Email.SMTPPort = 2525
	c.Email.FromEmail = "hello@digiread.store"
	c.Email.FromName = "DigiRead Store"
	c.Files.RootDir = "./files"
	c.Storage.Region = "us-east-1"
}

func (c *Config) readFile(path string, optional bool) error {
	f, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if c.Files.RootDir == "" {
		c.Files.RootDir = "./files"
	}
	return nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"APP_ENV":             &c.Server.Env,
		"APP_URL":             &c.Server.AppURL,
		"MONGO_URI":           &c.Database.URI,
		"MONGO_DB":            &c.Database.Name,
		"JWT_SECRET":          &c.Auth.JWTSecret,
		"VERIFICATION_LINK":   &c.Auth.VerificationLink,
		"AUTH_SUCCESS_URL":    &c.Auth.AuthSuccessURL,
		"SMTP_HOST":           &c.Email.SMTPHost,
		"SMTP_USER":           &c.Email.SMTPUser,
		"SMTP_PASSWORD":       &c.Email.SMTPPassword,
		"VERIFICATION_MAIL":   &c.Email.FromEmail,
		"AWS_REGION":          &c.Storage.Region,
		"AWS_ACCESS_KEY":      &c.Storage.AccessKey,
		"AWS_SECRET_KEY":      &c.Storage.SecretKey,
		"AWS_ENDPOINT":        &c.Storage.Endpoint,
		"AWS_PUBLIC_BUCKET":   &c.Storage.PublicBucket,
		"AWS_PRIVATE_BUCKET":  &c.Storage.PrivateBucket,
		"AWS_PUBLIC_BASE_URL": &c.Storage.PublicBaseURL,
		"MIDTRANS_SERVER_KEY": &c.Midtrans.ServerKey,
		"FILES_ROOT":          &c.Files.RootDir,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		"PORT":      &c.Server.Port,
		"SMTP_PORT": &c.Email.SMTPPort,
	}
	for key, dst := range ints {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	if v, ok := os.LookupEnv("MIDTRANS_PRODUCTION"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("MIDTRANS_PRODUCTION: %w", err)
		}
		c.Midtrans.Production = b
	}
	return nil
}

// Validate checks the settings the auth flow cannot run without.
func (c *Config) Validate() error {
	switch c.Server.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unknown env %q", c.Server.Env)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("jwt secret is required")
	}
	if c.Server.Env == EnvProduction && len(c.Auth.JWTSecret) < minSecretLength {
		return fmt.Errorf("jwt secret must be at least %d bytes in production", minSecretLength)
	}
	if c.Auth.VerificationLink == "" {
		return errors.New("verification link is required")
	}
	if c.Auth.AuthSuccessURL == "" {
		return errors.New("auth success url is required")
	}
	return nil
}
