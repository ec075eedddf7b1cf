package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/dbhub"
	ConfigFileName    = "dbhub.yml"

	minSecretLength = 32
)

// ValidLogFormats is the list of accepted log formats
var ValidLogFormats = []string{"text", "json"}

// Config holds all dbhub configuration settings
type Config struct {
	// TokenSecret is the HMAC key used to sign session tokens
	TokenSecret string `yaml:"token_secret" json:"-"`

	// DatabaseURL is the PostgreSQL connection string
	DatabaseURL string `yaml:"database_url" json:"-"`

	// BindAddress is the address the server listens on
	BindAddress string `yaml:"bind_address" json:"bind_address"`

	// Port is the port the server listens on
	Port int `yaml:"port" json:"port"`

	// LogLevel is the logrus level name
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFormat is "text" or "json"
	LogFormat string `yaml:"log_format" json:"log_format"`

	// LookupTimeout bounds a single membership lookup, in seconds
	LookupTimeout int `yaml:"lookup_timeout" json:"lookup_timeout"`

	// BcryptCost is the cost factor for password hashes
	BcryptCost int `yaml:"bcrypt_cost" json:"bcrypt_cost"`

	// CORSAllowedOrigins lists origins allowed by the CORS handler
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" json:"cors_allowed_origins"`

	// AuditEnabled toggles RFC5424 audit output
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// attribute name -> default, file or env
	sources map[string]string

	// dbhub.yml under DBHUB_CONFIG_PATH, read or not
	configFilePath string
}

// Attribute is one setting as shown by `dbhubctl configuration show`
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// newDefault seeds every attribute and marks it as coming from the defaults
func newDefault() *Config {
	return &Config{
		BindAddress:        "0.0.0.0",
		Port:               8000,
		LogLevel:           "info",
		LogFormat:          "text",
		LookupTimeout:      5,
		BcryptCost:         10,
		CORSAllowedOrigins: []string{},
		AuditEnabled:       true,
		sources:            make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("DBHUB_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
		logrus.WithField("path", config.configFilePath).Debug("loaded config file")
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"token_secret", "database_url", "bind_address", "port",
		"log_level", "log_format", "lookup_timeout", "bcrypt_cost",
		"cors_allowed_origins", "audit_enabled",
	}
}

func (c *Config) applyFileConfig(file *Config) {
	if file.TokenSecret != "" {
		c.TokenSecret = file.TokenSecret
		c.sources["token_secret"] = "file"
	}
	if file.DatabaseURL != "" {
		c.DatabaseURL = file.DatabaseURL
		c.sources["database_url"] = "file"
	}
	if file.BindAddress != "" {
		c.BindAddress = file.BindAddress
		c.sources["bind_address"] = "file"
	}
	if file.Port != 0 {
		c.Port = file.Port
		c.sources["port"] = "file"
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
		c.sources["log_level"] = "file"
	}
	if file.LogFormat != "" {
		c.LogFormat = file.LogFormat
		c.sources["log_format"] = "file"
	}
	if file.LookupTimeout != 0 {
		c.LookupTimeout = file.LookupTimeout
		c.sources["lookup_timeout"] = "file"
	}
	if file.BcryptCost != 0 {
		c.BcryptCost = file.BcryptCost
		c.sources["bcrypt_cost"] = "file"
	}
	if len(file.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = file.CORSAllowedOrigins
		c.sources["cors_allowed_origins"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("DBHUB_TOKEN_SECRET"); val != "" {
		c.TokenSecret = val
		c.sources["token_secret"] = "environment"
	}
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.DatabaseURL = val
		c.sources["database_url"] = "environment"
	}
	if val := os.Getenv("BIND_ADDRESS"); val != "" {
		c.BindAddress = val
		c.sources["bind_address"] = "environment"
	}
	if val := os.Getenv("PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.Port = i
			c.sources["port"] = "environment"
		}
	}
	if val := os.Getenv("DBHUB_LOG_LEVEL"); val != "" {
		c.LogLevel = val
		c.sources["log_level"] = "environment"
	}
	if val := os.Getenv("DBHUB_LOG_FORMAT"); val != "" {
		c.LogFormat = val
		c.sources["log_format"] = "environment"
	}
	if val := os.Getenv("DBHUB_LOOKUP_TIMEOUT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.LookupTimeout = i
			c.sources["lookup_timeout"] = "environment"
		}
	}
	if val := os.Getenv("DBHUB_BCRYPT_COST"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.BcryptCost = i
			c.sources["bcrypt_cost"] = "environment"
		}
	}
	if val := os.Getenv("DBHUB_CORS_ALLOWED_ORIGINS"); val != "" {
		c.CORSAllowedOrigins = splitAndTrim(val)
		c.sources["cors_allowed_origins"] = "environment"
	}
	if val := os.Getenv("DBHUB_AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = val == "true" || val == "1"
		c.sources["audit_enabled"] = "environment"
	}
}

// ConfigFilePath is where Load looked for dbhub.yml
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source reports whether name came from the defaults, the file or the environment
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// Secret returns the token signing secret as bytes
func (c *Config) Secret() []byte {
	return []byte(c.TokenSecret)
}

// Lookup returns the membership lookup timeout as a duration
func (c *Config) Lookup() time.Duration {
	return time.Duration(c.LookupTimeout) * time.Second
}

// Addr returns host:port for the HTTP server
func (c *Config) Addr() string {
	return c.BindAddress + ":" + strconv.Itoa(c.Port)
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	if c.TokenSecret == "" {
		return errors.New("token_secret is required (set DBHUB_TOKEN_SECRET)")
	}
	if len(c.TokenSecret) < minSecretLength {
		return fmt.Errorf("token_secret must be at least %d bytes", minSecretLength)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.LookupTimeout <= 0 {
		return fmt.Errorf("lookup_timeout must be positive, got %d", c.LookupTimeout)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31, got %d", c.BcryptCost)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	validFormat := false
	for _, f := range ValidLogFormats {
		if f == c.LogFormat {
			validFormat = true
		}
	}
	if !validFormat {
		return fmt.Errorf("invalid log_format: %s", c.LogFormat)
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources.
// Secrets are masked.
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "token_secret", Value: mask(c.TokenSecret), Source: c.Source("token_secret")},
		{Name: "database_url", Value: mask(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "log_format", Value: c.LogFormat, Source: c.Source("log_format")},
		{Name: "lookup_timeout", Value: strconv.Itoa(c.LookupTimeout), Source: c.Source("lookup_timeout")},
		{Name: "bcrypt_cost", Value: strconv.Itoa(c.BcryptCost), Source: c.Source("bcrypt_cost")},
		{Name: "cors_allowed_origins", Value: strings.Join(c.CORSAllowedOrigins, ","), Source: c.Source("cors_allowed_origins")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
	}
}

// FormatText renders one line per attribute with the token secret masked
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-25s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-25s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-25s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON renders the same attributes as FormatText, as an indented object
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
