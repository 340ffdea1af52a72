// Package config provides configuration parsing and validation for the
// login client.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes one login session end to end.
type Config struct {
	Account Account `yaml:"account"`
	Device  Device  `yaml:"device"`
	Client  Client  `yaml:"client"`
	Gateway Gateway `yaml:"gateway"`
	Logging Logging `yaml:"logging"`
}

// Account holds the credentials for the QQ account being logged in.
type Account struct {
	Uin uint32 `yaml:"uin"`
	// PasswordMD5Hex is the 32-hex-character MD5 digest of the account
	// password. Left empty, the CLI prompts for the plaintext password and
	// hashes it itself rather than persisting it to disk.
	PasswordMD5Hex string `yaml:"password_md5"`
}

// Device holds the fingerprint this login presents to the gateway.
type Device struct {
	IMEI        string `yaml:"imei"`
	WiFiMAC     string `yaml:"wifi_mac"`
	AndroidID   string `yaml:"android_id"`
	SimOperator string `yaml:"sim_operator"`
	APN         string `yaml:"apn"`
}

// Client holds the protocol-facing app identity fields.
type Client struct {
	AppVersion       string `yaml:"app_version"`
	ConnectionClass  string `yaml:"connection_class"`
	AppClientVersion uint32 `yaml:"app_client_version"`
	SubAppID         uint32 `yaml:"sub_app_id"`
}

// Gateway holds the TCP endpoint to dial.
type Gateway struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// Logging holds structured-logging output settings.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config with every field the CLI does not require the
// user to supply filled with a sensible default.
func Default() *Config {
	return &Config{
		Client: Client{
			AppVersion:      "8.9.58",
			ConnectionClass: "wifi",
		},
		Gateway: Gateway{
			Port:        8080,
			DialTimeout: 10 * time.Second,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse parses configuration from YAML bytes, expanding ${VAR}/$VAR
// environment references before unmarshalling and validating the result.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		var name string
		if strings.HasPrefix(match, "${") {
			name = match[2 : len(match)-1]
		} else {
			name = match[1:]
		}
		if idx := strings.Index(name, ":-"); idx != -1 {
			varName, defaultVal := name[:idx], name[idx+2:]
			if val, ok := os.LookupEnv(varName); ok {
				return val
			}
			return defaultVal
		}
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

// Validate checks the configuration for errors, collecting every problem
// found rather than stopping at the first.
func (c *Config) Validate() error {
	var errs []string

	if c.Account.Uin == 0 {
		errs = append(errs, "account.uin is required")
	}
	if c.Account.PasswordMD5Hex != "" {
		if err := validatePasswordDigest(c.Account.PasswordMD5Hex); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Device.IMEI == "" {
		errs = append(errs, "device.imei is required")
	}
	if c.Device.WiFiMAC == "" {
		errs = append(errs, "device.wifi_mac is required")
	}
	if c.Gateway.Host == "" {
		errs = append(errs, "gateway.host is required")
	}
	if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
		errs = append(errs, fmt.Sprintf("gateway.port out of range: %d", c.Gateway.Port))
	}
	if !isValidLogLevel(c.Logging.Level) {
		errs = append(errs, fmt.Sprintf("invalid logging.level: %s (must be debug, info, warn, or error)", c.Logging.Level))
	}
	if !isValidLogFormat(c.Logging.Format) {
		errs = append(errs, fmt.Sprintf("invalid logging.format: %s (must be text or json)", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validatePasswordDigest(s string) error {
	if len(s) != 32 {
		return fmt.Errorf("account.password_md5 must be 32 hex characters, got %d", len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return fmt.Errorf("account.password_md5 is not valid hex: %w", err)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}

func isValidLogFormat(format string) bool {
	switch strings.ToLower(format) {
	case "text", "json":
		return true
	default:
		return false
	}
}

// PasswordMD5 decodes Account.PasswordMD5Hex into a fixed-size digest.
func (a Account) PasswordMD5() ([16]byte, error) {
	var out [16]byte
	b, err := hex.DecodeString(a.PasswordMD5Hex)
	if err != nil {
		return out, fmt.Errorf("config: decode password_md5: %w", err)
	}
	if len(b) != 16 {
		return out, fmt.Errorf("config: password_md5 must decode to 16 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

// Redacted returns a copy of c with the password digest masked, suitable
// for logging the effective configuration without leaking credentials.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.Account.PasswordMD5Hex != "" {
		cp.Account.PasswordMD5Hex = "***"
	}
	return &cp
}
