package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Client.AppVersion == "" {
		t.Error("Default() left Client.AppVersion empty")
	}
	if cfg.Gateway.Port != 8080 {
		t.Errorf("Gateway.Port = %d, want 8080", cfg.Gateway.Port)
	}
	if cfg.Gateway.DialTimeout != 10*time.Second {
		t.Errorf("Gateway.DialTimeout = %s, want 10s", cfg.Gateway.DialTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %s, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %s, want text", cfg.Logging.Format)
	}
}

func TestParse_ValidConfig(t *testing.T) {
	yamlConfig := `
account:
  uin: 10001
  password_md5: "5f4dcc3b5aa765d61d8327deb882cf99"

device:
  imei: "123456789012345"
  wifi_mac: "00:11:22:33:44:55"
  android_id: "deadbeef"
  sim_operator: "46000"
  apn: "cmnet"

client:
  app_version: "8.9.58"
  connection_class: "wifi"

gateway:
  host: "sso.example.com"
  port: 8080
  dial_timeout: 5s

logging:
  level: "debug"
  format: "json"
`
	cfg, err := Parse([]byte(yamlConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Account.Uin != 10001 {
		t.Errorf("Account.Uin = %d, want 10001", cfg.Account.Uin)
	}
	if cfg.Device.IMEI != "123456789012345" {
		t.Errorf("Device.IMEI = %s, want 123456789012345", cfg.Device.IMEI)
	}
	if cfg.Gateway.Host != "sso.example.com" {
		t.Errorf("Gateway.Host = %s, want sso.example.com", cfg.Gateway.Host)
	}
	if cfg.Gateway.DialTimeout != 5*time.Second {
		t.Errorf("Gateway.DialTimeout = %s, want 5s", cfg.Gateway.DialTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
}

func TestParse_MissingRequiredFields(t *testing.T) {
	_, err := Parse([]byte(`account: {}`))
	if err == nil {
		t.Fatal("Parse() should fail when required fields are missing")
	}
	for _, want := range []string{"account.uin", "device.imei", "device.wifi_mac", "gateway.host"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestParse_InvalidPasswordDigest(t *testing.T) {
	yamlConfig := `
account:
  uin: 10001
  password_md5: "not-hex"
device:
  imei: "123456789012345"
  wifi_mac: "00:11:22:33:44:55"
gateway:
  host: "sso.example.com"
  port: 8080
`
	_, err := Parse([]byte(yamlConfig))
	if err == nil {
		t.Fatal("Parse() should reject a malformed password digest")
	}
	if !strings.Contains(err.Error(), "password_md5") {
		t.Errorf("error %q does not mention password_md5", err)
	}
}

func TestParse_InvalidPort(t *testing.T) {
	yamlConfig := `
account:
  uin: 10001
device:
  imei: "123456789012345"
  wifi_mac: "00:11:22:33:44:55"
gateway:
  host: "sso.example.com"
  port: 70000
`
	_, err := Parse([]byte(yamlConfig))
	if err == nil {
		t.Fatal("Parse() should reject an out-of-range port")
	}
}

func TestParse_InvalidLogLevel(t *testing.T) {
	yamlConfig := `
account:
  uin: 10001
device:
  imei: "123456789012345"
  wifi_mac: "00:11:22:33:44:55"
gateway:
  host: "sso.example.com"
  port: 8080
logging:
  level: "verbose"
`
	_, err := Parse([]byte(yamlConfig))
	if err == nil {
		t.Fatal("Parse() should reject an unrecognized log level")
	}
}

func TestParse_EnvVarExpansion(t *testing.T) {
	os.Setenv("QQLOGIN_TEST_HOST", "gateway.internal")
	defer os.Unsetenv("QQLOGIN_TEST_HOST")

	yamlConfig := `
account:
  uin: 10001
device:
  imei: "123456789012345"
  wifi_mac: "00:11:22:33:44:55"
gateway:
  host: "${QQLOGIN_TEST_HOST}"
  port: 8080
`
	cfg, err := Parse([]byte(yamlConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Gateway.Host != "gateway.internal" {
		t.Errorf("Gateway.Host = %s, want gateway.internal", cfg.Gateway.Host)
	}
}

func TestParse_EnvVarDefault(t *testing.T) {
	os.Unsetenv("QQLOGIN_TEST_UNSET")
	yamlConfig := `
account:
  uin: 10001
device:
  imei: "123456789012345"
  wifi_mac: "00:11:22:33:44:55"
gateway:
  host: "${QQLOGIN_TEST_UNSET:-fallback.example.com}"
  port: 8080
`
	cfg, err := Parse([]byte(yamlConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Gateway.Host != "fallback.example.com" {
		t.Errorf("Gateway.Host = %s, want fallback.example.com", cfg.Gateway.Host)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	content := `
account:
  uin: 10001
device:
  imei: "123456789012345"
  wifi_mac: "00:11:22:33:44:55"
gateway:
  host: "sso.example.com"
  port: 8080
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Account.Uin != 10001 {
		t.Errorf("Account.Uin = %d, want 10001", cfg.Account.Uin)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Load() should fail for a missing file")
	}
}

func TestAccountPasswordMD5(t *testing.T) {
	a := Account{PasswordMD5Hex: "5f4dcc3b5aa765d61d8327deb882cf99"}
	digest, err := a.PasswordMD5()
	if err != nil {
		t.Fatalf("PasswordMD5() error = %v", err)
	}
	if len(digest) != 16 {
		t.Errorf("digest length = %d, want 16", len(digest))
	}
}

func TestAccountPasswordMD5_InvalidHex(t *testing.T) {
	a := Account{PasswordMD5Hex: "zz"}
	if _, err := a.PasswordMD5(); err == nil {
		t.Fatal("PasswordMD5() should fail for invalid hex")
	}
}

func TestRedactedMasksPassword(t *testing.T) {
	cfg := &Config{Account: Account{Uin: 10001, PasswordMD5Hex: "5f4dcc3b5aa765d61d8327deb882cf99"}}
	redacted := cfg.Redacted()
	if redacted.Account.PasswordMD5Hex == cfg.Account.PasswordMD5Hex {
		t.Error("Redacted() did not mask the password digest")
	}
	if cfg.Account.PasswordMD5Hex == "***" {
		t.Error("Redacted() mutated the original config")
	}
}
