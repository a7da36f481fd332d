// Package config loads tool settings from a .env file in the theme
// directory and from FTP_*-prefixed environment variables, the latter
// taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Innovate-group/tiendanubecli/internal/transfer"
)

// EnvFileName is the per-theme configuration file written by `init`.
const EnvFileName = ".env"

// Settings is the resolved tool configuration.
type Settings struct {
	FTP       transfer.Config
	LocalDir  string
	RemoteDir string
}

// Load resolves settings for the theme rooted at dir. envFile overrides
// the default .env location when non-empty. Missing .env is not an error;
// environment variables alone may carry the configuration.
func Load(dir, envFile string) (Settings, error) {
	v := viper.New()

	v.SetConfigType("env")
	if envFile == "" {
		envFile = filepath.Join(dir, EnvFileName)
	}
	v.SetConfigFile(envFile)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Settings{}, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	// The .env file exposes FTP_HOST as key "ftp_host"; bind the same
	// process environment variable on top so it takes precedence.
	for _, key := range []string{
		"ftp_host", "ftp_port", "ftp_user", "ftp_password", "ftp_secure",
		"ftp_remote_path", "ftp_connect_timeout", "ftp_idle_timeout",
		"ftp_max_retries", "ftp_retry_delay", "ftp_debug",
	} {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	v.SetDefault("ftp_port", 21)
	v.SetDefault("ftp_remote_path", "/")
	v.SetDefault("ftp_connect_timeout", "30s")
	v.SetDefault("ftp_idle_timeout", "5m")
	v.SetDefault("ftp_max_retries", 2)
	v.SetDefault("ftp_retry_delay", "1s")

	ftp := transfer.Config{
		Host:           v.GetString("ftp_host"),
		Port:           v.GetInt("ftp_port"),
		User:           v.GetString("ftp_user"),
		Password:       v.GetString("ftp_password"),
		RemotePath:     v.GetString("ftp_remote_path"),
		Secure:         v.GetBool("ftp_secure"),
		ConnectTimeout: v.GetDuration("ftp_connect_timeout"),
		IdleTimeout:    v.GetDuration("ftp_idle_timeout"),
		MaxRetries:     v.GetInt("ftp_max_retries"),
		RetryDelay:     v.GetDuration("ftp_retry_delay"),
		Debug:          v.GetBool("ftp_debug"),
	}

	settings := Settings{
		FTP:       ftp.WithDefaults(),
		LocalDir:  dir,
		RemoteDir: ftp.RemotePath,
	}

	if err := settings.validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func (s Settings) validate() error {
	var missing []string
	if s.FTP.Host == "" {
		missing = append(missing, "FTP_HOST")
	}
	if s.FTP.User == "" {
		missing = append(missing, "FTP_USER")
	}
	if s.FTP.Password == "" {
		missing = append(missing, "FTP_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s (run `tiendanube init` or set the environment variables)", strings.Join(missing, ", "))
	}
	if s.FTP.Port < 1 || s.FTP.Port > 65535 {
		return fmt.Errorf("invalid FTP_PORT %d", s.FTP.Port)
	}
	return nil
}

// Write persists the given values as a .env file in dir, readable by Load.
func Write(dir string, ftp transfer.Config) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "FTP_HOST=%s\n", ftp.Host)
	fmt.Fprintf(&b, "FTP_PORT=%d\n", ftp.Port)
	fmt.Fprintf(&b, "FTP_USER=%s\n", ftp.User)
	fmt.Fprintf(&b, "FTP_PASSWORD=%s\n", ftp.Password)
	fmt.Fprintf(&b, "FTP_REMOTE_PATH=%s\n", ftp.RemotePath)
	fmt.Fprintf(&b, "FTP_SECURE=%t\n", ftp.Secure)

	p := filepath.Join(dir, EnvFileName)
	if err := os.WriteFile(p, []byte(b.String()), 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", p, err)
	}
	return p, nil
}
