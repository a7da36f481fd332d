package transfer

import "time"

// Config holds FTP connection and retry configuration.
type Config struct {
	// Host is the FTP server hostname or IP address.
	Host string

	// Port is the FTP control port (default 21).
	Port int

	// User is the FTP username.
	User string

	// Password is the FTP password.
	Password string

	// RemotePath is the base remote directory the theme lives under.
	RemotePath string

	// Secure enables explicit FTPS (AUTH TLS).
	Secure bool

	// ConnectTimeout bounds connection establishment (default 30s).
	ConnectTimeout time.Duration

	// IdleTimeout is how long the pooled connection may sit unused
	// before it is closed (default 5m).
	IdleTimeout time.Duration

	// MaxRetries is the total number of attempts for a retryable
	// operation (default 2).
	MaxRetries int

	// RetryDelay is the base backoff delay, doubled per attempt and
	// capped at 5s (default 1s).
	RetryDelay time.Duration

	// Debug enables FTP protocol tracing on stderr.
	Debug bool
}

// WithDefaults returns a copy of the config with default values applied.
func (c Config) WithDefaults() Config {
	if c.Port == 0 {
		c.Port = 21
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 30 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 5 * time.Minute
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = time.Second
	}
	return c
}
