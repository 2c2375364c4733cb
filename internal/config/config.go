package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultUpstreamURL is the k-ID game API the relay forwards to
	DefaultUpstreamURL = "https://game-api.test.k-id.com/api/v1"
	DefaultPort        = "8080"
)

type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
}

type ServerConfig struct {
	Port string `env:"PORT" default:"8080"`

	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" default:"*"`
	MetricsEnabled  bool          `env:"METRICS_ENABLED" default:"true"`
	H2CEnabled      bool          `env:"H2C_ENABLED" default:"false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`

	logLevel  string `env:"LOG_LEVEL" default:"info"`
	logFormat string `env:"LOG_FORMAT" default:"text"`
	Logger    *slog.Logger
}

type UpstreamConfig struct {
	BaseURL string        `env:"KID_API_URL"`
	APIKey  string        `env:"KID_KEY" required:"true"`
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT" default:"0"`
}

var allowedLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// LoadConfig reads the relay configuration from the environment. Any env files
// given are loaded first; with none, an optional .env in the working dir is used.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		// Explicit files must exist
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else {
		// We ignore the error as the .env file is optional
		_ = godotenv.Load()
	}

	return loadFromEnv(os.Stdout)
}

func loadFromEnv(logOut io.Writer) (*Config, error) {
	cfg := &Config{}

	logLevel := strings.ToLower(getOrDefault("LOG_LEVEL", "info"))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return nil, fmt.Errorf("invalid log level: %s", logLevel)
	}
	logFormat := strings.ToLower(getOrDefault("LOG_FORMAT", "text"))
	if logFormat != "text" && logFormat != "json" {
		return nil, fmt.Errorf("invalid log format: %s", logFormat)
	}

	port := getOrDefault("PORT", DefaultPort)
	if _, err := strconv.Atoi(port); err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
	}

	metricsEnabled, err := getBool("METRICS_ENABLED", true)
	if err != nil {
		return nil, err
	}
	h2cEnabled, err := getBool("H2C_ENABLED", false)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	origins := splitList(getOrDefault("CORS_ALLOWED_ORIGINS", "*"))
	for _, o := range origins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return nil, fmt.Errorf("invalid CORS origin %q: must start with http:// or https://", o)
		}
	}

	cfg.Server = ServerConfig{
		Port:            port,
		AllowedOrigins:  origins,
		MetricsEnabled:  metricsEnabled,
		H2CEnabled:      h2cEnabled,
		ShutdownTimeout: shutdownTimeout,
		logLevel:        logLevel,
		logFormat:       logFormat,
		Logger:          setupLogger(logOut, allowedLogLevels[logLevel], logFormat),
	}

	// Upstream configuration
	apiKey, err := getOrError("KID_KEY")
	if err != nil {
		return nil, err
	}
	timeout, err := getDuration("UPSTREAM_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	cfg.Upstream = UpstreamConfig{
		BaseURL: getOrDefault("KID_API_URL", DefaultUpstreamURL),
		APIKey:  apiKey,
		Timeout: timeout,
	}

	return cfg, nil
}

// Utility methods

// setupLogger creates a new logger for the relay
func setupLogger(w io.Writer, l slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     l,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				source := a.Value.Any().(*slog.Source)
				a.Value = slog.StringValue(source.File + ":" + strconv.Itoa(source.Line))
			}
			return a
		},
	}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Addr returns the listen address for the inbound server
func (c *ServerConfig) Addr() string {
	return ":" + c.Port
}

// LogLevel returns the configured minimum log level
func (c *ServerConfig) LogLevel() string {
	return c.logLevel
}

// getOrDefault returns the value of the environment variable with the given key
// or the default value if the variable is not set
func getOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getOrError returns the value of the environment variable with the given key
// or an error if the variable is not set
func getOrError(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("missing required environment variable %s", key)
	}
	return v, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
