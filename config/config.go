package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

func (l LogLevel) ToSlog() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type LogFormat string

const (
	LogFormatPlaintext LogFormat = "plaintext"
	LogFormatJSON      LogFormat = "json"
)

type AppEnv string

const (
	AppEnvDev        AppEnv = "dev"
	AppEnvProduction AppEnv = "production"
)

type Config struct {
	App    AppConfig
	Sentry SentryConfig
	Log    LogConfig
	Page   PageConfig
	Chat   ChatConfig
}

type AppConfig struct {
	Debug             bool
	SSL               bool
	Port              uint32
	Host              string
	URL               string
	Name              string
	ShutdownTimeout   int32 // in seconds
	Env               AppEnv
	Version           string
	RequestTimeout    uint32 // in seconds
	AuthenticationKey string `mapstructure:"AUTHKEY"`
	EncryptionKey     string `mapstructure:"ENCKEY"`
}

type SentryConfig struct {
	Enabled    bool
	DSN        string
	SampleRate float64
	TracesRate float64
}

type LogConfig struct {
	Format  LogFormat
	Level   LogLevel
	Verbose bool
	// Log every HTTP request. Request logging is turned off by default.
	Requests bool
}

type PageConfig struct {
	// Path to an HTML file that replaces the embedded default template.
	Template string
	// Reload the template file whenever it changes on disk.
	Watch bool
	// Debounce timer between subsequent template reloads, in milliseconds
	Debounce int32
	// Use the field name as the input type in generated forms.
	LegacyInputTypes bool `mapstructure:"LEGACYINPUTS"`
}

type ChatConfig struct {
	// Path of the chat page; the join form and history endpoints live below it.
	Path                 string
	WSEndpoint           string `mapstructure:"WSENDPOINT"`
	BrokerPrefix         string `mapstructure:"BROKERPREFIX"`
	AppDestinationPrefix string `mapstructure:"APPPREFIX"`
	AllowedOrigins       []string `mapstructure:"ORIGINS"`
	MaxMessageSize       int64    `mapstructure:"MAXMESSAGESIZE"`
	RateLimitBurst       int      `mapstructure:"RATEBURST"`
	RateLimitInterval    int32    `mapstructure:"RATEINTERVAL"` // in milliseconds
}

// Default returns the configuration that is used when no value was specified.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Port:            8080,
			Host:            "localhost",
			Name:            "hermes",
			ShutdownTimeout: 2,
			Env:             AppEnvProduction,
			RequestTimeout:  30,
		},
		Log: LogConfig{
			Format: LogFormatJSON,
			Level:  LogLevelInfo,
		},
		Page: PageConfig{
			Debounce: 200,
		},
		Chat: ChatConfig{
			Path:                 "/chat",
			WSEndpoint:           "/chat-websocket",
			BrokerPrefix:         "/subject",
			AppDestinationPrefix: "/app",
			MaxMessageSize:       512,
			RateLimitBurst:       5,
			RateLimitInterval:    1000,
		},
	}
}

func (c Config) BaseURL() string {
	url := c.App.URL
	// If no url was specified, build one from the host and port values
	if len(c.App.URL) == 0 {
		url = fmt.Sprintf("%v:%v", c.App.Host, c.App.Port)
	}
	protocol := "http"
	if c.App.SSL {
		protocol = "https"
	}
	return fmt.Sprintf(
		"%s://%s",
		protocol,
		url,
	)
}

func (c *Config) IsTest() bool {
	return flag.Lookup("test.v") != nil || strings.HasSuffix(os.Args[0], ".test") ||
		strings.Contains(os.Args[0], "/_test/")
}

func setDefaults(reader *viper.Viper) {
	d := Default()
	reader.SetDefault("app_port", d.App.Port)
	reader.SetDefault("app_host", d.App.Host)
	reader.SetDefault("app_name", d.App.Name)
	reader.SetDefault("app_shutdowntimeout", d.App.ShutdownTimeout)
	reader.SetDefault("app_env", d.App.Env)
	reader.SetDefault("app_requesttimeout", d.App.RequestTimeout)
	reader.SetDefault("log_format", d.Log.Format)
	reader.SetDefault("log_level", d.Log.Level)
	reader.SetDefault("page_debounce", d.Page.Debounce)
	reader.SetDefault("chat_path", d.Chat.Path)
	reader.SetDefault("chat_wsendpoint", d.Chat.WSEndpoint)
	reader.SetDefault("chat_brokerprefix", d.Chat.BrokerPrefix)
	reader.SetDefault("chat_appprefix", d.Chat.AppDestinationPrefix)
	reader.SetDefault("chat_maxmessagesize", d.Chat.MaxMessageSize)
	reader.SetDefault("chat_rateburst", d.Chat.RateLimitBurst)
	reader.SetDefault("chat_rateinterval", d.Chat.RateLimitInterval)
}

// Load the configuration file from the specified filesystem.
// You can specify additional .env files to load, by default this only checks for ".env" in the
// current working directory.
// If the filesystem does not contain a config.toml file, the defaults are used and only the environment is read.
func Load(configFS fs.FS, dotenvFiles ...string) (*Config, error) {
	reader := viper.NewWithOptions(viper.KeyDelimiter("_"))
	reader.SetConfigType("toml")
	setDefaults(reader)

	file, err := configFS.Open("config.toml")
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Warn("No config.toml found, continuing with the default configuration...")
	case err != nil:
		return nil, fmt.Errorf("could not open config.toml in the configFS: %w", err)
	default:
		defer file.Close()
		if err = reader.ReadConfig(file); err != nil {
			return nil, fmt.Errorf("could not load the app configuration: %w", err)
		}
	}

	// Environment override
	err = godotenv.Load(dotenvFiles...)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("No .env file found, continuing...")
	} else if err != nil {
		return nil, fmt.Errorf(".env file found, but could not load it: %w", err)
	}
	reader.AutomaticEnv()
	bindEnv(reader)

	var config Config
	if err := reader.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("invalid config format: %w", err)
	}

	if config.App.Debug && !config.IsTest() {
		slog.Warn("APP_DEBUG is turned on, do not run this mode in production!")
	}

	return &config, nil
}

// AutomaticEnv only applies to keys viper already knows about, bind the ones without a default explicitly.
func bindEnv(reader *viper.Viper) {
	for _, key := range []string{
		"app_debug", "app_ssl", "app_url", "app_version", "app_authkey", "app_enckey",
		"sentry_enabled", "sentry_dsn", "sentry_samplerate", "sentry_tracesrate",
		"log_verbose", "log_requests",
		"page_template", "page_watch", "page_legacyinputs",
		"chat_origins",
	} {
		_ = reader.BindEnv(key, strings.ToUpper(key))
	}
}
