package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server struct {
		Port int    `toml:"port"`
		Host string `toml:"host"`

		EnableHTTP2     bool          `toml:"enable_http2"`
		ReadTimeout     time.Duration `toml:"read_timeout"`
		WriteTimeout    time.Duration `toml:"write_timeout"`
		IdleTimeout     time.Duration `toml:"idle_timeout"`
		GracefulTimeout time.Duration `toml:"graceful_timeout"`
		MaxHeaderBytes  int           `toml:"max_header_bytes"`
		MaxBodyBytes    int64         `toml:"max_body_bytes"`
		TCPKeepAlive    time.Duration `toml:"tcp_keepalive"`

		MetricsEnabled  bool `toml:"metrics_enabled"`
		CachingEnabled  bool `toml:"caching_enabled"`
		MinifyHTML      bool `toml:"minify_html"`
		WatchPosts      bool `toml:"watch_posts"`
		ProfilerEnabled bool `toml:"profiler_enabled"`
	} `toml:"server"`

	Cache struct {
		MaxSize           int           `toml:"max_size"`
		DefaultExpiration time.Duration `toml:"default_expiration"`
	} `toml:"cache"`

	Logging struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
		Output string `toml:"output"`
	} `toml:"logging"`

	Directories struct {
		Posts  string `toml:"posts"`
		Public string `toml:"public"`
		Src    string `toml:"src"`
		Dist   string `toml:"dist"`
	} `toml:"directories"`

	Site struct {
		Author string `toml:"author"`
		Title  string `toml:"title"`
	} `toml:"site"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

// LoadConfig decodes the TOML file at path over the defaults. An empty path
// yields the defaults. The PORT environment variable overrides the port.
func LoadConfig(path string) (Config, error) {
	cfg := Config{}

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}

	cfg.applyDefaults()

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Server.Port = p
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.GracefulTimeout == 0 {
		c.Server.GracefulTimeout = 30 * time.Second
	}
	if c.Server.MaxHeaderBytes == 0 {
		c.Server.MaxHeaderBytes = 1 << 20
	}
	if c.Server.TCPKeepAlive == 0 {
		c.Server.TCPKeepAlive = 3 * time.Minute
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 10 << 20
	}
	if c.Cache.MaxSize == 0 {
		c.Cache.MaxSize = 1024
	}
	if c.Cache.DefaultExpiration == 0 {
		c.Cache.DefaultExpiration = 10 * time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Directories.Posts == "" {
		c.Directories.Posts = "posts"
	}
	if c.Directories.Public == "" {
		c.Directories.Public = "public"
	}
	if c.Directories.Src == "" {
		c.Directories.Src = "src"
	}
	if c.Directories.Dist == "" {
		c.Directories.Dist = "dist"
	}
	if c.Site.Author == "" {
		c.Site.Author = "Sibtain Jafferi"
	}
	if c.Site.Title == "" {
		c.Site.Title = c.Site.Author
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must not be negative"))
	}
	if c.Cache.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("cache.max_size must not be negative"))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not json or console", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// Addr is host:port for the listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
