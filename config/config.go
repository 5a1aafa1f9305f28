// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeoutStr  string        `yaml:"read_timeout"`
	WriteTimeoutStr string        `yaml:"write_timeout"`
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
}

// DatabaseConfig selects the cache backend. For mysql either DSN or the
// host/port/user/password/dbname set is used; for sqlite, Path (or DSN).
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // mysql | sqlite
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Path     string `yaml:"path"`
}

// PortalConfig configures the schedule fetcher. An explicit requests_per_minute
// of 0 or less disables rate limiting; leaving it out uses the default.
type PortalConfig struct {
	ScheduleURL          string        `yaml:"schedule_url"`
	SessionToken         string        `yaml:"session_token"`
	RequestsPerMinuteSet *int          `yaml:"requests_per_minute"`
	MaxAttempts          int           `yaml:"max_attempts"`
	RetryDelayStr        string        `yaml:"retry_delay"`
	TimeoutStr           string        `yaml:"timeout"`
	StillBuildingMarker  string        `yaml:"still_building_marker"`
	RequestsPerMinute    int           `yaml:"-"`
	RetryDelay           time.Duration `yaml:"-"`
	Timeout              time.Duration `yaml:"-"`
}

type CacheConfig struct {
	MaxAgeStr string        `yaml:"max_age"`
	MaxAge    time.Duration `yaml:"-"` // 0 keeps cached records forever
}

type ParserConfig struct {
	Engine string `yaml:"engine"` // goquery | sandbox
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Portal   PortalConfig   `yaml:"portal"`
	Cache    CacheConfig    `yaml:"cache"`
	Parser   ParserConfig   `yaml:"parser"`
	Log      LogConfig      `yaml:"log"`
}

var AppConfig Config

// DefaultPaths are tried in order when no config path is given.
var DefaultPaths = []string{"config.yaml", "config/config.yaml"}

// Load reads the YAML file at path (or the first of DefaultPaths that exists; a
// missing file is not an error then), applies .env and environment overrides,
// parses durations and fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		for _, p := range DefaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	// .env is optional; real environment variables take precedence over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.parseDurations(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads into AppConfig.
func LoadConfig(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	AppConfig = *cfg
	return nil
}

func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"CREWSCHED_PORT":          &c.Server.Port,
		"CREWSCHED_DB_DRIVER":     &c.Database.Driver,
		"CREWSCHED_DB_DSN":        &c.Database.DSN,
		"CREWSCHED_SESSION_TOKEN": &c.Portal.SessionToken,
		"CREWSCHED_PORTAL_URL":    &c.Portal.ScheduleURL,
		"CREWSCHED_LOG_LEVEL":     &c.Log.Level,
		"CREWSCHED_ENGINE":        &c.Parser.Engine,
		"CREWSCHED_CACHE_MAX_AGE": &c.Cache.MaxAgeStr,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*field = v
		}
	}
	if v, ok := os.LookupEnv("CREWSCHED_LOG_DEVELOPMENT"); ok {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("failed to parse CREWSCHED_LOG_DEVELOPMENT: %w", err)
		}
		c.Log.Development = dev
	}
	if v, ok := os.LookupEnv("CREWSCHED_REQUESTS_PER_MINUTE"); ok {
		rpm, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse CREWSCHED_REQUESTS_PER_MINUTE: %w", err)
		}
		c.Portal.RequestsPerMinuteSet = &rpm
	}
	return nil
}

func (c *Config) parseDurations() error {
	durations := []struct {
		name string
		src  string
		dst  *time.Duration
	}{
		{"server.read_timeout", c.Server.ReadTimeoutStr, &c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeoutStr, &c.Server.WriteTimeout},
		{"portal.retry_delay", c.Portal.RetryDelayStr, &c.Portal.RetryDelay},
		{"portal.timeout", c.Portal.TimeoutStr, &c.Portal.Timeout},
		{"cache.max_age", c.Cache.MaxAgeStr, &c.Cache.MaxAge},
	}
	for _, d := range durations {
		if d.src == "" {
			continue
		}
		v, err := time.ParseDuration(d.src)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", d.name, err)
		}
		*d.dst = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" && c.Database.DSN == "" {
		c.Database.Path = "crewsched.db"
	}
	c.Portal.RequestsPerMinute = 6
	if c.Portal.RequestsPerMinuteSet != nil {
		c.Portal.RequestsPerMinute = *c.Portal.RequestsPerMinuteSet
	}
	if c.Portal.MaxAttempts == 0 {
		c.Portal.MaxAttempts = 5
	}
	if c.Portal.RetryDelay == 0 {
		c.Portal.RetryDelay = 10 * time.Second
	}
	if c.Portal.Timeout == 0 {
		c.Portal.Timeout = 30 * time.Second
	}
	if c.Portal.StillBuildingMarker == "" {
		c.Portal.StillBuildingMarker = "is being built"
	}
	if c.Parser.Engine == "" {
		c.Parser.Engine = "goquery"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Parser.Engine {
	case "goquery", "sandbox":
	default:
		return fmt.Errorf("unsupported parser engine %q", c.Parser.Engine)
	}
	if c.Portal.MaxAttempts < 0 {
		return fmt.Errorf("portal max_attempts must not be negative")
	}
	return nil
}

// MySQLDSN builds the go-sql-driver DSN when no explicit DSN is configured.
func (d DatabaseConfig) MySQLDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.DBName,
	)
}

// SQLiteDSN returns the DSN or file path for modernc.org/sqlite.
func (d DatabaseConfig) SQLiteDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return d.Path
}
