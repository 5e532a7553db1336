package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// TimeOfDay is a wall-clock time with no date, parsed from "HH:MM".
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	str := strings.TrimSpace(string(text))
	parsed, err := time.Parse("15:04", str)
	if err != nil {
		return fmt.Errorf("invalid time of day %q: expected 'HH:MM'", str)
	}
	t.Hour = parsed.Hour()
	t.Minute = parsed.Minute()
	return nil
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns the time of day as minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// On anchors the time of day onto the calendar date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

// IsZero reports whether the value was never set.
func (t TimeOfDay) IsZero() bool {
	return t.Hour == 0 && t.Minute == 0
}

// Windows holds the away-detection exclusion windows. The monitor and the
// calculator each hold their own copy; the value crosses the process
// boundary by explicit sync, never by reference.
type Windows struct {
	LunchStart TimeOfDay `toml:"lunch_start"`
	LunchEnd   TimeOfDay `toml:"lunch_end"`
	WorkEnd    TimeOfDay `toml:"work_end"`
}

// Validate rejects windows that are out of order. Every surface that
// accepts windows (config load, pushed updates) runs this first.
func (w Windows) Validate() error {
	if w.LunchStart.Minutes() >= w.LunchEnd.Minutes() {
		return fmt.Errorf("lunch_start %s must be before lunch_end %s",
			w.LunchStart, w.LunchEnd)
	}
	if w.LunchEnd.Minutes() > w.WorkEnd.Minutes() {
		return fmt.Errorf("lunch_end %s must not be after work_end %s",
			w.LunchEnd, w.WorkEnd)
	}
	return nil
}

// Excluded reports whether now falls in an exclusion window: inside
// [lunch_start, lunch_end) or at/after work_end.
func (w Windows) Excluded(now time.Time) bool {
	cur := now.Hour()*60 + now.Minute()
	if cur >= w.LunchStart.Minutes() && cur < w.LunchEnd.Minutes() {
		return true
	}
	return cur >= w.WorkEnd.Minutes()
}

type DatabaseConfig struct {
	// DSN may be left empty and assembled from DB_* environment
	// variables instead (see DSNFromEnv).
	DSN string `toml:"dsn"`
}

type MailConfig struct {
	Enabled bool     `toml:"enabled"`
	Host    string   `toml:"host"`
	Port    int      `toml:"port"`
	From    string   `toml:"from"`
	To      []string `toml:"to"`
	Subject string   `toml:"subject"`
}

type APIConfig struct {
	Listen string `toml:"listen"`
}

type Config struct {
	// UserID identifies the workstation owner in the shared store.
	UserID   string         `toml:"user_id"`
	UserName string         `toml:"user_name"`
	Windows  Windows        `toml:"windows"`
	Database DatabaseConfig `toml:"database"`
	Mail     MailConfig     `toml:"mail"`
	API      APIConfig      `toml:"api"`
}

// SetDefault fills in anything the config file left out.
func (c *Config) SetDefault() {
	if c.Windows.LunchStart.IsZero() {
		c.Windows.LunchStart = TimeOfDay{Hour: 11, Minute: 30}
	}
	if c.Windows.LunchEnd.IsZero() {
		c.Windows.LunchEnd = TimeOfDay{Hour: 13}
	}
	if c.Windows.WorkEnd.IsZero() {
		c.Windows.WorkEnd = TimeOfDay{Hour: 18}
	}
	if c.API.Listen == "" {
		c.API.Listen = ":8080"
	}
	if c.Mail.Subject == "" {
		c.Mail.Subject = "Attendance reconciliation report"
	}
}

func (c *Config) validate() error {
	return c.Windows.Validate()
}

func LoadFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfg Config
	if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.SetDefault()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.SetDefault()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DSNFromEnv builds a MySQL DSN from DB_* environment variables when the
// config file carries none. Returns the configured DSN untouched otherwise.
func (c *Config) DSNFromEnv() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASS"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
	)
}
