// internal/workers/matching/calculate-compatibility/config.go
package calculatecompatibility

import (
	"time"

	"lovefi-matcher/internal/common/config"
	"lovefi-matcher/internal/compatibility"
)

type Config struct {
	CacheTTL    time.Duration
	Timeout     time.Duration
	DefaultMode compatibility.Mode
	MaxRetries  int
}

// LoadConfig derives the worker settings from the application config. A nil
// cfg yields the built-in defaults.
func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		CacheTTL:    5 * time.Minute,
		Timeout:     10 * time.Second,
		DefaultMode: compatibility.ModeMessage,
		MaxRetries:  3,
	}
	if cfg == nil {
		return c
	}

	if ttl := cfg.Database.Redis.CacheTTL; ttl > 0 {
		c.CacheTTL = time.Duration(ttl) * time.Second
	}
	w := config.GetWorkerConfig(cfg, TaskType)
	if w.Timeout > 0 {
		c.Timeout = config.GetDuration(w.Timeout)
	}
	if w.MaxRetries > 0 {
		c.MaxRetries = w.MaxRetries
	}
	if mode, err := compatibility.ParseMode(cfg.Scoring.DefaultMode); err == nil {
		c.DefaultMode = mode
	}
	return c
}
