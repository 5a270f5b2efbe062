package config

import (
	"errors"
	"time"
	_ "time/tzdata" // reference timezones must resolve on hosts without zoneinfo

	"github.com/rezkam/taskflow/internal/domain"
)

// ClockConfig holds configuration of the network time source and the
// reference timezone used for all day-boundary arithmetic.
type ClockConfig struct {
	// TimeURL receives HEAD requests; its Date header is the network time.
	// Empty disables the network source and uses the local clock.
	TimeURL  string        `env:"TASKFLOW_CLOCK_URL" default:"https://www.google.com/"`
	Timeout  time.Duration `env:"TASKFLOW_CLOCK_TIMEOUT" default:"2s"`
	CacheTTL time.Duration `env:"TASKFLOW_CLOCK_CACHE_TTL" default:"5m"` // 0 = fetch every time

	// ReferenceZone is parsed from an IANA name. Nil means fixed UTC+8.
	ReferenceZone *time.Location `env:"TASKFLOW_REFERENCE_TIMEZONE"`
}

// Validate validates the clock configuration.
func (c *ClockConfig) Validate() error {
	if c.Timeout < 0 || c.CacheTTL < 0 {
		return errors.New("clock timeout and cache TTL must not be negative")
	}
	return nil
}

// Location returns the reference timezone.
func (c *ClockConfig) Location() *time.Location {
	if c.ReferenceZone == nil {
		return domain.DefaultReferenceLocation
	}
	return c.ReferenceZone
}
