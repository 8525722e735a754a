/*
Package factory provides JSON to Go pay configuration conversion.

PURPOSE:
  Converts JSON project pay definitions into timecard.PayConfig values and
  serves them to the engine as a timecard.ConfigProvider. Payroll can set
  rates and break policies per project without code changes.

JSON SCHEMA:
  {
    "project_id": "spring-tour",
    "pay_rate": "25.00",
    "time_type": "hourly",
    "default_break_minutes": 30,
    "grace_minutes": 5
  }

DEFAULTS:
  - time_type: hourly
  - default_break_minutes: the provider's fallback (30 unless configured)
  - grace_minutes: 0 or absent means the standard 5 minute grace

USAGE:
  provider := factory.NewProjectConfigProvider(store, factory.Defaults{
      DefaultBreak: 30 * time.Minute,
      GracePeriod:  5 * time.Minute,
  })
  engine := timecard.NewEngine(store, timecard.WithConfigProvider(provider))

SEE ALSO:
  - timecard/types.go: PayConfig type definition
  - store/sqlite/sqlite.go: projects table
*/
package factory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/timecard-engine/timecard"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PayConfigJSON is the JSON representation of a project's pay configuration.
type PayConfigJSON struct {
	ProjectID           string          `json:"project_id,omitempty"`
	PayRate             decimal.Decimal `json:"pay_rate"`
	TimeType            string          `json:"time_type,omitempty"` // hourly, daily
	DefaultBreakMinutes *int            `json:"default_break_minutes,omitempty"`
	GraceMinutes        *int            `json:"grace_minutes,omitempty"`
}

// Defaults fill in whatever a project's JSON leaves out.
type Defaults struct {
	DefaultBreak time.Duration
	GracePeriod  time.Duration
}

// ParsePayConfig parses a JSON string into a PayConfig.
func ParsePayConfig(jsonStr string, defaults Defaults) (timecard.PayConfig, error) {
	var pj PayConfigJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return timecard.PayConfig{}, fmt.Errorf("failed to parse pay config JSON: %w", err)
	}
	return FromJSON(pj, defaults)
}

// FromJSON converts PayConfigJSON to timecard.PayConfig.
func FromJSON(pj PayConfigJSON, defaults Defaults) (timecard.PayConfig, error) {
	cfg := timecard.PayConfig{
		PayRate:      pj.PayRate,
		TimeType:     timecard.TimeType(pj.TimeType),
		DefaultBreak: defaults.DefaultBreak,
		GracePeriod:  defaults.GracePeriod,
	}
	if cfg.TimeType == "" {
		cfg.TimeType = timecard.TimeTypeHourly
	}
	if !cfg.TimeType.Valid() {
		return cfg, invalid("unknown time_type %q", pj.TimeType)
	}
	if cfg.PayRate.IsNegative() {
		return cfg, invalid("pay_rate %s is negative", cfg.PayRate)
	}

	if pj.DefaultBreakMinutes != nil {
		if *pj.DefaultBreakMinutes < 0 {
			return cfg, invalid("default_break_minutes must not be negative")
		}
		cfg.DefaultBreak = time.Duration(*pj.DefaultBreakMinutes) * time.Minute
	}
	if pj.GraceMinutes != nil {
		if *pj.GraceMinutes < 0 {
			return cfg, invalid("grace_minutes must not be negative")
		}
		cfg.GracePeriod = time.Duration(*pj.GraceMinutes) * time.Minute
	}
	if cfg.GracePeriod == 0 {
		cfg.GracePeriod = timecard.DefaultGracePeriod
	}
	return cfg, nil
}

func invalid(format string, args ...any) error {
	return &timecard.Error{Kind: timecard.KindInvalidConfig, Message: fmt.Sprintf(format, args...)}
}

// ToJSON converts a PayConfig back to its JSON form.
func ToJSON(project timecard.ProjectID, cfg timecard.PayConfig) PayConfigJSON {
	breakMin := int(cfg.DefaultBreak / time.Minute)
	graceMin := int(cfg.GracePeriod / time.Minute)
	return PayConfigJSON{
		ProjectID:           string(project),
		PayRate:             cfg.PayRate,
		TimeType:            string(cfg.TimeType),
		DefaultBreakMinutes: &breakMin,
		GraceMinutes:        &graceMin,
	}
}

// =============================================================================
// PROJECT CONFIG PROVIDER
// =============================================================================

// ConfigSource loads the raw JSON configuration of a project.
type ConfigSource interface {
	ProjectConfigJSON(ctx context.Context, id timecard.ProjectID) (configJSON string, found bool, err error)
}

// ProjectConfigProvider implements timecard.ConfigProvider over a ConfigSource.
// Projects without stored configuration get an hourly, zero-rate config
// with the default break policy.
type ProjectConfigProvider struct {
	source   ConfigSource
	defaults Defaults
}

// NewProjectConfigProvider creates a provider.
func NewProjectConfigProvider(source ConfigSource, defaults Defaults) *ProjectConfigProvider {
	return &ProjectConfigProvider{source: source, defaults: defaults}
}

func (p *ProjectConfigProvider) PayConfig(ctx context.Context, project timecard.ProjectID) (timecard.PayConfig, error) {
	raw, found, err := p.source.ProjectConfigJSON(ctx, project)
	if err != nil {
		return timecard.PayConfig{}, fmt.Errorf("failed to load project config: %w", err)
	}
	if !found {
		return FromJSON(PayConfigJSON{}, p.defaults)
	}
	return ParsePayConfig(raw, p.defaults)
}
