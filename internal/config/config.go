// Package config provides configuration loading and management for timeline.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/metalagman/timeline/internal/planner"
	"github.com/metalagman/timeline/internal/reducer"
)

// Config is the root configuration.
type Config struct {
	View   ViewConfig   `json:"view"   mapstructure:"view"`
	Engine EngineConfig `json:"engine" mapstructure:"engine"`
	Server ServerConfig `json:"server" mapstructure:"server"`
}

// ViewConfig describes the default timeline window.
type ViewConfig struct {
	Mode      string `json:"mode"                 mapstructure:"mode"`
	PreSteps  int    `json:"pre_steps"            mapstructure:"pre_steps"`
	WeekStart string `json:"week_start,omitempty" mapstructure:"week_start"`
}

// EngineConfig holds reducer policies.
type EngineConfig struct {
	CascadeChildren        bool   `json:"cascade_children"         mapstructure:"cascade_children"`
	ChildPolicy            string `json:"child_policy"             mapstructure:"child_policy"`
	RejectDependencyCycles bool   `json:"reject_dependency_cycles" mapstructure:"reject_dependency_cycles"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string        `json:"addr"         mapstructure:"addr"`
	ReadTimeout time.Duration `json:"read_timeout" mapstructure:"read_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		View: ViewConfig{
			Mode:      string(planner.Day),
			PreSteps:  1,
			WeekStart: "sunday",
		},
		Engine: EngineConfig{
			ChildPolicy: string(reducer.PromoteChildren),
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			ReadTimeout: 15 * time.Second,
		},
	}
}

// Defaults returns Default as raw settings, in the shape of a config file.
func Defaults() map[string]any {
	d := Default()
	return map[string]any{
		"view": map[string]any{
			"mode":       d.View.Mode,
			"pre_steps":  d.View.PreSteps,
			"week_start": d.View.WeekStart,
		},
		"engine": map[string]any{
			"cascade_children":         d.Engine.CascadeChildren,
			"child_policy":             d.Engine.ChildPolicy,
			"reject_dependency_cycles": d.Engine.RejectDependencyCycles,
		},
		"server": map[string]any{
			"addr":         d.Server.Addr,
			"read_timeout": d.Server.ReadTimeout.String(),
		},
	}
}

// Validate checks values the schema cannot express.
func (c Config) Validate() error {
	if _, err := c.ViewMode(); err != nil {
		return fmt.Errorf("view.mode: %w", err)
	}
	if c.View.PreSteps < 0 {
		return fmt.Errorf("view.pre_steps: %w", planner.ErrNegativePreSteps)
	}
	if _, err := c.WeekStart(); err != nil {
		return fmt.Errorf("view.week_start: %w", err)
	}
	if _, err := c.ChildPolicy(); err != nil {
		return fmt.Errorf("engine.child_policy: %w", err)
	}
	if c.Server.ReadTimeout < 0 {
		return errors.New("server.read_timeout must not be negative")
	}
	return nil
}

// ViewMode returns the configured view mode.
func (c Config) ViewMode() (planner.ViewMode, error) {
	return planner.ParseViewMode(c.View.Mode)
}

// WeekStart returns the configured first day of the week. Sunday when unset.
func (c Config) WeekStart() (time.Weekday, error) {
	if c.View.WeekStart == "" {
		return time.Sunday, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), c.View.WeekStart) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", c.View.WeekStart)
}

// ChildPolicy returns the configured delete policy. Promote when unset.
func (c Config) ChildPolicy() (reducer.ChildPolicy, error) {
	if c.Engine.ChildPolicy == "" {
		return reducer.PromoteChildren, nil
	}
	return reducer.ParseChildPolicy(c.Engine.ChildPolicy)
}

// ReducerOptions translates the engine section into reducer options.
func (c Config) ReducerOptions() []reducer.Option {
	policy, err := c.ChildPolicy()
	if err != nil {
		policy = reducer.PromoteChildren
	}
	return []reducer.Option{
		reducer.WithCascade(c.Engine.CascadeChildren),
		reducer.WithChildPolicy(policy),
		reducer.WithCycleCheck(c.Engine.RejectDependencyCycles),
	}
}
