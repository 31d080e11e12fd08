// Package variant renders sets of color variants of textures, e.g. one copy
// of every unit texture per team color.
package variant

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/MeKo-Tech/texrecolor/internal/colorconv"
	"github.com/MeKo-Tech/texrecolor/internal/worker"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Set is the configuration of a variant set as read from the config file.
type Set struct {
	Name         string            `mapstructure:"name"`
	Base         string            `mapstructure:"base"`
	Colors       map[string]string `mapstructure:"colors"`
	ValidateMask bool              `mapstructure:"validate_mask"`
	IgnoreBright bool              `mapstructure:"ignore_bright"`
}

// Resolved is a Set with parsed colors.
type Resolved struct {
	Name         string
	Base         colorconv.RGB
	Colors       map[string]colorconv.RGB
	ValidateMask bool
	IgnoreBright bool
}

// Resolve parses and validates the colors of s.
func (s Set) Resolve() (Resolved, error) {
	base, err := colorconv.Parse(s.Base)
	if err != nil {
		return Resolved{}, fmt.Errorf("base color: %w", err)
	}
	if len(s.Colors) == 0 {
		return Resolved{}, fmt.Errorf("variant set %q has no colors", s.Name)
	}

	colors := make(map[string]colorconv.RGB, len(s.Colors))
	for name, value := range s.Colors {
		if !namePattern.MatchString(name) {
			return Resolved{}, fmt.Errorf("invalid variant name %q", name)
		}
		c, err := colorconv.Parse(value)
		if err != nil {
			return Resolved{}, fmt.Errorf("variant %s: %w", name, err)
		}
		colors[name] = c
	}

	return Resolved{
		Name:         s.Name,
		Base:         base,
		Colors:       colors,
		ValidateMask: s.ValidateMask,
		IgnoreBright: s.IgnoreBright,
	}, nil
}

// Names returns the variant names in sorted order.
func (r Resolved) Names() []string {
	names := make([]string, 0, len(r.Colors))
	for name := range r.Colors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tasks expands textures x variants into worker tasks, texture-major.
func (r Resolved) Tasks(textures []string, force bool) []worker.Task {
	names := r.Names()
	tasks := make([]worker.Task, 0, len(textures)*len(names))
	for _, tex := range textures {
		for _, name := range names {
			tasks = append(tasks, worker.Task{Texture: tex, Variant: name, Force: force})
		}
	}
	return tasks
}
