// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import (
	"errors"
	"fmt"
)

const (
	DefaultMaxSelections = 2
	DefaultMaxOnCampus   = 2
	// DefaultMaxOffCampus is carried in Config but no rule reads it.
	DefaultMaxOffCampus = 2
)

var (
	ErrInvalidIndex  = errors.New("invalid application index")
	ErrDuplicate     = errors.New("residence already selected")
	ErrSetFull       = errors.New("selection limit reached")
	ErrOnCampusLimit = errors.New("on-campus limit reached")
)

// Choice is one pending (not yet submitted) residence selection.
type Choice struct {
	Residence string `json:"residence_name"`
	Block     string `json:"block"`
}

// Label returns the display label, "Residence" or "Residence - Block".
func (c Choice) Label() string {
	if c.Block == "" {
		return c.Residence
	}
	return c.Residence + " - " + c.Block
}

// Config parametrises a selection component.
type Config struct {
	MaxSelections int
	MaxOnCampus   int
	MaxOffCampus  int
	Classifier    Classifier
}

// DefaultConfig returns the portal's limits with the static on-campus list.
func DefaultConfig() Config {
	return Config{
		MaxSelections: DefaultMaxSelections,
		MaxOnCampus:   DefaultMaxOnCampus,
		MaxOffCampus:  DefaultMaxOffCampus,
		Classifier:    DefaultClassifier(),
	}
}

func (c Config) withDefaults() Config {
	if c.MaxSelections <= 0 {
		c.MaxSelections = DefaultMaxSelections
	}
	if c.MaxOnCampus <= 0 {
		c.MaxOnCampus = DefaultMaxOnCampus
	}
	if c.MaxOffCampus <= 0 {
		c.MaxOffCampus = DefaultMaxOffCampus
	}
	if c.Classifier == nil {
		c.Classifier = DefaultClassifier()
	}
	return c
}

// Set is the ordered list of pending choices for one page session.
// It is not safe for concurrent use; owners serialise access.
type Set struct {
	cfg     Config
	choices []Choice
}

func NewSet(cfg Config) *Set {
	cfg = cfg.withDefaults()
	return &Set{cfg: cfg, choices: make([]Choice, 0, cfg.MaxSelections)}
}

// Config returns the effective configuration.
func (s *Set) Config() Config {
	return s.cfg
}

func (s *Set) Count() int {
	return len(s.choices)
}

func (s *Set) OnCampusCount() int {
	n := 0
	for _, c := range s.choices {
		if s.cfg.Classifier.OnCampus(c.Residence) {
			n++
		}
	}
	return n
}

func (s *Set) OffCampusCount() int {
	return len(s.choices) - s.OnCampusCount()
}

// Full reports whether the set holds MaxSelections choices.
func (s *Set) Full() bool {
	return len(s.choices) >= s.cfg.MaxSelections
}

// Contains reports whether a choice with the given label is selected.
func (s *Set) Contains(label string) bool {
	for _, c := range s.choices {
		if c.Label() == label {
			return true
		}
	}
	return false
}

// ContainsResidence reports whether any block of the residence is selected.
func (s *Set) ContainsResidence(residence string) bool {
	for _, c := range s.choices {
		if c.Residence == residence {
			return true
		}
	}
	return false
}

// Add appends a choice. The set refuses anything that would break its
// invariants: capacity, unique labels, and the on-campus cap.
func (s *Set) Add(c Choice) error {
	if s.Full() {
		return fmt.Errorf("%w: at most %d residences", ErrSetFull, s.cfg.MaxSelections)
	}
	if s.Contains(c.Label()) {
		return fmt.Errorf("%w: %s", ErrDuplicate, c.Label())
	}
	if s.cfg.Classifier.OnCampus(c.Residence) && s.OnCampusCount() >= s.cfg.MaxOnCampus {
		return fmt.Errorf("%w: at most %d on-campus residences", ErrOnCampusLimit, s.cfg.MaxOnCampus)
	}
	s.choices = append(s.choices, c)
	return nil
}

// RemoveAt deletes the choice at index i and returns it.
func (s *Set) RemoveAt(i int) (Choice, error) {
	if i < 0 || i >= len(s.choices) {
		return Choice{}, fmt.Errorf("%w: %d", ErrInvalidIndex, i)
	}
	removed := s.choices[i]
	s.choices = append(s.choices[:i], s.choices[i+1:]...)
	return removed, nil
}

// Choices returns a copy of the current choices in selection order.
func (s *Set) Choices() []Choice {
	out := make([]Choice, len(s.choices))
	copy(out, s.choices)
	return out
}

// Labels returns the display labels in selection order.
func (s *Set) Labels() []string {
	out := make([]string, len(s.choices))
	for i, c := range s.choices {
		out[i] = c.Label()
	}
	return out
}

// Reset empties the set.
func (s *Set) Reset() {
	s.choices = s.choices[:0]
}
