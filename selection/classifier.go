// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

// Classifier decides whether a residence is on campus.
type Classifier interface {
	OnCampus(residence string) bool
}

// defaultOnCampus is the residence list the portal has always treated as
// on campus. Keep it byte-for-byte stable; selection pages and saved
// selections depend on these exact names.
var defaultOnCampus = []string{
	"DBSA Female", "New Female", "Lost City Girls", "F2", "F3", "F4", "F5", "F6",
	"DBSA Male", "New Male", "Lost City Boys", "M1", "M2", "M3", "M4", "M5", "M6",
}

// DefaultOnCampusResidences returns a copy of the built-in on-campus names.
func DefaultOnCampusResidences() []string {
	out := make([]string, len(defaultOnCampus))
	copy(out, defaultOnCampus)
	return out
}

// StaticClassifier classifies by membership in a fixed name list.
type StaticClassifier map[string]struct{}

func NewStaticClassifier(names ...string) StaticClassifier {
	c := make(StaticClassifier, len(names))
	for _, n := range names {
		c[n] = struct{}{}
	}
	return c
}

// DefaultClassifier returns the built-in static classifier.
func DefaultClassifier() StaticClassifier {
	return NewStaticClassifier(defaultOnCampus...)
}

func (c StaticClassifier) OnCampus(residence string) bool {
	_, ok := c[residence]
	return ok
}

// FlagClassifier classifies by the server-supplied on_campus flag, keyed by
// residence name. Unknown residences are off campus.
type FlagClassifier map[string]bool

func (c FlagClassifier) OnCampus(residence string) bool {
	return c[residence]
}
