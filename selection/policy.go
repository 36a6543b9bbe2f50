// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import (
	"errors"
	"fmt"
)

// Verdict is the outcome of an admission check.
type Verdict int

const (
	Admit Verdict = iota
	RejectLimitReached
	RejectDuplicate
	RejectNoBlockSelected
)

func (v Verdict) String() string {
	switch v {
	case Admit:
		return "admit"
	case RejectLimitReached:
		return "limit_reached"
	case RejectDuplicate:
		return "duplicate"
	case RejectNoBlockSelected:
		return "no_block_selected"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

var (
	ErrTooManyOnCampus  = errors.New("too many on-campus residences selected")
	ErrOnCampusQuota    = errors.New("on-campus application limit exceeded")
	ErrDuplicateInBatch = errors.New("duplicate application for the same residence")
)

// Policy answers whether a residence may be added to a set.
type Policy struct {
	cfg Config
}

func NewPolicy(cfg Config) Policy {
	return Policy{cfg: cfg.withDefaults()}
}

func (p Policy) Config() Config {
	return p.cfg
}

func (p Policy) IsOnCampus(residence string) bool {
	return p.cfg.Classifier.OnCampus(residence)
}

// OnCampusLimitReached reports whether no further on-campus residence fits.
func (p Policy) OnCampusLimitReached(s *Set) bool {
	return s.OnCampusCount() >= p.cfg.MaxOnCampus
}

// CanApply checks a prospective choice against the current set. Checks run
// in a fixed order: on-campus limit, missing block, duplicate label.
// Off-campus residences are never limited here; overall capacity is the
// set's concern (Set.Add returns ErrSetFull).
func (p Policy) CanApply(s *Set, residence, block string, requiresBlock bool) Verdict {
	if p.IsOnCampus(residence) && p.OnCampusLimitReached(s) {
		return RejectLimitReached
	}
	if requiresBlock && block == "" {
		return RejectNoBlockSelected
	}
	if s.Contains(Choice{Residence: residence, Block: block}.Label()) {
		return RejectDuplicate
	}
	return Admit
}

// ValidateBatch re-checks a whole submission server side. onCampus holds the
// classification of each requested residence; existingOnCampus counts the
// student's on-campus applications already on file.
func (p Policy) ValidateBatch(existingOnCampus int, onCampus []bool) error {
	requested := 0
	for _, oc := range onCampus {
		if oc {
			requested++
		}
	}
	if requested > p.cfg.MaxOnCampus {
		return fmt.Errorf("%w (max %d)", ErrTooManyOnCampus, p.cfg.MaxOnCampus)
	}
	if existingOnCampus+requested > p.cfg.MaxOnCampus {
		return fmt.Errorf("%w (max %d)", ErrOnCampusQuota, p.cfg.MaxOnCampus)
	}
	return nil
}
