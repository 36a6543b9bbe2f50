// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package portal

import (
	"fmt"

	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/selection"
)

const (
	PlaceholderNoSelection = "No residences selected yet"

	LabelSelect        = "Select Residence"
	LabelSelected      = "Selected"
	ReasonOnCampusFull = "On-campus limit reached"
)

// Residence is one card on the selection page. A residence with Blocks
// requires a block before it can be applied for.
type Residence struct {
	Name     string
	Blocks   []string
	OnCampus bool
}

func (r Residence) RequiresBlock() bool {
	return len(r.Blocks) > 0
}

// ResidencesFromCatalog groups catalog rows by residence name, keeping the
// catalog order of first appearance.
func ResidencesFromCatalog(rows []models.Residence) []Residence {
	var out []Residence
	index := map[string]int{}
	for _, r := range rows {
		i, ok := index[r.ResidenceName]
		if !ok {
			i = len(out)
			index[r.ResidenceName] = i
			out = append(out, Residence{Name: r.ResidenceName, OnCampus: r.OnCampus})
		}
		if r.Block != "" {
			out[i].Blocks = append(out[i].Blocks, r.Block)
		}
	}
	return out
}

// FlagClassifier builds a classifier from the catalog's on_campus flags.
func FlagClassifier(residences []Residence) selection.FlagClassifier {
	c := make(selection.FlagClassifier, len(residences))
	for _, r := range residences {
		c[r.Name] = r.OnCampus
	}
	return c
}

// State is everything Render needs.
type State struct {
	Config     selection.Config
	Choices    []selection.Choice
	Residences []Residence
	// Blocks holds the block currently chosen on each card.
	Blocks     map[string]string
	Submitting bool
}

// SelectionView is the rendered selection page.
type SelectionView struct {
	Rows          []Row
	Placeholder   string
	Counter       string
	Progress      float64
	ProgressLabel string
	SubmitEnabled bool
	Cards         []Card
}

// Row is one pending choice; removing it dispatches RemoveEvent{Index}.
type Row struct {
	Index int
	Label string
}

type Card struct {
	Residence string
	Blocks    []string
	Block     string
	OnCampus  bool
	Selected  bool
	Disabled  bool
	// Label is the apply affordance text; Reason explains a disabled card
	// that is not selected.
	Label  string
	Reason string
}

func (v SelectionView) IsEmpty() bool {
	return len(v.Rows) == 0
}

// Render computes the view for a state. It has no side effects and equal
// states render equal views.
func Render(s State) SelectionView {
	limit := s.Config.MaxSelections
	if limit <= 0 {
		limit = selection.DefaultMaxSelections
	}
	maxOnCampus := s.Config.MaxOnCampus
	if maxOnCampus <= 0 {
		maxOnCampus = selection.DefaultMaxOnCampus
	}
	classifier := s.Config.Classifier
	if classifier == nil {
		classifier = selection.DefaultClassifier()
	}

	count := len(s.Choices)
	onCampus := 0
	selected := map[string]bool{}
	for _, c := range s.Choices {
		if classifier.OnCampus(c.Residence) {
			onCampus++
		}
		selected[c.Residence] = true
	}

	v := SelectionView{
		Counter:       fmt.Sprintf("%d/%d Selected", count, limit),
		Progress:      float64(count) / float64(limit) * 100,
		ProgressLabel: fmt.Sprintf("%d/%d", count, limit),
		SubmitEnabled: count == limit && !s.Submitting,
	}

	if count == 0 {
		v.Placeholder = PlaceholderNoSelection
	}
	for i, c := range s.Choices {
		v.Rows = append(v.Rows, Row{Index: i, Label: c.Label()})
	}

	for _, r := range s.Residences {
		card := Card{
			Residence: r.Name,
			Blocks:    r.Blocks,
			Block:     s.Blocks[r.Name],
			OnCampus:  classifier.OnCampus(r.Name),
			Label:     LabelSelect,
		}
		switch {
		case selected[r.Name]:
			card.Selected = true
			card.Disabled = true
			card.Label = LabelSelected
		case card.OnCampus && onCampus >= maxOnCampus:
			card.Disabled = true
			card.Label = ReasonOnCampusFull
			card.Reason = ReasonOnCampusFull
		}
		v.Cards = append(v.Cards, card)
	}

	return v
}
