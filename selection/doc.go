// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package selection holds residence choices and decides which ones are admissible.

# Sets

A Set is the ordered list of residences a student has picked but not yet
submitted. It never holds more than Config.MaxSelections choices, never two
choices with the same label, and never more than Config.MaxOnCampus on-campus
residences:

	s := selection.NewSet(selection.DefaultConfig())
	err := s.Add(selection.Choice{Residence: "DBSA Male", Block: "M-1"})

# Policy

Policy.CanApply runs the admission checks in order and returns a Verdict:

	RejectLimitReached    on-campus residence while the on-campus cap is reached
	RejectNoBlockSelected residence has blocks and none was picked
	RejectDuplicate       label already selected
	Admit                 anything else

Off-campus residences are never limited by the policy. Config.MaxOffCampus is
carried for configuration parity but no rule reads it.

The server validates whole submissions with Policy.ValidateBatch.

# Classification

On-campus classification is a Classifier. StaticClassifier reproduces the
built-in name list; FlagClassifier uses the on_campus flag the API returns for
each residence.
*/
package selection
