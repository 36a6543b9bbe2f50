// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package portal is the student-facing side of the housing portal, free of
any particular UI toolkit.

# Selection Page

A Page owns one selection session: the pending choices, the block chosen on
each residence card and the in-flight submit guard. Front ends feed it
events and receive rendered views:

	page := portal.NewPage(api, portal.Options{
		Residences: portal.ResidencesFromCatalog(catalog),
		Renderer:   portal.RendererFunc(draw),
		Navigator:  portal.NavigatorFunc(goTo),
		Notifier:   portal.NewNotifier(presenter, portal.DefaultNotifyDelay),
	})
	page.Dispatch(ctx, portal.SelectBlockEvent{Residence: "DBSA Male", Block: "M-1"})
	page.Dispatch(ctx, portal.ApplyEvent{Residence: "DBSA Male"})

Render is a pure function of State. The page calls it after every mutation
and hands the result to its Renderer before the mutating call returns.

# Submission

Submit sends nothing unless exactly MaxSelections choices are pending and no
other submit is running. On success the choices are cleared, a local
SubmittedRecord is kept and the Navigator is sent to DashboardPath after
RedirectDelay. On failure the choices are kept. An expired session sends the
Navigator to LoginPath.

# Password Reset

ResetFlow validates the form fields, requests and verifies codes, and runs a
Countdown that re-requests the code once each time it expires.
*/
package portal
