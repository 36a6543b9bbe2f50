// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/univen/housing-portal/client"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/portal"
	"github.com/univen/housing-portal/selection"
	"github.com/univen/housing-portal/testutil/apitest"
)

func cardIndex(t *testing.T, m Model, residence string) int {
	t.Helper()
	for i, c := range m.Page().View().Cards {
		if c.Residence == residence {
			return i
		}
	}
	t.Fatalf("no card for %q", residence)
	return -1
}

func TestModel_AgainstServer(t *testing.T) {
	srv := apitest.New(t)
	srv.Student(t, "20230001")
	ctx := context.Background()

	c, err := client.New(srv.URL)
	require.NoError(t, err)
	_, err = c.Login(ctx, models.LoginRequest{Username: "20230001", Password: "password1", UserType: models.UserStudent})
	require.NoError(t, err)

	catalog, err := c.Residences(ctx, "", nil)
	require.NoError(t, err)
	residences := portal.ResidencesFromCatalog(catalog)

	m := NewModel(c, Config{
		Selection:     selection.Config{Classifier: portal.FlagClassifier(residences)},
		Residences:    residences,
		NotifyDelay:   time.Minute,
		RedirectDelay: -1,
	})
	t.Cleanup(m.Close)

	m.cursor = cardIndex(t, m, "DBSA Male")
	m = press(t, m, keyRight, keyRight, keyEnter)
	m.cursor = cardIndex(t, m, "Grand Royale")
	m = press(t, m, keyEnter)
	require.Equal(t, 2, m.Page().Count())

	m, cmd := update(t, m, runes("s"))
	require.NotNil(t, cmd)
	done := cmd().(submitDoneMsg)
	require.NoError(t, done.err)

	m, cmd = update(t, m, keyTab)
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.Len(t, m.apps, 2)

	var labels []string
	for _, r := range m.apps {
		labels = append(labels, r.Label)
		assert.Equal(t, models.StatusPending, r.Status)
		assert.False(t, r.Local, "server rows replace the local record")
	}
	assert.ElementsMatch(t, []string{"DBSA Male - M-2", "Grand Royale"}, labels)
}
