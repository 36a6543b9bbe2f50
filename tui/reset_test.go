// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/univen/housing-portal/client"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/portal"
	"github.com/univen/housing-portal/resetstore"
	"github.com/univen/housing-portal/testutil/apitest"
)

func resetUpdate(t *testing.T, m ResetModel, msg tea.Msg) (ResetModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	rm, ok := next.(ResetModel)
	require.True(t, ok)
	return rm, cmd
}

// enter presses enter and feeds the resulting command's message back.
func enter(t *testing.T, m ResetModel) ResetModel {
	t.Helper()
	m, cmd := resetUpdate(t, m, keyEnter)
	require.NotNil(t, cmd)
	m, _ = resetUpdate(t, m, cmd())
	return m
}

func TestResetModel_Student(t *testing.T) {
	srv := apitest.New(t)
	srv.Student(t, "20230001")

	c, err := client.New(srv.URL)
	require.NoError(t, err)

	m := NewResetModel(c, ResetConfig{})
	t.Cleanup(m.Close)
	assert.Contains(t, m.View(), "Student number")

	m = enter(t, m)
	assert.Equal(t, stepIdentify, m.step)
	assert.Contains(t, m.View(), portal.ErrStudentNumber.Error())

	m, _ = resetUpdate(t, m, runes("20230001"))
	m = enter(t, m)
	require.Equal(t, stepVerify, m.step)
	assert.Contains(t, m.View(), "20230001@mvula.univen.ac.za")
	assert.Contains(t, m.View(), "OTP expires in 2:00")

	m, _ = resetUpdate(t, m, runes("000000"))
	m = enter(t, m)
	assert.Equal(t, stepVerify, m.step)
	assert.Contains(t, m.View(), "Invalid OTP")

	e, err := resetstore.NewSQLStore(srv.DB).Get(context.Background(), "20230001@mvula.univen.ac.za")
	require.NoError(t, err)
	m.code.SetValue(e.Code)
	m = enter(t, m)
	require.Equal(t, stepPassword, m.step)
	assert.Empty(t, m.errText)

	m, _ = resetUpdate(t, m, runes("newpassword1"))
	m, cmd := resetUpdate(t, m, keyEnter)
	assert.Nil(t, cmd, "enter on the first field moves to the confirmation")
	m, _ = resetUpdate(t, m, runes("different1"))
	m = enter(t, m)
	assert.Contains(t, m.View(), portal.ErrPasswordMismatch.Error())

	m.confirm.SetValue("newpassword1")
	m, cmd = resetUpdate(t, m, keyEnter)
	require.NotNil(t, cmd)
	m, cmd = resetUpdate(t, m, cmd())
	assert.True(t, m.Done())
	assert.NotNil(t, cmd, "quits after the success message")
	assert.Contains(t, m.View(), "Password updated successfully")

	_, err = c.Login(context.Background(), models.LoginRequest{Username: "20230001", Password: "newpassword1", UserType: models.UserStudent})
	assert.NoError(t, err)
}

func TestResetModel_ExpiryClearsCode(t *testing.T) {
	srv := apitest.New(t)
	srv.Admin(t, "admin@demo.com", "adminpass1")

	c, err := client.New(srv.URL)
	require.NoError(t, err)

	m := NewResetModel(c, ResetConfig{Admin: true, TTL: 30 * time.Millisecond, Tick: 10 * time.Millisecond})
	t.Cleanup(m.Close)
	assert.Contains(t, m.View(), "Admin email")

	m, _ = resetUpdate(t, m, runes("admin"))
	m = enter(t, m)
	assert.Contains(t, m.View(), portal.ErrAdminEmail.Error())

	m.ident.SetValue("admin@demo.com")
	m = enter(t, m)
	require.Equal(t, stepVerify, m.step)

	m, _ = resetUpdate(t, m, runes("123"))
	assert.Equal(t, "123", m.code.Value())

	assert.Eventually(t, func() bool {
		m.bridge.mu.Lock()
		defer m.bridge.mu.Unlock()
		return m.bridge.cleared
	}, time.Second, 5*time.Millisecond)

	m, cmd := resetUpdate(t, m, wakeMsg{})
	assert.NotNil(t, cmd)
	assert.Empty(t, m.code.Value())
	assert.Equal(t, stepVerify, m.step)
}

func TestResetModel_Quit(t *testing.T) {
	m := NewResetModel(&client.Client{}, ResetConfig{})
	t.Cleanup(m.Close)

	_, cmd := resetUpdate(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.Done())
}
