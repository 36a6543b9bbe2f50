// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/univen/housing-portal/models"
)

// Login exchanges credentials for a session cookie. A rejected login is an
// *APIError carrying the server's message, never ErrUnauthenticated.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	var resp models.LoginResponse
	data, err := c.do(ctx, http.MethodPost, "/api/login", req, false)
	if err != nil {
		return resp, err
	}
	return resp, decode(data, &resp)
}

// Logout ends the session. The local cookie is dropped even if the server
// call fails.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/logout", nil, false)
	c.SetSessionToken("")
	return err
}

func (c *Client) Me(ctx context.Context) (models.MeResponse, error) {
	var resp models.MeResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/me", nil, &resp)
	return resp, err
}

// Residences lists the catalog. Empty filters are omitted.
func (c *Client) Residences(ctx context.Context, residenceType string, onCampus *bool) ([]models.Residence, error) {
	q := url.Values{}
	if residenceType != "" {
		q.Set("type", residenceType)
	}
	if onCampus != nil {
		q.Set("on_campus", fmt.Sprint(*onCampus))
	}
	path := "/api/residences"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []models.Residence
	err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) ResidenceStats(ctx context.Context) ([]models.ResidenceStats, error) {
	var out []models.ResidenceStats
	err := c.doJSON(ctx, http.MethodGet, "/api/residences/stats", nil, &out)
	return out, err
}

func (c *Client) SyncOffCampus(ctx context.Context, names []string) ([]string, error) {
	var resp models.OffCampusSyncResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/offcampus/sync",
		models.OffCampusSyncRequest{ResidenceNames: names}, &resp)
	return resp.IDs, err
}

// ExportAccepted downloads the accepted-students workbook (xlsx bytes) for an
// off-campus residence.
func (c *Client) ExportAccepted(ctx context.Context, residenceID string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/api/offcampus/"+url.PathEscape(residenceID)+"/accepted/export", nil, true)
}

// SubmitApplications posts the pending selections.
func (c *Client) SubmitApplications(ctx context.Context, selections []models.ResidenceSelection) (models.CreateApplicationsResponse, error) {
	var resp models.CreateApplicationsResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/applications",
		models.CreateApplicationsRequest{Residences: selections}, &resp)
	return resp, err
}

func (c *Client) MyApplications(ctx context.Context) ([]models.StudentApplication, error) {
	var out []models.StudentApplication
	err := c.doJSON(ctx, http.MethodGet, "/api/applications/me", nil, &out)
	return out, err
}

func (c *Client) StudentApplications(ctx context.Context, studentID string) ([]models.StudentApplication, error) {
	var out []models.StudentApplication
	err := c.doJSON(ctx, http.MethodGet, "/api/applications/"+url.PathEscape(studentID), nil, &out)
	return out, err
}

func (c *Client) AllApplications(ctx context.Context) ([]models.ApplicationDetail, error) {
	var out []models.ApplicationDetail
	err := c.doJSON(ctx, http.MethodGet, "/api/applications", nil, &out)
	return out, err
}

func (c *Client) Approve(ctx context.Context, applicationID string) error {
	return c.decide(ctx, applicationID, "approve")
}

func (c *Client) Reject(ctx context.Context, applicationID string) error {
	return c.decide(ctx, applicationID, "reject")
}

func (c *Client) RejectOffer(ctx context.Context, applicationID string) error {
	return c.decide(ctx, applicationID, "reject_offer")
}

// AcceptOffer accepts an approved application. The room number is nil for
// off-campus residences.
func (c *Client) AcceptOffer(ctx context.Context, applicationID string) (*string, error) {
	var resp models.AcceptOfferResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/applications/"+url.PathEscape(applicationID)+"/accept", nil, &resp)
	return resp.RoomNumber, err
}

func (c *Client) decide(ctx context.Context, applicationID, action string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/applications/"+url.PathEscape(applicationID)+"/"+action, nil, nil)
}

func (c *Client) Students(ctx context.Context) ([]models.Student, error) {
	var out []models.Student
	err := c.doJSON(ctx, http.MethodGet, "/api/students", nil, &out)
	return out, err
}

// Process bulk-allocates pending applications by method (gpa, distance or
// first_come).
func (c *Client) Process(ctx context.Context, method string) (models.ProcessResponse, error) {
	var resp models.ProcessResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/process", models.ProcessRequest{Method: method}, &resp)
	return resp, err
}

func (c *Client) EmailTest(ctx context.Context, to string) (models.EmailTestResponse, error) {
	var resp models.EmailTestResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/email/test", models.EmailTestRequest{To: to}, &resp)
	return resp, err
}

// RequestReset issues an OTP for email, which may be a student number
// address or an admin email.
func (c *Client) RequestReset(ctx context.Context, email string) (models.PasswordResetResponse, error) {
	var resp models.PasswordResetResponse
	data, err := c.do(ctx, http.MethodPost, "/api/password-reset/request",
		models.PasswordResetRequest{Email: email}, false)
	if err != nil {
		return resp, err
	}
	return resp, decode(data, &resp)
}

// VerifyReset checks an OTP. With an empty newPassword the code is only
// verified and stays valid; otherwise the password is changed and the code
// consumed.
func (c *Client) VerifyReset(ctx context.Context, email, otp, newPassword string) (models.SuccessResponse, error) {
	var resp models.SuccessResponse
	data, err := c.do(ctx, http.MethodPost, "/api/password-reset/verify",
		models.PasswordResetVerifyRequest{Email: email, OTP: otp, NewPassword: newPassword}, false)
	if err != nil {
		return resp, err
	}
	return resp, decode(data, &resp)
}
