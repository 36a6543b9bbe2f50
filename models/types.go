// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Application status constants
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
	StatusAccepted = "Accepted"
)

// Principal types
const (
	UserStudent = "student"
	UserAdmin   = "admin"
)

// Residence types
const (
	ResidenceMale    = "male"
	ResidenceFemale  = "female"
	ResidenceOffCamp = "offcamp"
)

// Allocation methods for bulk processing
const (
	MethodGPA       = "gpa"
	MethodDistance  = "distance"
	MethodFirstCome = "first_come"
)

// Request types

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserType string `json:"user_type"`
}

// ResidenceSelection is one entry of a submission. Either ResidenceID or
// ResidenceName (+ optional Block) identifies the residence.
type ResidenceSelection struct {
	ResidenceID   string `json:"residence_id,omitempty"`
	ResidenceName string `json:"residence_name"`
	Block         string `json:"block"`
}

type CreateApplicationsRequest struct {
	Residences []ResidenceSelection `json:"residences"`
}

type ProcessRequest struct {
	Method string `json:"method"`
}

type OffCampusSyncRequest struct {
	ResidenceNames []string `json:"residence_names"`
}

type EmailTestRequest struct {
	To string `json:"to"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetVerifyRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// Response types

type LoginResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect,omitempty"`
	Message  string `json:"message,omitempty"`
}

type CreateApplicationsResponse struct {
	Success        bool     `json:"success"`
	ApplicationIDs []string `json:"application_ids"`
	Message        string   `json:"message,omitempty"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type AcceptOfferResponse struct {
	Success    bool    `json:"success"`
	RoomNumber *string `json:"room_number"`
}

type ProcessResponse struct {
	Success        bool     `json:"success"`
	Method         string   `json:"method"`
	AcceptedCount  int      `json:"accepted_count"`
	ApplicationIDs []string `json:"application_ids"`
}

type OffCampusSyncResponse struct {
	Success bool     `json:"success"`
	IDs     []string `json:"ids"`
}

type EmailTestResponse struct {
	Success bool   `json:"success"`
	To      string `json:"to"`
}

type PasswordResetResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ActualEmail string `json:"actual_email"`
}

// MeResponse describes the signed-in principal. Student is nil for admins.
type MeResponse struct {
	UserType string   `json:"user_type"`
	UserID   string   `json:"user_id"`
	Student  *Student `json:"student,omitempty"`
}

// Domain types

type Residence struct {
	ID             string `json:"id"`
	ResidenceName  string `json:"residence_name"`
	Block          string `json:"block"`
	OnCampus       bool   `json:"on_campus"`
	ResidenceType  string `json:"residence_type"`
	AvailableRooms int    `json:"available_rooms"`
	Restrictions   string `json:"restrictions"`
}

type ResidenceStats struct {
	Residence
	AcceptedCount int `json:"accepted_count"`
}

type Student struct {
	ID                string    `json:"id"`
	StudentNumber     string    `json:"student_number"`
	PasswordHash      string    `json:"-"` // Never expose in JSON
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	Gender            string    `json:"gender"`
	Program           string    `json:"program"`
	YearOfStudy       int       `json:"year_of_study"`
	GPA               float64   `json:"gpa"`
	Distance          float64   `json:"distance"`
	Status            string    `json:"status"`
	AssignedResidence *string   `json:"assigned_residence"`
	RoomNumber        *string   `json:"room_number"`
	CreatedAt         time.Time `json:"created_at"`
}

// FullName returns "First Last".
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StudentApplication is the student-facing projection of an application.
type StudentApplication struct {
	ID            string    `json:"id"`
	ResidenceName string    `json:"residence_name"`
	Block         string    `json:"block"`
	OnCampus      bool      `json:"on_campus"`
	Status        string    `json:"status"`
	AppliedDate   time.Time `json:"applied_date"`
	RoomNumber    *string   `json:"room_number"`
}

// Label mirrors the client-side display label.
func (a StudentApplication) Label() string {
	if a.Block == "" {
		return a.ResidenceName
	}
	return a.ResidenceName + " - " + a.Block
}

// ApplicationDetail is the admin-facing projection of an application.
type ApplicationDetail struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	ApplyDate     time.Time `json:"apply_date"`
	RoomNumber    *string   `json:"room_number"`
	StudentID     string    `json:"student_id"`
	StudentNumber string    `json:"student_number"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	ResidenceID   string    `json:"residence_id"`
	ResidenceName string    `json:"residence_name"`
	Block         string    `json:"block"`
	OnCampus      bool      `json:"on_campus"`
}

// Error response

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
