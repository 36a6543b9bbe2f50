// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - LoginRequest: username, password, user_type
  - CreateApplicationsRequest: residences ([]ResidenceSelection)
  - ProcessRequest: method
  - OffCampusSyncRequest: residence_names
  - PasswordResetRequest: email
  - PasswordResetVerifyRequest: email, otp, new_password

# Response Types

  - LoginResponse: success, redirect, message
  - CreateApplicationsResponse: success, application_ids
  - AcceptOfferResponse: success, room_number
  - ProcessResponse: success, method, accepted_count, application_ids
  - PasswordResetResponse: success, message, actual_email
  - MeResponse: user_type, user_id, student
  - ErrorResponse: error, code

The error field carries the human-readable message; clients show it as-is.

# Domain Types

  - Residence / ResidenceStats: residence catalog entries
  - Student: student profile (password hash never serialized)
  - StudentApplication: what a student sees of their applications
  - ApplicationDetail: what an admin sees (joined student + residence)

# Constants

Application status values:

	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
	StatusAccepted = "Accepted"

Allocation methods:

	MethodGPA       = "gpa"
	MethodDistance  = "distance"
	MethodFirstCome = "first_come"
*/
package models
