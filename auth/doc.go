// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential and token utilities.

# Passwords

Student and admin passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(plain)
	err := auth.CheckPassword(hash, plain) // ErrInvalidCredentials on mismatch

# Session Tokens

Session tokens are random 32-byte secrets, URL-safe base64 without padding so
they can travel in a cookie unchanged:

	token, err := auth.GenerateSessionToken()

# One-Time Codes

Password reset codes are six decimal digits drawn from crypto/rand:

	code, err := auth.GenerateOTP()
	err := auth.CompareOTP(stored, submitted) // constant time

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

Rate limiter keys use a salted hash instead of raw addresses:

	key := auth.HashIP(ipAddress, salt)
*/
package auth
