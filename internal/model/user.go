package model

import (
	"errors"
	"time"
)

// User is the profile returned by the upstream API for the current user,
// friends and recommended learners.
type User struct {
	ID               string    `json:"_id"`
	FullName         string    `json:"fullName"`
	Email            string    `json:"email,omitempty"`
	Bio              string    `json:"bio,omitempty"`
	ProfilePic       string    `json:"profilePic,omitempty"`
	NativeLanguage   string    `json:"nativeLanguage,omitempty"`
	LearningLanguage string    `json:"learningLanguage,omitempty"`
	Location         string    `json:"location,omitempty"`
	IsOnboarded      bool      `json:"isOnboarded"` // For onboarding flow
	Friends          []string  `json:"friends,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// SignupRequest represents the data needed to create an account
type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OnboardingRequest completes the one-time profile step.
type OnboardingRequest struct {
	FullName         string `json:"fullName"`
	Bio              string `json:"bio"`
	NativeLanguage   string `json:"nativeLanguage"`
	LearningLanguage string `json:"learningLanguage"`
	Location         string `json:"location"`
	ProfilePic       string `json:"profilePic,omitempty"`
}

// AuthResponse is the envelope the upstream API wraps user payloads in.
type AuthResponse struct {
	Success bool  `json:"success"`
	User    *User `json:"user"`
}

var (
	// ErrUnauthorized is returned when the upstream API rejects our credentials
	ErrUnauthorized = errors.New("not authenticated")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Auth API error codes (used in HTTP responses)
const (
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
)
