package service

import (
	"errors"
)

// Validation
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidRating = errors.New("rating must be an integer between 1 and 5")
	ErrInvalidRole   = errors.New("invalid role")
	ErrWeakPassword  = errors.New("password must be 8-16 characters and include an uppercase letter and a special character")
)

// Duplicate
var ErrEmailAlreadyExists = errors.New("Email already exists")

// Auth
var (
	ErrInvalidCredentials       = errors.New("Invalid credentials")
	ErrInvalidToken             = errors.New("invalid token")
	ErrExpiredToken             = errors.New("token has expired")
	ErrCurrentPasswordIncorrect = errors.New("Current password incorrect")
)

// Forbidden
var ErrForbidden = errors.New("forbidden")

// NotFound
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrStoreNotFound = errors.New("store not found")
	ErrOwnerNotFound = errors.New("owner must be an existing store owner")
)
