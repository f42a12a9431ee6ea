package service

import (
	"fmt"
	"strings"

	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/pkg/util"
)

// UserInput is the payload for signup and admin user creation.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Address  string
	Role     string
}

// normalize validates in and returns a user ready for hashing and insert.
func (in UserInput) normalize() (*model.User, error) {
	name := strings.TrimSpace(in.Name)
	if !util.LengthBetween(name, util.NameMinLength, util.NameMaxLength) {
		return nil, fmt.Errorf("%w: name must be %d-%d characters",
			ErrInvalidInput, util.NameMinLength, util.NameMaxLength)
	}

	email := util.NormalizeEmail(in.Email)
	if !util.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}

	if !util.IsStrongPassword(in.Password) {
		return nil, ErrWeakPassword
	}

	address := strings.TrimSpace(in.Address)
	if !util.LengthBetween(address, 1, util.AddressMaxLength) {
		return nil, fmt.Errorf("%w: address is required and must be at most %d characters",
			ErrInvalidInput, util.AddressMaxLength)
	}

	role, err := model.ParseUserRole(strings.TrimSpace(in.Role))
	if err != nil {
		return nil, ErrInvalidRole
	}

	return &model.User{
		Name:    name,
		Email:   email,
		Address: address,
		Role:    role,
	}, nil
}
