// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/olegiv/oblog/internal/auth"
	"github.com/olegiv/oblog/internal/model"
	"github.com/olegiv/oblog/internal/store"
)

// Account field limits.
const (
	MinNameLength     = 2
	MaxNameLength     = 80
	MinPasswordLength = 6
)

// SignUpInput is the reader registration form.
type SignUpInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// AccountService registers Users and signs principals in.
type AccountService struct {
	queries  *store.Queries
	resolver *auth.Resolver
	now      func() time.Time
	logger   *slog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(db *sql.DB, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	q := store.New(db)
	return &AccountService{
		queries:  q,
		resolver: auth.NewResolver(q),
		now:      time.Now,
		logger:   logger,
	}
}

// Resolver returns the principal resolver backed by the same store.
func (s *AccountService) Resolver() *auth.Resolver {
	return s.resolver
}

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= MinNameLength && n <= MaxNameLength
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func errEmailTaken() error {
	return &model.ValidationError{Fields: map[string]string{
		"email": "Email already registered",
	}}
}

// SignUp validates the form and creates a User. An email already used by
// another User is a validation failure; Admin emails are not checked.
func (s *AccountService) SignUp(ctx context.Context, in SignUpInput) (model.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = model.NormalizeEmail(in.Email)

	v := model.NewValidator()
	nameMsg := fmt.Sprintf("must be between %d and %d characters", MinNameLength, MaxNameLength)
	v.Check(validName(in.FirstName), "first_name", "First name "+nameMsg)
	v.Check(validName(in.LastName), "last_name", "Last name "+nameMsg)
	v.Check(in.Email != "", "email", "Email is required")
	v.Check(validEmail(in.Email), "email", "Invalid email address")
	v.Check(utf8.RuneCountInString(in.Password) >= MinPasswordLength, "password",
		fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	v.Check(in.Password == in.ConfirmPassword, "confirm_password", "Passwords must match")
	if err := v.Err(); err != nil {
		return model.User{}, err
	}

	count, err := s.queries.CountUsersByEmail(ctx, in.Email)
	if err != nil {
		return model.User{}, fmt.Errorf("checking email: %w", err)
	}
	if count > 0 {
		return model.User{}, errEmailTaken()
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, store.ErrDuplicate) {
		// A concurrent sign-up took the email after the check above.
		return model.User{}, errEmailTaken()
	}
	if err != nil {
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user signed up", "user_id", user.ID)
	return user, nil
}

// Login authenticates email and password. A nil principal with a nil error
// means the credentials did not match. Hashes made with outdated
// parameters are upgraded on success.
func (s *AccountService) Login(ctx context.Context, email, password string) (*auth.Principal, error) {
	p, err := s.resolver.Authenticate(ctx, email, password)
	if err != nil || p == nil {
		return p, err
	}

	if auth.NeedsRehash(p.CredentialHash()) {
		s.rehash(ctx, p, password)
	}
	return p, nil
}

func (s *AccountService) rehash(ctx context.Context, p *auth.Principal, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Warn("failed to rehash password", "kind", p.Kind.String(), "id", p.ID(), "error", err)
		return
	}

	switch p.Kind {
	case auth.KindUser:
		err = s.queries.UpdateUserPassword(ctx, p.ID(), hash, s.now())
	case auth.KindAdmin:
		err = s.queries.UpdateAdminPassword(ctx, p.ID(), hash, s.now())
	}
	if err != nil {
		s.logger.Warn("failed to store rehashed password", "kind", p.Kind.String(), "id", p.ID(), "error", err)
		return
	}
	s.logger.Info("password rehashed", "kind", p.Kind.String(), "id", p.ID())
}
