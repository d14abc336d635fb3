package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"buildingportal/internal/auth"
	"buildingportal/internal/models"
	"buildingportal/internal/store"
)

var emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[A-Za-z]{2,}$`)

type SignupRequest struct {
	Username string
	Password string
	Name     string
	Email    string
	Company  string
	Room     string
	Phone    string
}

type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      models.Profile `json:"user"`
}

// Signup registers a resident. The role is never taken from the request.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (models.Profile, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if utf8.RuneCountInString(req.Username) < 3 {
		return models.Profile{}, invalidInput("username must be at least 3 characters")
	}
	if req.Name == "" {
		return models.Profile{}, invalidInput("name is required")
	}
	if !emailRx.MatchString(req.Email) {
		return models.Profile{}, invalidInput("a valid email is required")
	}
	if err := s.ValidatePassword(req.Password); err != nil {
		return models.Profile{}, err
	}

	taken, err := s.st.UsernameOrEmailTaken(ctx, req.Username, req.Email)
	if err != nil {
		return models.Profile{}, err
	}
	if taken {
		return models.Profile{}, invalidInput("username or email already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.Profile{}, err
	}
	u, err := s.st.CreateUser(ctx, models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Email:        req.Email,
		Company:      strings.TrimSpace(req.Company),
		Room:         strings.TrimSpace(req.Room),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         models.RoleResident,
	})
	if errors.Is(err, store.ErrConflict) {
		return models.Profile{}, invalidInput("username or email already exists")
	}
	if err != nil {
		return models.Profile{}, err
	}
	s.logger.Info("user signed up", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return u.Profile(), nil
}

// Login is the only flow that reads a stored password hash. Unknown usernames
// and wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	u, err := s.st.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		auth.BurnPasswordCheck(password)
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.st.TouchUserLastLogin(ctx, u.ID, now); err != nil {
		return LoginResult{}, storeErr(err)
	}
	u.LastLoginAt = &now

	token, claims, err := s.tokens.Issue(u.ID, u.Username, u.Name, string(u.Role))
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, ExpiresAt: claims.ExpiresAt, User: u.Profile()}, nil
}

// Authenticate verifies a bearer token without touching the store.
func (s *Service) Authenticate(rawToken string) (auth.Claims, error) {
	claims, err := s.tokens.Verify(rawToken)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, auth.ErrTokenExpired):
		return auth.Claims{}, ErrExpired
	default:
		return auth.Claims{}, ErrUnauthenticated
	}
}

func (s *Service) ValidatePassword(pw string) error {
	n := utf8.RuneCountInString(pw)
	if n < s.cfg.PasswordMinLength {
		return invalidInput("password must be at least %d characters", s.cfg.PasswordMinLength)
	}
	if s.cfg.PasswordMaxLength > 0 && n > s.cfg.PasswordMaxLength {
		return invalidInput("password must be at most %d characters", s.cfg.PasswordMaxLength)
	}
	return nil
}
