package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"buildingportal/internal/auth"
	"buildingportal/internal/models"
)

// Me returns the caller's current projection, read from the store rather
// than the token.
func (s *Service) Me(ctx context.Context, claims auth.Claims) (models.Profile, error) {
	if claims.UserID == "" {
		return models.Profile{}, ErrUnauthenticated
	}
	u, err := s.st.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return models.Profile{}, storeErr(err)
	}
	return u.Profile(), nil
}

func (s *Service) GetProfile(ctx context.Context, claims auth.Claims, userID string) (models.Profile, error) {
	if err := s.RequireOwnerOrAdmin(ctx, claims, userID); err != nil {
		return models.Profile{}, err
	}
	u, err := s.st.GetUserByID(ctx, userID)
	if err != nil {
		return models.Profile{}, storeErr(err)
	}
	return u.Profile(), nil
}

func (s *Service) ListUsers(ctx context.Context, claims auth.Claims) ([]models.Profile, error) {
	if _, err := s.RequireAdmin(ctx, claims); err != nil {
		return nil, err
	}
	users, err := s.st.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Profile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	return out, nil
}

func (s *Service) SetUserVerified(ctx context.Context, claims auth.Claims, userID string, verified bool) (models.Profile, error) {
	admin, err := s.RequireAdmin(ctx, claims)
	if err != nil {
		return models.Profile{}, err
	}
	if err := s.st.SetUserVerified(ctx, userID, verified); err != nil {
		return models.Profile{}, storeErr(err)
	}
	u, err := s.st.GetUserByID(ctx, userID)
	if err != nil {
		return models.Profile{}, storeErr(err)
	}
	s.logger.Info("user verification set",
		zap.String("user_id", userID), zap.Bool("verified", verified), zap.String("admin_id", admin.ID))
	return u.Profile(), nil
}

// DeleteUser removes an identity. Administrators cannot remove themselves.
func (s *Service) DeleteUser(ctx context.Context, claims auth.Claims, userID string) error {
	admin, err := s.RequireAdmin(ctx, claims)
	if err != nil {
		return err
	}
	if admin.ID == userID {
		return invalidInput("administrators cannot delete their own account")
	}
	if err := s.st.DeleteUser(ctx, userID); err != nil {
		return storeErr(err)
	}
	s.logger.Info("user deleted", zap.String("user_id", userID), zap.String("admin_id", admin.ID))
	return nil
}

// UpdateProfileImage stores an opaque image reference for the caller.
func (s *Service) UpdateProfileImage(ctx context.Context, claims auth.Claims, ref string) (models.Profile, error) {
	if claims.UserID == "" {
		return models.Profile{}, ErrUnauthenticated
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Profile{}, invalidInput("profileImage is required")
	}
	if err := s.st.SetUserProfileImage(ctx, claims.UserID, ref); err != nil {
		return models.Profile{}, storeErr(err)
	}
	return s.Me(ctx, claims)
}
