package service

import (
	"context"
	"errors"

	"buildingportal/internal/auth"
	"buildingportal/internal/models"
	"buildingportal/internal/store"
)

// RequireAdmin confirms the caller is an administrator according to the
// stored identity. The role hint inside the token is not consulted.
func (s *Service) RequireAdmin(ctx context.Context, claims auth.Claims) (models.User, error) {
	if claims.UserID == "" {
		return models.User{}, ErrUnauthenticated
	}
	u, err := s.st.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, ErrForbidden
	}
	if err != nil {
		return models.User{}, err
	}
	if !u.IsAdmin() {
		return models.User{}, ErrForbidden
	}
	return u, nil
}

// RequireOwnerOrAdmin passes when the caller owns the record or is an administrator.
func (s *Service) RequireOwnerOrAdmin(ctx context.Context, claims auth.Claims, ownerID string) error {
	if claims.UserID == "" {
		return ErrUnauthenticated
	}
	if claims.UserID == ownerID {
		return nil
	}
	_, err := s.RequireAdmin(ctx, claims)
	return err
}
