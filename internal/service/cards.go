package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"buildingportal/internal/auth"
	"buildingportal/internal/models"
	"buildingportal/internal/notify"
)

type CardApplication struct {
	Name           string
	Company        string
	EmployeeID     string
	Phone          string
	Room           string
	HouseholdCount int
	Vehicles       []models.Vehicle
}

// SubmitMoveInCard records a new Pending application for the caller.
// Several applications per user are allowed.
func (s *Service) SubmitMoveInCard(ctx context.Context, claims auth.Claims, in CardApplication) (models.MoveInCard, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = claims.Name
	}
	phone := strings.TrimSpace(in.Phone)
	room := strings.TrimSpace(in.Room)
	if name == "" || phone == "" || room == "" {
		return models.MoveInCard{}, invalidInput("name, phone and room are required")
	}
	if in.HouseholdCount < 0 {
		return models.MoveInCard{}, invalidInput("householdCount must not be negative")
	}
	vehicles := make([]models.Vehicle, 0, len(in.Vehicles))
	for _, v := range in.Vehicles {
		v.Number = strings.TrimSpace(v.Number)
		v.Model = strings.TrimSpace(v.Model)
		if v.Number == "" || v.Model == "" {
			return models.MoveInCard{}, invalidInput("each vehicle needs a number and a model")
		}
		vehicles = append(vehicles, v)
	}

	card, err := s.st.CreateMoveInCard(ctx, models.MoveInCard{
		UserID:         claims.UserID,
		Name:           name,
		Company:        strings.TrimSpace(in.Company),
		EmployeeID:     strings.TrimSpace(in.EmployeeID),
		Phone:          phone,
		Room:           room,
		HouseholdCount: in.HouseholdCount,
		Vehicles:       vehicles,
		Status:         models.CardPending,
	})
	if err != nil {
		return models.MoveInCard{}, err
	}
	s.logger.Info("move-in card submitted", zap.String("card_id", card.ID), zap.String("user_id", card.UserID))
	return card, nil
}

func (s *Service) ListMoveInCards(ctx context.Context, claims auth.Claims) ([]models.MoveInCard, error) {
	if _, err := s.RequireAdmin(ctx, claims); err != nil {
		return nil, err
	}
	return s.st.ListMoveInCards(ctx)
}

// SetMoveInCardStatus moves a card to any status. Approval also copies room,
// phone and vehicles onto the owner and issues an access card if the owner has
// none, all in one transaction.
func (s *Service) SetMoveInCardStatus(ctx context.Context, claims auth.Claims, id, status string) (models.MoveInCard, error) {
	admin, err := s.RequireAdmin(ctx, claims)
	if err != nil {
		return models.MoveInCard{}, err
	}
	st := models.CardStatus(strings.TrimSpace(status))
	if !st.Valid() {
		return models.MoveInCard{}, invalidInput("status must be one of Pending, Processing, Approved, Rejected")
	}
	if st != models.CardApproved {
		card, err := s.st.SetMoveInCardStatus(ctx, id, st)
		if err != nil {
			return models.MoveInCard{}, storeErr(err)
		}
		s.logger.Info("move-in card status set",
			zap.String("card_id", id), zap.String("status", string(st)), zap.String("admin_id", admin.ID))
		return card, nil
	}

	res, err := s.st.ApproveMoveInCard(ctx, id, s.mintAccessCardID)
	if err != nil {
		return models.MoveInCard{}, storeErr(err)
	}
	s.logger.Info("move-in card approved",
		zap.String("card_id", id),
		zap.String("user_id", res.User.ID),
		zap.Bool("card_issued", res.CardIDIssued),
		zap.String("admin_id", admin.ID),
	)
	if res.CardIDIssued && res.User.AccessCardID != nil {
		n := notify.CardIssued{Email: res.User.Email, Name: res.User.Name, Room: res.User.Room, CardID: *res.User.AccessCardID}
		if err := s.sender.SendCardIssued(ctx, n); err != nil {
			s.logger.Warn("access card notification failed", zap.String("user_id", res.User.ID), zap.Error(err))
		}
	}
	return res.Card, nil
}

func (s *Service) DeleteMoveInCard(ctx context.Context, claims auth.Claims, id string) error {
	admin, err := s.RequireAdmin(ctx, claims)
	if err != nil {
		return err
	}
	if err := s.st.DeleteMoveInCard(ctx, id); err != nil {
		return storeErr(err)
	}
	s.logger.Info("move-in card deleted", zap.String("card_id", id), zap.String("admin_id", admin.ID))
	return nil
}
