package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"buildingportal/internal/models"
)

const cardColumns = `id,user_id,name,company,employee_id,phone,room,vehicle_count,vehicles_json,household_count,status,created_at,updated_at`

func (s *Store) CreateMoveInCard(ctx context.Context, c models.MoveInCard) (models.MoveInCard, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = models.CardPending
	}
	if c.Vehicles == nil {
		c.Vehicles = []models.Vehicle{}
	}
	if c.HouseholdCount <= 0 {
		c.HouseholdCount = 1
	}
	c.VehicleCount = len(c.Vehicles)
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	raw, err := json.Marshal(c.Vehicles)
	if err != nil {
		return models.MoveInCard{}, fmt.Errorf("encode vehicles: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO move_in_cards(`+cardColumns+`) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		c.ID, c.UserID, c.Name, c.Company, c.EmployeeID, c.Phone, c.Room, c.VehicleCount, string(raw), c.HouseholdCount, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return models.MoveInCard{}, err
	}
	return c, nil
}

func (s *Store) GetMoveInCard(ctx context.Context, id string) (models.MoveInCard, error) {
	return getMoveInCard(ctx, s.db, id)
}

func getMoveInCard(ctx context.Context, q querier, id string) (models.MoveInCard, error) {
	c, err := scanMoveInCard(q.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM move_in_cards WHERE id=?`, id))
	if err == sql.ErrNoRows {
		return models.MoveInCard{}, ErrNotFound
	}
	return c, err
}

func scanMoveInCard(row rowScanner) (models.MoveInCard, error) {
	var c models.MoveInCard
	var raw string
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Company, &c.EmployeeID, &c.Phone, &c.Room, &c.VehicleCount, &raw,
		&c.HouseholdCount, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return models.MoveInCard{}, err
	}
	c.Vehicles = []models.Vehicle{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.Vehicles); err != nil {
			return models.MoveInCard{}, fmt.Errorf("decode vehicles for card %s: %w", c.ID, err)
		}
	}
	return c, nil
}

// ListMoveInCards returns every application, newest first.
func (s *Store) ListMoveInCards(ctx context.Context) ([]models.MoveInCard, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM move_in_cards ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.MoveInCard{}
	for rows.Next() {
		c, err := scanMoveInCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetMoveInCardStatus overwrites the status of a card. Approval goes through
// ApproveMoveInCard instead so the identity side effects commit together.
func (s *Store) SetMoveInCardStatus(ctx context.Context, id string, status models.CardStatus) (models.MoveInCard, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE move_in_cards SET updated_at=CASE WHEN status=? THEN updated_at ELSE ? END, status=? WHERE id=?`,
		status, time.Now().UTC(), status, id,
	)
	if err != nil {
		return models.MoveInCard{}, err
	}
	if err := expectOneRow(res); err != nil {
		return models.MoveInCard{}, err
	}
	return s.GetMoveInCard(ctx, id)
}

// ApproveMoveInCard marks the card Approved and copies room, phone, employee id
// and vehicles onto the owning user in a single transaction. When the user has no access
// card yet, mintCardID supplies one. Nothing is committed if any step fails,
// including a missing owner.
func (s *Store) ApproveMoveInCard(ctx context.Context, id string, mintCardID func() string) (models.CardApproval, error) {
	var out models.CardApproval
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		card, err := getMoveInCard(ctx, tx, id)
		if err != nil {
			return err
		}
		user, err := getUser(ctx, tx, `id=?`, card.UserID)
		if err != nil {
			if err == ErrNotFound {
				return fmt.Errorf("owner %s of card %s: %w", card.UserID, card.ID, ErrNotFound)
			}
			return err
		}

		if card.Status != models.CardApproved {
			now := time.Now().UTC()
			if _, err := tx.ExecContext(ctx,
				`UPDATE move_in_cards SET status=?, updated_at=? WHERE id=?`, models.CardApproved, now, card.ID,
			); err != nil {
				return err
			}
			card.Status = models.CardApproved
			card.UpdatedAt = now
		}

		issued := false
		if user.AccessCardID == nil || *user.AccessCardID == "" {
			cardID := mintCardID()
			user.AccessCardID = &cardID
			issued = true
		}
		if card.EmployeeID != "" {
			employeeID := card.EmployeeID
			user.EmployeeID = &employeeID
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET room=?, phone=?, access_card_id=?, employee_id=? WHERE id=?`,
			card.Room, card.Phone, *user.AccessCardID, nullString(user.EmployeeID), user.ID,
		); err != nil {
			return err
		}
		if err := replaceVehicles(ctx, tx, user.ID, card.Vehicles); err != nil {
			return err
		}
		user.Room = card.Room
		user.Phone = card.Phone
		user.Vehicles = append([]models.Vehicle(nil), card.Vehicles...)

		out = models.CardApproval{Card: card, User: user, CardIDIssued: issued}
		return nil
	})
	return out, err
}

func (s *Store) DeleteMoveInCard(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM move_in_cards WHERE id=?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}
