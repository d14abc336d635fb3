package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"buildingportal/internal/models"
)

const userColumns = `id,username,password_hash,name,email,phone,room,company,role,verified,access_card_id,employee_id,profile_image,created_at,last_login_at`

// CreateUser inserts a new identity. Duplicate username or email yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = models.RoleResident
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users(`+userColumns+`) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			u.ID, u.Username, u.PasswordHash, u.Name, u.Email, u.Phone, u.Room, u.Company, u.Role,
			boolToInt(u.Verified), nullString(u.AccessCardID), nullString(u.EmployeeID), nullString(u.ProfileImage),
			u.CreatedAt, u.LastLoginAt,
		)
		if isUniqueViolation(err) {
			return ErrConflict
		}
		if err != nil {
			return err
		}
		return replaceVehicles(ctx, tx, u.ID, u.Vehicles)
	})
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// UsernameOrEmailTaken reports whether either handle is already registered.
func (s *Store) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE username=? OR email=?`, username, email,
	).Scan(&n)
	return n > 0, err
}

// EnsureAdmin provisions the bootstrap administrator, or refreshes the password
// of an existing one. An existing non-admin account is never promoted.
func (s *Store) EnsureAdmin(ctx context.Context, username, email, name, passwordHash string) error {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || passwordHash == "" {
		return nil
	}
	u, err := s.GetUserByUsername(ctx, username)
	if err == ErrNotFound {
		_, err = s.CreateUser(ctx, models.User{
			Username:     username,
			PasswordHash: passwordHash,
			Name:         name,
			Email:        email,
			Role:         models.RoleAdmin,
			Verified:     true,
		})
		return err
	}
	if err != nil {
		return err
	}
	if !u.IsAdmin() {
		return fmt.Errorf("ensure admin %q: %w", username, ErrNotAdmin)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET verified=1, password_hash=? WHERE id=?`,
		passwordHash, u.ID,
	)
	return err
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return getUser(ctx, s.db, `username=?`, username)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return getUser(ctx, s.db, `id=?`, id)
}

func getUser(ctx context.Context, q querier, where string, arg any) (models.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	vehicles, err := loadVehicles(ctx, q, []string{u.ID})
	if err != nil {
		return models.User{}, err
	}
	u.Vehicles = vehicles[u.ID]
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var verified int
	var accessCard, employeeID, profileImage sql.NullString
	var lastLogin sql.NullTime
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Email, &u.Phone, &u.Room, &u.Company,
		&u.Role, &verified, &accessCard, &employeeID, &profileImage, &u.CreatedAt, &lastLogin); err != nil {
		return models.User{}, err
	}
	u.Verified = verified == 1
	u.AccessCardID = stringPtr(accessCard)
	u.EmployeeID = stringPtr(employeeID)
	u.ProfileImage = stringPtr(profileImage)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.User{}
	ids := []string{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
		ids = append(ids, u.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	vehicles, err := loadVehicles(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Vehicles = vehicles[out[i].ID]
	}
	return out, nil
}

func (s *Store) TouchUserLastLogin(ctx context.Context, userID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET last_login_at=? WHERE id=?`, at, userID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s *Store) SetUserVerified(ctx context.Context, userID string, verified bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET verified=? WHERE id=?`, boolToInt(verified), userID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s *Store) SetUserProfileImage(ctx context.Context, userID, ref string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET profile_image=? WHERE id=?`, ref, userID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// DeleteUser removes the identity and its vehicles. Complaints and move-in
// cards referencing the user are kept.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=?`, userID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// CountVehicles returns the number of registered vehicles across all identities.
func (s *Store) CountVehicles(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM vehicles`).Scan(&n)
	return n, err
}

func replaceVehicles(ctx context.Context, q querier, userID string, vehicles []models.Vehicle) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM vehicles WHERE user_id=?`, userID); err != nil {
		return err
	}
	for i, v := range vehicles {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO vehicles(id,user_id,plate,model,position) VALUES(?,?,?,?,?)`,
			uuid.NewString(), userID, v.Number, v.Model, i,
		); err != nil {
			return err
		}
	}
	return nil
}

func loadVehicles(ctx context.Context, q querier, userIDs []string) (map[string][]models.Vehicle, error) {
	out := make(map[string][]models.Vehicle, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(userIDs)), ",")
	rows, err := q.QueryContext(ctx,
		`SELECT user_id,plate,model FROM vehicles WHERE user_id IN (`+placeholders+`) ORDER BY user_id, position`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		var v models.Vehicle
		if err := rows.Scan(&userID, &v.Number, &v.Model); err != nil {
			return nil, err
		}
		out[userID] = append(out[userID], v)
	}
	return out, rows.Err()
}
