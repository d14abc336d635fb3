package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"buildingportal/internal/models"
)

const complaintColumns = `id,title,content,priority,status,author_id,author_name,created_at,updated_at`

func (s *Store) CreateComplaint(ctx context.Context, c models.Complaint) (models.Complaint, error) {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = models.ComplaintPending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = c.CreatedAt
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO complaints(`+complaintColumns+`) VALUES(?,?,?,?,?,?,?,?,?)`,
		c.ID, c.Title, c.Content, c.Priority, c.Status, c.AuthorID, c.AuthorName, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return models.Complaint{}, err
	}
	return c, nil
}

func (s *Store) GetComplaint(ctx context.Context, id string) (models.Complaint, error) {
	c, err := scanComplaint(s.db.QueryRowContext(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id=?`, id))
	if err == sql.ErrNoRows {
		return models.Complaint{}, ErrNotFound
	}
	return c, err
}

func scanComplaint(row rowScanner) (models.Complaint, error) {
	var c models.Complaint
	err := row.Scan(&c.ID, &c.Title, &c.Content, &c.Priority, &c.Status, &c.AuthorID, &c.AuthorName, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListComplaints returns every complaint, newest first.
func (s *Store) ListComplaints(ctx context.Context) ([]models.Complaint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+complaintColumns+` FROM complaints ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateComplaintContent applies the non-nil fields of p and returns the updated row.
func (s *Store) UpdateComplaintContent(ctx context.Context, id string, p models.ComplaintPatch) (models.Complaint, error) {
	var out models.Complaint
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		c, err := scanComplaint(tx.QueryRowContext(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id=?`, id))
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if p.Title != nil {
			c.Title = *p.Title
		}
		if p.Content != nil {
			c.Content = *p.Content
		}
		if p.Priority != nil {
			c.Priority = *p.Priority
		}
		c.UpdatedAt = time.Now().UTC()
		if _, err := tx.ExecContext(ctx,
			`UPDATE complaints SET title=?, content=?, priority=?, updated_at=? WHERE id=?`,
			c.Title, c.Content, c.Priority, c.UpdatedAt, c.ID,
		); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// SetComplaintStatus overwrites the status. Setting the current status again
// leaves the row untouched, updated_at included.
func (s *Store) SetComplaintStatus(ctx context.Context, id string, status models.ComplaintStatus) (models.Complaint, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE complaints SET updated_at=CASE WHEN status=? THEN updated_at ELSE ? END, status=? WHERE id=?`,
		status, time.Now().UTC(), status, id,
	)
	if err != nil {
		return models.Complaint{}, err
	}
	if err := expectOneRow(res); err != nil {
		return models.Complaint{}, err
	}
	return s.GetComplaint(ctx, id)
}

func (s *Store) DeleteComplaint(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM complaints WHERE id=?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s *Store) CountComplaintsByStatus(ctx context.Context) (map[models.ComplaintStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM complaints GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[models.ComplaintStatus]int{}
	for rows.Next() {
		var st models.ComplaintStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}

// ListOpenComplaintTitles returns titles of complaints not yet Complete.
func (s *Store) ListOpenComplaintTitles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title FROM complaints WHERE status <> ?`, models.ComplaintComplete)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		out = append(out, title)
	}
	return out, rows.Err()
}
