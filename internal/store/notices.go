package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"buildingportal/internal/models"
)

const noticeColumns = `id,category,title,content,author,views,created_at`

func (s *Store) CreateNotice(ctx context.Context, n models.Notice) (models.Notice, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notices(`+noticeColumns+`) VALUES(?,?,?,?,?,?,?)`,
		n.ID, n.Category, n.Title, n.Content, n.Author, n.Views, n.CreatedAt,
	)
	if err != nil {
		return models.Notice{}, err
	}
	return n, nil
}

func (s *Store) GetNotice(ctx context.Context, id string) (models.Notice, error) {
	n, err := scanNotice(s.db.QueryRowContext(ctx, `SELECT `+noticeColumns+` FROM notices WHERE id=?`, id))
	if err == sql.ErrNoRows {
		return models.Notice{}, ErrNotFound
	}
	return n, err
}

// ViewNotice increments the view counter and returns the updated notice.
func (s *Store) ViewNotice(ctx context.Context, id string) (models.Notice, error) {
	var out models.Notice
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE notices SET views = views + 1 WHERE id=?`, id)
		if err != nil {
			return err
		}
		if err := expectOneRow(res); err != nil {
			return err
		}
		out, err = scanNotice(tx.QueryRowContext(ctx, `SELECT `+noticeColumns+` FROM notices WHERE id=?`, id))
		return err
	})
	return out, err
}

func scanNotice(row rowScanner) (models.Notice, error) {
	var n models.Notice
	err := row.Scan(&n.ID, &n.Category, &n.Title, &n.Content, &n.Author, &n.Views, &n.CreatedAt)
	return n, err
}

// ListNotices returns one page of notices, newest first, and the total match count.
// An empty category matches all notices.
func (s *Store) ListNotices(ctx context.Context, category string, limit, offset int) ([]models.Notice, int, error) {
	where := ``
	args := []any{}
	if category != "" {
		where = ` WHERE category=?`
		args = append(args, category)
	}
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM notices`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+noticeColumns+` FROM notices`+where+` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []models.Notice{}
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func (s *Store) UpdateNotice(ctx context.Context, n models.Notice) (models.Notice, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notices SET category=?, title=?, content=?, author=? WHERE id=?`,
		n.Category, n.Title, n.Content, n.Author, n.ID,
	)
	if err != nil {
		return models.Notice{}, err
	}
	if err := expectOneRow(res); err != nil {
		return models.Notice{}, err
	}
	return s.GetNotice(ctx, n.ID)
}

func (s *Store) DeleteNotice(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notices WHERE id=?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}
