package service

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"buildingportal/internal/auth"
	"buildingportal/internal/models"
)

const (
	defaultNoticePageSize = 10
	maxNoticePageSize     = 100
	maxNoticePage         = math.MaxInt32 / maxNoticePageSize
)

type NoticeInput struct {
	Category string
	Title    string
	Content  string
	Author   string
}

// ListNotices returns one page of the notice board. Category "전체" or an
// empty category lists everything.
func (s *Service) ListNotices(ctx context.Context, q models.NoticeQuery) (models.NoticePage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > maxNoticePage {
		q.Page = maxNoticePage
	}
	if q.Limit < 1 {
		q.Limit = defaultNoticePageSize
	}
	if q.Limit > maxNoticePageSize {
		q.Limit = maxNoticePageSize
	}
	category := strings.TrimSpace(q.Category)
	if category == models.NoticeCategoryAll {
		category = ""
	}
	if category != "" && !models.ValidNoticeCategory(category) {
		return models.NoticePage{}, invalidInput("unknown notice category %q", category)
	}

	items, total, err := s.st.ListNotices(ctx, category, q.Limit, (q.Page-1)*q.Limit)
	if err != nil {
		return models.NoticePage{}, err
	}
	return models.NoticePage{
		Notices:     items,
		TotalPages:  (total + q.Limit - 1) / q.Limit,
		CurrentPage: q.Page,
		Total:       total,
	}, nil
}

// ViewNotice returns a notice and counts the read.
func (s *Service) ViewNotice(ctx context.Context, id string) (models.Notice, error) {
	n, err := s.st.ViewNotice(ctx, id)
	return n, storeErr(err)
}

func (s *Service) CreateNotice(ctx context.Context, claims auth.Claims, in NoticeInput) (models.Notice, error) {
	if _, err := s.RequireAdmin(ctx, claims); err != nil {
		return models.Notice{}, err
	}
	n, err := normalizeNotice(in)
	if err != nil {
		return models.Notice{}, err
	}
	n.CreatedAt = s.now().UTC()
	created, err := s.st.CreateNotice(ctx, n)
	if err != nil {
		return models.Notice{}, err
	}
	s.logger.Info("notice created", zap.String("notice_id", created.ID), zap.String("category", created.Category))
	return created, nil
}

func (s *Service) UpdateNotice(ctx context.Context, claims auth.Claims, id string, in NoticeInput) (models.Notice, error) {
	if _, err := s.RequireAdmin(ctx, claims); err != nil {
		return models.Notice{}, err
	}
	n, err := normalizeNotice(in)
	if err != nil {
		return models.Notice{}, err
	}
	n.ID = id
	updated, err := s.st.UpdateNotice(ctx, n)
	return updated, storeErr(err)
}

func (s *Service) DeleteNotice(ctx context.Context, claims auth.Claims, id string) error {
	if _, err := s.RequireAdmin(ctx, claims); err != nil {
		return err
	}
	return storeErr(s.st.DeleteNotice(ctx, id))
}

func normalizeNotice(in NoticeInput) (models.Notice, error) {
	n := models.Notice{
		Category: strings.TrimSpace(in.Category),
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		Author:   strings.TrimSpace(in.Author),
	}
	if n.Title == "" || strings.TrimSpace(n.Content) == "" {
		return models.Notice{}, invalidInput("title and content are required")
	}
	if n.Category == "" {
		n.Category = models.NoticeCategoryGeneral
	}
	if !models.ValidNoticeCategory(n.Category) {
		return models.Notice{}, invalidInput("unknown notice category %q", n.Category)
	}
	if n.Author == "" {
		n.Author = models.DefaultNoticeAuthor
	}
	return n, nil
}
