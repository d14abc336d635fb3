package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"buildingportal/internal/auth"
	"buildingportal/internal/models"
)

type ComplaintInput struct {
	Title    string
	Content  string
	Priority string
}

func (s *Service) ListComplaints(ctx context.Context) ([]models.Complaint, error) {
	return s.st.ListComplaints(ctx)
}

func (s *Service) GetComplaint(ctx context.Context, id string) (models.Complaint, error) {
	c, err := s.st.GetComplaint(ctx, id)
	return c, storeErr(err)
}

// CreateComplaint files a complaint authored by the caller. The author's
// display name is copied from the token and never re-synced.
func (s *Service) CreateComplaint(ctx context.Context, claims auth.Claims, in ComplaintInput) (models.Complaint, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return models.Complaint{}, invalidInput("title and content are required")
	}
	priority := models.PriorityMedium
	if p := strings.TrimSpace(in.Priority); p != "" {
		priority = models.Priority(p)
		if !priority.Valid() {
			return models.Complaint{}, invalidInput("priority must be one of Low, Medium, High")
		}
	}
	c, err := s.st.CreateComplaint(ctx, models.Complaint{
		Title:      title,
		Content:    in.Content,
		Priority:   priority,
		Status:     models.ComplaintPending,
		AuthorID:   claims.UserID,
		AuthorName: claims.Name,
	})
	if err != nil {
		return models.Complaint{}, err
	}
	s.logger.Info("complaint created", zap.String("complaint_id", c.ID), zap.String("author_id", c.AuthorID))
	return c, nil
}

// UpdateComplaint edits title, content or priority. Only the author may do
// this, administrators included. Blank fields are left unchanged.
func (s *Service) UpdateComplaint(ctx context.Context, claims auth.Claims, id string, in ComplaintInput) (models.Complaint, error) {
	current, err := s.st.GetComplaint(ctx, id)
	if err != nil {
		return models.Complaint{}, storeErr(err)
	}
	if current.AuthorID != claims.UserID {
		return models.Complaint{}, ErrForbidden
	}

	var patch models.ComplaintPatch
	if t := strings.TrimSpace(in.Title); t != "" {
		patch.Title = &t
	}
	if strings.TrimSpace(in.Content) != "" {
		c := in.Content
		patch.Content = &c
	}
	if p := strings.TrimSpace(in.Priority); p != "" {
		pr := models.Priority(p)
		if !pr.Valid() {
			return models.Complaint{}, invalidInput("priority must be one of Low, Medium, High")
		}
		patch.Priority = &pr
	}
	updated, err := s.st.UpdateComplaintContent(ctx, id, patch)
	return updated, storeErr(err)
}

// SetComplaintStatus lets an administrator move a complaint to any status,
// including back to an earlier one. Repeating the same status is a no-op.
func (s *Service) SetComplaintStatus(ctx context.Context, claims auth.Claims, id, status string) (models.Complaint, error) {
	admin, err := s.RequireAdmin(ctx, claims)
	if err != nil {
		return models.Complaint{}, err
	}
	st := models.ComplaintStatus(strings.TrimSpace(status))
	if !st.Valid() {
		return models.Complaint{}, invalidInput("status must be one of Pending, Processing, Complete")
	}
	c, err := s.st.SetComplaintStatus(ctx, id, st)
	if err != nil {
		return models.Complaint{}, storeErr(err)
	}
	s.logger.Info("complaint status set",
		zap.String("complaint_id", id), zap.String("status", string(st)), zap.String("admin_id", admin.ID))
	return c, nil
}

func (s *Service) DeleteComplaint(ctx context.Context, claims auth.Claims, id string) error {
	admin, err := s.RequireAdmin(ctx, claims)
	if err != nil {
		return err
	}
	if err := s.st.DeleteComplaint(ctx, id); err != nil {
		return storeErr(err)
	}
	s.logger.Info("complaint deleted", zap.String("complaint_id", id), zap.String("admin_id", admin.ID))
	return nil
}
