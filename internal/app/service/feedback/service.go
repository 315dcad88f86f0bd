package feedback

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/oceanview/backend/internal/app/service/notification"
	"github.com/oceanview/backend/internal/models"
	"github.com/oceanview/backend/pkg/logctx"
	"github.com/oceanview/backend/pkg/tool"
	"github.com/oceanview/backend/pkg/types"
)

var (
	ErrFeedbackMissing = errors.New("feedback not found")
	ErrFeedbackOwner   = errors.New("feedback belongs to another resident")
	ErrInvalidType     = errors.New("unknown feedback type")
)

type Service struct {
	db     *gorm.DB
	log    *zap.SugaredLogger
	notify *notification.Service
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, notify *notification.Service) *Service {
	return &Service{db: db, log: log, notify: notify}
}

type CreateRequest struct {
	Title    string             `json:"title" binding:"required"`
	Content  string             `json:"content" binding:"required"`
	Type     types.FeedbackType `json:"type" binding:"required"`
	ImageURL string             `json:"image_url"`
}

// Create posts a feedback and tells the admins about it.
func (s *Service) Create(ctx context.Context, authorID string, req *CreateRequest) (*models.Feedback, error) {
	if !req.Type.Valid() {
		return nil, ErrInvalidType
	}

	fb := &models.Feedback{
		ID:       tool.GenerateUUIDV7(),
		Title:    req.Title,
		Content:  req.Content,
		Type:     req.Type,
		AuthorID: authorID,
		ImageURL: req.ImageURL,
	}
	if err := s.db.WithContext(ctx).Create(fb).Error; err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	var author models.User
	actor := authorID
	if err := s.db.WithContext(ctx).Preload("PersonalInformation").
		Where("resident_id = ?", authorID).First(&author).Error; err == nil {
		actor = author.DisplayName()
	}
	err := s.notify.Create(ctx, &notification.Event{
		EntityType: types.EntityTypeFeedbackPost,
		EntityID:   fb.ID,
		SenderID:   authorID,
		Message:    notification.FormatMessage(types.EntityTypeFeedbackPost, actor, fb.Title),
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to notify feedback",
			"feedback_id", fb.ID, "error", err)
	}
	return fb, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Feedback, error) {
	var fb models.Feedback
	err := s.db.WithContext(ctx).Scopes(models.NotDeleted).
		Preload("Author").
		Preload("Author.PersonalInformation").
		Where("id = ?", id).First(&fb).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFeedbackMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}
	return &fb, nil
}

type ListRequest struct {
	AuthorID string
	Type     types.FeedbackType
	From     int
	Size     int
}

type ListResponse struct {
	Items []*models.Feedback `json:"items"`
	Total int64              `json:"total"`
}

func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.Size <= 0 {
		req.Size = 10
	}

	q := s.db.WithContext(ctx).Model(&models.Feedback{}).Scopes(models.NotDeleted)
	if req.AuthorID != "" {
		q = q.Where("author_id = ?", req.AuthorID)
	}
	if req.Type != "" {
		q = q.Where("type = ?", req.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count feedbacks: %w", err)
	}

	var items []*models.Feedback
	if err := q.Order("created_at DESC").
		Offset(req.From).Limit(req.Size).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list feedbacks: %w", err)
	}
	return &ListResponse{Items: items, Total: total}, nil
}

// Delete soft-deletes the author's own feedback.
func (s *Service) Delete(ctx context.Context, authorID, id string) error {
	fb, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if fb.AuthorID != authorID {
		return ErrFeedbackOwner
	}
	return s.db.WithContext(ctx).Model(fb).UpdateColumn("deleted", true).Error
}
