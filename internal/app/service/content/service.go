package content

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

var ErrPostMissing = errors.New("post not found")

// Service manages the news feed and resident guides.
type Service struct {
	db     *gorm.DB
	log    *zap.SugaredLogger
	notify *notification.Service
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, notify *notification.Service) *Service {
	return &Service{db: db, log: log, notify: notify}
}

type PostRequest struct {
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content" binding:"required"`
	CategoryID *uint  `json:"category_id"`
}

// PostNews publishes a news item and broadcasts it to residents.
func (s *Service) PostNews(ctx context.Context, adminID string, req *PostRequest) (*models.News, error) {
	news := &models.News{
		ID:         tool.GenerateUUIDV7(),
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
	}
	if err := s.db.WithContext(ctx).Create(news).Error; err != nil {
		return nil, fmt.Errorf("failed to create news: %w", err)
	}

	err := s.notify.Create(ctx, &notification.Event{
		EntityType: types.EntityTypeNewsPost,
		EntityID:   news.ID,
		SenderID:   adminID,
		Message:    notification.FormatMessage(types.EntityTypeNewsPost, "", news.Title),
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to notify news post",
			"news_id", news.ID, "error", err)
	}
	return news, nil
}

func (s *Service) GetNews(ctx context.Context, id string) (*models.News, error) {
	var news models.News
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&news).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load news: %w", err)
	}
	return &news, nil
}

func (s *Service) ListNews(ctx context.Context, categoryID *uint, from, size int) ([]*models.News, error) {
	if size <= 0 {
		size = 10
	}
	q := s.db.WithContext(ctx).Model(&models.News{})
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	var items []*models.News
	if err := q.Order("created_at DESC").
		Offset(from).Limit(size).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	return items, nil
}

func (s *Service) DeleteNews(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.News{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete news: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPostMissing
	}
	return nil
}

// PostGuide publishes a guide. Guides are reference material and do not
// notify anyone.
func (s *Service) PostGuide(ctx context.Context, req *PostRequest) (*models.Guide, error) {
	guide := &models.Guide{
		ID:         tool.GenerateUUIDV7(),
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
	}
	if err := s.db.WithContext(ctx).Create(guide).Error; err != nil {
		return nil, fmt.Errorf("failed to create guide: %w", err)
	}
	return guide, nil
}

func (s *Service) GetGuide(ctx context.Context, id string) (*models.Guide, error) {
	var guide models.Guide
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&guide).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load guide: %w", err)
	}
	return &guide, nil
}

func (s *Service) ListGuides(ctx context.Context, categoryID *uint, from, size int) ([]*models.Guide, error) {
	if size <= 0 {
		size = 10
	}
	q := s.db.WithContext(ctx).Model(&models.Guide{})
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	var items []*models.Guide
	if err := q.Order("created_at DESC").
		Offset(from).Limit(size).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list guides: %w", err)
	}
	return items, nil
}

func (s *Service) NewsCategories(ctx context.Context) ([]*models.NewsCategory, error) {
	var cats []*models.NewsCategory
	if err := s.db.WithContext(ctx).Order("id").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("failed to list news categories: %w", err)
	}
	return cats, nil
}

func (s *Service) GuideCategories(ctx context.Context) ([]*models.GuideCategory, error) {
	var cats []*models.GuideCategory
	if err := s.db.WithContext(ctx).Order("id").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("failed to list guide categories: %w", err)
	}
	return cats, nil
}
