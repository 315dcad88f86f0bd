package locker

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
	ErrLockerMissing   = errors.New("locker not found")
	ErrItemMissing     = errors.New("locker item not found")
	ErrInvalidQuantity = errors.New("item quantity must be at least 1")
)

type Service struct {
	db     *gorm.DB
	log    *zap.SugaredLogger
	notify *notification.Service
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, notify *notification.Service) *Service {
	return &Service{db: db, log: log, notify: notify}
}

func (s *Service) GetByOwner(ctx context.Context, ownerID string) (*models.Locker, error) {
	var locker models.Locker
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).First(&locker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLockerMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load locker: %w", err)
	}
	return &locker, nil
}

func (s *Service) Items(ctx context.Context, lockerID string) ([]*models.Item, error) {
	var items []*models.Item
	err := s.db.WithContext(ctx).
		Where("locker_id = ?", lockerID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list locker items: %w", err)
	}
	return items, nil
}

// recomputeStatus derives the locker status from its unreceived items.
func recomputeStatus(tx *gorm.DB, lockerID string) error {
	var pending int64
	err := tx.Model(&models.Item{}).
		Where("locker_id = ? AND status = ?", lockerID, types.ItemStatusNotReceived).
		Count(&pending).Error
	if err != nil {
		return fmt.Errorf("failed to count pending items: %w", err)
	}

	status := types.LockerStatusEmpty
	if pending > 0 {
		status = types.LockerStatusNotEmpty
	}
	return tx.Model(&models.Locker{}).
		Where("id = ?", lockerID).
		UpdateColumn("status", status).Error
}

type AddItemRequest struct {
	OwnerID  string `json:"owner_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
	ImageURL string `json:"image_url"`
}

// AddItem records a parcel staff placed in a resident's locker and tells the
// owner about it.
func (s *Service) AddItem(ctx context.Context, adminID string, req *AddItemRequest) (*models.Item, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var item *models.Item
	var ownerID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locker models.Locker
		err := tx.Where("owner_id = ?", req.OwnerID).First(&locker).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLockerMissing
		}
		if err != nil {
			return fmt.Errorf("failed to load locker: %w", err)
		}
		ownerID = locker.OwnerID

		item = &models.Item{
			ID:       tool.GenerateUUIDV7(),
			Name:     req.Name,
			Quantity: req.Quantity,
			ImageURL: req.ImageURL,
			LockerID: locker.ID,
			Status:   types.ItemStatusNotReceived,
		}
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("failed to create locker item: %w", err)
		}
		return recomputeStatus(tx, locker.ID)
	})
	if err != nil {
		return nil, err
	}

	err = s.notify.Create(ctx, &notification.Event{
		EntityType:   types.EntityTypeLockerItemAdd,
		EntityID:     item.ID,
		SenderID:     adminID,
		Message:      notification.FormatMessage(types.EntityTypeLockerItemAdd, "", fmt.Sprintf("%d %s", item.Quantity, item.Name)),
		RecipientIDs: []string{ownerID},
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to notify locker item",
			"item_id", item.ID, "error", err)
	}
	return item, nil
}

// MarkReceived flips an item to received and recomputes the locker status.
func (s *Service) MarkReceived(ctx context.Context, itemID string) (*models.Item, error) {
	var item models.Item
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", itemID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemMissing
		}
		if err != nil {
			return fmt.Errorf("failed to load locker item: %w", err)
		}
		if item.Status == types.ItemStatusReceived {
			return nil
		}

		item.Status = types.ItemStatusReceived
		if err := tx.Model(&item).UpdateColumn("status", item.Status).Error; err != nil {
			return fmt.Errorf("failed to save locker item: %w", err)
		}
		return recomputeStatus(tx, item.LockerID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}
