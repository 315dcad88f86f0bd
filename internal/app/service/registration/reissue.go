package registration

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oceanview/backend/internal/app/service/notification"
	"github.com/oceanview/backend/internal/models"
	"github.com/oceanview/backend/pkg/logctx"
	"github.com/oceanview/backend/pkg/tool"
	"github.com/oceanview/backend/pkg/types"
)

// Reissue files a card-reissue request against an approved physical-card
// registration. One outstanding request per registration: repeating the call
// returns the pending request instead of stacking a new one.
func (s *Service) Reissue(ctx context.Context, residentID, registrationID string) (*models.ReissueCard, error) {
	var rc *models.ReissueCard
	var created bool
	var reg *models.ServiceRegistration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		reg, err = s.get(tx, registrationID)
		if err != nil {
			return err
		}
		if reg.ResidentID != residentID {
			return ErrNotAnOccupant
		}
		if !reg.IsApproved() || !reg.ServiceID.IsPhysicalCard() {
			return ErrNotReissuable
		}

		var existing models.ReissueCard
		err = tx.Scopes(models.NotDeleted).
			Where("registration_id = ? AND status = ?", reg.ID, types.RegistrationStatusWaitingForApproval).
			First(&existing).Error
		if err == nil {
			rc = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up reissue request: %w", err)
		}

		rc = &models.ReissueCard{
			ID:             tool.GenerateUUIDV7(),
			RegistrationID: reg.ID,
			Status:         types.RegistrationStatusWaitingForApproval,
		}
		if err := tx.Create(rc).Error; err != nil {
			return fmt.Errorf("failed to create reissue request: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		err = s.notify.Create(ctx, &notification.Event{
			EntityType: types.EntityTypeServiceReissue,
			EntityID:   rc.ID,
			SenderID:   residentID,
			Message:    notification.FormatMessage(types.EntityTypeServiceReissue, reg.Resident.DisplayName(), reg.ServiceID.Label()),
		})
		if err != nil {
			logctx.FromCtx(ctx, s.log).Errorw("failed to notify reissue",
				"reissue_id", rc.ID, "error", err)
		}
	}
	return rc, nil
}

// ApproveReissue and RejectReissue mirror the registration decision rules.
func (s *Service) ApproveReissue(ctx context.Context, adminID, reissueID string) (*models.ReissueCard, error) {
	return s.decideReissue(ctx, adminID, reissueID, true)
}

func (s *Service) RejectReissue(ctx context.Context, adminID, reissueID string) (*models.ReissueCard, error) {
	return s.decideReissue(ctx, adminID, reissueID, false)
}

func (s *Service) decideReissue(ctx context.Context, adminID, reissueID string, approve bool) (*models.ReissueCard, error) {
	var rc models.ReissueCard
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Scopes(models.NotDeleted).
			Preload("Registration").
			Where("id = ?", reissueID).First(&rc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRegistrationMissing
		}
		if err != nil {
			return fmt.Errorf("failed to load reissue request: %w", err)
		}

		if approve {
			err = rc.Approve()
		} else {
			err = rc.Reject()
		}
		if err != nil {
			return err
		}
		return tx.Select("status").Save(&rc).Error
	})
	if err != nil {
		return nil, err
	}

	entityType := types.EntityTypeReissueApproved
	if !approve {
		entityType = types.EntityTypeReissueRejected
	}
	err = s.notify.Create(ctx, &notification.Event{
		EntityType:   entityType,
		EntityID:     rc.ID,
		SenderID:     adminID,
		Message:      notification.FormatMessage(entityType, "", rc.Registration.ServiceID.Label()),
		RecipientIDs: []string{rc.Registration.ResidentID},
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to notify reissue decision",
			"reissue_id", rc.ID, "error", err)
	}
	return &rc, nil
}
