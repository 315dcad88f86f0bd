package locker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oceanview/backend/internal/app/service/notification"
	"github.com/oceanview/backend/internal/models"
	platformdb "github.com/oceanview/backend/internal/platform/db"
	"github.com/oceanview/backend/pkg/config"
	"github.com/oceanview/backend/pkg/tool"
	"github.com/oceanview/backend/pkg/types"
)

type silentPush struct{}

func (silentPush) SendToTokens(context.Context, []string, string, string, map[string]string) error {
	return nil
}
func (silentPush) SendToTopic(context.Context, string, string, string, map[string]string) error {
	return nil
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	log := zap.NewNop().Sugar()
	require.NoError(t, platformdb.AutoMigrate(log, db))

	notify := notification.NewService(&config.Config{}, db, log, silentPush{})
	return NewService(db, log, notify), db
}

func seedLocker(t *testing.T, db *gorm.DB, ownerID string) *models.Locker {
	t.Helper()
	pi := &models.PersonalInformation{
		CitizenID:   "c-" + ownerID,
		FullName:    "User " + ownerID,
		PhoneNumber: "09" + ownerID + "00",
	}
	require.NoError(t, db.Create(pi).Error)
	require.NoError(t, db.Create(&models.User{
		ResidentID:     ownerID,
		PersonalInfoID: pi.CitizenID,
		Status:         types.UserStatusActive,
	}).Error)

	locker := &models.Locker{
		ID:      tool.GenerateUUIDV7(),
		OwnerID: ownerID,
		Status:  types.LockerStatusEmpty,
	}
	require.NoError(t, db.Create(locker).Error)
	return locker
}

func TestAddItem(t *testing.T) {
	svc, db := newTestService(t)
	locker := seedLocker(t, db, "240002")

	t.Run("quantity must be positive", func(t *testing.T) {
		_, err := svc.AddItem(context.Background(), "240001", &AddItemRequest{
			OwnerID: "240002", Name: "Bưu kiện", Quantity: 0,
		})
		require.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("unknown owner", func(t *testing.T) {
		_, err := svc.AddItem(context.Background(), "240001", &AddItemRequest{
			OwnerID: "249999", Name: "Bưu kiện", Quantity: 1,
		})
		require.ErrorIs(t, err, ErrLockerMissing)
	})

	t.Run("item flips the locker to not empty", func(t *testing.T) {
		item, err := svc.AddItem(context.Background(), "240001", &AddItemRequest{
			OwnerID: "240002", Name: "Bưu kiện", Quantity: 2, ImageURL: "https://img/p.jpg",
		})
		require.NoError(t, err)
		require.Equal(t, types.ItemStatusNotReceived, item.Status)
		require.Equal(t, locker.ID, item.LockerID)

		loaded, err := svc.GetByOwner(context.Background(), "240002")
		require.NoError(t, err)
		require.Equal(t, types.LockerStatusNotEmpty, loaded.Status)
	})
}

func TestMarkReceived(t *testing.T) {
	svc, db := newTestService(t)
	seedLocker(t, db, "240002")

	first, err := svc.AddItem(context.Background(), "240001", &AddItemRequest{
		OwnerID: "240002", Name: "Bưu kiện 1", Quantity: 1,
	})
	require.NoError(t, err)
	second, err := svc.AddItem(context.Background(), "240001", &AddItemRequest{
		OwnerID: "240002", Name: "Bưu kiện 2", Quantity: 1,
	})
	require.NoError(t, err)

	items, err := svc.Items(context.Background(), first.LockerID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Receiving one of two items keeps the locker occupied.
	received, err := svc.MarkReceived(context.Background(), first.ID)
	require.NoError(t, err)
	require.Equal(t, types.ItemStatusReceived, received.Status)

	locker, err := svc.GetByOwner(context.Background(), "240002")
	require.NoError(t, err)
	require.Equal(t, types.LockerStatusNotEmpty, locker.Status)

	_, err = svc.MarkReceived(context.Background(), second.ID)
	require.NoError(t, err)

	locker, err = svc.GetByOwner(context.Background(), "240002")
	require.NoError(t, err)
	require.Equal(t, types.LockerStatusEmpty, locker.Status)

	t.Run("marking twice is a no-op", func(t *testing.T) {
		again, err := svc.MarkReceived(context.Background(), first.ID)
		require.NoError(t, err)
		require.Equal(t, types.ItemStatusReceived, again.Status)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := svc.MarkReceived(context.Background(), tool.GenerateUUIDV7())
		require.ErrorIs(t, err, ErrItemMissing)
	})
}
