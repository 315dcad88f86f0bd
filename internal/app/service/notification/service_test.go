package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oceanview/backend/internal/models"
	platformdb "github.com/oceanview/backend/internal/platform/db"
	"github.com/oceanview/backend/pkg/config"
	"github.com/oceanview/backend/pkg/tool"
	"github.com/oceanview/backend/pkg/types"
)

// recordingPush captures FCM dispatches without talking to Firebase.
type recordingPush struct {
	tokenSends []int
	topicSends []string
}

func (p *recordingPush) SendToTokens(_ context.Context, tokens []string, _, _ string, _ map[string]string) error {
	p.tokenSends = append(p.tokenSends, len(tokens))
	return nil
}

func (p *recordingPush) SendToTopic(_ context.Context, topic, _, _ string, _ map[string]string) error {
	p.topicSends = append(p.topicSends, topic)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, platformdb.AutoMigrate(zap.NewNop().Sugar(), db))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *recordingPush) {
	db := newTestDB(t)
	push := &recordingPush{}
	cfg := &config.Config{
		AdminHost: "https://admin.oceanview.example.com",
		LogoURL:   "https://cdn.oceanview.example.com/logo.png",
	}
	cfg.FCM.ResidentTopic = "residents"
	cfg.FCM.AdminTopic = "admins"
	return NewService(cfg, db, zap.NewNop().Sugar(), push), db, push
}

func seedUser(t *testing.T, db *gorm.DB, residentID string, staff bool, deviceType types.DeviceType) {
	t.Helper()
	pi := &models.PersonalInformation{
		CitizenID:   "c-" + residentID,
		FullName:    "User " + residentID,
		PhoneNumber: "09" + residentID + "00",
	}
	require.NoError(t, db.Create(pi).Error)
	require.NoError(t, db.Create(&models.User{
		ResidentID:     residentID,
		PersonalInfoID: pi.CitizenID,
		IsStaff:        staff,
		Status:         types.UserStatusActive,
	}).Error)
	if deviceType != "" {
		require.NoError(t, db.Create(&models.FCMToken{
			ID:         tool.GenerateUUIDV7(),
			UserID:     residentID,
			Token:      "tok-" + residentID,
			DeviceType: deviceType,
		}).Error)
	}
}

func TestCreate_BumpsUnreadCounterPerRecipient(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	seedUser(t, db, "240001", true, types.DeviceTypeWeb)
	seedUser(t, db, "240002", false, types.DeviceTypeAndroid)
	seedUser(t, db, "240003", false, types.DeviceTypeAndroid)

	// RESIDENT targeting narrowed to one recipient.
	require.NoError(t, svc.Create(ctx, &Event{
		EntityType:   types.EntityTypeServiceApproved,
		EntityID:     "reg-1",
		Message:      "test",
		RecipientIDs: []string{"240002"},
	}))
	require.NoError(t, svc.Create(ctx, &Event{
		EntityType:   types.EntityTypeServiceApproved,
		EntityID:     "reg-2",
		Message:      "test",
		RecipientIDs: []string{"240002"},
	}))

	var u models.User
	require.NoError(t, db.Where("resident_id = ?", "240002").First(&u).Error)
	require.Equal(t, 2, u.UnreadNotifications)
	require.Equal(t, 0, u.StaffUnreadNotifications)

	// The other resident received nothing.
	var other models.User
	require.NoError(t, db.Where("resident_id = ?", "240003").First(&other).Error)
	require.Equal(t, 0, other.UnreadNotifications)

	count, err := svc.UnreadCount(ctx, "240002", false)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestCreate_AdminTargetUsesStaffCounter(t *testing.T) {
	svc, db, push := newTestService(t)
	ctx := context.Background()

	seedUser(t, db, "240001", true, types.DeviceTypeWeb)
	seedUser(t, db, "240002", false, types.DeviceTypeAndroid)

	require.NoError(t, svc.Create(ctx, &Event{
		EntityType: types.EntityTypeFeedbackPost,
		EntityID:   "fb-1",
		SenderID:   "240002",
		Message:    "test",
	}))

	var admin models.User
	require.NoError(t, db.Where("resident_id = ?", "240001").First(&admin).Error)
	require.Equal(t, 1, admin.StaffUnreadNotifications)
	require.Equal(t, 0, admin.UnreadNotifications)

	// Admin events broadcast on the admin topic.
	require.Equal(t, []string{"admins"}, push.topicSends)
}

func TestCreate_RecipientsWithoutTokensGetNoRow(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	seedUser(t, db, "240001", true, types.DeviceTypeWeb)
	seedUser(t, db, "240002", false, "") // no device token

	require.NoError(t, svc.Create(ctx, &Event{
		EntityType:   types.EntityTypeServiceApproved,
		EntityID:     "reg-1",
		Message:      "test",
		RecipientIDs: []string{"240002"},
	}))

	var n int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("recipient_id = ?", "240002").Count(&n).Error)
	require.Zero(t, n)
}

func TestCreate_EmptyEventRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	require.ErrorIs(t, svc.Create(context.Background(), nil), ErrEmptyEvent)
	require.ErrorIs(t, svc.Create(context.Background(), &Event{EntityType: types.EntityTypeNewsPost}), ErrEmptyEvent)
}

func TestRead_IdempotentDecrement(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	seedUser(t, db, "240001", true, types.DeviceTypeWeb)
	seedUser(t, db, "240002", false, types.DeviceTypeAndroid)

	require.NoError(t, svc.Create(ctx, &Event{
		EntityType:   types.EntityTypeServiceApproved,
		EntityID:     "reg-1",
		Message:      "test",
		RecipientIDs: []string{"240002"},
	}))

	var n models.Notification
	require.NoError(t, db.Where("recipient_id = ?", "240002").First(&n).Error)

	require.NoError(t, svc.Read(ctx, "240002", n.ID))
	count, err := svc.UnreadCount(ctx, "240002", false)
	require.NoError(t, err)
	require.Zero(t, count)

	// Reading again does not drive the counter negative.
	require.NoError(t, svc.Read(ctx, "240002", n.ID))
	count, err = svc.UnreadCount(ctx, "240002", false)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestRead_OwnershipEnforced(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	seedUser(t, db, "240001", true, types.DeviceTypeWeb)
	seedUser(t, db, "240002", false, types.DeviceTypeAndroid)
	seedUser(t, db, "240003", false, types.DeviceTypeAndroid)

	require.NoError(t, svc.Create(ctx, &Event{
		EntityType:   types.EntityTypeServiceApproved,
		EntityID:     "reg-1",
		Message:      "test",
		RecipientIDs: []string{"240002"},
	}))

	var n models.Notification
	require.NoError(t, db.Where("recipient_id = ?", "240002").First(&n).Error)
	require.ErrorIs(t, svc.Read(ctx, "240003", n.ID), ErrNotificationOwner)
}

func TestList_NewestFirst(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	seedUser(t, db, "240001", true, types.DeviceTypeWeb)
	seedUser(t, db, "240002", false, types.DeviceTypeAndroid)

	for _, id := range []string{"reg-1", "reg-2", "reg-3"} {
		require.NoError(t, svc.Create(ctx, &Event{
			EntityType:   types.EntityTypeServiceApproved,
			EntityID:     id,
			Message:      "test",
			RecipientIDs: []string{"240002"},
		}))
	}

	res, err := svc.List(ctx, &ListRequest{UserID: "240002", Size: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, res.Total)
	require.Len(t, res.Items, 2)
}
