package feedback

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

func seedResident(t *testing.T, db *gorm.DB, residentID string) {
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
		Status:         types.UserStatusActive,
	}).Error)
}

func TestCreate(t *testing.T) {
	svc, db := newTestService(t)
	seedResident(t, db, "240002")

	t.Run("unknown type rejected", func(t *testing.T) {
		_, err := svc.Create(context.Background(), "240002", &CreateRequest{
			Title: "Thang máy hỏng", Content: "Thang máy tòa A không hoạt động", Type: "BROKEN",
		})
		require.ErrorIs(t, err, ErrInvalidType)
	})

	t.Run("created with the author on record", func(t *testing.T) {
		fb, err := svc.Create(context.Background(), "240002", &CreateRequest{
			Title:   "Thang máy hỏng",
			Content: "Thang máy tòa A không hoạt động",
			Type:    types.FeedbackTypeComplain,
		})
		require.NoError(t, err)
		require.Equal(t, "240002", fb.AuthorID)

		loaded, err := svc.Get(context.Background(), fb.ID)
		require.NoError(t, err)
		require.Equal(t, fb.Title, loaded.Title)
	})
}

func TestList_Filters(t *testing.T) {
	svc, db := newTestService(t)
	seedResident(t, db, "240002")
	seedResident(t, db, "240003")

	seed := []struct {
		author string
		typ    types.FeedbackType
	}{
		{"240002", types.FeedbackTypeComplain},
		{"240002", types.FeedbackTypeQuestion},
		{"240003", types.FeedbackTypeComplain},
	}
	for i, s := range seed {
		_, err := svc.Create(context.Background(), s.author, &CreateRequest{
			Title: "Góp ý", Content: "Nội dung", Type: s.typ,
		})
		require.NoError(t, err, "seed %d", i)
	}

	byAuthor, err := svc.List(context.Background(), &ListRequest{AuthorID: "240002"})
	require.NoError(t, err)
	require.EqualValues(t, 2, byAuthor.Total)

	byType, err := svc.List(context.Background(), &ListRequest{Type: types.FeedbackTypeComplain})
	require.NoError(t, err)
	require.EqualValues(t, 2, byType.Total)

	both, err := svc.List(context.Background(), &ListRequest{AuthorID: "240003", Type: types.FeedbackTypeComplain})
	require.NoError(t, err)
	require.EqualValues(t, 1, both.Total)
}

func TestDelete_OwnerOnly(t *testing.T) {
	svc, db := newTestService(t)
	seedResident(t, db, "240002")

	fb, err := svc.Create(context.Background(), "240002", &CreateRequest{
		Title: "Góp ý", Content: "Nội dung", Type: types.FeedbackTypeOther,
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "240003", fb.ID)
	require.ErrorIs(t, err, ErrFeedbackOwner)

	require.NoError(t, svc.Delete(context.Background(), "240002", fb.ID))

	// Soft-deleted feedback disappears from reads.
	_, err = svc.Get(context.Background(), fb.ID)
	require.ErrorIs(t, err, ErrFeedbackMissing)

	listed, err := svc.List(context.Background(), &ListRequest{AuthorID: "240002"})
	require.NoError(t, err)
	require.EqualValues(t, 0, listed.Total)
}
