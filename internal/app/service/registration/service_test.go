package registration

import (
	"context"
	"fmt"
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

func seedResident(t *testing.T, db *gorm.DB, residentID string, staff bool) *models.User {
	t.Helper()
	pi := &models.PersonalInformation{
		CitizenID:   "c-" + residentID,
		FullName:    "User " + residentID,
		PhoneNumber: "09" + residentID + "00",
		Gender:      types.GenderMale,
	}
	require.NoError(t, db.Create(pi).Error)
	user := &models.User{
		ResidentID:     residentID,
		PersonalInfoID: pi.CitizenID,
		IsStaff:        staff,
		Status:         types.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	user.PersonalInformation = *pi
	return user
}

func seedOccupiedApartment(t *testing.T, db *gorm.DB, roomNumber string, occupants ...*models.User) {
	t.Helper()
	apt := &models.Apartment{
		RoomNumber:   roomNumber,
		Floor:        5,
		BuildingName: "A",
		Status:       types.ApartmentStatusInhabited,
	}
	require.NoError(t, db.Create(apt).Error)
	for _, u := range occupants {
		require.NoError(t, db.Model(apt).Association("Residents").Append(u))
	}
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	for id, price := range map[types.ServiceID]int64{
		types.ServiceIDAccessCard:         0,
		types.ServiceIDResidentCard:       0,
		types.ServiceIDBicycleParkingCard: 30000,
		types.ServiceIDMotorParkingCard:   70000,
		types.ServiceIDCarParkingCard:     900000,
	} {
		require.NoError(t, db.Create(&models.Service{ID: id, Name: id.Label(), Price: price}).Error)
	}
}

func relativeInfo(n int) *ApplicantInfo {
	return &ApplicantInfo{
		CitizenID:    fmt.Sprintf("rel-%04d", n),
		FullName:     fmt.Sprintf("Relative %d", n),
		PhoneNumber:  fmt.Sprintf("0912%06d", n),
		Relationship: "Em trai",
	}
}

func selfInfo(u *models.User) *ApplicantInfo {
	return &ApplicantInfo{
		CitizenID:   u.PersonalInformation.CitizenID,
		FullName:    u.PersonalInformation.FullName,
		PhoneNumber: u.PersonalInformation.PhoneNumber,
	}
}

func TestRegisterAccessCard(t *testing.T) {
	svc, db := newTestService(t)
	seedCatalog(t, db)
	sponsor := seedResident(t, db, "240002", false)

	t.Run("self registration rejected", func(t *testing.T) {
		_, err := svc.RegisterAccessCard(context.Background(), sponsor.ResidentID, selfInfo(sponsor))
		require.ErrorIs(t, err, ErrSelfAccessCard)
	})

	t.Run("relative gets a pending registration and a linked record", func(t *testing.T) {
		info := relativeInfo(1)
		reg, err := svc.RegisterAccessCard(context.Background(), sponsor.ResidentID, info)
		require.NoError(t, err)
		require.Equal(t, types.RegistrationStatusWaitingForApproval, reg.Status)
		require.Equal(t, types.ServiceIDAccessCard, reg.ServiceID)
		require.Equal(t, types.PaymentCadenceFree, reg.Cadence)
		require.Equal(t, info.CitizenID, reg.PersonalInfoID)

		var relative models.Relative
		require.NoError(t, db.Where("personal_info_id = ?", info.CitizenID).First(&relative).Error)
		require.Equal(t, info.Relationship, relative.Relationship)

		var linked int64
		require.NoError(t, db.Table("relative_residents").
			Where("relative_id = ? AND user_resident_id = ?", relative.ID, sponsor.ResidentID).
			Count(&linked).Error)
		require.EqualValues(t, 1, linked)
	})

	t.Run("open registration blocks a duplicate", func(t *testing.T) {
		_, err := svc.RegisterAccessCard(context.Background(), sponsor.ResidentID, relativeInfo(1))
		require.ErrorIs(t, err, ErrAlreadyRegistered)
	})
}

func TestRegisterParkingCard(t *testing.T) {
	svc, db := newTestService(t)
	seedCatalog(t, db)
	sponsor := seedResident(t, db, "240002", false)
	outsider := seedResident(t, db, "240003", false)
	seedOccupiedApartment(t, db, "A-503", sponsor)

	motorbike := func(plate string) *VehicleInput {
		return &VehicleInput{LicensePlate: plate, VehicleType: types.VehicleTypeMotorbike}
	}

	t.Run("non occupant rejected", func(t *testing.T) {
		_, err := svc.RegisterParkingCard(context.Background(), outsider.ResidentID, "A-503", motorbike("59X1-11111"), selfInfo(outsider))
		require.ErrorIs(t, err, ErrNotAnOccupant)
	})

	t.Run("license plate required unless bicycle", func(t *testing.T) {
		_, err := svc.RegisterParkingCard(context.Background(), sponsor.ResidentID, "A-503", motorbike(""), selfInfo(sponsor))
		require.ErrorIs(t, err, ErrLicensePlateRequired)
	})

	t.Run("vehicle quota is per type", func(t *testing.T) {
		reg, err := svc.RegisterParkingCard(context.Background(), sponsor.ResidentID, "A-503", motorbike("59X1-11111"), selfInfo(sponsor))
		require.NoError(t, err)
		require.Equal(t, types.ServiceIDMotorParkingCard, reg.ServiceID)
		require.Equal(t, types.PaymentCadenceMonthly, reg.Cadence)

		_, err = svc.RegisterParkingCard(context.Background(), sponsor.ResidentID, "A-503", motorbike("59X1-22222"), relativeInfo(2))
		require.NoError(t, err)

		// Two motorbike slots per apartment.
		_, err = svc.RegisterParkingCard(context.Background(), sponsor.ResidentID, "A-503", motorbike("59X1-33333"), relativeInfo(3))
		require.ErrorIs(t, err, ErrVehicleQuotaReached)

		// The car slot is independent of the motorbike ones.
		car := &VehicleInput{LicensePlate: "51A-99999", VehicleType: types.VehicleTypeCar}
		_, err = svc.RegisterParkingCard(context.Background(), sponsor.ResidentID, "A-503", car, relativeInfo(4))
		require.NoError(t, err)
	})

	t.Run("bicycle without a plate", func(t *testing.T) {
		bike := &VehicleInput{VehicleType: types.VehicleTypeBicycle}
		reg, err := svc.RegisterParkingCard(context.Background(), sponsor.ResidentID, "A-503", bike, relativeInfo(5))
		require.NoError(t, err)

		var vehicle models.Vehicle
		require.NoError(t, db.Where("registration_id = ?", reg.ID).First(&vehicle).Error)
		require.Nil(t, vehicle.LicensePlate)
	})
}

func TestRegisterResidentCard_Quota(t *testing.T) {
	svc, db := newTestService(t)
	seedCatalog(t, db)
	sponsor := seedResident(t, db, "240002", false)
	seedOccupiedApartment(t, db, "A-503", sponsor)

	for i := 0; i < 4; i++ {
		_, err := svc.RegisterResidentCard(context.Background(), sponsor.ResidentID, "A-503", relativeInfo(10+i))
		require.NoError(t, err)
	}

	_, err := svc.RegisterResidentCard(context.Background(), sponsor.ResidentID, "A-503", relativeInfo(14))
	require.ErrorIs(t, err, ErrResidentCardQuota)
}

func TestDecide(t *testing.T) {
	svc, db := newTestService(t)
	seedCatalog(t, db)
	admin := seedResident(t, db, "240001", true)
	sponsor := seedResident(t, db, "240002", false)
	seedOccupiedApartment(t, db, "A-503", sponsor)

	t.Run("approve is final", func(t *testing.T) {
		reg, err := svc.RegisterAccessCard(context.Background(), sponsor.ResidentID, relativeInfo(20))
		require.NoError(t, err)

		approved, err := svc.Approve(context.Background(), admin.ResidentID, reg.ID)
		require.NoError(t, err)
		require.Equal(t, types.RegistrationStatusApproved, approved.Status)

		_, err = svc.Reject(context.Background(), admin.ResidentID, reg.ID)
		require.ErrorIs(t, err, models.ErrAlreadyApprovedOrClosed)
	})

	t.Run("approving a resident card issues the holder's account", func(t *testing.T) {
		info := relativeInfo(21)
		reg, err := svc.RegisterResidentCard(context.Background(), sponsor.ResidentID, "A-503", info)
		require.NoError(t, err)

		// The holder was pre-registered by an admin but never issued.
		require.NoError(t, db.Create(&models.User{
			ResidentID:     "240009",
			PersonalInfoID: info.CitizenID,
			Status:         types.UserStatusNotIssued,
		}).Error)

		_, err = svc.Approve(context.Background(), admin.ResidentID, reg.ID)
		require.NoError(t, err)

		var holder models.User
		require.NoError(t, db.Where("resident_id = ?", "240009").First(&holder).Error)
		require.Equal(t, types.UserStatusIssued, holder.Status)
		require.NotNil(t, holder.IssuedByID)
		require.Equal(t, admin.ResidentID, *holder.IssuedByID)
	})

	t.Run("missing registration", func(t *testing.T) {
		_, err := svc.Approve(context.Background(), admin.ResidentID, "no-such-id")
		require.ErrorIs(t, err, ErrRegistrationMissing)
	})
}

func TestCancel(t *testing.T) {
	svc, db := newTestService(t)
	seedCatalog(t, db)
	admin := seedResident(t, db, "240001", true)
	sponsor := seedResident(t, db, "240002", false)
	seedOccupiedApartment(t, db, "A-503", sponsor)

	t.Run("only the sponsor can cancel", func(t *testing.T) {
		reg, err := svc.RegisterAccessCard(context.Background(), sponsor.ResidentID, relativeInfo(30))
		require.NoError(t, err)

		_, err = svc.Cancel(context.Background(), "240008", reg.ID)
		require.ErrorIs(t, err, ErrNotAnOccupant)

		canceled, err := svc.Cancel(context.Background(), sponsor.ResidentID, reg.ID)
		require.NoError(t, err)
		require.Equal(t, types.RegistrationStatusCanceled, canceled.Status)
	})

	t.Run("canceling an approved parking card frees the slot", func(t *testing.T) {
		car := &VehicleInput{LicensePlate: "51A-11111", VehicleType: types.VehicleTypeCar}
		reg, err := svc.RegisterParkingCard(context.Background(), sponsor.ResidentID, "A-503", car, selfInfo(sponsor))
		require.NoError(t, err)

		_, err = svc.Approve(context.Background(), admin.ResidentID, reg.ID)
		require.NoError(t, err)

		canceled, err := svc.Cancel(context.Background(), sponsor.ResidentID, reg.ID)
		require.NoError(t, err)
		require.True(t, canceled.WasApproved())

		var vehicles int64
		require.NoError(t, db.Model(&models.Vehicle{}).
			Where("apartment_id = ? AND vehicle_type = ?", "A-503", types.VehicleTypeCar).
			Count(&vehicles).Error)
		require.Zero(t, vehicles)

		// The freed slot accepts a fresh registration.
		car2 := &VehicleInput{LicensePlate: "51A-22222", VehicleType: types.VehicleTypeCar}
		_, err = svc.RegisterParkingCard(context.Background(), sponsor.ResidentID, "A-503", car2, relativeInfo(31))
		require.NoError(t, err)
	})

	t.Run("rejected registration cannot be canceled", func(t *testing.T) {
		reg, err := svc.RegisterAccessCard(context.Background(), sponsor.ResidentID, relativeInfo(32))
		require.NoError(t, err)
		_, err = svc.Reject(context.Background(), admin.ResidentID, reg.ID)
		require.NoError(t, err)

		_, err = svc.Cancel(context.Background(), sponsor.ResidentID, reg.ID)
		require.ErrorIs(t, err, models.ErrNotCancelable)
	})
}

func TestReissue(t *testing.T) {
	svc, db := newTestService(t)
	seedCatalog(t, db)
	admin := seedResident(t, db, "240001", true)
	sponsor := seedResident(t, db, "240002", false)
	seedOccupiedApartment(t, db, "A-503", sponsor)

	reg, err := svc.RegisterResidentCard(context.Background(), sponsor.ResidentID, "A-503", relativeInfo(40))
	require.NoError(t, err)

	t.Run("pending registration is not reissuable", func(t *testing.T) {
		_, err := svc.Reissue(context.Background(), sponsor.ResidentID, reg.ID)
		require.ErrorIs(t, err, ErrNotReissuable)
	})

	_, err = svc.Approve(context.Background(), admin.ResidentID, reg.ID)
	require.NoError(t, err)

	t.Run("repeat request returns the outstanding one", func(t *testing.T) {
		first, err := svc.Reissue(context.Background(), sponsor.ResidentID, reg.ID)
		require.NoError(t, err)
		require.Equal(t, types.RegistrationStatusWaitingForApproval, first.Status)

		second, err := svc.Reissue(context.Background(), sponsor.ResidentID, reg.ID)
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)
	})

	t.Run("decision is final", func(t *testing.T) {
		rc, err := svc.Reissue(context.Background(), sponsor.ResidentID, reg.ID)
		require.NoError(t, err)

		approved, err := svc.ApproveReissue(context.Background(), admin.ResidentID, rc.ID)
		require.NoError(t, err)
		require.Equal(t, types.RegistrationStatusApproved, approved.Status)

		_, err = svc.RejectReissue(context.Background(), admin.ResidentID, rc.ID)
		require.ErrorIs(t, err, models.ErrAlreadyApprovedOrClosed)
	})
}
