package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oceanview/backend/internal/app/service/notification"
	"github.com/oceanview/backend/internal/models"
	platformdb "github.com/oceanview/backend/internal/platform/db"
	"github.com/oceanview/backend/internal/platform/payment"
	"github.com/oceanview/backend/pkg/config"
	"github.com/oceanview/backend/pkg/tool"
	"github.com/oceanview/backend/pkg/types"
)

func TestWindowFor_Monthly(t *testing.T) {
	now := time.Date(2024, time.February, 20, 10, 30, 0, 0, time.UTC)
	w, err := windowFor(types.PaymentCadenceMonthly, now)
	require.NoError(t, err)

	require.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), w.start)
	require.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), w.end)
	require.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), w.dueDate)
	require.Equal(t, 29, w.days)
}

func TestWindowFor_Daily(t *testing.T) {
	now := time.Date(2024, time.March, 3, 23, 59, 0, 0, time.UTC)
	w, err := windowFor(types.PaymentCadenceDaily, now)
	require.NoError(t, err)

	require.Equal(t, time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), w.start)
	require.Equal(t, w.start, w.end)
	require.Equal(t, now.AddDate(0, 0, 7), w.dueDate)
	require.Equal(t, 1, w.days)
}

func TestWindowFor_UnsupportedCadence(t *testing.T) {
	for _, cadence := range []types.PaymentCadence{types.PaymentCadenceFree, types.PaymentCadenceImmediate, ""} {
		_, err := windowFor(cadence, time.Now())
		require.ErrorIs(t, err, ErrUnsupportedCadence)
	}
}

func TestUnitsUsed(t *testing.T) {
	now := time.Date(2024, time.January, 31, 12, 0, 0, 0, time.UTC)
	w, err := windowFor(types.PaymentCadenceMonthly, now)
	require.NoError(t, err)

	tests := []struct {
		name      string
		createdAt time.Time
		want      int64
	}{
		{"created today", time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC), 1},
		{"created mid month", time.Date(2024, time.January, 22, 23, 0, 0, 0, time.UTC), 10},
		{"created on day one", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 31},
		{"created before the window caps at the period", time.Date(2023, time.November, 2, 0, 0, 0, 0, time.UTC), 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, unitsUsed(tt.createdAt, now, w))
		})
	}
}

type stubGateway struct {
	payURL string
	data   *payment.CallbackData
	err    error
}

func (g *stubGateway) CreatePayURL(context.Context, *payment.PayURLRequest) (string, error) {
	return g.payURL, g.err
}

func (g *stubGateway) VerifyCallback(map[string]string) (*payment.CallbackData, error) {
	return g.data, g.err
}

type silentPush struct{}

func (silentPush) SendToTokens(context.Context, []string, string, string, map[string]string) error {
	return nil
}
func (silentPush) SendToTopic(context.Context, string, string, string, map[string]string) error {
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

func newTestService(t *testing.T, now time.Time, gw *stubGateway) (*Service, *gorm.DB) {
	db := newTestDB(t)
	cfg := &config.Config{}
	log := zap.NewNop().Sugar()
	svc := &Service{
		cfg:    cfg,
		db:     db,
		log:    log,
		notify: notification.NewService(cfg, db, log, silentPush{}),
		gateways: map[types.WalletType]payment.Gateway{
			types.WalletTypeVNPay: gw,
		},
		now: func() time.Time { return now },
	}
	return svc, db
}

func seedResident(t *testing.T, db *gorm.DB, residentID string, staff bool) {
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
}

func seedService(t *testing.T, db *gorm.DB, id types.ServiceID, price int64) {
	t.Helper()
	require.NoError(t, db.Create(&models.Service{ID: id, Name: id.Label(), Price: price}).Error)
}

func seedRegistration(t *testing.T, db *gorm.DB, residentID string, serviceID types.ServiceID,
	cadence types.PaymentCadence, status types.RegistrationStatus, createdAt time.Time) *models.ServiceRegistration {
	t.Helper()
	reg := &models.ServiceRegistration{
		ID:             tool.GenerateUUIDV7(),
		ServiceID:      serviceID,
		PersonalInfoID: "c-" + residentID,
		ResidentID:     residentID,
		Cadence:        cadence,
		Status:         status,
		CreatedAt:      createdAt,
	}
	require.NoError(t, db.Create(reg).Error)
	return reg
}

func TestCreateInvoices_MonthlyGroupsPerResident(t *testing.T) {
	now := time.Date(2024, time.January, 31, 8, 0, 0, 0, time.UTC)
	svc, db := newTestService(t, now, &stubGateway{})

	seedResident(t, db, "240001", true)
	seedResident(t, db, "240002", false)
	seedService(t, db, types.ServiceIDMotorParkingCard, 70000)
	seedService(t, db, types.ServiceIDManagingFee, 150000)

	// Two billable registrations for the same resident: one live all month,
	// one opened on the 22nd, covering 10 days.
	seedRegistration(t, db, "240002", types.ServiceIDManagingFee,
		types.PaymentCadenceMonthly, types.RegistrationStatusApproved,
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	seedRegistration(t, db, "240002", types.ServiceIDMotorParkingCard,
		types.PaymentCadenceMonthly, types.RegistrationStatusApproved,
		time.Date(2024, time.January, 22, 9, 0, 0, 0, time.UTC))

	invoices, err := svc.CreateInvoices(context.Background(), types.PaymentCadenceMonthly)
	require.NoError(t, err)
	require.Len(t, invoices, 1)

	invoice := invoices[0]
	require.Equal(t, "INV000001", invoice.ID)
	require.Equal(t, "240002", invoice.ResidentID)
	require.EqualValues(t, 150000*31+70000*10, invoice.TotalAmount)
	require.Equal(t, time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), invoice.DueDate)

	var details []models.InvoiceDetail
	require.NoError(t, db.Where("invoice_id = ?", invoice.ID).Find(&details).Error)
	require.Len(t, details, 2)
}

func TestCreateInvoices_SequentialIDsAcrossRuns(t *testing.T) {
	now := time.Date(2024, time.January, 31, 8, 0, 0, 0, time.UTC)
	svc, db := newTestService(t, now, &stubGateway{})

	seedResident(t, db, "240001", true)
	seedService(t, db, types.ServiceIDManagingFee, 150000)

	for i, resident := range []string{"240002", "240003", "240004"} {
		seedResident(t, db, resident, false)
		seedRegistration(t, db, resident, types.ServiceIDManagingFee,
			types.PaymentCadenceMonthly, types.RegistrationStatusApproved,
			time.Date(2024, time.January, 1+i, 0, 0, 0, 0, time.UTC))
	}

	invoices, err := svc.CreateInvoices(context.Background(), types.PaymentCadenceMonthly)
	require.NoError(t, err)
	require.Len(t, invoices, 3)
	require.Equal(t, "INV000001", invoices[0].ID)
	require.Equal(t, "INV000002", invoices[1].ID)
	require.Equal(t, "INV000003", invoices[2].ID)
}

func TestCreateInvoices_PicksUpCanceledAfterApproval(t *testing.T) {
	now := time.Date(2024, time.January, 31, 8, 0, 0, 0, time.UTC)
	svc, db := newTestService(t, now, &stubGateway{})

	seedResident(t, db, "240001", true)
	seedResident(t, db, "240002", false)
	seedService(t, db, types.ServiceIDMotorParkingCard, 70000)

	approved := types.RegistrationStatusApproved
	reg := seedRegistration(t, db, "240002", types.ServiceIDMotorParkingCard,
		types.PaymentCadenceMonthly, types.RegistrationStatusCanceled,
		time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, db.Model(reg).UpdateColumn("previous_status", approved).Error)

	// Canceled without a prior approval never bills.
	seedRegistration(t, db, "240002", types.ServiceIDMotorParkingCard,
		types.PaymentCadenceMonthly, types.RegistrationStatusCanceled,
		time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC))

	invoices, err := svc.CreateInvoices(context.Background(), types.PaymentCadenceMonthly)
	require.NoError(t, err)
	require.Len(t, invoices, 1)

	var details []models.InvoiceDetail
	require.NoError(t, db.Where("invoice_id = ?", invoices[0].ID).Find(&details).Error)
	require.Len(t, details, 1)
	require.Equal(t, reg.ID, details[0].RegistrationID)
}

func TestCreateInvoices_SkipsOtherCadences(t *testing.T) {
	now := time.Date(2024, time.January, 31, 8, 0, 0, 0, time.UTC)
	svc, db := newTestService(t, now, &stubGateway{})

	seedResident(t, db, "240001", true)
	seedResident(t, db, "240002", false)
	seedService(t, db, types.ServiceIDAccessCard, 0)

	seedRegistration(t, db, "240002", types.ServiceIDAccessCard,
		types.PaymentCadenceFree, types.RegistrationStatusApproved,
		time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC))

	invoices, err := svc.CreateInvoices(context.Background(), types.PaymentCadenceMonthly)
	require.NoError(t, err)
	require.Empty(t, invoices)
}

func TestSweepOverdue(t *testing.T) {
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	svc, db := newTestService(t, now, &stubGateway{})

	seedResident(t, db, "240002", false)
	require.NoError(t, db.Create(&models.Invoice{
		ID: "INV000001", ResidentID: "240002", TotalAmount: 1000,
		DueDate: now.AddDate(0, 0, -1), Status: types.InvoiceStatusPending,
	}).Error)
	require.NoError(t, db.Create(&models.Invoice{
		ID: "INV000002", ResidentID: "240002", TotalAmount: 1000,
		DueDate: now.AddDate(0, 0, 5), Status: types.InvoiceStatusPending,
	}).Error)

	n, err := svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	var overdue models.Invoice
	require.NoError(t, db.Where("id = ?", "INV000001").First(&overdue).Error)
	require.Equal(t, types.InvoiceStatusOverdue, overdue.Status)
}

func TestGet_OwnershipUnlessStaff(t *testing.T) {
	now := time.Now()
	svc, db := newTestService(t, now, &stubGateway{})

	seedResident(t, db, "240002", false)
	require.NoError(t, db.Create(&models.Invoice{
		ID: "INV000001", ResidentID: "240002", TotalAmount: 1000,
		DueDate: now, Status: types.InvoiceStatusPending,
	}).Error)

	_, err := svc.Get(context.Background(), "240003", "INV000001", false)
	require.ErrorIs(t, err, ErrInvoiceOwner)

	invoice, err := svc.Get(context.Background(), "240003", "INV000001", true)
	require.NoError(t, err)
	require.Equal(t, "INV000001", invoice.ID)

	_, err = svc.Get(context.Background(), "240002", "INV999999", false)
	require.ErrorIs(t, err, ErrInvoiceMissing)
}
