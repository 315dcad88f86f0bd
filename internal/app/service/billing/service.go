package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/oceanview/backend/internal/app/service/notification"
	"github.com/oceanview/backend/internal/models"
	"github.com/oceanview/backend/internal/platform/payment"
	"github.com/oceanview/backend/internal/platform/payment/momo"
	"github.com/oceanview/backend/internal/platform/payment/vnpay"
	"github.com/oceanview/backend/pkg/config"
	"github.com/oceanview/backend/pkg/logctx"
	"github.com/oceanview/backend/pkg/metrics"
	"github.com/oceanview/backend/pkg/tool"
	"github.com/oceanview/backend/pkg/types"
)

var (
	ErrInvoiceMissing     = errors.New("invoice not found")
	ErrInvoiceOwner       = errors.New("invoice belongs to another resident")
	ErrUnsupportedCadence = errors.New("invoices are only generated for daily or monthly cadences")
	ErrUnknownWallet      = errors.New("unknown wallet type")
)

type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	log      *zap.SugaredLogger
	notify   *notification.Service
	gateways map[types.WalletType]payment.Gateway
	now      func() time.Time
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, notify *notification.Service, vnp *vnpay.Client, mm *momo.Client) *Service {
	return &Service{
		cfg:    cfg,
		db:     db,
		log:    log,
		notify: notify,
		gateways: map[types.WalletType]payment.Gateway{
			types.WalletTypeVNPay: vnp,
			types.WalletTypeMomo:  mm,
		},
		now: time.Now,
	}
}

// nextInvoiceID hands out the next sequential invoice id. Must run inside
// the generation transaction so the sequence has no gaps.
func nextInvoiceID(tx *gorm.DB) (string, error) {
	var last string
	err := tx.Model(&models.Invoice{}).
		Order("id DESC").
		Limit(1).
		Pluck("id", &last).Error
	if err != nil {
		return "", fmt.Errorf("failed to find last invoice id: %w", err)
	}

	seq := 0
	if last != "" {
		seq, err = tool.ParseInvoiceSeq(last)
		if err != nil {
			return "", err
		}
	}
	return tool.FormatInvoiceID(seq + 1), nil
}

// billingWindow is the period one generation run covers.
type billingWindow struct {
	start   time.Time
	end     time.Time // inclusive end of the last covered day
	dueDate time.Time
	days    int
}

func windowFor(cadence types.PaymentCadence, now time.Time) (*billingWindow, error) {
	switch cadence {
	case types.PaymentCadenceMonthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 1, -1)
		return &billingWindow{
			start:   start,
			end:     end,
			dueDate: end.AddDate(0, 0, 15),
			days:    end.Day(),
		}, nil
	case types.PaymentCadenceDaily:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return &billingWindow{
			start:   start,
			end:     start,
			dueDate: now.AddDate(0, 0, 7),
			days:    1,
		}, nil
	default:
		return nil, ErrUnsupportedCadence
	}
}

// unitsUsed counts billable days since the registration was created,
// inclusive of the creation day, capped to the window for monthly runs.
func unitsUsed(createdAt, now time.Time, w *billingWindow) int64 {
	created := time.Date(createdAt.Year(), createdAt.Month(), createdAt.Day(), 0, 0, 0, 0, createdAt.Location())
	units := int64(now.Sub(created).Hours()/24) + 1
	if units < 1 {
		units = 1
	}
	if units > int64(w.days) {
		units = int64(w.days)
	}
	return units
}

// CreateInvoices runs one billing pass for the cadence: it selects every
// registration that was approved in the window, or canceled mid-window after
// approval, groups them by resident, and writes one invoice per resident
// with a pro-rated detail per registration. Returns the created invoices.
func (s *Service) CreateInvoices(ctx context.Context, cadence types.PaymentCadence) ([]*models.Invoice, error) {
	now := s.now()
	w, err := windowFor(cadence, now)
	if err != nil {
		return nil, err
	}

	var invoices []*models.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var regs []*models.ServiceRegistration
		err := tx.Scopes(models.NotDeleted).
			Preload("Service").
			Where("created_at >= ? AND created_at < ?", w.start, w.end.AddDate(0, 0, 1)).
			Where("cadence = ?", cadence).
			Where(
				tx.Where("status = ?", types.RegistrationStatusApproved).
					Or("status = ? AND previous_status = ?",
						types.RegistrationStatusCanceled, types.RegistrationStatusApproved),
			).
			Find(&regs).Error
		if err != nil {
			return fmt.Errorf("failed to select billable registrations: %w", err)
		}

		byResident := map[string][]*models.ServiceRegistration{}
		for _, reg := range regs {
			byResident[reg.ResidentID] = append(byResident[reg.ResidentID], reg)
		}
		residents := make([]string, 0, len(byResident))
		for r := range byResident {
			residents = append(residents, r)
		}
		sort.Strings(residents)

		for _, resident := range residents {
			id, err := nextInvoiceID(tx)
			if err != nil {
				return err
			}

			invoice := &models.Invoice{
				ID:         id,
				ResidentID: resident,
				DueDate:    w.dueDate,
				Status:     types.InvoiceStatusPending,
			}
			if err := tx.Create(invoice).Error; err != nil {
				return fmt.Errorf("failed to create invoice: %w", err)
			}

			var total int64
			for _, reg := range byResident[resident] {
				amount := reg.Service.Price * unitsUsed(reg.CreatedAt, now, w)
				total += amount
				detail := &models.InvoiceDetail{
					ID:             tool.GenerateUUIDV7(),
					InvoiceID:      invoice.ID,
					RegistrationID: reg.ID,
					Amount:         amount,
				}
				if err := tx.Create(detail).Error; err != nil {
					return fmt.Errorf("failed to create invoice detail: %w", err)
				}
			}

			invoice.TotalAmount = total
			if err := tx.Model(invoice).UpdateColumn("total_amount", total).Error; err != nil {
				return fmt.Errorf("failed to set invoice total: %w", err)
			}
			invoices = append(invoices, invoice)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.InvoicesGenerated.WithLabelValues(string(cadence)).Add(float64(len(invoices)))
	for _, invoice := range invoices {
		err := s.notify.Create(ctx, &notification.Event{
			EntityType:   types.EntityTypeInvoiceCreate,
			EntityID:     invoice.ID,
			Message:      notification.FormatMessage(types.EntityTypeInvoiceCreate, "", now.Format("02/01/2006")),
			RecipientIDs: []string{invoice.ResidentID},
		})
		if err != nil {
			logctx.FromCtx(ctx, s.log).Errorw("failed to notify invoice",
				"invoice_id", invoice.ID, "error", err)
		}
	}
	return invoices, nil
}

// SweepOverdue flips unpaid invoices past their due date to OVERDUE.
func (s *Service) SweepOverdue(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Scopes(models.NotDeleted).
		Where("status = ? AND due_date < ?", types.InvoiceStatusPending, s.now()).
		UpdateColumn("status", types.InvoiceStatusOverdue)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to sweep overdue invoices: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Service) get(tx *gorm.DB, invoiceID string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := tx.Scopes(models.NotDeleted).
		Where("id = ?", invoiceID).First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	return &invoice, nil
}

func (s *Service) Get(ctx context.Context, residentID, invoiceID string, staffView bool) (*models.Invoice, error) {
	invoice, err := s.get(s.db.WithContext(ctx), invoiceID)
	if err != nil {
		return nil, err
	}
	if !staffView && invoice.ResidentID != residentID {
		return nil, ErrInvoiceOwner
	}
	return invoice, nil
}

type ListRequest struct {
	ResidentID string
	Status     types.InvoiceStatus
	From       int
	Size       int
}

type ListResponse struct {
	Items []*models.Invoice `json:"items"`
	Total int64             `json:"total"`
}

func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.Size <= 0 {
		req.Size = 10
	}

	q := s.db.WithContext(ctx).Model(&models.Invoice{}).Scopes(models.NotDeleted)
	if req.ResidentID != "" {
		q = q.Where("resident_id = ?", req.ResidentID)
	}
	if req.Status != "" {
		q = q.Where("status = ?", req.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	var items []*models.Invoice
	if err := q.Order("id DESC").
		Offset(req.From).Limit(req.Size).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return &ListResponse{Items: items, Total: total}, nil
}

// RevenueRow is one month of paid-invoice revenue.
type RevenueRow struct {
	Month  string `json:"month"`
	Count  int64  `json:"count"`
	Amount int64  `json:"amount"`
}

type RevenueReport struct {
	From   time.Time    `json:"from"`
	To     time.Time    `json:"to"`
	Total  int64        `json:"total"`
	Months []RevenueRow `json:"months"`
}

// Revenue aggregates paid invoices per calendar month in the range.
func (s *Service) Revenue(ctx context.Context, from, to time.Time) (*RevenueReport, error) {
	var rows []RevenueRow
	err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Scopes(models.NotDeleted).
		Select("to_char(updated_at, 'YYYY-MM') AS month, COUNT(*) AS count, SUM(total_amount) AS amount").
		Where("status = ?", types.InvoiceStatusPaid).
		Where("updated_at >= ? AND updated_at < ?", from, to).
		Group("month").
		Order("month").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	report := &RevenueReport{From: from, To: to, Months: rows}
	for _, r := range rows {
		report.Total += r.Amount
	}
	return report, nil
}
