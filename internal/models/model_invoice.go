package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"

	"github.com/oceanview/backend/pkg/types"
)

var (
	ErrInvoiceAlreadyPaid = errors.New("invoice has already been paid")
	ErrPaymentNotPending  = errors.New("payment is not awaiting confirmation")
)

// Invoice aggregates a resident's billable service registrations for one
// billing period. The id is a human readable sequential number ("INV000001").
type Invoice struct {
	ID          string              `gorm:"column:id;type:varchar(10);primary_key" json:"id"`
	ResidentID  string              `gorm:"column:resident_id;type:varchar(6);not null;index" json:"resident_id"`
	Resident    User                `gorm:"foreignKey:ResidentID;references:ResidentID" json:"resident"`
	TotalAmount int64               `gorm:"column:total_amount;type:bigint;not null;default:0" json:"total_amount"`
	DueDate     time.Time           `gorm:"column:due_date;not null" json:"due_date"`
	Status      types.InvoiceStatus `gorm:"column:status;type:varchar(30);not null;default:'PENDING'" json:"status"`
	Deleted     bool                `gorm:"column:deleted;not null;default:false" json:"deleted"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}

func (i *Invoice) IsPaid() bool {
	return i != nil && i.Status == types.InvoiceStatusPaid
}

// Pay marks the invoice as fully paid. It fails if the invoice has already
// been paid, which is what keeps duplicate gateway callbacks harmless.
func (i *Invoice) Pay() error {
	if i.IsPaid() {
		return ErrInvoiceAlreadyPaid
	}
	i.Status = types.InvoiceStatusPaid
	return nil
}

func (i *Invoice) WaitForApproval() {
	i.Status = types.InvoiceStatusWaitingForApproval
}

func (i *Invoice) Pending() {
	i.Status = types.InvoiceStatusPending
}

// InvoiceDetail is one row per contributing service registration with the
// pro-rated amount for the period.
type InvoiceDetail struct {
	ID             string              `gorm:"column:id;type:uuid;primary_key" json:"id"`
	InvoiceID      string              `gorm:"column:invoice_id;type:varchar(10);not null;index" json:"invoice_id"`
	RegistrationID string              `gorm:"column:registration_id;type:uuid;not null" json:"registration_id"`
	Registration   ServiceRegistration `gorm:"foreignKey:RegistrationID" json:"registration"`
	Amount         int64               `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Deleted        bool                `gorm:"column:deleted;not null;default:false" json:"deleted"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func (InvoiceDetail) TableName() string {
	return "invoice_details"
}

// Payment is a single payment attempt against an invoice. Retries are fresh
// rows, never a retried state on an existing row.
type Payment struct {
	ID          string              `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Method      types.PaymentMethod `gorm:"column:method;type:varchar(15);not null" json:"method"`
	TotalAmount int64               `gorm:"column:total_amount;type:bigint;not null" json:"total_amount"`
	InvoiceID   string              `gorm:"column:invoice_id;type:varchar(10);not null;index" json:"invoice_id"`
	Invoice     Invoice             `gorm:"foreignKey:InvoiceID" json:"invoice"`
	Status      types.PaymentStatus `gorm:"column:status;type:varchar(20);not null;default:'CONFIRMING'" json:"status"`
	// Extra keeps the gateway's raw response for diagnosis.
	Extra     datatypes.JSON `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	Deleted   bool           `gorm:"column:deleted;not null;default:false" json:"deleted"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) IsSuccess() bool {
	return p != nil && p.Status == types.PaymentStatusSuccess
}

// Pay confirms the payment. Only a confirming payment can succeed.
func (p *Payment) Pay() error {
	if p.Status != types.PaymentStatusConfirming {
		return ErrPaymentNotPending
	}
	p.Status = types.PaymentStatusSuccess
	return nil
}

// Invalidate marks a failed or rejected attempt.
func (p *Payment) Invalidate() {
	p.Status = types.PaymentStatusInvalid
}

// ProofImage is the evidence for a manual bank-transfer payment.
type ProofImage struct {
	ID        string                 `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ImageURL  string                 `gorm:"column:image_url;type:varchar(255);not null" json:"image_url"`
	PaymentID string                 `gorm:"column:payment_id;type:uuid;not null;index" json:"payment_id"`
	Payment   Payment                `gorm:"foreignKey:PaymentID" json:"payment"`
	Status    types.ProofImageStatus `gorm:"column:status;type:varchar(30);not null;default:'WAITING_FOR_APPROVAL'" json:"status"`
	Deleted   bool                   `gorm:"column:deleted;not null;default:false" json:"deleted"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func (ProofImage) TableName() string {
	return "proof_images"
}

func (p *ProofImage) IsApproved() bool {
	return p != nil && p.Status == types.ProofImageStatusApproved
}

// OnlineWallet records one external wallet flow, keyed by the reference
// number the gateway echoes back on its return/IPN callback.
type OnlineWallet struct {
	ID              string           `gorm:"column:id;type:uuid;primary_key" json:"id"`
	PaymentID       string           `gorm:"column:payment_id;type:uuid;not null;index" json:"payment_id"`
	Payment         Payment          `gorm:"foreignKey:PaymentID" json:"payment"`
	WalletType      types.WalletType `gorm:"column:wallet_type;type:varchar(10);not null" json:"wallet_type"`
	TransactionID   *string          `gorm:"column:transaction_id;type:varchar(255);default:null" json:"transaction_id"`
	ReferenceNumber string           `gorm:"column:reference_number;type:varchar(100);not null;uniqueIndex" json:"reference_number"`
	Deleted         bool             `gorm:"column:deleted;not null;default:false" json:"deleted"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (OnlineWallet) TableName() string {
	return "online_wallets"
}
