package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oceanview/backend/internal/app/service/notification"
	"github.com/oceanview/backend/internal/models"
	"github.com/oceanview/backend/internal/platform/payment"
	"github.com/oceanview/backend/pkg/logctx"
	"github.com/oceanview/backend/pkg/metrics"
	"github.com/oceanview/backend/pkg/tool"
	"github.com/oceanview/backend/pkg/types"
)

var (
	ErrProofMissing      = errors.New("proof image not found")
	ErrProofNotPending   = errors.New("proof image has already been decided")
	ErrUnknownReference  = errors.New("no wallet flow matches the reference number")
	ErrAmountMismatch    = errors.New("callback amount does not match the payment")
)

// PayByProofImage records a manual bank-transfer attempt. The invoice waits
// for a staff decision on the uploaded evidence.
func (s *Service) PayByProofImage(ctx context.Context, residentID, invoiceID, imageURL string) (*models.ProofImage, error) {
	var proof *models.ProofImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.get(tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.ResidentID != residentID {
			return ErrInvoiceOwner
		}
		if invoice.IsPaid() {
			return models.ErrInvoiceAlreadyPaid
		}

		pay := &models.Payment{
			ID:          tool.GenerateUUIDV7(),
			Method:      types.PaymentMethodProofImage,
			TotalAmount: invoice.TotalAmount,
			InvoiceID:   invoice.ID,
			Status:      types.PaymentStatusConfirming,
		}
		if err := tx.Create(pay).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		proof = &models.ProofImage{
			ID:        tool.GenerateUUIDV7(),
			ImageURL:  imageURL,
			PaymentID: pay.ID,
			Status:    types.ProofImageStatusWaitingForApproval,
		}
		if err := tx.Create(proof).Error; err != nil {
			return fmt.Errorf("failed to create proof image: %w", err)
		}

		invoice.WaitForApproval()
		return tx.Model(invoice).UpdateColumn("status", invoice.Status).Error
	})
	if err != nil {
		return nil, err
	}

	err = s.notify.Create(ctx, &notification.Event{
		EntityType: types.EntityTypeProofPayment,
		EntityID:   proof.ID,
		SenderID:   residentID,
		Message:    notification.FormatMessage(types.EntityTypeProofPayment, residentID, types.PaymentMethodProofImage.Label()),
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to notify proof payment",
			"proof_id", proof.ID, "error", err)
	}
	return proof, nil
}

// ApproveProofImage confirms the evidence and runs the payment cascade.
func (s *Service) ApproveProofImage(ctx context.Context, adminID, proofID string) (*models.ProofImage, error) {
	return s.decideProof(ctx, adminID, proofID, true)
}

// RejectProofImage invalidates the attempt and reopens the invoice.
func (s *Service) RejectProofImage(ctx context.Context, adminID, proofID string) (*models.ProofImage, error) {
	return s.decideProof(ctx, adminID, proofID, false)
}

func (s *Service) decideProof(ctx context.Context, adminID, proofID string, approve bool) (*models.ProofImage, error) {
	var proof models.ProofImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Scopes(models.NotDeleted).
			Preload("Payment").
			Preload("Payment.Invoice").
			Where("id = ?", proofID).First(&proof).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProofMissing
		}
		if err != nil {
			return fmt.Errorf("failed to load proof image: %w", err)
		}
		if proof.Status != types.ProofImageStatusWaitingForApproval {
			return ErrProofNotPending
		}

		pay := &proof.Payment
		invoice := &pay.Invoice

		if approve {
			proof.Status = types.ProofImageStatusApproved
			if err := pay.Pay(); err != nil {
				return err
			}
			if err := invoice.Pay(); err != nil {
				return err
			}
		} else {
			proof.Status = types.ProofImageStatusRejected
			pay.Invalidate()
			invoice.Pending()
		}

		if err := tx.Model(&proof).UpdateColumn("status", proof.Status).Error; err != nil {
			return fmt.Errorf("failed to save proof image: %w", err)
		}
		if err := tx.Model(pay).UpdateColumn("status", pay.Status).Error; err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		return tx.Model(invoice).UpdateColumn("status", invoice.Status).Error
	})
	if err != nil {
		return nil, err
	}

	entityType := types.EntityTypeProofApproved
	if approve {
		metrics.PaymentsApplied.WithLabelValues(string(types.PaymentMethodProofImage)).Inc()
	} else {
		entityType = types.EntityTypeProofRejected
	}
	err = s.notify.Create(ctx, &notification.Event{
		EntityType:   entityType,
		EntityID:     proof.ID,
		SenderID:     adminID,
		Message:      notification.FormatMessage(entityType, "", types.PaymentMethodProofImage.Label()),
		RecipientIDs: []string{proof.Payment.Invoice.ResidentID},
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to notify proof decision",
			"proof_id", proof.ID, "error", err)
	}
	return &proof, nil
}

// InitWalletPayment asks the gateway for a pay URL and records the pending
// attempt keyed by the reference number the gateway will echo back.
func (s *Service) InitWalletPayment(ctx context.Context, residentID, invoiceID string, wallet types.WalletType, clientIP string) (string, error) {
	gateway, ok := s.gateways[wallet]
	if !ok {
		return "", ErrUnknownWallet
	}

	invoice, err := s.get(s.db.WithContext(ctx), invoiceID)
	if err != nil {
		return "", err
	}
	if invoice.ResidentID != residentID {
		return "", ErrInvoiceOwner
	}
	if invoice.IsPaid() {
		return "", models.ErrInvoiceAlreadyPaid
	}

	reference := fmt.Sprintf("%s-%s", invoice.ID, tool.GenerateUUIDV7())
	payURL, err := gateway.CreatePayURL(ctx, &payment.PayURLRequest{
		ReferenceNumber: reference,
		Amount:          invoice.TotalAmount,
		OrderInfo:       fmt.Sprintf("Thanh toan hoa don %s", invoice.ID),
		ClientIP:        clientIP,
	})
	if err != nil {
		return "", err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pay := &models.Payment{
			ID:          tool.GenerateUUIDV7(),
			Method:      types.PaymentMethodOnlineWallet,
			TotalAmount: invoice.TotalAmount,
			InvoiceID:   invoice.ID,
			Status:      types.PaymentStatusConfirming,
		}
		if err := tx.Create(pay).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		row := &models.OnlineWallet{
			ID:              tool.GenerateUUIDV7(),
			PaymentID:       pay.ID,
			WalletType:      wallet,
			ReferenceNumber: reference,
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to create wallet flow: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return payURL, nil
}

// HandleGatewayCallback applies a verified return/IPN callback to the
// pending payment it references. Mismatches are rejected without mutating
// state; a duplicate callback after success fails the already-paid check, so
// the cascade runs at most once.
func (s *Service) HandleGatewayCallback(ctx context.Context, wallet types.WalletType, params map[string]string) error {
	gateway, ok := s.gateways[wallet]
	if !ok {
		return ErrUnknownWallet
	}

	data, err := gateway.VerifyCallback(params)
	if err != nil {
		return err
	}

	log := logctx.FromCtx(ctx, s.log)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var flow models.OnlineWallet
		err := tx.Scopes(models.NotDeleted).
			Preload("Payment").
			Preload("Payment.Invoice").
			Where("reference_number = ?", data.ReferenceNumber).
			First(&flow).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorw("callback for unknown reference",
				"wallet", wallet, "reference", data.ReferenceNumber, "raw", data.Raw)
			return ErrUnknownReference
		}
		if err != nil {
			return fmt.Errorf("failed to load wallet flow: %w", err)
		}

		pay := &flow.Payment
		invoice := &pay.Invoice

		if !data.Success {
			pay.Invalidate()
			return tx.Model(pay).UpdateColumn("status", pay.Status).Error
		}
		if data.Amount != pay.TotalAmount {
			log.Errorw("callback amount mismatch",
				"wallet", wallet, "reference", data.ReferenceNumber,
				"expected", pay.TotalAmount, "got", data.Amount, "raw", data.Raw)
			return ErrAmountMismatch
		}
		if invoice.IsPaid() {
			return models.ErrInvoiceAlreadyPaid
		}

		if err := pay.Pay(); err != nil {
			return err
		}
		if err := invoice.Pay(); err != nil {
			return err
		}

		extra, err := json.Marshal(data.Raw)
		if err != nil {
			return fmt.Errorf("failed to marshal gateway payload: %w", err)
		}
		if err := tx.Model(pay).Updates(map[string]interface{}{
			"status": pay.Status,
			"extra":  extra,
		}).Error; err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		if err := tx.Model(&flow).UpdateColumn("transaction_id", data.TransactionID).Error; err != nil {
			return fmt.Errorf("failed to save wallet flow: %w", err)
		}
		return tx.Model(invoice).UpdateColumn("status", invoice.Status).Error
	})
	if err != nil {
		return err
	}

	metrics.PaymentsApplied.WithLabelValues(string(types.PaymentMethodOnlineWallet)).Inc()
	return nil
}
