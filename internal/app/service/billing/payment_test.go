package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oceanview/backend/internal/models"
	"github.com/oceanview/backend/internal/platform/payment"
	"github.com/oceanview/backend/pkg/tool"
	"github.com/oceanview/backend/pkg/types"
)

func seedInvoice(t *testing.T, db *gorm.DB, id, residentID string, amount int64) *models.Invoice {
	t.Helper()
	invoice := &models.Invoice{
		ID:         id,
		ResidentID: residentID,
		TotalAmount: amount,
		DueDate:    time.Now().AddDate(0, 0, 15),
		Status:     types.InvoiceStatusPending,
	}
	require.NoError(t, db.Create(invoice).Error)
	return invoice
}

func seedWalletFlow(t *testing.T, db *gorm.DB, invoice *models.Invoice, reference string) *models.OnlineWallet {
	t.Helper()
	pay := &models.Payment{
		ID:          tool.GenerateUUIDV7(),
		Method:      types.PaymentMethodOnlineWallet,
		TotalAmount: invoice.TotalAmount,
		InvoiceID:   invoice.ID,
		Status:      types.PaymentStatusConfirming,
	}
	require.NoError(t, db.Create(pay).Error)
	flow := &models.OnlineWallet{
		ID:              tool.GenerateUUIDV7(),
		PaymentID:       pay.ID,
		WalletType:      types.WalletTypeVNPay,
		ReferenceNumber: reference,
	}
	require.NoError(t, db.Create(flow).Error)
	return flow
}

func reloadStatuses(t *testing.T, db *gorm.DB, flow *models.OnlineWallet) (types.PaymentStatus, types.InvoiceStatus) {
	t.Helper()
	var loaded models.OnlineWallet
	require.NoError(t, db.Preload("Payment").Preload("Payment.Invoice").
		Where("id = ?", flow.ID).First(&loaded).Error)
	return loaded.Payment.Status, loaded.Payment.Invoice.Status
}

func TestInitWalletPayment(t *testing.T) {
	gw := &stubGateway{payURL: "https://pay.example/checkout"}
	svc, db := newTestService(t, time.Now(), gw)
	seedResident(t, db, "240002", false)
	invoice := seedInvoice(t, db, "INV000001", "240002", 220000)

	t.Run("unknown wallet", func(t *testing.T) {
		_, err := svc.InitWalletPayment(context.Background(), "240002", invoice.ID, types.WalletType("ZALO"), "1.2.3.4")
		require.ErrorIs(t, err, ErrUnknownWallet)
	})

	t.Run("foreign invoice", func(t *testing.T) {
		_, err := svc.InitWalletPayment(context.Background(), "240003", invoice.ID, types.WalletTypeVNPay, "1.2.3.4")
		require.ErrorIs(t, err, ErrInvoiceOwner)
	})

	t.Run("records a confirming payment keyed by reference", func(t *testing.T) {
		payURL, err := svc.InitWalletPayment(context.Background(), "240002", invoice.ID, types.WalletTypeVNPay, "1.2.3.4")
		require.NoError(t, err)
		require.Equal(t, gw.payURL, payURL)

		var flow models.OnlineWallet
		require.NoError(t, db.Preload("Payment").First(&flow).Error)
		require.Contains(t, flow.ReferenceNumber, invoice.ID+"-")
		require.Equal(t, types.PaymentStatusConfirming, flow.Payment.Status)
		require.Equal(t, invoice.TotalAmount, flow.Payment.TotalAmount)
	})
}

func TestHandleGatewayCallback_SuccessAppliesOnce(t *testing.T) {
	gw := &stubGateway{}
	svc, db := newTestService(t, time.Now(), gw)
	seedResident(t, db, "240002", false)
	invoice := seedInvoice(t, db, "INV000001", "240002", 220000)
	flow := seedWalletFlow(t, db, invoice, "INV000001-ref")

	gw.data = &payment.CallbackData{
		ReferenceNumber: flow.ReferenceNumber,
		Amount:          220000,
		TransactionID:   "VNP123",
		Success:         true,
		Raw:             map[string]string{"vnp_ResponseCode": "00"},
	}

	require.NoError(t, svc.HandleGatewayCallback(context.Background(), types.WalletTypeVNPay, nil))

	payStatus, invStatus := reloadStatuses(t, db, flow)
	require.Equal(t, types.PaymentStatusSuccess, payStatus)
	require.Equal(t, types.InvoiceStatusPaid, invStatus)

	var loaded models.OnlineWallet
	require.NoError(t, db.Where("id = ?", flow.ID).First(&loaded).Error)
	require.NotNil(t, loaded.TransactionID)
	require.Equal(t, "VNP123", *loaded.TransactionID)

	// Gateways replay IPN callbacks; the replay must not run the cascade again.
	err := svc.HandleGatewayCallback(context.Background(), types.WalletTypeVNPay, nil)
	require.ErrorIs(t, err, models.ErrInvoiceAlreadyPaid)

	payStatus, invStatus = reloadStatuses(t, db, flow)
	require.Equal(t, types.PaymentStatusSuccess, payStatus)
	require.Equal(t, types.InvoiceStatusPaid, invStatus)
}

func TestHandleGatewayCallback_AmountMismatchMutatesNothing(t *testing.T) {
	gw := &stubGateway{}
	svc, db := newTestService(t, time.Now(), gw)
	seedResident(t, db, "240002", false)
	invoice := seedInvoice(t, db, "INV000001", "240002", 220000)
	flow := seedWalletFlow(t, db, invoice, "INV000001-ref")

	gw.data = &payment.CallbackData{
		ReferenceNumber: flow.ReferenceNumber,
		Amount:          5000,
		Success:         true,
	}

	err := svc.HandleGatewayCallback(context.Background(), types.WalletTypeVNPay, nil)
	require.ErrorIs(t, err, ErrAmountMismatch)

	payStatus, invStatus := reloadStatuses(t, db, flow)
	require.Equal(t, types.PaymentStatusConfirming, payStatus)
	require.Equal(t, types.InvoiceStatusPending, invStatus)
}

func TestHandleGatewayCallback_FailureInvalidatesPaymentOnly(t *testing.T) {
	gw := &stubGateway{}
	svc, db := newTestService(t, time.Now(), gw)
	seedResident(t, db, "240002", false)
	invoice := seedInvoice(t, db, "INV000001", "240002", 220000)
	flow := seedWalletFlow(t, db, invoice, "INV000001-ref")

	gw.data = &payment.CallbackData{
		ReferenceNumber: flow.ReferenceNumber,
		Amount:          220000,
		Success:         false,
	}

	require.NoError(t, svc.HandleGatewayCallback(context.Background(), types.WalletTypeVNPay, nil))

	payStatus, invStatus := reloadStatuses(t, db, flow)
	require.Equal(t, types.PaymentStatusInvalid, payStatus)
	require.Equal(t, types.InvoiceStatusPending, invStatus)
}

func TestHandleGatewayCallback_UnknownReference(t *testing.T) {
	gw := &stubGateway{data: &payment.CallbackData{ReferenceNumber: "INV999999-ref", Success: true}}
	svc, _ := newTestService(t, time.Now(), gw)

	err := svc.HandleGatewayCallback(context.Background(), types.WalletTypeVNPay, nil)
	require.ErrorIs(t, err, ErrUnknownReference)
}

func TestHandleGatewayCallback_SignatureFailurePropagates(t *testing.T) {
	gw := &stubGateway{err: payment.ErrSignatureMismatch}
	svc, _ := newTestService(t, time.Now(), gw)

	err := svc.HandleGatewayCallback(context.Background(), types.WalletTypeVNPay, nil)
	require.ErrorIs(t, err, payment.ErrSignatureMismatch)
}

func TestPayByProofImage(t *testing.T) {
	svc, db := newTestService(t, time.Now(), &stubGateway{})
	seedResident(t, db, "240001", true)
	seedResident(t, db, "240002", false)
	invoice := seedInvoice(t, db, "INV000001", "240002", 150000)

	_, err := svc.PayByProofImage(context.Background(), "240003", invoice.ID, "https://img/1.jpg")
	require.ErrorIs(t, err, ErrInvoiceOwner)

	proof, err := svc.PayByProofImage(context.Background(), "240002", invoice.ID, "https://img/1.jpg")
	require.NoError(t, err)
	require.Equal(t, types.ProofImageStatusWaitingForApproval, proof.Status)

	var loaded models.Invoice
	require.NoError(t, db.Where("id = ?", invoice.ID).First(&loaded).Error)
	require.Equal(t, types.InvoiceStatusWaitingForApproval, loaded.Status)
}

func TestDecideProof(t *testing.T) {
	t.Run("approve runs the payment cascade", func(t *testing.T) {
		svc, db := newTestService(t, time.Now(), &stubGateway{})
		seedResident(t, db, "240001", true)
		seedResident(t, db, "240002", false)
		invoice := seedInvoice(t, db, "INV000001", "240002", 150000)

		proof, err := svc.PayByProofImage(context.Background(), "240002", invoice.ID, "https://img/1.jpg")
		require.NoError(t, err)

		decided, err := svc.ApproveProofImage(context.Background(), "240001", proof.ID)
		require.NoError(t, err)
		require.Equal(t, types.ProofImageStatusApproved, decided.Status)

		var loaded models.Invoice
		require.NoError(t, db.Where("id = ?", invoice.ID).First(&loaded).Error)
		require.Equal(t, types.InvoiceStatusPaid, loaded.Status)

		// The proof has been decided; a second decision must fail.
		_, err = svc.RejectProofImage(context.Background(), "240001", proof.ID)
		require.ErrorIs(t, err, ErrProofNotPending)
	})

	t.Run("reject reopens the invoice", func(t *testing.T) {
		svc, db := newTestService(t, time.Now(), &stubGateway{})
		seedResident(t, db, "240001", true)
		seedResident(t, db, "240002", false)
		invoice := seedInvoice(t, db, "INV000001", "240002", 150000)

		proof, err := svc.PayByProofImage(context.Background(), "240002", invoice.ID, "https://img/1.jpg")
		require.NoError(t, err)

		decided, err := svc.RejectProofImage(context.Background(), "240001", proof.ID)
		require.NoError(t, err)
		require.Equal(t, types.ProofImageStatusRejected, decided.Status)

		payStatus := decided.Payment.Status
		require.Equal(t, types.PaymentStatusInvalid, payStatus)

		var loaded models.Invoice
		require.NoError(t, db.Where("id = ?", invoice.ID).First(&loaded).Error)
		require.Equal(t, types.InvoiceStatusPending, loaded.Status)
	})

	t.Run("missing proof", func(t *testing.T) {
		svc, _ := newTestService(t, time.Now(), &stubGateway{})
		_, err := svc.ApproveProofImage(context.Background(), "240001", tool.GenerateUUIDV7())
		require.ErrorIs(t, err, ErrProofMissing)
	})
}
