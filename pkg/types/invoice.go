package types

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
	// InvoiceStatusWaitingForApproval marks a proof-image payment awaiting
	// manual confirmation by staff.
	InvoiceStatusWaitingForApproval InvoiceStatus = "WAITING_FOR_APPROVAL"
)

var invoiceStatusLabels = map[InvoiceStatus]string{
	InvoiceStatusPending:            "Chờ thanh toán",
	InvoiceStatusPaid:               "Đã thanh toán",
	InvoiceStatusOverdue:            "Quá hạn",
	InvoiceStatusWaitingForApproval: "Chờ phê duyệt",
}

func (s InvoiceStatus) Label() string { return invoiceStatusLabels[s] }

type PaymentMethod string

const (
	PaymentMethodOnlineWallet PaymentMethod = "E_WALLET"
	PaymentMethodProofImage   PaymentMethod = "PROOF_IMAGE"
)

var paymentMethodLabels = map[PaymentMethod]string{
	PaymentMethodOnlineWallet: "Ví điện tử",
	PaymentMethodProofImage:   "Ủy nhiệm chi",
}

func (m PaymentMethod) Label() string { return paymentMethodLabels[m] }

type PaymentStatus string

const (
	PaymentStatusSuccess    PaymentStatus = "SUCCESS"
	PaymentStatusConfirming PaymentStatus = "CONFIRMING"
	PaymentStatusInvalid    PaymentStatus = "INVALID"
)

var paymentStatusLabels = map[PaymentStatus]string{
	PaymentStatusSuccess:    "Thành công",
	PaymentStatusConfirming: "Đang xác nhận",
	PaymentStatusInvalid:    "Không hợp lệ",
}

func (s PaymentStatus) Label() string { return paymentStatusLabels[s] }

type ProofImageStatus string

const (
	ProofImageStatusWaitingForApproval ProofImageStatus = "WAITING_FOR_APPROVAL"
	ProofImageStatusApproved           ProofImageStatus = "APPROVED"
	ProofImageStatusRejected           ProofImageStatus = "REJECTED"
)

type WalletType string

const (
	WalletTypeVNPay WalletType = "VNPAY"
	WalletTypeMomo  WalletType = "MOMO"
)

func (w WalletType) Valid() bool {
	return w == WalletTypeVNPay || w == WalletTypeMomo
}
