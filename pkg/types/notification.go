package types

// MessageTarget classifies who a notification is addressed to.
type MessageTarget string

const (
	MessageTargetAdmin     MessageTarget = "ADMIN"
	MessageTargetResident  MessageTarget = "RESIDENT"
	MessageTargetResidents MessageTarget = "RESIDENTS"
	MessageTargetAll       MessageTarget = "ALL"
)

var messageTargetLabels = map[MessageTarget]string{
	MessageTargetAdmin:     "Ban quản trị",
	MessageTargetResident:  "Cư dân",
	MessageTargetResidents: "Nhiều cư dân",
	MessageTargetAll:       "Tất cả",
}

func (t MessageTarget) Label() string { return messageTargetLabels[t] }

// EntityType names the domain event a notification originates from.
type EntityType string

const (
	EntityTypeServiceRegister EntityType = "SERVICE_REGISTER"
	EntityTypeServiceApproved EntityType = "SERVICE_APPROVED"
	EntityTypeServiceRejected EntityType = "SERVICE_REJECTED"
	EntityTypeServiceReissue  EntityType = "SERVICE_REISSUE"
	EntityTypeReissueApproved EntityType = "REISSUE_APPROVED"
	EntityTypeReissueRejected EntityType = "REISSUE_REJECTED"
	EntityTypeFeedbackPost    EntityType = "FEEDBACK_POST"
	EntityTypeProofPayment    EntityType = "INVOICE_PROOF_IMAGE_PAYMENT"
	EntityTypeProofApproved   EntityType = "INVOICE_PROOF_IMAGE_APPROVED"
	EntityTypeProofRejected   EntityType = "INVOICE_PROOF_IMAGE_REJECTED"
	EntityTypeNewsPost        EntityType = "NEWS_POST"
	EntityTypeInvoiceCreate   EntityType = "INVOICE_CREATE"
	EntityTypeLockerItemAdd   EntityType = "LOCKER_ITEM_ADD"
	EntityTypeChatMessage     EntityType = "CHAT_SEND_MESSAGE"
)

var entityTypeLabels = map[EntityType]string{
	EntityTypeServiceRegister: "Đăng ký dịch vụ",
	EntityTypeServiceApproved: "Đã duyệt đăng ký",
	EntityTypeServiceRejected: "Đã từ chối đăng ký",
	EntityTypeServiceReissue:  "Cấp lại",
	EntityTypeReissueApproved: "Đã duyệt cấp lại",
	EntityTypeReissueRejected: "Đã từ chối cấp lại",
	EntityTypeFeedbackPost:    "Đăng phản ánh",
	EntityTypeProofPayment:    "Thanh toán",
	EntityTypeProofApproved:   "Đã duyệt thanh toán",
	EntityTypeProofRejected:   "Đã từ chối thanh toán",
	EntityTypeNewsPost:        "Đăng tin tức",
	EntityTypeInvoiceCreate:   "Nhận hóa đơn",
	EntityTypeLockerItemAdd:   "Đã nhận giúp",
	EntityTypeChatMessage:     "",
}

func (e EntityType) Label() string { return entityTypeLabels[e] }

func (e EntityType) Valid() bool {
	_, ok := entityTypeLabels[e]
	return ok
}
