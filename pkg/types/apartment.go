package types

type ApartmentStatus string

const (
	ApartmentStatusEmpty       ApartmentStatus = "EMPTY"
	ApartmentStatusInhabited   ApartmentStatus = "INHABITED"
	ApartmentStatusAboutToMove ApartmentStatus = "ABOUT_TO_MOVE"
)

var apartmentStatusLabels = map[ApartmentStatus]string{
	ApartmentStatusEmpty:       "Trống",
	ApartmentStatusInhabited:   "Có người ở",
	ApartmentStatusAboutToMove: "Sắp chuyển đi",
}

func (s ApartmentStatus) Label() string { return apartmentStatusLabels[s] }

type LockerStatus string

const (
	LockerStatusEmpty    LockerStatus = "EMPTY"
	LockerStatusNotEmpty LockerStatus = "NOT_EMPTY"
)

type ItemStatus string

const (
	ItemStatusReceived    ItemStatus = "RECEIVED"
	ItemStatusNotReceived ItemStatus = "NOT_RECEIVED"
)

type FeedbackType string

const (
	FeedbackTypeQuestion FeedbackType = "QUESTION"
	FeedbackTypeComplain FeedbackType = "COMPLAIN"
	FeedbackTypeSupport  FeedbackType = "SUPPORT"
	FeedbackTypeOther    FeedbackType = "OTHER"
)

var feedbackTypeLabels = map[FeedbackType]string{
	FeedbackTypeQuestion: "Thắc mắc",
	FeedbackTypeComplain: "Phàn nàn",
	FeedbackTypeSupport:  "Hỗ trợ",
	FeedbackTypeOther:    "Khác",
}

func (t FeedbackType) Label() string { return feedbackTypeLabels[t] }

func (t FeedbackType) Valid() bool {
	_, ok := feedbackTypeLabels[t]
	return ok
}
