package types

// ServiceID identifies a catalog service. The catalog is fixed: prices are
// editable, the set of services is not.
type ServiceID string

const (
	ServiceIDAccessCard         ServiceID = "ACCESS_CARD"
	ServiceIDResidentCard       ServiceID = "RESIDENT_CARD"
	ServiceIDBicycleParkingCard ServiceID = "BYCYCLE_PARKING_CARD"
	ServiceIDMotorParkingCard   ServiceID = "MOTOR_PARKING_CARD"
	ServiceIDCarParkingCard     ServiceID = "CAR_PARKING_CARD"
	ServiceIDManagingFee        ServiceID = "MANAGING_FEE"
)

var serviceIDLabels = map[ServiceID]string{
	ServiceIDAccessCard:         "Thẻ ra vào",
	ServiceIDResidentCard:       "Thẻ cư dân",
	ServiceIDBicycleParkingCard: "Thẻ gửi xe đạp",
	ServiceIDMotorParkingCard:   "Thẻ gửi xe máy",
	ServiceIDCarParkingCard:     "Thẻ gửi xe ô tô",
	ServiceIDManagingFee:        "Phí quản lý",
}

func (s ServiceID) Label() string { return serviceIDLabels[s] }

func (s ServiceID) Valid() bool {
	_, ok := serviceIDLabels[s]
	return ok
}

// IsPhysicalCard reports whether the service hands out a card that can be
// reissued when lost.
func (s ServiceID) IsPhysicalCard() bool {
	switch s {
	case ServiceIDAccessCard, ServiceIDResidentCard,
		ServiceIDBicycleParkingCard, ServiceIDMotorParkingCard, ServiceIDCarParkingCard:
		return true
	}
	return false
}

func (s ServiceID) IsParkingCard() bool {
	switch s {
	case ServiceIDBicycleParkingCard, ServiceIDMotorParkingCard, ServiceIDCarParkingCard:
		return true
	}
	return false
}

type RegistrationStatus string

const (
	RegistrationStatusWaitingForApproval RegistrationStatus = "WAITING_FOR_APPROVAL"
	RegistrationStatusApproved           RegistrationStatus = "APPROVED"
	RegistrationStatusRejected           RegistrationStatus = "REJECTED"
	RegistrationStatusCanceled           RegistrationStatus = "CANCELED"
)

var registrationStatusLabels = map[RegistrationStatus]string{
	RegistrationStatusWaitingForApproval: "Chờ được xét duyệt",
	RegistrationStatusApproved:           "Đã được duyệt",
	RegistrationStatusRejected:           "Bị từ chối",
	RegistrationStatusCanceled:           "Đã hủy",
}

func (s RegistrationStatus) Label() string { return registrationStatusLabels[s] }

type PaymentCadence string

const (
	PaymentCadenceFree      PaymentCadence = "FREE"
	PaymentCadenceDaily     PaymentCadence = "DAILY"
	PaymentCadenceMonthly   PaymentCadence = "MONTHLY"
	PaymentCadenceImmediate PaymentCadence = "IMMEDIATE"
)

var paymentCadenceLabels = map[PaymentCadence]string{
	PaymentCadenceFree:      "Miễn phí",
	PaymentCadenceDaily:     "Theo ngày",
	PaymentCadenceMonthly:   "Theo tháng",
	PaymentCadenceImmediate: "Trả ngay",
}

func (c PaymentCadence) Label() string { return paymentCadenceLabels[c] }

type VehicleType string

const (
	VehicleTypeBicycle   VehicleType = "B"
	VehicleTypeMotorbike VehicleType = "M"
	VehicleTypeCar       VehicleType = "C"
)

var vehicleTypeLabels = map[VehicleType]string{
	VehicleTypeBicycle:   "Xe đạp",
	VehicleTypeMotorbike: "Xe máy",
	VehicleTypeCar:       "Xe ô tô",
}

func (v VehicleType) Label() string { return vehicleTypeLabels[v] }

func (v VehicleType) Valid() bool {
	_, ok := vehicleTypeLabels[v]
	return ok
}

// ServiceID maps a vehicle type to its parking card service.
func (v VehicleType) ServiceID() ServiceID {
	switch v {
	case VehicleTypeBicycle:
		return ServiceIDBicycleParkingCard
	case VehicleTypeMotorbike:
		return ServiceIDMotorParkingCard
	case VehicleTypeCar:
		return ServiceIDCarParkingCard
	}
	return ""
}
