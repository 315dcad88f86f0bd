package models

import (
	"errors"
	"time"

	"github.com/oceanview/backend/pkg/types"
)

// Service is a catalog entry with a fixed price.
type Service struct {
	ID        types.ServiceID `gorm:"column:id;type:varchar(30);primary_key" json:"id"`
	Name      string          `gorm:"column:name;type:varchar(50);not null" json:"name"`
	Price     int64           `gorm:"column:price;type:bigint;not null" json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Service) TableName() string {
	return "services"
}

var (
	ErrAlreadyApprovedOrClosed = errors.New("registration is not waiting for approval")
	ErrNotCancelable           = errors.New("registration can only be canceled while pending or approved")
)

// ServiceRegistration is a request for a card service, subject to approval.
type ServiceRegistration struct {
	ID             string              `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ServiceID      types.ServiceID     `gorm:"column:service_id;type:varchar(30);not null;index" json:"service_id"`
	Service        Service             `gorm:"foreignKey:ServiceID" json:"service"`
	PersonalInfoID string              `gorm:"column:personal_info_id;type:varchar(12);not null;index" json:"personal_info_id"`
	PersonalInformation PersonalInformation `gorm:"foreignKey:PersonalInfoID;references:CitizenID" json:"personal_information"`
	ResidentID     string              `gorm:"column:resident_id;type:varchar(6);not null;index" json:"resident_id"`
	Resident       User                `gorm:"foreignKey:ResidentID;references:ResidentID" json:"resident"`
	ApartmentID    *string             `gorm:"column:apartment_id;type:varchar(20);default:null" json:"apartment_id"`
	Cadence        types.PaymentCadence `gorm:"column:cadence;type:varchar(10);not null;default:'FREE'" json:"cadence"`
	Status         types.RegistrationStatus `gorm:"column:status;type:varchar(30);not null;default:'WAITING_FOR_APPROVAL'" json:"status"`
	// PreviousStatus remembers the status before the last transition; it is
	// what lets callers dispatch notifications exactly once per transition
	// and lets billing pick up mid-period cancellations.
	PreviousStatus *types.RegistrationStatus `gorm:"column:previous_status;type:varchar(30);default:null" json:"previous_status"`
	Deleted        bool                      `gorm:"column:deleted;not null;default:false" json:"deleted"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

func (ServiceRegistration) TableName() string {
	return "service_registrations"
}

func (r *ServiceRegistration) IsPending() bool {
	return r != nil && r.Status == types.RegistrationStatusWaitingForApproval
}

func (r *ServiceRegistration) IsApproved() bool {
	return r != nil && r.Status == types.RegistrationStatusApproved
}

// WasApproved reports whether a canceled registration had been approved
// before cancellation.
func (r *ServiceRegistration) WasApproved() bool {
	return r != nil &&
		r.Status == types.RegistrationStatusCanceled &&
		r.PreviousStatus != nil &&
		*r.PreviousStatus == types.RegistrationStatusApproved
}

func (r *ServiceRegistration) transition(to types.RegistrationStatus) {
	prev := r.Status
	r.PreviousStatus = &prev
	r.Status = to
}

// Approve moves the registration out of the pending state. Once rejected or
// canceled the registration cannot be approved again.
func (r *ServiceRegistration) Approve() error {
	if !r.IsPending() {
		return ErrAlreadyApprovedOrClosed
	}
	r.transition(types.RegistrationStatusApproved)
	return nil
}

func (r *ServiceRegistration) Reject() error {
	if !r.IsPending() {
		return ErrAlreadyApprovedOrClosed
	}
	r.transition(types.RegistrationStatusRejected)
	return nil
}

// Cancel is legal from the pending or approved state only.
func (r *ServiceRegistration) Cancel() error {
	if !r.IsPending() && !r.IsApproved() {
		return ErrNotCancelable
	}
	r.transition(types.RegistrationStatusCanceled)
	return nil
}

// Vehicle accompanies a parking-type registration. License plate is required
// unless the vehicle is a bicycle.
type Vehicle struct {
	ID             string            `gorm:"column:id;type:uuid;primary_key" json:"id"`
	LicensePlate   *string           `gorm:"column:license_plate;type:varchar(10);default:null;uniqueIndex" json:"license_plate"`
	VehicleType    types.VehicleType `gorm:"column:vehicle_type;type:varchar(1);not null" json:"vehicle_type"`
	RegistrationID string            `gorm:"column:registration_id;type:uuid;not null;uniqueIndex" json:"registration_id"`
	ApartmentID    string            `gorm:"column:apartment_id;type:varchar(20);not null;index" json:"apartment_id"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

// ReissueCard is a follow-up request to reissue a physical card for an
// already-approved registration.
type ReissueCard struct {
	ID             string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	RegistrationID string                   `gorm:"column:registration_id;type:uuid;not null;index" json:"registration_id"`
	Registration   ServiceRegistration      `gorm:"foreignKey:RegistrationID" json:"registration"`
	Status         types.RegistrationStatus `gorm:"column:status;type:varchar(30);not null;default:'WAITING_FOR_APPROVAL'" json:"status"`
	Deleted        bool                     `gorm:"column:deleted;not null;default:false" json:"deleted"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

func (ReissueCard) TableName() string {
	return "reissue_cards"
}

func (rc *ReissueCard) Approve() error {
	if rc.Status != types.RegistrationStatusWaitingForApproval {
		return ErrAlreadyApprovedOrClosed
	}
	rc.Status = types.RegistrationStatusApproved
	return nil
}

func (rc *ReissueCard) Reject() error {
	if rc.Status != types.RegistrationStatusWaitingForApproval {
		return ErrAlreadyApprovedOrClosed
	}
	rc.Status = types.RegistrationStatusRejected
	return nil
}
