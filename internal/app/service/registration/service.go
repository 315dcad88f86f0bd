package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/oceanview/backend/internal/app/service/notification"
	"github.com/oceanview/backend/internal/models"
	"github.com/oceanview/backend/pkg/logctx"
	"github.com/oceanview/backend/pkg/tool"
	"github.com/oceanview/backend/pkg/types"
)

var (
	ErrSelfAccessCard       = errors.New("residents do not need an access card for themselves")
	ErrAlreadyRegistered    = errors.New("this person already has a registration for that service")
	ErrNotAnOccupant        = errors.New("resident does not occupy this apartment")
	ErrVehicleQuotaReached  = errors.New("the apartment's vehicle quota for that type has been reached")
	ErrResidentCardQuota    = errors.New("the apartment already holds the maximum number of resident cards")
	ErrLicensePlateRequired = errors.New("license plate is required for this vehicle type")
	ErrNotReissuable        = errors.New("only approved physical-card registrations can be reissued")
	ErrRegistrationMissing  = errors.New("service registration not found")
)

// Per-apartment capacity policy.
var maxVehicleCounts = map[types.VehicleType]int64{
	types.VehicleTypeBicycle:   2,
	types.VehicleTypeMotorbike: 2,
	types.VehicleTypeCar:       1,
}

const maxResidentCardsPerApartment = 4

// defaultCadence is the billing cadence a service registers with.
var defaultCadence = map[types.ServiceID]types.PaymentCadence{
	types.ServiceIDAccessCard:         types.PaymentCadenceFree,
	types.ServiceIDResidentCard:       types.PaymentCadenceFree,
	types.ServiceIDBicycleParkingCard: types.PaymentCadenceMonthly,
	types.ServiceIDMotorParkingCard:   types.PaymentCadenceMonthly,
	types.ServiceIDCarParkingCard:     types.PaymentCadenceMonthly,
	types.ServiceIDManagingFee:        types.PaymentCadenceMonthly,
}

type Service struct {
	db     *gorm.DB
	log    *zap.SugaredLogger
	notify *notification.Service
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, notify *notification.Service) *Service {
	return &Service{db: db, log: log, notify: notify}
}

// ApplicantInfo identifies who a card is registered for. For self
// registrations it must match the sponsoring resident's own record.
type ApplicantInfo struct {
	CitizenID    string       `json:"citizen_id" binding:"required"`
	FullName     string       `json:"full_name" binding:"required"`
	DateOfBirth  *time.Time   `json:"date_of_birth"`
	PhoneNumber  string       `json:"phone_number" binding:"required"`
	Email        *string      `json:"email"`
	Hometown     string       `json:"hometown"`
	Gender       types.Gender `json:"gender"`
	Relationship string       `json:"relationship"`
}

func (a *ApplicantInfo) matches(info *models.PersonalInformation) bool {
	return a.CitizenID == info.CitizenID || a.PhoneNumber == info.PhoneNumber
}

func (s *Service) loadSponsor(tx *gorm.DB, residentID string) (*models.User, error) {
	var sponsor models.User
	err := tx.Preload("PersonalInformation").
		Where("resident_id = ?", residentID).First(&sponsor).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load sponsoring resident: %w", err)
	}
	return &sponsor, nil
}

// getOrCreatePerson reuses a personal-information record matched by citizen
// id or phone number, creating it otherwise.
func getOrCreatePerson(tx *gorm.DB, info *ApplicantInfo) (*models.PersonalInformation, error) {
	var person models.PersonalInformation
	err := tx.Where("citizen_id = ? OR phone_number = ?", info.CitizenID, info.PhoneNumber).
		First(&person).Error
	if err == nil {
		return &person, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up personal information: %w", err)
	}

	person = models.PersonalInformation{
		CitizenID:   info.CitizenID,
		FullName:    info.FullName,
		DateOfBirth: info.DateOfBirth,
		PhoneNumber: info.PhoneNumber,
		Email:       info.Email,
		Hometown:    info.Hometown,
		Gender:      info.Gender,
	}
	if person.Gender == "" {
		person.Gender = types.GenderMale
	}
	if err := tx.Create(&person).Error; err != nil {
		return nil, fmt.Errorf("failed to create personal information: %w", err)
	}
	return &person, nil
}

// getOrCreateRelative ensures the person is recorded as a relative and
// linked to the sponsoring resident.
func getOrCreateRelative(tx *gorm.DB, person *models.PersonalInformation, relationship string, sponsor *models.User) error {
	var relative models.Relative
	err := tx.Where("personal_info_id = ?", person.CitizenID).First(&relative).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		relative = models.Relative{
			ID:             tool.GenerateUUIDV7(),
			Relationship:   relationship,
			PersonalInfoID: person.CitizenID,
		}
		if err := tx.Create(&relative).Error; err != nil {
			return fmt.Errorf("failed to create relative: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to look up relative: %w", err)
	}

	var linked int64
	err = tx.Table("relative_residents").
		Where("relative_id = ? AND user_resident_id = ?", relative.ID, sponsor.ResidentID).
		Count(&linked).Error
	if err != nil {
		return fmt.Errorf("failed to check relative link: %w", err)
	}
	if linked == 0 {
		if err := tx.Model(&relative).Association("Residents").Append(sponsor); err != nil {
			return fmt.Errorf("failed to link relative to sponsor: %w", err)
		}
	}
	return nil
}

// hasOpenRegistration reports whether the person already holds a pending or
// approved registration for the service. Rejected and canceled ones do not
// block a new attempt.
func hasOpenRegistration(tx *gorm.DB, serviceID types.ServiceID, citizenID string) (bool, error) {
	var count int64
	err := tx.Model(&models.ServiceRegistration{}).
		Scopes(models.NotDeleted).
		Where("service_id = ? AND personal_info_id = ?", serviceID, citizenID).
		Where("status NOT IN ?", []types.RegistrationStatus{
			types.RegistrationStatusRejected, types.RegistrationStatusCanceled,
		}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing registrations: %w", err)
	}
	return count > 0, nil
}

func (s *Service) create(tx *gorm.DB, serviceID types.ServiceID, person *models.PersonalInformation, sponsor *models.User, apartmentID *string) (*models.ServiceRegistration, error) {
	open, err := hasOpenRegistration(tx, serviceID, person.CitizenID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrAlreadyRegistered
	}

	reg := &models.ServiceRegistration{
		ID:             tool.GenerateUUIDV7(),
		ServiceID:      serviceID,
		PersonalInfoID: person.CitizenID,
		ResidentID:     sponsor.ResidentID,
		ApartmentID:    apartmentID,
		Cadence:        defaultCadence[serviceID],
		Status:         types.RegistrationStatusWaitingForApproval,
	}
	if err := tx.Create(reg).Error; err != nil {
		return nil, fmt.Errorf("failed to create service registration: %w", err)
	}
	return reg, nil
}

// notifyRegistered tells the admins a new registration is waiting.
func (s *Service) notifyRegistered(ctx context.Context, sponsor *models.User, reg *models.ServiceRegistration) {
	err := s.notify.Create(ctx, &notification.Event{
		EntityType: types.EntityTypeServiceRegister,
		EntityID:   reg.ID,
		SenderID:   sponsor.ResidentID,
		Message:    notification.FormatMessage(types.EntityTypeServiceRegister, sponsor.DisplayName(), reg.ServiceID.Label()),
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to notify registration",
			"registration_id", reg.ID, "error", err)
	}
}

// RegisterAccessCard registers an access card for a relative of the
// sponsoring resident. The resident's own entry card is their resident card.
func (s *Service) RegisterAccessCard(ctx context.Context, residentID string, info *ApplicantInfo) (*models.ServiceRegistration, error) {
	var reg *models.ServiceRegistration
	var sponsor *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sponsor, err = s.loadSponsor(tx, residentID)
		if err != nil {
			return err
		}
		if info.matches(&sponsor.PersonalInformation) {
			return ErrSelfAccessCard
		}

		person, err := getOrCreatePerson(tx, info)
		if err != nil {
			return err
		}
		if err := getOrCreateRelative(tx, person, info.Relationship, sponsor); err != nil {
			return err
		}

		reg, err = s.create(tx, types.ServiceIDAccessCard, person, sponsor, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyRegistered(ctx, sponsor, reg)
	return reg, nil
}

type VehicleInput struct {
	LicensePlate string            `json:"license_plate"`
	VehicleType  types.VehicleType `json:"vehicle_type" binding:"required"`
}

// RegisterParkingCard registers a parking card for the resident or one of
// their relatives, bound to an apartment the resident occupies.
func (s *Service) RegisterParkingCard(ctx context.Context, residentID, roomNumber string, vehicle *VehicleInput, info *ApplicantInfo) (*models.ServiceRegistration, error) {
	if !vehicle.VehicleType.Valid() {
		return nil, fmt.Errorf("unknown vehicle type %q", vehicle.VehicleType)
	}
	if vehicle.LicensePlate == "" && vehicle.VehicleType != types.VehicleTypeBicycle {
		return nil, ErrLicensePlateRequired
	}

	var reg *models.ServiceRegistration
	var sponsor *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sponsor, err = s.loadSponsor(tx, residentID)
		if err != nil {
			return err
		}

		var occupied int64
		err = tx.Table("apartment_residents").
			Where("apartment_room_number = ? AND user_resident_id = ?", roomNumber, residentID).
			Count(&occupied).Error
		if err != nil {
			return fmt.Errorf("failed to check occupancy: %w", err)
		}
		if occupied == 0 {
			return ErrNotAnOccupant
		}

		var vehicles int64
		err = tx.Model(&models.Vehicle{}).
			Where("apartment_id = ? AND vehicle_type = ?", roomNumber, vehicle.VehicleType).
			Count(&vehicles).Error
		if err != nil {
			return fmt.Errorf("failed to count vehicles: %w", err)
		}
		if vehicles >= maxVehicleCounts[vehicle.VehicleType] {
			return ErrVehicleQuotaReached
		}

		person := &sponsor.PersonalInformation
		if !info.matches(person) {
			person, err = getOrCreatePerson(tx, info)
			if err != nil {
				return err
			}
			if err := getOrCreateRelative(tx, person, info.Relationship, sponsor); err != nil {
				return err
			}
		}

		reg, err = s.create(tx, vehicle.VehicleType.ServiceID(), person, sponsor, &roomNumber)
		if err != nil {
			return err
		}

		var plate *string
		if vehicle.LicensePlate != "" {
			plate = &vehicle.LicensePlate
		}
		row := &models.Vehicle{
			ID:             tool.GenerateUUIDV7(),
			LicensePlate:   plate,
			VehicleType:    vehicle.VehicleType,
			RegistrationID: reg.ID,
			ApartmentID:    roomNumber,
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to create vehicle: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyRegistered(ctx, sponsor, reg)
	return reg, nil
}

// RegisterResidentCard registers a resident card against an apartment,
// limited to four cards per unit.
func (s *Service) RegisterResidentCard(ctx context.Context, residentID, roomNumber string, info *ApplicantInfo) (*models.ServiceRegistration, error) {
	var reg *models.ServiceRegistration
	var sponsor *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sponsor, err = s.loadSponsor(tx, residentID)
		if err != nil {
			return err
		}

		var occupied int64
		err = tx.Table("apartment_residents").
			Where("apartment_room_number = ? AND user_resident_id = ?", roomNumber, residentID).
			Count(&occupied).Error
		if err != nil {
			return fmt.Errorf("failed to check occupancy: %w", err)
		}
		if occupied == 0 {
			return ErrNotAnOccupant
		}

		var cards int64
		err = tx.Model(&models.ServiceRegistration{}).
			Scopes(models.NotDeleted).
			Where("service_id = ? AND apartment_id = ?", types.ServiceIDResidentCard, roomNumber).
			Where("status NOT IN ?", []types.RegistrationStatus{
				types.RegistrationStatusRejected, types.RegistrationStatusCanceled,
			}).
			Count(&cards).Error
		if err != nil {
			return fmt.Errorf("failed to count resident cards: %w", err)
		}
		if cards >= maxResidentCardsPerApartment {
			return ErrResidentCardQuota
		}

		person := &sponsor.PersonalInformation
		if !info.matches(person) {
			person, err = getOrCreatePerson(tx, info)
			if err != nil {
				return err
			}
			if err := getOrCreateRelative(tx, person, info.Relationship, sponsor); err != nil {
				return err
			}
		}

		reg, err = s.create(tx, types.ServiceIDResidentCard, person, sponsor, &roomNumber)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyRegistered(ctx, sponsor, reg)
	return reg, nil
}

func (s *Service) get(tx *gorm.DB, id string) (*models.ServiceRegistration, error) {
	var reg models.ServiceRegistration
	err := tx.Scopes(models.NotDeleted).
		Preload("Service").
		Preload("Resident").
		Preload("Resident.PersonalInformation").
		Where("id = ?", id).First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRegistrationMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load registration: %w", err)
	}
	return &reg, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.ServiceRegistration, error) {
	return s.get(s.db.WithContext(ctx), id)
}

// Cancel withdraws a pending or approved registration. Canceling an approved
// parking registration frees the vehicle slot.
func (s *Service) Cancel(ctx context.Context, residentID, registrationID string) (*models.ServiceRegistration, error) {
	var reg *models.ServiceRegistration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		reg, err = s.get(tx, registrationID)
		if err != nil {
			return err
		}
		if reg.ResidentID != residentID {
			return ErrNotAnOccupant
		}

		wasApproved := reg.IsApproved()
		if err := reg.Cancel(); err != nil {
			return err
		}
		if err := tx.Select("status", "previous_status").Save(reg).Error; err != nil {
			return fmt.Errorf("failed to save registration: %w", err)
		}

		if wasApproved && reg.ServiceID.IsParkingCard() {
			if err := tx.Where("registration_id = ?", reg.ID).
				Delete(&models.Vehicle{}).Error; err != nil {
				return fmt.Errorf("failed to remove vehicle: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Approve moves a pending registration to approved and, for resident cards,
// issues the applicant's account in the same transaction. Exactly one
// notification goes out per transition.
func (s *Service) Approve(ctx context.Context, adminID, registrationID string) (*models.ServiceRegistration, error) {
	return s.decide(ctx, adminID, registrationID, true)
}

func (s *Service) Reject(ctx context.Context, adminID, registrationID string) (*models.ServiceRegistration, error) {
	return s.decide(ctx, adminID, registrationID, false)
}

func (s *Service) decide(ctx context.Context, adminID, registrationID string, approve bool) (*models.ServiceRegistration, error) {
	var reg *models.ServiceRegistration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		reg, err = s.get(tx, registrationID)
		if err != nil {
			return err
		}

		if approve {
			err = reg.Approve()
		} else {
			err = reg.Reject()
		}
		if err != nil {
			return err
		}
		if err := tx.Select("status", "previous_status").Save(reg).Error; err != nil {
			return fmt.Errorf("failed to save registration: %w", err)
		}

		if approve && reg.ServiceID == types.ServiceIDResidentCard {
			var holder models.User
			err := tx.Where("personal_info_id = ?", reg.PersonalInfoID).First(&holder).Error
			if err == nil && !holder.IsIssued() {
				holder.Issue()
				holder.IssuedByID = &adminID
				if err := tx.Select("status", "issued_by_id").Save(&holder).Error; err != nil {
					return fmt.Errorf("failed to issue account: %w", err)
				}
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to look up card holder: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entityType := types.EntityTypeServiceApproved
	if !approve {
		entityType = types.EntityTypeServiceRejected
	}
	err = s.notify.Create(ctx, &notification.Event{
		EntityType:   entityType,
		EntityID:     reg.ID,
		SenderID:     adminID,
		Message:      notification.FormatMessage(entityType, "", reg.ServiceID.Label()),
		RecipientIDs: []string{reg.ResidentID},
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to notify decision",
			"registration_id", reg.ID, "error", err)
	}
	return reg, nil
}

type ListRequest struct {
	ResidentID string
	Status     types.RegistrationStatus
	ServiceID  types.ServiceID
	From       int
	Size       int
}

type ListResponse struct {
	Items []*models.ServiceRegistration `json:"items"`
	Total int64                         `json:"total"`
}

func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.Size <= 0 {
		req.Size = 10
	}

	q := s.db.WithContext(ctx).Model(&models.ServiceRegistration{}).
		Scopes(models.NotDeleted)
	if req.ResidentID != "" {
		q = q.Where("resident_id = ?", req.ResidentID)
	}
	if req.Status != "" {
		q = q.Where("status = ?", req.Status)
	}
	if req.ServiceID != "" {
		q = q.Where("service_id = ?", req.ServiceID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}

	var items []*models.ServiceRegistration
	if err := q.Preload("Service").Preload("PersonalInformation").
		Order("created_at DESC").
		Offset(req.From).Limit(req.Size).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return &ListResponse{Items: items, Total: total}, nil
}
