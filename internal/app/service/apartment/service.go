package apartment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/oceanview/backend/internal/models"
	"github.com/oceanview/backend/pkg/types"
)

var (
	ErrFloorOutOfRange  = errors.New("floor exceeds the building's number of floors")
	ErrRoomTaken        = errors.New("room number already exists")
	ErrNotAnOccupant    = errors.New("resident does not occupy this apartment")
	ErrAlreadyOccupant  = errors.New("resident already occupies this apartment")
	ErrApartmentMissing = errors.New("apartment not found")
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

type CreateApartmentRequest struct {
	BuildingName    string `json:"building_name" binding:"required"`
	Floor           int    `json:"floor" binding:"required"`
	// RoomOnFloor is the room's sequence on its floor, 1..99.
	RoomOnFloor     int   `json:"room_on_floor" binding:"required"`
	ApartmentTypeID *uint `json:"apartment_type_id"`
}

// CreateApartment derives the room number and verifies the floor fits the
// building before inserting.
func (s *Service) CreateApartment(ctx context.Context, req *CreateApartmentRequest) (*models.Apartment, error) {
	var apt *models.Apartment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var building models.Building
		if err := tx.Where("name = ?", req.BuildingName).First(&building).Error; err != nil {
			return fmt.Errorf("failed to load building: %w", err)
		}
		if req.Floor < 1 || req.Floor > building.NumberOfFloors {
			return ErrFloorOutOfRange
		}
		if req.RoomOnFloor < 1 || req.RoomOnFloor > 99 {
			return models.ErrInvalidRoomNumber
		}

		roomNumber := models.GenerateRoomNumber(building.Name, req.Floor, req.RoomOnFloor)

		var count int64
		if err := tx.Model(&models.Apartment{}).
			Where("room_number = ?", roomNumber).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check room number: %w", err)
		}
		if count > 0 {
			return ErrRoomTaken
		}

		apt = &models.Apartment{
			RoomNumber:      roomNumber,
			Floor:           req.Floor,
			BuildingName:    building.Name,
			ApartmentTypeID: req.ApartmentTypeID,
			Status:          types.ApartmentStatusEmpty,
		}
		return tx.Create(apt).Error
	})
	if err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *Service) Get(ctx context.Context, roomNumber string) (*models.Apartment, error) {
	var apt models.Apartment
	err := s.db.WithContext(ctx).
		Preload("Building").
		Preload("Residents").
		Preload("Residents.PersonalInformation").
		Where("room_number = ?", roomNumber).
		First(&apt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApartmentMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load apartment: %w", err)
	}
	return &apt, nil
}

type ListRequest struct {
	BuildingName string
	ResidentID   string
	From         int
	Size         int
}

type ListResponse struct {
	Items []*models.Apartment `json:"items"`
	Total int64               `json:"total"`
}

func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.Size <= 0 {
		req.Size = 10
	}

	q := s.db.WithContext(ctx).Model(&models.Apartment{})
	if req.BuildingName != "" {
		q = q.Where("building_name = ?", req.BuildingName)
	}
	if req.ResidentID != "" {
		q = q.Joins("JOIN apartment_residents ON apartment_residents.apartment_room_number = apartments.room_number").
			Where("apartment_residents.user_resident_id = ?", req.ResidentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count apartments: %w", err)
	}

	var items []*models.Apartment
	if err := q.Preload("Building").
		Order("room_number").
		Offset(req.From).Limit(req.Size).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list apartments: %w", err)
	}
	return &ListResponse{Items: items, Total: total}, nil
}

// IsOccupant reports whether the resident is linked to the apartment.
func (s *Service) IsOccupant(ctx context.Context, roomNumber, residentID string) (bool, error) {
	return isOccupant(s.db.WithContext(ctx), roomNumber, residentID)
}

func isOccupant(tx *gorm.DB, roomNumber, residentID string) (bool, error) {
	var count int64
	err := tx.Table("apartment_residents").
		Where("apartment_room_number = ? AND user_resident_id = ?", roomNumber, residentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check occupancy: %w", err)
	}
	return count > 0, nil
}

// AddResident links a resident to the apartment and flips it to INHABITED.
func (s *Service) AddResident(ctx context.Context, roomNumber, residentID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var apt models.Apartment
		if err := tx.Where("room_number = ?", roomNumber).First(&apt).Error; err != nil {
			return fmt.Errorf("failed to load apartment: %w", err)
		}
		occupied, err := isOccupant(tx, roomNumber, residentID)
		if err != nil {
			return err
		}
		if occupied {
			return ErrAlreadyOccupant
		}

		var user models.User
		if err := tx.Where("resident_id = ?", residentID).First(&user).Error; err != nil {
			return fmt.Errorf("failed to load resident: %w", err)
		}
		if err := tx.Model(&apt).Association("Residents").Append(&user); err != nil {
			return fmt.Errorf("failed to link resident: %w", err)
		}
		return tx.Model(&apt).UpdateColumn("status", types.ApartmentStatusInhabited).Error
	})
}

// RemoveResident unlinks a resident; the last one out empties the apartment.
func (s *Service) RemoveResident(ctx context.Context, roomNumber, residentID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var apt models.Apartment
		if err := tx.Where("room_number = ?", roomNumber).First(&apt).Error; err != nil {
			return fmt.Errorf("failed to load apartment: %w", err)
		}
		occupied, err := isOccupant(tx, roomNumber, residentID)
		if err != nil {
			return err
		}
		if !occupied {
			return ErrNotAnOccupant
		}

		user := models.User{ResidentID: residentID}
		if err := tx.Model(&apt).Association("Residents").Delete(&user); err != nil {
			return fmt.Errorf("failed to unlink resident: %w", err)
		}

		remaining := tx.Model(&apt).Association("Residents").Count()
		status := types.ApartmentStatusInhabited
		if remaining == 0 {
			status = types.ApartmentStatusEmpty
		}
		return tx.Model(&apt).UpdateColumn("status", status).Error
	})
}
