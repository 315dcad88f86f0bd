package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oceanview/backend/pkg/types"
)

type ApartmentBuilding struct {
	ID          uint      `gorm:"column:id;primary_key;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(50);not null" json:"name"`
	Address     string    `gorm:"column:address;type:varchar(50);not null" json:"address"`
	Owner       string    `gorm:"column:owner;type:varchar(50)" json:"owner"`
	PhoneNumber string    `gorm:"column:phone_number;type:varchar(11)" json:"phone_number"`
	BuiltDate   time.Time `gorm:"column:built_date" json:"built_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ApartmentBuilding) TableName() string {
	return "apartment_buildings"
}

type Building struct {
	Name                string    `gorm:"column:name;type:varchar(10);primary_key" json:"name"`
	NumberOfFloors      int       `gorm:"column:number_of_floors;not null" json:"number_of_floors"`
	ApartmentBuildingID uint      `gorm:"column:apartment_building_id;not null" json:"apartment_building_id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (Building) TableName() string {
	return "buildings"
}

type ApartmentType struct {
	ID                 uint      `gorm:"column:id;primary_key;autoIncrement" json:"id"`
	Name               string    `gorm:"column:name;type:varchar(50);not null" json:"name"`
	Width              int       `gorm:"column:width" json:"width"`
	Height             int       `gorm:"column:height" json:"height"`
	NumberOfBedroom    int       `gorm:"column:number_of_bedroom" json:"number_of_bedroom"`
	NumberOfLivingRoom int       `gorm:"column:number_of_living_room" json:"number_of_living_room"`
	NumberOfKitchen    int       `gorm:"column:number_of_kitchen" json:"number_of_kitchen"`
	NumberOfRestroom   int       `gorm:"column:number_of_restroom" json:"number_of_restroom"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (ApartmentType) TableName() string {
	return "apartment_types"
}

type Apartment struct {
	RoomNumber      string                `gorm:"column:room_number;type:varchar(20);primary_key" json:"room_number"`
	Floor           int                   `gorm:"column:floor;not null" json:"floor"`
	ApartmentTypeID *uint                 `gorm:"column:apartment_type_id;default:null" json:"apartment_type_id"`
	BuildingName    string                `gorm:"column:building_name;type:varchar(10);not null" json:"building_name"`
	Building        Building              `gorm:"foreignKey:BuildingName;references:Name" json:"building"`
	Residents       []User                `gorm:"many2many:apartment_residents;joinForeignKey:ApartmentRoomNumber;joinReferences:UserResidentID" json:"residents"`
	Status          types.ApartmentStatus `gorm:"column:status;type:varchar(20);not null;default:'EMPTY'" json:"status"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func (Apartment) TableName() string {
	return "apartments"
}

var ErrInvalidRoomNumber = errors.New("invalid room number")

// GenerateRoomNumber derives the unique room number from the building name,
// floor, and the room's sequence on that floor, e.g. ("A", 5, 3) -> "A-503".
func GenerateRoomNumber(building string, floor, n int) string {
	return fmt.Sprintf("%s-%d%02d", building, floor, n)
}

// ParseRoomNumber is the inverse of GenerateRoomNumber for n in 1..99.
func ParseRoomNumber(roomNumber string) (building string, floor, n int, err error) {
	i := strings.LastIndex(roomNumber, "-")
	if i <= 0 || i == len(roomNumber)-1 {
		return "", 0, 0, ErrInvalidRoomNumber
	}
	building = roomNumber[:i]
	digits := roomNumber[i+1:]
	if len(digits) < 3 {
		return "", 0, 0, ErrInvalidRoomNumber
	}
	floor, err = strconv.Atoi(digits[:len(digits)-2])
	if err != nil {
		return "", 0, 0, ErrInvalidRoomNumber
	}
	n, err = strconv.Atoi(digits[len(digits)-2:])
	if err != nil {
		return "", 0, 0, ErrInvalidRoomNumber
	}
	return building, floor, n, nil
}
