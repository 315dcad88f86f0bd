package models

import (
	"time"

	"github.com/oceanview/backend/pkg/types"
)

// PersonalInformation is a citizen-level identity record. It may or may not
// have an associated login account.
type PersonalInformation struct {
	CitizenID   string       `gorm:"column:citizen_id;type:varchar(12);primary_key" json:"citizen_id"`
	FullName    string       `gorm:"column:full_name;type:varchar(50);not null" json:"full_name"`
	DateOfBirth *time.Time   `gorm:"column:date_of_birth;default:null" json:"date_of_birth"`
	PhoneNumber string       `gorm:"column:phone_number;type:varchar(11);not null;uniqueIndex" json:"phone_number"`
	Email       *string      `gorm:"column:email;type:varchar(254);default:null;uniqueIndex" json:"email"`
	Hometown    string       `gorm:"column:hometown;type:varchar(50)" json:"hometown"`
	Gender      types.Gender `gorm:"column:gender;type:varchar(1);not null;default:'M'" json:"gender"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (PersonalInformation) TableName() string {
	return "personal_information"
}

func (p *PersonalInformation) HasEmail() bool {
	return p != nil && p.Email != nil && *p.Email != ""
}

// User is a resident or staff account keyed by its resident id.
type User struct {
	ResidentID          string              `gorm:"column:resident_id;type:varchar(6);primary_key" json:"resident_id"`
	PersonalInfoID      string              `gorm:"column:personal_info_id;type:varchar(12);not null;uniqueIndex" json:"personal_info_id"`
	PersonalInformation PersonalInformation `gorm:"foreignKey:PersonalInfoID;references:CitizenID" json:"personal_information"`
	Password            string              `gorm:"column:password;type:varchar(128);not null" json:"-"`
	AvatarURL           string              `gorm:"column:avatar_url;type:varchar(255)" json:"avatar_url"`
	IsStaff             bool                `gorm:"column:is_staff;not null;default:false" json:"is_staff"`
	IsSuperuser         bool                `gorm:"column:is_superuser;not null;default:false" json:"is_superuser"`
	Status              types.UserStatus    `gorm:"column:status;type:varchar(1);not null;default:'N'" json:"status"`
	// PreviousStatus remembers the pre-ban status so Unban can restore it.
	PreviousStatus *types.UserStatus `gorm:"column:previous_status;type:varchar(1);default:null" json:"previous_status"`
	// IssuedByID is a back-reference to the staff account that issued this
	// one. The issuing admin is not owned by the issued user.
	IssuedByID *string `gorm:"column:issued_by_id;type:varchar(6);default:null" json:"issued_by_id"`
	// Unread counters are maintained at notification fan-out time.
	UnreadNotifications      int       `gorm:"column:unread_notifications;not null;default:0" json:"unread_notifications"`
	StaffUnreadNotifications int       `gorm:"column:staff_unread_notifications;not null;default:0" json:"staff_unread_notifications"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsIssued() bool {
	return u != nil && u.Status != types.UserStatusNotIssued
}

func (u *User) IsBanned() bool {
	return u != nil && u.Status == types.UserStatusBanned
}

func (u *User) IsActiveUser() bool {
	return u != nil && u.Status == types.UserStatusActive
}

// Issue marks the account as handed out to its resident.
func (u *User) Issue() {
	u.Status = types.UserStatusIssued
}

// Revoke returns the account to the not-issued pool.
func (u *User) Revoke() {
	u.Status = types.UserStatusNotIssued
}

// Activate marks the account as activated by the resident.
func (u *User) Activate() {
	u.Status = types.UserStatusActive
}

// Ban locks the account, remembering the current status for Unban.
func (u *User) Ban() {
	prev := u.Status
	u.PreviousStatus = &prev
	u.Status = types.UserStatusBanned
}

// Unban restores the status recorded at ban time.
func (u *User) Unban() {
	if u.PreviousStatus != nil {
		u.Status = *u.PreviousStatus
		u.PreviousStatus = nil
	}
}

func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.PersonalInformation.FullName != "" {
		return u.ResidentID + " - " + u.PersonalInformation.FullName
	}
	return u.ResidentID
}

// Relative is a non-resident person registered under one or more residents'
// sponsorship for card services.
type Relative struct {
	ID                  string              `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Relationship        string              `gorm:"column:relationship;type:varchar(50)" json:"relationship"`
	PersonalInfoID      string              `gorm:"column:personal_info_id;type:varchar(12);not null;uniqueIndex" json:"personal_info_id"`
	PersonalInformation PersonalInformation `gorm:"foreignKey:PersonalInfoID;references:CitizenID" json:"personal_information"`
	Residents           []User              `gorm:"many2many:relative_residents;joinForeignKey:RelativeID;joinReferences:UserResidentID" json:"residents"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

func (Relative) TableName() string {
	return "relatives"
}
