package types

type UserStatus string

const (
	UserStatusNotIssued UserStatus = "N"
	UserStatusIssued    UserStatus = "I"
	UserStatusActive    UserStatus = "A"
	UserStatusBanned    UserStatus = "B"
)

var userStatusLabels = map[UserStatus]string{
	UserStatusNotIssued: "Chưa cấp phát",
	UserStatusIssued:    "Đã cấp phát",
	UserStatusActive:    "Đã kích hoạt",
	UserStatusBanned:    "Bị khóa",
}

func (s UserStatus) Label() string { return userStatusLabels[s] }

func (s UserStatus) Valid() bool {
	_, ok := userStatusLabels[s]
	return ok
}

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

var genderLabels = map[Gender]string{
	GenderMale:   "Nam",
	GenderFemale: "Nữ",
}

func (g Gender) Label() string { return genderLabels[g] }

type DeviceType string

const (
	DeviceTypeWeb     DeviceType = "WEB"
	DeviceTypeAndroid DeviceType = "ANDROID"
)

func (d DeviceType) Valid() bool {
	return d == DeviceTypeWeb || d == DeviceTypeAndroid
}
