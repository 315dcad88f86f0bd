package identity

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oceanview/backend/internal/app/api/middleware"
	"github.com/oceanview/backend/internal/models"
	"github.com/oceanview/backend/internal/platform/mail"
	redisclient "github.com/oceanview/backend/internal/platform/redis"
	"github.com/oceanview/backend/internal/platform/sms"
	"github.com/oceanview/backend/pkg/config"
	"github.com/oceanview/backend/pkg/logctx"
	"github.com/oceanview/backend/pkg/tool"
	"github.com/oceanview/backend/pkg/types"
)

var (
	ErrInvalidCredentials = errors.New("resident id or password is incorrect")
	ErrUserBanned         = errors.New("account is banned")
	ErrUserNotIssued      = errors.New("account has not been issued")
	ErrDuplicatePerson    = errors.New("citizen id or phone number already registered")
	ErrResetTokenInvalid  = errors.New("reset token is invalid or expired")
	ErrTooManyOTPRequests = errors.New("an otp was already sent recently")
	ErrNoEmail            = errors.New("account has no email on file")
)

type Service struct {
	cfg   *config.Config
	db    *gorm.DB
	log   *zap.SugaredLogger
	redis *redisclient.Client
	sms   sms.Verifier
	mail  mail.Sender
	now   func() time.Time
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, rdb *redisclient.Client, verifier sms.Verifier, mailer mail.Sender) *Service {
	return &Service{cfg: cfg, db: db, log: log, redis: rdb, sms: verifier, mail: mailer, now: time.Now}
}

// NextResidentID hands out the next id for the current year. Must run inside
// the caller's transaction so concurrent creates serialize on the user table.
func NextResidentID(tx *gorm.DB, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%02d", now.Year()%100)

	var last string
	err := tx.Model(&models.User{}).
		Where("resident_id LIKE ?", prefix+"%").
		Order("resident_id DESC").
		Limit(1).
		Pluck("resident_id", &last).Error
	if err != nil {
		return "", fmt.Errorf("failed to find last resident id: %w", err)
	}

	seq := 1
	if last != "" {
		_, lastSeq, err := tool.ParseResidentID(last)
		if err != nil {
			return "", err
		}
		seq = lastSeq + 1
	}
	return tool.FormatResidentID(now.Year(), seq)
}

type CreateUserRequest struct {
	CitizenID   string       `json:"citizen_id" binding:"required"`
	FullName    string       `json:"full_name" binding:"required"`
	DateOfBirth *time.Time   `json:"date_of_birth"`
	PhoneNumber string       `json:"phone_number" binding:"required"`
	Email       *string      `json:"email"`
	Hometown    string       `json:"hometown"`
	Gender      types.Gender `json:"gender"`
	Password    string       `json:"password" binding:"required"`
	IsStaff     bool         `json:"is_staff"`
}

// CreateUser registers a person and their account, provisioning the locker
// in the same transaction.
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user *models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PersonalInformation{}).
			Where("citizen_id = ? OR phone_number = ?", req.CitizenID, req.PhoneNumber).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check personal information: %w", err)
		}
		if count > 0 {
			return ErrDuplicatePerson
		}

		info := &models.PersonalInformation{
			CitizenID:   req.CitizenID,
			FullName:    req.FullName,
			DateOfBirth: req.DateOfBirth,
			PhoneNumber: req.PhoneNumber,
			Email:       req.Email,
			Hometown:    req.Hometown,
			Gender:      req.Gender,
		}
		if info.Gender == "" {
			info.Gender = types.GenderMale
		}
		if err := tx.Create(info).Error; err != nil {
			return fmt.Errorf("failed to create personal information: %w", err)
		}

		residentID, err := NextResidentID(tx, s.now())
		if err != nil {
			return err
		}

		user = &models.User{
			ResidentID:     residentID,
			PersonalInfoID: info.CitizenID,
			Password:       string(hash),
			IsStaff:        req.IsStaff,
			Status:         types.UserStatusNotIssued,
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		locker := &models.Locker{
			ID:      tool.GenerateUUIDV7(),
			OwnerID: residentID,
			Status:  types.LockerStatusEmpty,
		}
		if err := tx.Create(locker).Error; err != nil {
			return fmt.Errorf("failed to provision locker: %w", err)
		}

		user.PersonalInformation = *info
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// mutateStatus loads, mutates, and saves a user's status under one
// transaction.
func (s *Service) mutateStatus(ctx context.Context, residentID string, mutate func(*models.User) error) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resident_id = ?", residentID).First(&user).Error; err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if err := mutate(&user); err != nil {
			return err
		}
		return tx.Select("status", "previous_status", "password", "avatar_url", "issued_by_id").
			Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Issue hands the account out to its resident, recording the issuing admin.
func (s *Service) Issue(ctx context.Context, residentID, issuedByID string) (*models.User, error) {
	return s.mutateStatus(ctx, residentID, func(u *models.User) error {
		u.Issue()
		u.IssuedByID = &issuedByID
		return nil
	})
}

func (s *Service) Revoke(ctx context.Context, residentID string) (*models.User, error) {
	return s.mutateStatus(ctx, residentID, func(u *models.User) error {
		u.Revoke()
		return nil
	})
}

func (s *Service) Ban(ctx context.Context, residentID string) (*models.User, error) {
	return s.mutateStatus(ctx, residentID, func(u *models.User) error {
		u.Ban()
		return nil
	})
}

func (s *Service) Unban(ctx context.Context, residentID string) (*models.User, error) {
	return s.mutateStatus(ctx, residentID, func(u *models.User) error {
		u.Unban()
		return nil
	})
}

// Activate completes first login for an issued account: the resident sets
// their own password and avatar.
func (s *Service) Activate(ctx context.Context, residentID, newPassword, avatarURL string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.mutateStatus(ctx, residentID, func(u *models.User) error {
		if u.IsBanned() {
			return ErrUserBanned
		}
		if !u.IsIssued() {
			return ErrUserNotIssued
		}
		u.Password = string(hash)
		u.AvatarURL = avatarURL
		u.Activate()
		return nil
	})
}

type LoginRequest struct {
	ResidentID string           `json:"resident_id" binding:"required"`
	Password   string           `json:"password" binding:"required"`
	FCMToken   string           `json:"fcm_token"`
	DeviceType types.DeviceType `json:"device_type"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login verifies credentials, mints a bearer token, and registers the
// device's push token when one is supplied.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("PersonalInformation").
		Where("resident_id = ?", req.ResidentID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.IsBanned() {
		return nil, ErrUserBanned
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := middleware.SignToken(s.cfg.Auth.JWTSecret, user.ResidentID, user.IsStaff, s.cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if req.FCMToken != "" && req.DeviceType.Valid() {
		if err := s.RegisterFCMToken(ctx, user.ResidentID, req.FCMToken, req.DeviceType); err != nil {
			logctx.FromCtx(ctx, s.log).Errorw("failed to register fcm token on login",
				"resident_id", user.ResidentID, "error", err)
		}
	}
	return &LoginResponse{Token: token, User: &user}, nil
}

// RegisterFCMToken upserts by token value; a device moving between accounts
// follows its token.
func (s *Service) RegisterFCMToken(ctx context.Context, userID, token string, deviceType types.DeviceType) error {
	row := &models.FCMToken{
		ID:         tool.GenerateUUIDV7(),
		UserID:     userID,
		Token:      token,
		DeviceType: deviceType,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "device_type", "updated_at"}),
	}).Create(row).Error
}

func (s *Service) Get(ctx context.Context, residentID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("PersonalInformation").
		Where("resident_id = ?", residentID).First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

const (
	MethodSMS   = "sms"
	MethodEmail = "email"
)

// ForgotPasswordMethods lists the reset channels available to an account.
// SMS is always offered; email only when one is on file.
func (s *Service) ForgotPasswordMethods(ctx context.Context, residentID string) ([]string, error) {
	user, err := s.Get(ctx, residentID)
	if err != nil {
		return nil, err
	}
	methods := []string{MethodSMS}
	if user.PersonalInformation.HasEmail() {
		methods = append(methods, MethodEmail)
	}
	return methods, nil
}

func digest(token string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(token)))
}

// SendResetEmail mails a one-shot reset link. Only the token digest is
// cached, bounded by the configured TTL.
func (s *Service) SendResetEmail(ctx context.Context, residentID string) error {
	user, err := s.Get(ctx, residentID)
	if err != nil {
		return err
	}
	if !user.PersonalInformation.HasEmail() {
		return ErrNoEmail
	}

	token := tool.GenerateUUIDV7()
	if err := s.redis.SetResetToken(ctx, residentID, digest(token), s.cfg.Auth.ResetTokenTTL); err != nil {
		return fmt.Errorf("failed to cache reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?resident_id=%s&token=%s", s.cfg.AdminHost, residentID, token)
	body := fmt.Sprintf(
		"<p>Xin chào %s,</p><p>Nhấn vào liên kết sau để đặt lại mật khẩu: <a href=%q>Đặt lại mật khẩu</a></p>",
		user.PersonalInformation.FullName, link,
	)
	s.mail.SendAsync(*user.PersonalInformation.Email, "OceanView - Đặt lại mật khẩu", body)
	return nil
}

// SendOTP texts a verification code, allowing one send per window per
// client IP.
func (s *Service) SendOTP(ctx context.Context, clientIP, residentID string) error {
	user, err := s.Get(ctx, residentID)
	if err != nil {
		return err
	}

	allowed, err := s.redis.Allow(ctx, "otp:"+clientIP, 1, s.cfg.Auth.OTPWindow)
	if err != nil {
		return fmt.Errorf("failed to check otp rate limit: %w", err)
	}
	if !allowed {
		return ErrTooManyOTPRequests
	}
	return s.sms.SendOTP(user.PersonalInformation.PhoneNumber)
}

// VerifyOTP checks the code and, on success, returns a reset token usable by
// ResetPassword.
func (s *Service) VerifyOTP(ctx context.Context, residentID, code string) (string, error) {
	user, err := s.Get(ctx, residentID)
	if err != nil {
		return "", err
	}
	if err := s.sms.CheckOTP(user.PersonalInformation.PhoneNumber, code); err != nil {
		return "", err
	}

	token := tool.GenerateUUIDV7()
	if err := s.redis.SetResetToken(ctx, residentID, digest(token), s.cfg.Auth.ResetTokenTTL); err != nil {
		return "", fmt.Errorf("failed to cache reset token: %w", err)
	}
	return token, nil
}

// ResetPassword consumes a reset token issued over email or OTP.
func (s *Service) ResetPassword(ctx context.Context, residentID, token, newPassword string) error {
	cached, err := s.redis.GetResetToken(ctx, residentID)
	if err != nil {
		return fmt.Errorf("failed to load reset token: %w", err)
	}
	if cached == "" || cached != digest(token) {
		return ErrResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&models.User{}).
		Where("resident_id = ?", residentID).
		UpdateColumn("password", string(hash)).Error
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return s.redis.DeleteResetToken(ctx, residentID)
}
