package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oceanview/backend/internal/app/api/middleware"
	"github.com/oceanview/backend/internal/app/service/identity"
	"github.com/oceanview/backend/internal/platform/sms"
	"github.com/oceanview/backend/pkg/response"
	"github.com/oceanview/backend/pkg/types"
)

// @Summary      Login
// @Description  Authenticates a resident or staff account and returns a bearer token.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginRequest true "Credentials"
// @Success      200  {object}  handlers.RespOK
// @Router       /users/login [post]
func ApiLogin(svc *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req identity.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		res, err := svc.Login(c.Request.Context(), &req)
		if err != nil {
			switch {
			case errors.Is(err, identity.ErrInvalidCredentials):
				respondErr(c, response.APIResponseCodeUnauthorized, err.Error())
			case errors.Is(err, identity.ErrUserBanned):
				respondErr(c, response.APIResponseCodeForbidden, err.Error())
			default:
				respondErr(c, response.APIResponseCodeError, err.Error())
			}
			return
		}
		respondOK(c, res)
	}
}

// @Summary      Current user
// @Tags         Users
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/users/current [get]
func ApiCurrentUser(svc *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.Get(c.Request.Context(), middleware.ResidentID(c))
		if err != nil {
			respondErr(c, response.APIResponseCodeNotFound, err.Error())
			return
		}
		respondOK(c, user)
	}
}

// @Summary      Create user
// @Description  Registers a person and their account. Staff only.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request body identity.CreateUserRequest true "New account"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/users [post]
func ApiCreateUser(svc *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req identity.CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		user, err := svc.CreateUser(c.Request.Context(), &req)
		if err != nil {
			if errors.Is(err, identity.ErrDuplicatePerson) {
				respondErr(c, response.APIResponseCodeBadRequest, err.Error())
				return
			}
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, user)
	}
}

type activeRequest struct {
	ResidentID string `json:"resident_id" binding:"required"`
	Password   string `json:"password" binding:"required"`
	AvatarURL  string `json:"avatar_url" binding:"required"`
}

// @Summary      Activate account
// @Description  First-login activation. Issued residents have no password yet, so this runs before authentication.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request body handlers.activeRequest true "Activation payload"
// @Success      200  {object}  handlers.RespOK
// @Router       /users/active [post]
func ApiActivate(svc *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req activeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		user, err := svc.Activate(c.Request.Context(), req.ResidentID, req.Password, req.AvatarURL)
		if err != nil {
			switch {
			case errors.Is(err, identity.ErrUserNotIssued), errors.Is(err, identity.ErrUserBanned):
				respondErr(c, response.APIResponseCodeForbidden, err.Error())
			case errors.Is(err, gorm.ErrRecordNotFound):
				respondErr(c, response.APIResponseCodeNotFound, "user not found")
			default:
				respondErr(c, response.APIResponseCodeError, err.Error())
			}
			return
		}
		respondOK(c, user)
	}
}

type statusAction func(svc *identity.Service, c *gin.Context, residentID string) (any, error)

func statusHandler(svc *identity.Service, act statusAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := act(svc, c, c.Param("id"))
		if err != nil {
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, user)
	}
}

type forgotMethodsResp struct {
	Methods []string `json:"methods"`
}

// @Summary      Forgot-password methods
// @Tags         Users
// @Produce      json
// @Param        resident_id path string true "Resident id"
// @Success      200  {object}  handlers.RespOK
// @Router       /users/{resident_id}/forgot-password [get]
func ApiForgotPasswordMethods(svc *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		methods, err := svc.ForgotPasswordMethods(c.Request.Context(), c.Param("resident_id"))
		if err != nil {
			respondErr(c, response.APIResponseCodeNotFound, err.Error())
			return
		}
		respondOK(c, forgotMethodsResp{Methods: methods})
	}
}

type residentIDRequest struct {
	ResidentID string `json:"resident_id" binding:"required"`
}

// @Summary      Send reset-password email
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request body handlers.residentIDRequest true "Target account"
// @Success      200  {object}  handlers.RespOK
// @Router       /users/send-reset-password [post]
func ApiSendResetPassword(svc *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req residentIDRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		if err := svc.SendResetEmail(c.Request.Context(), req.ResidentID); err != nil {
			if errors.Is(err, identity.ErrNoEmail) {
				respondErr(c, response.APIResponseCodeBadRequest, err.Error())
				return
			}
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, "email sent")
	}
}

// @Summary      Send OTP
// @Description  Texts a verification code to the account's phone, one per window per client IP.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request body handlers.residentIDRequest true "Target account"
// @Success      200  {object}  handlers.RespOK
// @Router       /users/send-otp [post]
func ApiSendOTP(svc *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req residentIDRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		if err := svc.SendOTP(c.Request.Context(), c.ClientIP(), req.ResidentID); err != nil {
			if errors.Is(err, identity.ErrTooManyOTPRequests) {
				respondErr(c, response.APIResponseCodeBadRequest, err.Error())
				return
			}
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, "otp sent")
	}
}

type verifyOTPRequest struct {
	ResidentID string `json:"resident_id" binding:"required"`
	Code       string `json:"code" binding:"required"`
}

type verifyOTPResp struct {
	Token string `json:"token"`
}

// @Summary      Verify OTP
// @Description  Checks the code and returns a token usable with reset-password.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request body handlers.verifyOTPRequest true "OTP check"
// @Success      200  {object}  handlers.RespOK
// @Router       /users/verify-otp [post]
func ApiVerifyOTP(svc *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		token, err := svc.VerifyOTP(c.Request.Context(), req.ResidentID, req.Code)
		if err != nil {
			if errors.Is(err, sms.ErrInvalidOTP) {
				respondErr(c, response.APIResponseCodeBadRequest, err.Error())
				return
			}
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, verifyOTPResp{Token: token})
	}
}

type resetPasswordRequest struct {
	ResidentID string `json:"resident_id" binding:"required"`
	Token      string `json:"token" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// @Summary      Reset password
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request body handlers.resetPasswordRequest true "Reset payload"
// @Success      200  {object}  handlers.RespOK
// @Router       /users/reset-password [post]
func ApiResetPassword(svc *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		if err := svc.ResetPassword(c.Request.Context(), req.ResidentID, req.Token, req.Password); err != nil {
			if errors.Is(err, identity.ErrResetTokenInvalid) {
				respondErr(c, response.APIResponseCodeBadRequest, err.Error())
				return
			}
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, "password reset")
	}
}

type fcmTokenRequest struct {
	Token      string           `json:"token" binding:"required"`
	DeviceType types.DeviceType `json:"device_type" binding:"required"`
}

// @Summary      Register FCM token
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request body handlers.fcmTokenRequest true "Device token"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/users/fcm-token [post]
func ApiRegisterFCMToken(svc *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req fcmTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil || !req.DeviceType.Valid() {
			respondErr(c, response.APIResponseCodeBadRequest, "invalid token payload")
			return
		}

		if err := svc.RegisterFCMToken(c.Request.Context(), middleware.ResidentID(c), req.Token, req.DeviceType); err != nil {
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, "token registered")
	}
}

// RegisterUserRoutes wires the public flows; RegisterUserProtectedRoutes and
// RegisterUserAdminRoutes hang off the authenticated groups.
func RegisterUserRoutes(r gin.IRouter, svc *identity.Service, otpLimiter gin.HandlerFunc) {
	r.POST("/users/login", ApiLogin(svc))
	r.POST("/users/active", ApiActivate(svc))
	r.GET("/users/:resident_id/forgot-password", ApiForgotPasswordMethods(svc))
	r.POST("/users/send-reset-password", ApiSendResetPassword(svc))
	r.POST("/users/send-otp", otpLimiter, ApiSendOTP(svc))
	r.POST("/users/verify-otp", ApiVerifyOTP(svc))
	r.POST("/users/reset-password", ApiResetPassword(svc))
}

func RegisterUserProtectedRoutes(r gin.IRouter, svc *identity.Service) {
	r.GET("/users/current", ApiCurrentUser(svc))
	r.POST("/users/fcm-token", ApiRegisterFCMToken(svc))
}

func RegisterUserAdminRoutes(r gin.IRouter, svc *identity.Service) {
	r.POST("/users", ApiCreateUser(svc))
	r.POST("/users/:id/issue", statusHandler(svc, func(svc *identity.Service, c *gin.Context, id string) (any, error) {
		return svc.Issue(c.Request.Context(), id, middleware.ResidentID(c))
	}))
	r.POST("/users/:id/revoke", statusHandler(svc, func(svc *identity.Service, c *gin.Context, id string) (any, error) {
		return svc.Revoke(c.Request.Context(), id)
	}))
	r.POST("/users/:id/ban", statusHandler(svc, func(svc *identity.Service, c *gin.Context, id string) (any, error) {
		return svc.Ban(c.Request.Context(), id)
	}))
	r.POST("/users/:id/unban", statusHandler(svc, func(svc *identity.Service, c *gin.Context, id string) (any, error) {
		return svc.Unban(c.Request.Context(), id)
	}))
}
