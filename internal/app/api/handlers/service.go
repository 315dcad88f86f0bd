package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/oceanview/backend/internal/app/api/middleware"
	"github.com/oceanview/backend/internal/app/service/registration"
	"github.com/oceanview/backend/internal/models"
	"github.com/oceanview/backend/pkg/response"
	"github.com/oceanview/backend/pkg/types"
)

func registrationErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, registration.ErrSelfAccessCard),
		errors.Is(err, registration.ErrAlreadyRegistered),
		errors.Is(err, registration.ErrLicensePlateRequired),
		errors.Is(err, registration.ErrNotReissuable),
		errors.Is(err, models.ErrAlreadyApprovedOrClosed),
		errors.Is(err, models.ErrNotCancelable):
		respondErr(c, response.APIResponseCodeBadRequest, err.Error())
	case errors.Is(err, registration.ErrNotAnOccupant),
		errors.Is(err, registration.ErrVehicleQuotaReached),
		errors.Is(err, registration.ErrResidentCardQuota):
		respondErr(c, response.APIResponseCodeForbidden, err.Error())
	case errors.Is(err, registration.ErrRegistrationMissing):
		respondErr(c, response.APIResponseCodeNotFound, err.Error())
	default:
		respondErr(c, response.APIResponseCodeError, err.Error())
	}
}

type accessCardRequest struct {
	Relative registration.ApplicantInfo `json:"relative" binding:"required"`
}

// @Summary      Register access card
// @Description  Registers an access card for a relative of the calling resident.
// @Tags         Services
// @Accept       json
// @Produce      json
// @Param        request body handlers.accessCardRequest true "Relative info"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/services/access-cards [post]
func ApiRegisterAccessCard(svc *registration.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req accessCardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		reg, err := svc.RegisterAccessCard(c.Request.Context(), middleware.ResidentID(c), &req.Relative)
		if err != nil {
			registrationErr(c, err)
			return
		}
		respondOK(c, reg)
	}
}

type parkingCardRequest struct {
	RoomNumber string                     `json:"room_number" binding:"required"`
	Vehicle    registration.VehicleInput  `json:"vehicle" binding:"required"`
	Applicant  registration.ApplicantInfo `json:"applicant" binding:"required"`
}

// @Summary      Register parking card
// @Description  Registers a parking card for the resident or a relative, bound to an occupied apartment.
// @Tags         Services
// @Accept       json
// @Produce      json
// @Param        request body handlers.parkingCardRequest true "Parking registration"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/services/parking-cards [post]
func ApiRegisterParkingCard(svc *registration.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req parkingCardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		reg, err := svc.RegisterParkingCard(c.Request.Context(), middleware.ResidentID(c), req.RoomNumber, &req.Vehicle, &req.Applicant)
		if err != nil {
			registrationErr(c, err)
			return
		}
		respondOK(c, reg)
	}
}

type residentCardRequest struct {
	RoomNumber string                     `json:"room_number" binding:"required"`
	Applicant  registration.ApplicantInfo `json:"applicant" binding:"required"`
}

// @Summary      Register resident card
// @Description  Registers a resident card against an apartment, max four per unit.
// @Tags         Services
// @Accept       json
// @Produce      json
// @Param        request body handlers.residentCardRequest true "Resident card registration"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/services/resident-cards [post]
func ApiRegisterResidentCard(svc *registration.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req residentCardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		reg, err := svc.RegisterResidentCard(c.Request.Context(), middleware.ResidentID(c), req.RoomNumber, &req.Applicant)
		if err != nil {
			registrationErr(c, err)
			return
		}
		respondOK(c, reg)
	}
}

// @Summary      List registrations
// @Description  Residents see their own; staff see everything, filterable by status and service.
// @Tags         Services
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/services/registrations [get]
func ApiListRegistrations(svc *registration.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, size := pagination(c)
		req := &registration.ListRequest{
			Status:    types.RegistrationStatus(c.Query("status")),
			ServiceID: types.ServiceID(c.Query("service_id")),
			From:      from,
			Size:      size,
		}
		if !middleware.IsStaff(c) {
			req.ResidentID = middleware.ResidentID(c)
		}

		res, err := svc.List(c.Request.Context(), req)
		if err != nil {
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, res)
	}
}

// @Summary      Get registration
// @Tags         Services
// @Produce      json
// @Param        id path string true "Registration id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/services/registrations/{id} [get]
func ApiGetRegistration(svc *registration.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		reg, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			registrationErr(c, err)
			return
		}
		if !middleware.IsStaff(c) && reg.ResidentID != middleware.ResidentID(c) {
			respondErr(c, response.APIResponseCodeForbidden, "registration belongs to another resident")
			return
		}
		respondOK(c, reg)
	}
}

// @Summary      Cancel registration
// @Tags         Services
// @Produce      json
// @Param        id path string true "Registration id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/services/registrations/{id}/cancel [post]
func ApiCancelRegistration(svc *registration.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		reg, err := svc.Cancel(c.Request.Context(), middleware.ResidentID(c), c.Param("id"))
		if err != nil {
			registrationErr(c, err)
			return
		}
		respondOK(c, reg)
	}
}

// @Summary      Request card reissue
// @Description  Files a reissue request against an approved physical-card registration; idempotent per outstanding request.
// @Tags         Services
// @Produce      json
// @Param        id path string true "Registration id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/services/registrations/{id}/reissue [post]
func ApiReissue(svc *registration.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, err := svc.Reissue(c.Request.Context(), middleware.ResidentID(c), c.Param("id"))
		if err != nil {
			registrationErr(c, err)
			return
		}
		respondOK(c, rc)
	}
}

func decisionHandler(errFn func(*gin.Context, error), decide func(c *gin.Context) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := decide(c)
		if err != nil {
			errFn(c, err)
			return
		}
		respondOK(c, out)
	}
}

func RegisterServiceRoutes(r gin.IRouter, svc *registration.Service) {
	r.POST("/services/access-cards", ApiRegisterAccessCard(svc))
	r.POST("/services/parking-cards", ApiRegisterParkingCard(svc))
	r.POST("/services/resident-cards", ApiRegisterResidentCard(svc))
	r.GET("/services/registrations", ApiListRegistrations(svc))
	r.GET("/services/registrations/:id", ApiGetRegistration(svc))
	r.POST("/services/registrations/:id/cancel", ApiCancelRegistration(svc))
	r.POST("/services/registrations/:id/reissue", ApiReissue(svc))
}

func RegisterServiceAdminRoutes(r gin.IRouter, svc *registration.Service) {
	r.POST("/services/registrations/:id/approve", decisionHandler(registrationErr, func(c *gin.Context) (any, error) {
		return svc.Approve(c.Request.Context(), middleware.ResidentID(c), c.Param("id"))
	}))
	r.POST("/services/registrations/:id/reject", decisionHandler(registrationErr, func(c *gin.Context) (any, error) {
		return svc.Reject(c.Request.Context(), middleware.ResidentID(c), c.Param("id"))
	}))
	r.POST("/services/reissues/:id/approve", decisionHandler(registrationErr, func(c *gin.Context) (any, error) {
		return svc.ApproveReissue(c.Request.Context(), middleware.ResidentID(c), c.Param("id"))
	}))
	r.POST("/services/reissues/:id/reject", decisionHandler(registrationErr, func(c *gin.Context) (any, error) {
		return svc.RejectReissue(c.Request.Context(), middleware.ResidentID(c), c.Param("id"))
	}))
}
