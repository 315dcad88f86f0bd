package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/oceanview/backend/internal/app/api/middleware"
	"github.com/oceanview/backend/internal/app/service/apartment"
	"github.com/oceanview/backend/pkg/response"
)

// @Summary      List apartments
// @Description  Residents see their own units; staff can filter by building.
// @Tags         Apartments
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/apartments [get]
func ApiListApartments(svc *apartment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, size := pagination(c)
		req := &apartment.ListRequest{
			BuildingName: c.Query("building"),
			From:         from,
			Size:         size,
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

// @Summary      Get apartment
// @Tags         Apartments
// @Produce      json
// @Param        room_number path string true "Room number"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/apartments/{room_number} [get]
func ApiGetApartment(svc *apartment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomNumber := c.Param("room_number")

		if !middleware.IsStaff(c) {
			occupied, err := svc.IsOccupant(c.Request.Context(), roomNumber, middleware.ResidentID(c))
			if err != nil {
				respondErr(c, response.APIResponseCodeError, err.Error())
				return
			}
			if !occupied {
				respondErr(c, response.APIResponseCodeForbidden, apartment.ErrNotAnOccupant.Error())
				return
			}
		}

		apt, err := svc.Get(c.Request.Context(), roomNumber)
		if err != nil {
			if errors.Is(err, apartment.ErrApartmentMissing) {
				respondErr(c, response.APIResponseCodeNotFound, err.Error())
				return
			}
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, apt)
	}
}

// @Summary      Create apartment
// @Description  Staff only. The room number is derived from building, floor, and sequence.
// @Tags         Apartments
// @Accept       json
// @Produce      json
// @Param        request body apartment.CreateApartmentRequest true "New apartment"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/apartments [post]
func ApiCreateApartment(svc *apartment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req apartment.CreateApartmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		apt, err := svc.CreateApartment(c.Request.Context(), &req)
		if err != nil {
			switch {
			case errors.Is(err, apartment.ErrFloorOutOfRange), errors.Is(err, apartment.ErrRoomTaken):
				respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			default:
				respondErr(c, response.APIResponseCodeError, err.Error())
			}
			return
		}
		respondOK(c, apt)
	}
}

type occupancyRequest struct {
	ResidentID string `json:"resident_id" binding:"required"`
}

// @Summary      Add resident to apartment
// @Tags         Apartments
// @Accept       json
// @Produce      json
// @Param        room_number path string true "Room number"
// @Param        request body handlers.occupancyRequest true "Resident"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/apartments/{room_number}/residents [post]
func ApiAddResident(svc *apartment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req occupancyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		err := svc.AddResident(c.Request.Context(), c.Param("room_number"), req.ResidentID)
		if err != nil {
			if errors.Is(err, apartment.ErrAlreadyOccupant) {
				respondErr(c, response.APIResponseCodeBadRequest, err.Error())
				return
			}
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, "resident added")
	}
}

// @Summary      Remove resident from apartment
// @Tags         Apartments
// @Produce      json
// @Param        room_number path string true "Room number"
// @Param        resident_id path string true "Resident id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/apartments/{room_number}/residents/{resident_id} [delete]
func ApiRemoveResident(svc *apartment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.RemoveResident(c.Request.Context(), c.Param("room_number"), c.Param("resident_id"))
		if err != nil {
			if errors.Is(err, apartment.ErrNotAnOccupant) {
				respondErr(c, response.APIResponseCodeBadRequest, err.Error())
				return
			}
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, "resident removed")
	}
}

func RegisterApartmentRoutes(r gin.IRouter, svc *apartment.Service) {
	r.GET("/apartments", ApiListApartments(svc))
	r.GET("/apartments/:room_number", ApiGetApartment(svc))
}

func RegisterApartmentAdminRoutes(r gin.IRouter, svc *apartment.Service) {
	r.POST("/apartments", ApiCreateApartment(svc))
	r.POST("/apartments/:room_number/residents", ApiAddResident(svc))
	r.DELETE("/apartments/:room_number/residents/:resident_id", ApiRemoveResident(svc))
}
