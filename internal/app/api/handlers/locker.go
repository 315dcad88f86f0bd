package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/oceanview/backend/internal/app/api/middleware"
	"github.com/oceanview/backend/internal/app/service/locker"
	"github.com/oceanview/backend/pkg/response"
)

func lockerErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, locker.ErrLockerMissing), errors.Is(err, locker.ErrItemMissing):
		respondErr(c, response.APIResponseCodeNotFound, err.Error())
	case errors.Is(err, locker.ErrInvalidQuantity):
		respondErr(c, response.APIResponseCodeBadRequest, err.Error())
	default:
		respondErr(c, response.APIResponseCodeError, err.Error())
	}
}

// @Summary      My locker
// @Description  Returns the calling resident's locker with its items.
// @Tags         Lockers
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/lockers/mine [get]
func ApiMyLocker(svc *locker.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		lk, err := svc.GetByOwner(c.Request.Context(), middleware.ResidentID(c))
		if err != nil {
			lockerErr(c, err)
			return
		}
		respondOK(c, lk)
	}
}

// @Summary      Add locker item
// @Description  Staff records a received parcel; the owner gets a notification.
// @Tags         Lockers
// @Accept       json
// @Produce      json
// @Param        request body locker.AddItemRequest true "Parcel"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/lockers/items [post]
func ApiAddLockerItem(svc *locker.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req locker.AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		item, err := svc.AddItem(c.Request.Context(), middleware.ResidentID(c), &req)
		if err != nil {
			lockerErr(c, err)
			return
		}
		respondOK(c, item)
	}
}

// @Summary      Mark item received
// @Description  Idempotent handover confirmation.
// @Tags         Lockers
// @Produce      json
// @Param        id path string true "Item id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/lockers/items/{id}/received [post]
func ApiMarkItemReceived(svc *locker.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := svc.MarkReceived(c.Request.Context(), c.Param("id"))
		if err != nil {
			lockerErr(c, err)
			return
		}
		respondOK(c, item)
	}
}

func RegisterLockerRoutes(r gin.IRouter, svc *locker.Service) {
	r.GET("/lockers/mine", ApiMyLocker(svc))
}

func RegisterLockerAdminRoutes(r gin.IRouter, svc *locker.Service) {
	r.POST("/lockers/items", ApiAddLockerItem(svc))
	r.POST("/lockers/items/:id/received", ApiMarkItemReceived(svc))
}
