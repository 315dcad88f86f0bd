package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oceanview/backend/internal/app/api/middleware"
	"github.com/oceanview/backend/internal/app/service/notification"
	"github.com/oceanview/backend/pkg/response"
)

// @Summary      List notifications
// @Description  Newest first. Staff sessions see their admin-targeted feed via the staff_view flag.
// @Tags         Notifications
// @Produce      json
// @Param        staff_view query bool false "Admin feed"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/notifications [get]
func ApiListNotifications(svc *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, size := pagination(c)
		res, err := svc.List(c.Request.Context(), &notification.ListRequest{
			UserID:    middleware.ResidentID(c),
			StaffView: middleware.IsStaff(c) && c.Query("staff_view") == "true",
			From:      from,
			Size:      size,
		})
		if err != nil {
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, res)
	}
}

// @Summary      Mark notification read
// @Description  Idempotent. The unread counter only moves on the first read.
// @Tags         Notifications
// @Produce      json
// @Param        id path string true "Notification id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/notifications/{id}/read [post]
func ApiReadNotification(svc *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.Read(c.Request.Context(), middleware.ResidentID(c), c.Param("id"))
		switch {
		case err == nil:
			respondOK(c, gin.H{"read": true})
		case errors.Is(err, notification.ErrNotificationOwner):
			respondErr(c, response.APIResponseCodeForbidden, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondErr(c, response.APIResponseCodeNotFound, "notification not found")
		default:
			respondErr(c, response.APIResponseCodeError, err.Error())
		}
	}
}

// @Summary      Unread notification count
// @Tags         Notifications
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/notifications/unread-count [get]
func ApiUnreadCount(svc *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := svc.UnreadCount(c.Request.Context(), middleware.ResidentID(c),
			middleware.IsStaff(c) && c.Query("staff_view") == "true")
		if err != nil {
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, gin.H{"unread": count})
	}
}

func RegisterNotificationRoutes(r gin.IRouter, svc *notification.Service) {
	r.GET("/notifications", ApiListNotifications(svc))
	r.GET("/notifications/unread-count", ApiUnreadCount(svc))
	r.POST("/notifications/:id/read", ApiReadNotification(svc))
}
