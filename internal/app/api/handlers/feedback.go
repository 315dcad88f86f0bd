package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/oceanview/backend/internal/app/api/middleware"
	"github.com/oceanview/backend/internal/app/service/feedback"
	"github.com/oceanview/backend/pkg/response"
	"github.com/oceanview/backend/pkg/types"
)

func feedbackErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, feedback.ErrFeedbackMissing):
		respondErr(c, response.APIResponseCodeNotFound, err.Error())
	case errors.Is(err, feedback.ErrFeedbackOwner):
		respondErr(c, response.APIResponseCodeForbidden, err.Error())
	case errors.Is(err, feedback.ErrInvalidType):
		respondErr(c, response.APIResponseCodeBadRequest, err.Error())
	default:
		respondErr(c, response.APIResponseCodeError, err.Error())
	}
}

// @Summary      Post feedback
// @Description  Files a complaint or suggestion; admins are notified.
// @Tags         Feedback
// @Accept       json
// @Produce      json
// @Param        request body feedback.CreateRequest true "Feedback"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/feedbacks [post]
func ApiCreateFeedback(svc *feedback.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req feedback.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		fb, err := svc.Create(c.Request.Context(), middleware.ResidentID(c), &req)
		if err != nil {
			feedbackErr(c, err)
			return
		}
		respondOK(c, fb)
	}
}

// @Summary      Get feedback
// @Tags         Feedback
// @Produce      json
// @Param        id path string true "Feedback id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/feedbacks/{id} [get]
func ApiGetFeedback(svc *feedback.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		fb, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			feedbackErr(c, err)
			return
		}
		respondOK(c, fb)
	}
}

// @Summary      List feedbacks
// @Description  Residents see their own posts; staff see everything, filterable by type.
// @Tags         Feedback
// @Produce      json
// @Param        type query string false "Feedback type"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/feedbacks [get]
func ApiListFeedbacks(svc *feedback.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, size := pagination(c)
		req := &feedback.ListRequest{
			Type: types.FeedbackType(c.Query("type")),
			From: from,
			Size: size,
		}
		if !middleware.IsStaff(c) {
			req.AuthorID = middleware.ResidentID(c)
		}

		res, err := svc.List(c.Request.Context(), req)
		if err != nil {
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, res)
	}
}

// @Summary      Delete feedback
// @Description  Soft delete, author only.
// @Tags         Feedback
// @Produce      json
// @Param        id path string true "Feedback id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/feedbacks/{id} [delete]
func ApiDeleteFeedback(svc *feedback.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), middleware.ResidentID(c), c.Param("id")); err != nil {
			feedbackErr(c, err)
			return
		}
		respondOK(c, gin.H{"deleted": true})
	}
}

func RegisterFeedbackRoutes(r gin.IRouter, svc *feedback.Service) {
	r.GET("/feedbacks", ApiListFeedbacks(svc))
	r.POST("/feedbacks", ApiCreateFeedback(svc))
	r.GET("/feedbacks/:id", ApiGetFeedback(svc))
	r.DELETE("/feedbacks/:id", ApiDeleteFeedback(svc))
}
