package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/oceanview/backend/internal/app/api/middleware"
	"github.com/oceanview/backend/internal/app/service/chat"
	"github.com/oceanview/backend/pkg/response"
)

func chatErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrInboxMissing):
		respondErr(c, response.APIResponseCodeNotFound, err.Error())
	case errors.Is(err, chat.ErrNotMember):
		respondErr(c, response.APIResponseCodeForbidden, err.Error())
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrSelfInbox):
		respondErr(c, response.APIResponseCodeBadRequest, err.Error())
	default:
		respondErr(c, response.APIResponseCodeError, err.Error())
	}
}

type openInboxRequest struct {
	PeerID string `json:"peer_id" binding:"required"`
}

// @Summary      Open inbox
// @Description  Finds or creates the one conversation between the caller and the peer.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request body handlers.openInboxRequest true "Peer"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/chat/inboxes [post]
func ApiOpenInbox(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req openInboxRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		inbox, err := svc.OpenInbox(c.Request.Context(), middleware.ResidentID(c), req.PeerID)
		if err != nil {
			chatErr(c, err)
			return
		}
		respondOK(c, inbox)
	}
}

// @Summary      List inboxes
// @Tags         Chat
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/chat/inboxes [get]
func ApiListInboxes(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, size := pagination(c)
		res, err := svc.ListInboxes(c.Request.Context(), middleware.ResidentID(c), from, size)
		if err != nil {
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, res)
	}
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// @Summary      Send message
// @Description  Appends a message to the inbox and pings the peer.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        id path string true "Inbox id"
// @Param        request body handlers.sendMessageRequest true "Message"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/chat/inboxes/{id}/messages [post]
func ApiSendMessage(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		msg, err := svc.SendMessage(c.Request.Context(), middleware.ResidentID(c), c.Param("id"), req.Content)
		if err != nil {
			chatErr(c, err)
			return
		}
		respondOK(c, msg)
	}
}

// @Summary      List messages
// @Description  Newest first, membership required.
// @Tags         Chat
// @Produce      json
// @Param        id path string true "Inbox id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/chat/inboxes/{id}/messages [get]
func ApiListMessages(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, size := pagination(c)
		msgs, err := svc.Messages(c.Request.Context(), middleware.ResidentID(c), c.Param("id"), from, size)
		if err != nil {
			chatErr(c, err)
			return
		}
		respondOK(c, msgs)
	}
}

func RegisterChatRoutes(r gin.IRouter, svc *chat.Service) {
	r.GET("/chat/inboxes", ApiListInboxes(svc))
	r.POST("/chat/inboxes", ApiOpenInbox(svc))
	r.GET("/chat/inboxes/:id/messages", ApiListMessages(svc))
	r.POST("/chat/inboxes/:id/messages", ApiSendMessage(svc))
}
