package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oceanview/backend/internal/app/api/middleware"
	"github.com/oceanview/backend/internal/app/service/content"
	"github.com/oceanview/backend/pkg/response"
)

func contentErr(c *gin.Context, err error) {
	if errors.Is(err, content.ErrPostMissing) {
		respondErr(c, response.APIResponseCodeNotFound, err.Error())
		return
	}
	respondErr(c, response.APIResponseCodeError, err.Error())
}

func categoryFilter(c *gin.Context) *uint {
	raw := c.Query("category_id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	v := uint(id)
	return &v
}

// @Summary      Post news
// @Description  Publishes a news item and broadcasts it to every resident device.
// @Tags         Content
// @Accept       json
// @Produce      json
// @Param        request body content.PostRequest true "News"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/news [post]
func ApiPostNews(svc *content.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req content.PostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		news, err := svc.PostNews(c.Request.Context(), middleware.ResidentID(c), &req)
		if err != nil {
			contentErr(c, err)
			return
		}
		respondOK(c, news)
	}
}

// @Summary      List news
// @Tags         Content
// @Produce      json
// @Param        category_id query int false "Category filter"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/news [get]
func ApiListNews(svc *content.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, size := pagination(c)
		items, err := svc.ListNews(c.Request.Context(), categoryFilter(c), from, size)
		if err != nil {
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, items)
	}
}

// @Summary      Get news
// @Tags         Content
// @Produce      json
// @Param        id path string true "News id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/news/{id} [get]
func ApiGetNews(svc *content.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		news, err := svc.GetNews(c.Request.Context(), c.Param("id"))
		if err != nil {
			contentErr(c, err)
			return
		}
		respondOK(c, news)
	}
}

// @Summary      Delete news
// @Tags         Content
// @Produce      json
// @Param        id path string true "News id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/news/{id} [delete]
func ApiDeleteNews(svc *content.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteNews(c.Request.Context(), c.Param("id")); err != nil {
			contentErr(c, err)
			return
		}
		respondOK(c, gin.H{"deleted": true})
	}
}

// @Summary      News categories
// @Tags         Content
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/news/categories [get]
func ApiNewsCategories(svc *content.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := svc.NewsCategories(c.Request.Context())
		if err != nil {
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, cats)
	}
}

// @Summary      Post guide
// @Description  Publishes a building guide. Guides are reference material and do not notify anyone.
// @Tags         Content
// @Accept       json
// @Produce      json
// @Param        request body content.PostRequest true "Guide"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/guides [post]
func ApiPostGuide(svc *content.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req content.PostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		guide, err := svc.PostGuide(c.Request.Context(), &req)
		if err != nil {
			contentErr(c, err)
			return
		}
		respondOK(c, guide)
	}
}

// @Summary      List guides
// @Tags         Content
// @Produce      json
// @Param        category_id query int false "Category filter"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/guides [get]
func ApiListGuides(svc *content.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, size := pagination(c)
		items, err := svc.ListGuides(c.Request.Context(), categoryFilter(c), from, size)
		if err != nil {
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, items)
	}
}

// @Summary      Get guide
// @Tags         Content
// @Produce      json
// @Param        id path string true "Guide id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/guides/{id} [get]
func ApiGetGuide(svc *content.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		guide, err := svc.GetGuide(c.Request.Context(), c.Param("id"))
		if err != nil {
			contentErr(c, err)
			return
		}
		respondOK(c, guide)
	}
}

// @Summary      Guide categories
// @Tags         Content
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/guides/categories [get]
func ApiGuideCategories(svc *content.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := svc.GuideCategories(c.Request.Context())
		if err != nil {
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, cats)
	}
}

func RegisterContentRoutes(r gin.IRouter, svc *content.Service) {
	r.GET("/news", ApiListNews(svc))
	r.GET("/news/categories", ApiNewsCategories(svc))
	r.GET("/news/:id", ApiGetNews(svc))
	r.GET("/guides", ApiListGuides(svc))
	r.GET("/guides/categories", ApiGuideCategories(svc))
	r.GET("/guides/:id", ApiGetGuide(svc))
}

func RegisterContentAdminRoutes(r gin.IRouter, svc *content.Service) {
	r.POST("/news", ApiPostNews(svc))
	r.DELETE("/news/:id", ApiDeleteNews(svc))
	r.POST("/guides", ApiPostGuide(svc))
}
