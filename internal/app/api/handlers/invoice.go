package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oceanview/backend/internal/app/api/middleware"
	"github.com/oceanview/backend/internal/app/service/billing"
	"github.com/oceanview/backend/internal/models"
	"github.com/oceanview/backend/pkg/response"
	"github.com/oceanview/backend/pkg/types"
)

func billingErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, billing.ErrInvoiceMissing),
		errors.Is(err, billing.ErrProofMissing):
		respondErr(c, response.APIResponseCodeNotFound, err.Error())
	case errors.Is(err, billing.ErrInvoiceOwner):
		respondErr(c, response.APIResponseCodeForbidden, err.Error())
	case errors.Is(err, billing.ErrUnknownWallet),
		errors.Is(err, billing.ErrProofNotPending),
		errors.Is(err, models.ErrInvoiceAlreadyPaid):
		respondErr(c, response.APIResponseCodeBadRequest, err.Error())
	default:
		respondErr(c, response.APIResponseCodeError, err.Error())
	}
}

// @Summary      List invoices
// @Description  Residents see their own invoices; staff can list across residents.
// @Tags         Invoices
// @Produce      json
// @Param        status query string false "Invoice status filter"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/invoices [get]
func ApiListInvoices(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, size := pagination(c)
		req := &billing.ListRequest{
			Status: types.InvoiceStatus(c.Query("status")),
			From:   from,
			Size:   size,
		}
		if middleware.IsStaff(c) {
			req.ResidentID = c.Query("resident_id")
		} else {
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

// @Summary      Get invoice
// @Tags         Invoices
// @Produce      json
// @Param        id path string true "Invoice id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/invoices/{id} [get]
func ApiGetInvoice(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		invoice, err := svc.Get(c.Request.Context(), middleware.ResidentID(c), c.Param("id"), middleware.IsStaff(c))
		if err != nil {
			billingErr(c, err)
			return
		}
		respondOK(c, invoice)
	}
}

type proofImageRequest struct {
	ImageURL string `json:"image_url" binding:"required"`
}

// @Summary      Pay by proof image
// @Description  Submits bank-transfer evidence for an invoice and parks it pending staff review.
// @Tags         Invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice id"
// @Param        request body handlers.proofImageRequest true "Evidence"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/invoices/{id}/payment/proof-image [post]
func ApiPayByProofImage(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req proofImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, err.Error())
			return
		}

		proof, err := svc.PayByProofImage(c.Request.Context(), middleware.ResidentID(c), c.Param("id"), req.ImageURL)
		if err != nil {
			billingErr(c, err)
			return
		}
		respondOK(c, proof)
	}
}

func walletPayHandler(svc *billing.Service, wallet types.WalletType) gin.HandlerFunc {
	return func(c *gin.Context) {
		payURL, err := svc.InitWalletPayment(c.Request.Context(), middleware.ResidentID(c), c.Param("id"), wallet, c.ClientIP())
		if err != nil {
			billingErr(c, err)
			return
		}
		respondOK(c, gin.H{"pay_url": payURL})
	}
}

// @Summary      Pay via VNPay
// @Description  Opens an e-wallet flow and returns the gateway redirect URL.
// @Tags         Invoices
// @Produce      json
// @Param        id path string true "Invoice id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/invoices/{id}/payment/vnpay [post]
func ApiPayByVNPay(svc *billing.Service) gin.HandlerFunc {
	return walletPayHandler(svc, types.WalletTypeVNPay)
}

// @Summary      Pay via Momo
// @Description  Opens an e-wallet flow and returns the gateway redirect URL.
// @Tags         Invoices
// @Produce      json
// @Param        id path string true "Invoice id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/invoices/{id}/payment/momo [post]
func ApiPayByMomo(svc *billing.Service) gin.HandlerFunc {
	return walletPayHandler(svc, types.WalletTypeMomo)
}

// @Summary      Revenue report
// @Description  Monthly revenue over paid invoices between two dates (YYYY-MM-DD).
// @Tags         Invoices
// @Produce      json
// @Param        from query string true "Range start"
// @Param        to   query string true "Range end, exclusive"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/invoices/revenue [get]
func ApiRevenue(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, err := time.Parse("2006-01-02", c.Query("from"))
		if err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, "invalid from date")
			return
		}
		to, err := time.Parse("2006-01-02", c.Query("to"))
		if err != nil {
			respondErr(c, response.APIResponseCodeBadRequest, "invalid to date")
			return
		}

		report, err := svc.Revenue(c.Request.Context(), from, to)
		if err != nil {
			respondErr(c, response.APIResponseCodeError, err.Error())
			return
		}
		respondOK(c, report)
	}
}

func RegisterInvoiceRoutes(r gin.IRouter, svc *billing.Service) {
	r.GET("/invoices", ApiListInvoices(svc))
	r.GET("/invoices/:id", ApiGetInvoice(svc))
	r.POST("/invoices/:id/payment/proof-image", ApiPayByProofImage(svc))
	r.POST("/invoices/:id/payment/vnpay", ApiPayByVNPay(svc))
	r.POST("/invoices/:id/payment/momo", ApiPayByMomo(svc))
}

func RegisterInvoiceAdminRoutes(r gin.IRouter, svc *billing.Service) {
	r.GET("/invoices/revenue", ApiRevenue(svc))
	r.POST("/proof-images/:id/approve", decisionHandler(billingErr, func(c *gin.Context) (any, error) {
		return svc.ApproveProofImage(c.Request.Context(), middleware.ResidentID(c), c.Param("id"))
	}))
	r.POST("/proof-images/:id/reject", decisionHandler(billingErr, func(c *gin.Context) (any, error) {
		return svc.RejectProofImage(c.Request.Context(), middleware.ResidentID(c), c.Param("id"))
	}))
}
