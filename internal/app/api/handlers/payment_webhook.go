package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oceanview/backend/internal/app/service/billing"
	"github.com/oceanview/backend/internal/models"
	"github.com/oceanview/backend/internal/platform/payment"
	"github.com/oceanview/backend/pkg/types"
)

func queryParams(c *gin.Context) map[string]string {
	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

// @Summary      VNPay return URL
// @Description  Landing endpoint the gateway redirects the payer back to. Applies the payment if the signature checks out.
// @Tags         Payments
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /payment/vnpay/return [get]
func ApiVNPayReturn(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.HandleGatewayCallback(c.Request.Context(), types.WalletTypeVNPay, queryParams(c))
		switch {
		case err == nil, errors.Is(err, models.ErrInvoiceAlreadyPaid):
			respondOK(c, gin.H{"message": "payment recorded"})
		default:
			billingErr(c, err)
		}
	}
}

// vnpayIPNResponse follows the gateway's server-to-server contract. The
// gateway retries until it sees RspCode "00" or a terminal code.
func vnpayIPNResponse(err error) gin.H {
	switch {
	case err == nil:
		return gin.H{"RspCode": "00", "Message": "Confirm Success"}
	case errors.Is(err, models.ErrInvoiceAlreadyPaid):
		return gin.H{"RspCode": "02", "Message": "Order already confirmed"}
	case errors.Is(err, billing.ErrUnknownReference):
		return gin.H{"RspCode": "01", "Message": "Order not found"}
	case errors.Is(err, billing.ErrAmountMismatch):
		return gin.H{"RspCode": "04", "Message": "Invalid amount"}
	case errors.Is(err, payment.ErrSignatureMismatch):
		return gin.H{"RspCode": "97", "Message": "Invalid signature"}
	default:
		return gin.H{"RspCode": "99", "Message": "Unknown error"}
	}
}

// @Summary      VNPay IPN
// @Tags         Payments
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /payment/vnpay/ipn [get]
func ApiVNPayIPN(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.HandleGatewayCallback(c.Request.Context(), types.WalletTypeVNPay, queryParams(c))
		c.JSON(http.StatusOK, vnpayIPNResponse(err))
	}
}

// @Summary      Momo IPN
// @Description  Server-to-server notification from Momo. Responds 204 regardless of outcome, as the gateway expects.
// @Tags         Payments
// @Accept       json
// @Router       /payment/momo/ipn [post]
func ApiMomoIPN(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Momo posts mixed-type JSON. json.Number keeps amounts and
		// result codes byte-exact for signature verification.
		var body map[string]any
		dec := json.NewDecoder(c.Request.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		params := make(map[string]string, len(body))
		for key, value := range body {
			switch v := value.(type) {
			case string:
				params[key] = v
			case json.Number:
				params[key] = v.String()
			default:
				params[key] = fmt.Sprint(v)
			}
		}

		// The gateway only cares that the notification was received.
		// Failures are logged inside the service.
		_ = svc.HandleGatewayCallback(c.Request.Context(), types.WalletTypeMomo, params)
		c.Status(http.StatusNoContent)
	}
}

// RegisterPaymentWebhookRoutes mounts the unauthenticated gateway callbacks.
func RegisterPaymentWebhookRoutes(r gin.IRouter, svc *billing.Service) {
	r.GET("/payment/vnpay/return", ApiVNPayReturn(svc))
	r.GET("/payment/vnpay/ipn", ApiVNPayIPN(svc))
	r.POST("/payment/momo/ipn", ApiMomoIPN(svc))
}
