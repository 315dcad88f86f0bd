package momo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/oceanview/backend/internal/platform/payment"
	cfgpkg "github.com/oceanview/backend/pkg/config"
	"github.com/oceanview/backend/pkg/tool"
)

var (
	ErrSignatureMismatch = payment.ErrSignatureMismatch
	ErrGatewayRejected   = errors.New("momo: gateway rejected pay request")
)

const successResultCode = "0"

// Client talks to the Momo create-payment API and authenticates its IPN
// callbacks. Requests and callbacks are signed with HMAC-SHA256 over a
// canonical key=value string.
type Client struct {
	cfg  *cfgpkg.MomoConfig
	log  *zap.SugaredLogger
	http *http.Client
}

func New(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	return &Client{
		cfg:  &cfg.Momo,
		log:  log,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) sign(raw string) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.SecretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

type createResponse struct {
	PayURL     string `json:"payUrl"`
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
}

func (c *Client) CreatePayURL(ctx context.Context, req *payment.PayURLRequest) (string, error) {
	requestID := tool.GenerateUUIDV7()
	amount := strconv.FormatInt(req.Amount, 10)

	raw := fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		c.cfg.AccessKey, amount, c.cfg.IPNURL, req.ReferenceNumber, req.OrderInfo,
		c.cfg.PartnerCode, c.cfg.RedirectURL, requestID, c.cfg.RequestType,
	)

	body := map[string]string{
		"partnerCode": c.cfg.PartnerCode,
		"partnerName": c.cfg.PartnerName,
		"storeId":     c.cfg.StoreID,
		"requestId":   requestID,
		"amount":      amount,
		"orderId":     req.ReferenceNumber,
		"orderInfo":   req.OrderInfo,
		"redirectUrl": c.cfg.RedirectURL,
		"ipnUrl":      c.cfg.IPNURL,
		"lang":        c.cfg.Lang,
		"extraData":   "",
		"requestType": c.cfg.RequestType,
		"signature":   c.sign(raw),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("momo: marshal pay request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("momo: build pay request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("momo: pay request failed: %w", err)
	}
	defer resp.Body.Close()

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("momo: decode pay response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || out.PayURL == "" {
		c.log.Errorw("momo pay request rejected",
			"status", resp.StatusCode, "result_code", out.ResultCode, "message", out.Message)
		return "", ErrGatewayRejected
	}
	return out.PayURL, nil
}

// VerifyCallback authenticates an IPN callback against the signed field set
// Momo documents for payment confirmations.
func (c *Client) VerifyCallback(params map[string]string) (*payment.CallbackData, error) {
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%s&resultCode=%s&transId=%s",
		c.cfg.AccessKey, params["amount"], params["extraData"], params["message"],
		params["orderId"], params["orderInfo"], params["orderType"], params["partnerCode"],
		params["payType"], params["requestId"], params["responseTime"], params["resultCode"],
		params["transId"],
	)

	expected := c.sign(raw)
	if !hmac.Equal([]byte(expected), []byte(params["signature"])) {
		c.log.Errorw("momo callback signature mismatch", "order_id", params["orderId"])
		return nil, ErrSignatureMismatch
	}

	amount, err := strconv.ParseInt(params["amount"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("momo: invalid amount %q: %w", params["amount"], err)
	}

	return &payment.CallbackData{
		ReferenceNumber: params["orderId"],
		Amount:          amount,
		TransactionID:   params["transId"],
		Success:         params["resultCode"] == successResultCode,
		Raw:             params,
	}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
