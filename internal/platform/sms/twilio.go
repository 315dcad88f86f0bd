package sms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/oceanview/backend/pkg/config"
)

var ErrInvalidOTP = errors.New("sms: invalid or expired otp")

// Verifier sends one-time passwords over SMS and checks the code the
// user types back.
type Verifier interface {
	SendOTP(phoneNumber string) error
	CheckOTP(phoneNumber, code string) error
}

// TwilioVerifier implements Verifier on the Twilio Verify API.
type TwilioVerifier struct {
	cfg    *cfgpkg.TwilioConfig
	log    *zap.SugaredLogger
	client *twilio.RestClient
}

func NewTwilioVerifier(cfg *cfgpkg.Config, log *zap.SugaredLogger) *TwilioVerifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.Twilio.AccountSID,
		Password: cfg.Twilio.AuthToken,
	})
	return &TwilioVerifier{cfg: &cfg.Twilio, log: log, client: client}
}

// normalize converts a local phone number to E.164 using the configured
// country code, e.g. 0912345678 -> +84912345678.
func (v *TwilioVerifier) normalize(phoneNumber string) string {
	if strings.HasPrefix(phoneNumber, "+") {
		return phoneNumber
	}
	return v.cfg.CountryCode + strings.TrimPrefix(phoneNumber, "0")
}

func (v *TwilioVerifier) SendOTP(phoneNumber string) error {
	params := &verify.CreateVerificationParams{}
	params.SetTo(v.normalize(phoneNumber))
	params.SetChannel("sms")

	if _, err := v.client.VerifyV2.CreateVerification(v.cfg.VerifyServiceSID, params); err != nil {
		return fmt.Errorf("sms: send otp: %w", err)
	}
	return nil
}

func (v *TwilioVerifier) CheckOTP(phoneNumber, code string) error {
	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(v.normalize(phoneNumber))
	params.SetCode(code)

	resp, err := v.client.VerifyV2.CreateVerificationCheck(v.cfg.VerifyServiceSID, params)
	if err != nil {
		return fmt.Errorf("sms: check otp: %w", err)
	}
	if resp.Status == nil || *resp.Status != "approved" {
		return ErrInvalidOTP
	}
	return nil
}

var Module = fx.Options(
	fx.Provide(
		NewTwilioVerifier,
		func(v *TwilioVerifier) Verifier { return v },
	),
)
