package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kisan-advisory-be/pkg/errorsx"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// whatsappBodyLimit is Twilio's cap on a WhatsApp message body.
const whatsappBodyLimit = 1600

type messageCreator interface {
	CreateMessage(params *api.CreateMessageParams) (*api.ApiV2010Message, error)
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// TwilioDeliverer sends WhatsApp messages through the Twilio REST API. Long
// replies go out as several messages.
type TwilioDeliverer struct {
	cfg    TwilioConfig
	client messageCreator
}

func NewTwilioDeliverer(cfg TwilioConfig) (*TwilioDeliverer, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" {
		return nil, errors.New("missing twilio credentials")
	}
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioDeliverer{cfg: cfg, client: rest.Api}, nil
}

func (d *TwilioDeliverer) Deliver(ctx context.Context, r Reply) error {
	if r.To == "" {
		return errorsx.Wrap(errors.New("reply has no recipient"), errorsx.ReasonInvalidPayload)
	}
	for i, part := range Split(r.Text, whatsappBodyLimit) {
		if err := ctx.Err(); err != nil {
			return err
		}
		params := &api.CreateMessageParams{}
		params.SetTo(whatsappAddress(r.To))
		params.SetFrom(whatsappAddress(d.cfg.FromNumber))
		params.SetBody(part)
		if _, err := d.client.CreateMessage(params); err != nil {
			return errorsx.Wrap(fmt.Errorf("twilio send part %d: %w", i+1, err), errorsx.ReasonDeliverySend)
		}
	}
	return nil
}

func whatsappAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
