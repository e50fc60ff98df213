package providers

import (
	"context"

	"heat-alert-service/internal/logging"
	"heat-alert-service/pkg/voice"
)

// TwilioCaller places voice calls that speak the alert text.
type TwilioCaller struct {
	client *voice.Client
	logger *logging.Logger
}

func NewTwilioCaller(accountSID, authToken, fromNumber string, logger *logging.Logger) *TwilioCaller {
	return &TwilioCaller{
		client: voice.NewClient(accountSID, authToken, fromNumber),
		logger: logger,
	}
}

// PlaceCall dials recipient. The Twilio client has no context support; ctx is
// checked before dialing.
func (t *TwilioCaller) PlaceCall(ctx context.Context, message, recipient string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sid, err := t.client.Call(recipient, message)
	if err != nil {
		return err
	}
	t.logger.Infof("Call initiated: sid=%s", sid)
	return nil
}

// LogCaller only logs the call. Used when telephony is not configured.
type LogCaller struct {
	Logger *logging.Logger
}

func (l LogCaller) PlaceCall(_ context.Context, message, recipient string) error {
	l.Logger.Warnf("Telephony not configured, would call %q with: %s", recipient, message)
	return nil
}
