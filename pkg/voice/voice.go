package voice

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Client places outbound voice calls through Twilio.
type Client struct {
	rest *twilio.RestClient
	from string
}

func NewClient(accountSID, authToken, fromNumber string) *Client {
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Client{rest: rest, from: fromNumber}
}

// SayTwiML wraps message in a TwiML document that speaks it.
func SayTwiML(message string) string {
	var b strings.Builder
	b.WriteString("<Response><Say>")
	_ = xml.EscapeText(&b, []byte(message))
	b.WriteString("</Say></Response>")
	return b.String()
}

// Call dials toNumber and speaks message. It returns the call SID.
func (c *Client) Call(toNumber, message string) (string, error) {
	if !strings.HasPrefix(toNumber, "+") {
		return "", fmt.Errorf("invalid phone number: %s", toNumber)
	}

	params := &twilioApi.CreateCallParams{}
	params.SetTo(toNumber)
	params.SetFrom(c.from)
	params.SetTwiml(SayTwiML(message))

	resp, err := c.rest.Api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("failed to place call to %s: %w", toNumber, err)
	}
	if resp == nil || resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}
