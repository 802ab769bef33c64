package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sendgrid/rest"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Email is a single outgoing message.
type Email struct {
	ToAddress string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

type EmailSender interface {
	SendEmail(ctx context.Context, msg Email) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

type sendGridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridSender delivers email through the SendGrid v3 API.
type SendGridSender struct {
	client   sendGridClient
	fromName string
	fromAddr string
	logger   *slog.Logger
}

func NewSendGridSender(apiKey, fromAddr, fromName string, logger *slog.Logger) (*SendGridSender, error) {
	if apiKey == "" || fromAddr == "" {
		return nil, fmt.Errorf("sendgrid api key and sender address are required")
	}
	if fromName == "" {
		fromName = "ReservaJá"
	}
	return &SendGridSender{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		fromAddr: fromAddr,
		logger:   resolveLogger(logger),
	}, nil
}

func (s *SendGridSender) SendEmail(ctx context.Context, msg Email) error {
	from := mail.NewEmail(s.fromName, s.fromAddr)
	to := mail.NewEmail(msg.ToName, msg.ToAddress)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	s.logger.DebugContext(ctx, "email sent", "subject", msg.Subject, "status", resp.StatusCode)
	return nil
}

type twilioMessageClient interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioSender delivers SMS through the Twilio messaging API.
type TwilioSender struct {
	client     twilioMessageClient
	fromNumber string
	logger     *slog.Logger
}

func NewTwilioSender(accountSID, authToken, fromNumber string, logger *slog.Logger) (*TwilioSender, error) {
	if accountSID == "" || authToken == "" || fromNumber == "" {
		return nil, fmt.Errorf("twilio account sid, auth token and sender number are required")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSID,
		Password:   authToken,
		AccountSid: accountSID,
	})
	return &TwilioSender{client: client.Api, fromNumber: fromNumber, logger: resolveLogger(logger)}, nil
}

func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	if !strings.HasPrefix(to, "+") {
		return fmt.Errorf("phone number %q is not in E.164 format", to)
	}
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.fromNumber)
	params.SetBody(body)

	resp, err := s.client.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		s.logger.DebugContext(ctx, "sms sent", "sid", *resp.Sid)
	}
	return nil
}
