package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"reservaja/internal/entities"
)

//go:embed templates/reservation_email.html
var templateFS embed.FS

var reservationEmailTemplate = template.Must(template.ParseFS(templateFS, "templates/reservation_email.html"))

const (
	noticeTimeLayout = "02 Jan 2006 15:04 MST"
	smsTimeLayout    = "02/01 15:04"
	sendTimeout      = 30 * time.Second
)

// Notifier tells users about their reservations. Implementations must not
// block the caller on delivery.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, notice entities.ReservationNotice)
	ReservationReminder(ctx context.Context, notice entities.ReservationNotice)
}

// NopNotifier discards every notice.
type NopNotifier struct{}

func (NopNotifier) ReservationConfirmed(context.Context, entities.ReservationNotice) {}
func (NopNotifier) ReservationReminder(context.Context, entities.ReservationNotice) {}

type emailData struct {
	Subject            string
	Heading            string
	Intro              string
	UserName           string
	ReservationID      int64
	RoomName           string
	StartTimeFormatted string
	EndTimeFormatted   string
	CurrentYear        int
}

// SenderService renders notices and delivers them in the background over
// email and, when the user has a phone number, SMS. Either sender may be nil.
type SenderService struct {
	email    EmailSender
	sms      SMSSender
	location *time.Location
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewSenderService(email EmailSender, sms SMSSender, location *time.Location, logger *slog.Logger) *SenderService {
	if location == nil {
		location = time.UTC
	}
	return &SenderService{email: email, sms: sms, location: location, logger: resolveLogger(logger)}
}

func (s *SenderService) ReservationConfirmed(ctx context.Context, n entities.ReservationNotice) {
	data := s.buildEmailData(n,
		fmt.Sprintf("Your reservation of %s is confirmed", n.RoomName),
		"Reservation confirmed",
		"Your room reservation has been confirmed.",
	)
	s.dispatch(ctx, n, data, "")
}

func (s *SenderService) ReservationReminder(ctx context.Context, n entities.ReservationNotice) {
	data := s.buildEmailData(n,
		fmt.Sprintf("Reminder: %s starts at %s", n.RoomName, n.StartTime.In(s.location).Format(noticeTimeLayout)),
		"Upcoming reservation",
		"This is a reminder that your room reservation starts soon.",
	)
	sms := fmt.Sprintf("ReservaJá: your reservation #%d of %s starts at %s.",
		n.ReservationID, n.RoomName, n.StartTime.In(s.location).Format(smsTimeLayout))
	s.dispatch(ctx, n, data, sms)
}

// Wait blocks until every in-flight delivery has finished.
func (s *SenderService) Wait() {
	s.wg.Wait()
}

func (s *SenderService) buildEmailData(n entities.ReservationNotice, subject, heading, intro string) emailData {
	return emailData{
		Subject:            subject,
		Heading:            heading,
		Intro:              intro,
		UserName:           n.UserName,
		ReservationID:      n.ReservationID,
		RoomName:           n.RoomName,
		StartTimeFormatted: n.StartTime.In(s.location).Format(noticeTimeLayout),
		EndTimeFormatted:   n.EndTime.In(s.location).Format(noticeTimeLayout),
		CurrentYear:        time.Now().In(s.location).Year(),
	}
}

func (s *SenderService) dispatch(ctx context.Context, n entities.ReservationNotice, data emailData, smsBody string) {
	var msg *Email
	if s.email != nil && n.UserEmail != "" {
		m, err := renderEmail(n, data)
		if err != nil {
			s.logger.ErrorContext(ctx, "render reservation email", "reservation_id", n.ReservationID, "error", err)
		} else {
			msg = &m
		}
	}
	sendSMS := s.sms != nil && smsBody != "" && n.UserPhone != ""
	if msg == nil && !sendSMS {
		return
	}

	// Delivery outlives the request that triggered it.
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sendCtx, cancel := context.WithTimeout(bg, sendTimeout)
		defer cancel()

		if msg != nil {
			if err := s.email.SendEmail(sendCtx, *msg); err != nil {
				s.logger.WarnContext(sendCtx, "reservation email failed", "reservation_id", n.ReservationID, "error", err)
			}
		}
		if sendSMS {
			if err := s.sms.SendSMS(sendCtx, n.UserPhone, smsBody); err != nil {
				s.logger.WarnContext(sendCtx, "reservation sms failed", "reservation_id", n.ReservationID, "error", err)
			}
		}
	}()
}

func renderEmail(n entities.ReservationNotice, data emailData) (Email, error) {
	var html bytes.Buffer
	if err := reservationEmailTemplate.Execute(&html, data); err != nil {
		return Email{}, err
	}
	plain := fmt.Sprintf(
		"Hello %s,\n\n%s\n\nReservation: #%d\nRoom: %s\nStart: %s\nEnd: %s\n",
		data.UserName, data.Intro, data.ReservationID, data.RoomName,
		data.StartTimeFormatted, data.EndTimeFormatted,
	)
	return Email{
		ToAddress: n.UserEmail,
		ToName:    n.UserName,
		Subject:   data.Subject,
		PlainText: plain,
		HTML:      html.String(),
	}, nil
}
