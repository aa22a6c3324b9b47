package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/mapper"
	"github.com/petsafe/petsafe-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrAppointmentNotFound is returned when the appointment does not exist or belongs to another user
var ErrAppointmentNotFound = errors.New("appointment not found")

// ICSProductID identifies the agenda export in calendar clients
const ICSProductID = "-//PetSafe//Agenda//ES"

// AppointmentDuration is the length given to exported appointments
const AppointmentDuration = 30 * time.Minute

// AppointmentService handles the authenticated user's agenda
type AppointmentService struct {
	appointmentRepo *repository.AppointmentRepository
	logger          *zap.Logger
	now             func() time.Time
}

// NewAppointmentService creates a new appointment service instance
func NewAppointmentService(appointmentRepo *repository.AppointmentRepository, logger *zap.Logger) *AppointmentService {
	return &AppointmentService{
		appointmentRepo: appointmentRepo,
		logger:          logger,
		now:             time.Now,
	}
}

// List returns the user's appointments ordered by date and time. A non-empty
// date keeps only that day.
func (s *AppointmentService) List(ctx context.Context, date string) ([]domain.AppointmentDTO, error) {
	userID, err := currentAccount(ctx)
	if err != nil {
		return nil, err
	}

	var appointments []domain.Appointment
	if date != "" {
		day, err := mapper.ParseDate(date)
		if err != nil {
			ve := &ValidationError{}
			ve.Add("date", msgInvalidDate)
			return nil, ve
		}
		appointments, err = s.appointmentRepo.ListByUserAndDate(ctx, userID, day)
		if err != nil {
			return nil, fmt.Errorf("failed to list appointments: %w", err)
		}
	} else {
		appointments, err = s.appointmentRepo.ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list appointments: %w", err)
		}
	}

	dtos := make([]domain.AppointmentDTO, len(appointments))
	for i := range appointments {
		dtos[i] = mapper.ToAppointmentDTO(&appointments[i])
	}
	return dtos, nil
}

// HighlightedDates returns the distinct days with appointments, limited to a
// YYYY-MM month when one is given
func (s *AppointmentService) HighlightedDates(ctx context.Context, month string) (*domain.HighlightedDatesResponse, error) {
	userID, err := currentAccount(ctx)
	if err != nil {
		return nil, err
	}

	var from, to time.Time
	if month != "" {
		from, err = time.ParseInLocation(domain.MonthLayout, month, time.UTC)
		if err != nil {
			ve := &ValidationError{}
			ve.Add("month", "Must be a month in YYYY-MM format")
			return nil, ve
		}
		to = from.AddDate(0, 1, 0)
	}

	dates, err := s.appointmentRepo.ListDatesByUser(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointment dates: %w", err)
	}

	resp := &domain.HighlightedDatesResponse{Dates: make([]string, len(dates))}
	for i, d := range dates {
		resp.Dates[i] = d.Format(domain.DateLayout)
	}
	return resp, nil
}

// parseAppointmentRequest validates an appointment form and returns its day and normalized time
func parseAppointmentRequest(req *domain.AppointmentRequest) (time.Time, string, error) {
	ve := &ValidationError{}

	var day time.Time
	if strings.TrimSpace(req.Date) == "" {
		ve.Add("date", msgRequired)
	} else if d, err := mapper.ParseDate(req.Date); err != nil {
		ve.Add("date", msgInvalidDate)
	} else {
		day = d
	}

	var clock string
	if strings.TrimSpace(req.Time) == "" {
		ve.Add("time", msgRequired)
	} else if c, msg := parseClock(req.Time); msg != "" {
		ve.Add("time", msg)
	} else {
		clock = c
	}

	if strings.TrimSpace(req.AnimalName) == "" {
		ve.Add("animalName", msgRequired)
	}
	if strings.TrimSpace(req.Reason) == "" {
		ve.Add("reason", msgRequired)
	}
	return day, clock, ve.OrNil()
}

// Create adds an appointment to the user's agenda
func (s *AppointmentService) Create(ctx context.Context, req *domain.AppointmentRequest) (*domain.AppointmentDTO, error) {
	userID, err := currentAccount(ctx)
	if err != nil {
		return nil, err
	}
	day, clock, err := parseAppointmentRequest(req)
	if err != nil {
		return nil, err
	}

	appointment := &domain.Appointment{
		UserID:     userID,
		Date:       day,
		Time:       clock,
		AnimalName: strings.TrimSpace(req.AnimalName),
		Reason:     strings.TrimSpace(req.Reason),
	}
	if err := s.appointmentRepo.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.logger.Info("appointment created",
		zap.String("appointment_id", appointment.ID.String()),
		zap.String("user_id", userID.String()))

	dto := mapper.ToAppointmentDTO(appointment)
	return &dto, nil
}

func (s *AppointmentService) get(ctx context.Context, userID, id uuid.UUID) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appointment, nil
}

// GetByID returns one of the user's appointments
func (s *AppointmentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.AppointmentDTO, error) {
	userID, err := currentAccount(ctx)
	if err != nil {
		return nil, err
	}
	appointment, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToAppointmentDTO(appointment)
	return &dto, nil
}

// Update replaces the fields of one of the user's appointments
func (s *AppointmentService) Update(ctx context.Context, id uuid.UUID, req *domain.AppointmentRequest) (*domain.AppointmentDTO, error) {
	userID, err := currentAccount(ctx)
	if err != nil {
		return nil, err
	}
	appointment, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	day, clock, err := parseAppointmentRequest(req)
	if err != nil {
		return nil, err
	}

	appointment.Date = day
	appointment.Time = clock
	appointment.AnimalName = strings.TrimSpace(req.AnimalName)
	appointment.Reason = strings.TrimSpace(req.Reason)
	if err := s.appointmentRepo.Update(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	dto := mapper.ToAppointmentDTO(appointment)
	return &dto, nil
}

// Delete removes one of the user's appointments
func (s *AppointmentService) Delete(ctx context.Context, id uuid.UUID) error {
	userID, err := currentAccount(ctx)
	if err != nil {
		return err
	}
	deleted, err := s.appointmentRepo.Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if !deleted {
		return ErrAppointmentNotFound
	}

	s.logger.Info("appointment deleted",
		zap.String("appointment_id", id.String()),
		zap.String("user_id", userID.String()))
	return nil
}

// ExportICS writes the user's whole agenda as an iCalendar document. Times are
// floating local times since appointments carry no time zone.
func (s *AppointmentService) ExportICS(ctx context.Context, w io.Writer) error {
	userID, err := currentAccount(ctx)
	if err != nil {
		return err
	}
	appointments, err := s.appointmentRepo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list appointments: %w", err)
	}

	ics := &icsWriter{w: w}
	ics.line("BEGIN:VCALENDAR")
	ics.line("VERSION:2.0")
	ics.line("PRODID:" + ICSProductID)
	ics.line("X-WR-CALNAME:PetSafe")
	ics.line("CALSCALE:GREGORIAN")

	stamp := s.now().UTC().Format("20060102T150405Z")
	for i := range appointments {
		a := &appointments[i]
		start, err := time.ParseInLocation("2006-01-02 15:04", a.Date.Format(domain.DateLayout)+" "+a.Time, time.UTC)
		if err != nil {
			s.logger.Warn("skipping appointment with invalid time",
				zap.String("appointment_id", a.ID.String()),
				zap.String("time", a.Time))
			continue
		}

		ics.line("BEGIN:VEVENT")
		ics.line("UID:" + a.ID.String() + "@petsafe")
		ics.line("DTSTAMP:" + stamp)
		ics.line("DTSTART:" + start.Format("20060102T150405"))
		ics.line("DTEND:" + start.Add(AppointmentDuration).Format("20060102T150405"))
		ics.line("SUMMARY:" + escapeICSText(a.AnimalName))
		ics.line("DESCRIPTION:" + escapeICSText(a.Reason))
		ics.line("END:VEVENT")
	}

	ics.line("END:VCALENDAR")
	return ics.err
}

// icsWriter writes CRLF terminated content lines and keeps the first error
type icsWriter struct {
	w   io.Writer
	err error
}

func (c *icsWriter) line(s string) {
	if c.err != nil {
		return
	}
	_, c.err = io.WriteString(c.w, s+"\r\n")
}

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

func escapeICSText(s string) string {
	return icsEscaper.Replace(s)
}
