// Package services contains the business logic behind the HTTP handlers.
// File: services/registration_service.go
package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"inohax-registration/logger"
	"inohax-registration/models"
	"inohax-registration/store"
)

// ---------------- error taxonomy ----------------

// ValidationError is a user-facing input problem. It always reaches the
// caller with a clause-specific message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Window errors surfaced by Submit.
var (
	ErrWindowClosed         = errors.New("registration period has ended")
	ErrRegistrationsStopped = errors.New("registrations have been stopped")
)

// ---------------- collaborator contracts ----------------

// Connector is the degraded-mode connection contract: Connect never fails the
// caller, it only reports whether persistence is available.
type Connector interface {
	Connect(ctx context.Context) bool
}

// Notifier sends the confirmation email, best effort.
type Notifier interface {
	SendConfirmation(toEmail, leaderName, teamName string)
}

// Publisher pushes accepted registrations to live listeners (admin feed).
type Publisher interface {
	PublishRegistration(reg models.Registration)
}

// ---------------- registration service ----------------

// RegistrationService runs the intake path: validate, persist if possible,
// notify, and always hand a definitive record back to the caller.
type RegistrationService struct {
	conn          Connector
	registrations store.RegistrationStore
	notifier      Notifier
	publisher     Publisher

	closeTime time.Time // zero means no cutoff
	disabled  bool

	// overridable in tests
	now func() time.Time
}

// NewRegistrationService wires the intake path. publisher may be nil when no
// live feed is running.
func NewRegistrationService(conn Connector, registrations store.RegistrationStore, notifier Notifier, publisher Publisher, closeTime time.Time, disabled bool) *RegistrationService {
	return &RegistrationService{
		conn:          conn,
		registrations: registrations,
		notifier:      notifier,
		publisher:     publisher,
		closeTime:     closeTime,
		disabled:      disabled,
		now:           time.Now,
	}
}

// Submit processes one registration. When test is true the record goes to the
// isolated test collection, the window cutoff is skipped, and no email is
// sent.
//
// The returned bool reports whether the record was durably saved. A failed
// save is deliberately not an error: the submitter still gets their record
// echoed back, per the degraded-mode contract.
func (s *RegistrationService) Submit(ctx context.Context, req *models.RegistrationRequest, test bool) (*models.Registration, bool, error) {
	if s.disabled {
		return nil, false, ErrRegistrationsStopped
	}
	if !test && !s.closeTime.IsZero() && s.now().After(s.closeTime) {
		return nil, false, ErrWindowClosed
	}

	if err := validateInovactLink(req.InovactSocialLink); err != nil {
		return nil, false, err
	}

	reg := req.ToRegistration(s.now())

	saved := false
	if s.conn.Connect(ctx) {
		var err error
		if test {
			err = s.registrations.InsertTest(ctx, reg)
		} else {
			err = s.registrations.Insert(ctx, reg)
		}
		if err != nil {
			// Fall back to the in-memory record; the submitter still
			// sees success.
			logger.Warn.Printf("[Submit] could not save registration for team %q: %v", reg.TeamName, err)
		} else {
			saved = true
		}
	} else {
		logger.Warn.Printf("[Submit] database unavailable, processing registration for team %q without save", reg.TeamName)
	}

	if test {
		logger.Info.Printf("[Submit] test mode: skipping confirmation email for %s", reg.TeamLeaderEmail)
	} else {
		s.notifier.SendConfirmation(reg.TeamLeaderEmail, reg.TeamLeaderName, reg.TeamName)
		if s.publisher != nil {
			s.publisher.PublishRegistration(*reg)
		}
		PublishRegistrationAccepted(saved)
	}

	logger.Info.Printf("[Submit] registration accepted for team %q (saved=%v, test=%v)", reg.TeamName, saved, test)
	return reg, saved, nil
}

// ---------------- link validation ----------------

// Hostnames accepted for the Inovact social link.
const inovactDomain = "inovact.in"

// validateInovactLink checks an optional Inovact Social link. Each clause
// fails with its own message so the submitter knows what to fix.
func validateInovactLink(link string) error {
	if link == "" {
		return nil
	}

	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{
			Field:   "inovactSocialLink",
			Message: "Please enter a valid URL for the Inovact Social link",
		}
	}

	host := u.Hostname()
	if host != inovactDomain && !strings.HasSuffix(host, "."+inovactDomain) {
		return &ValidationError{
			Field:   "inovactSocialLink",
			Message: "Please enter a valid Inovact Social link (e.g., https://inovact.in/...)",
		}
	}

	if u.Query().Get("id") == "" {
		return &ValidationError{
			Field:   "inovactSocialLink",
			Message: "Invalid Inovact Social link. Please provide a link with an ID parameter (e.g., ?id=...)",
		}
	}

	return nil
}
