// file: services/registration_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inohax-registration/models"
	"inohax-registration/store"
)

// fakeNotifier records confirmation sends.
type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) SendConfirmation(toEmail, _, _ string) {
	f.sent = append(f.sent, toEmail)
}

// fakePublisher records published registrations.
type fakePublisher struct {
	published []models.Registration
}

func (f *fakePublisher) PublishRegistration(reg models.Registration) {
	f.published = append(f.published, reg)
}

func validRequest() *models.RegistrationRequest {
	return &models.RegistrationRequest{
		TeamName:        "Team Rocket",
		TeamLeaderName:  "Jessie",
		TeamLeaderPhone: "9876543210",
		TeamLeaderEmail: "jessie@example.com",
		TeamMembers: []models.TeamMember{
			{Name: "James"},
			{Name: "Meowth", SocialMediaLink: "https://twitter.com/meowth"},
		},
		InovactSocialLink: "https://api.inovact.in/v1/post?id=12345",
	}
}

func newTestService(conn *store.FakeConnector, regs *store.FakeRegistrationStore, notifier *fakeNotifier, publisher *fakePublisher) *RegistrationService {
	var pub Publisher
	if publisher != nil {
		pub = publisher
	}
	return NewRegistrationService(conn, regs, notifier, pub, time.Time{}, false)
}

// Test: a valid payload is saved, emailed, published, and echoed back.
func TestSubmit_Success(t *testing.T) {
	conn := &store.FakeConnector{ConnectedVal: true}
	regs := store.NewFakeRegistrationStore()
	notifier := &fakeNotifier{}
	publisher := &fakePublisher{}
	svc := newTestService(conn, regs, notifier, publisher)

	reg, saved, err := svc.Submit(context.Background(), validRequest(), false)

	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, "Team Rocket", reg.TeamName)
	assert.Equal(t, "Jessie", reg.TeamLeaderName)
	assert.Equal(t, "jessie@example.com", reg.TeamLeaderEmail)
	assert.False(t, reg.CreatedAt.IsZero())
	assert.Len(t, regs.Registrations, 1)
	assert.Equal(t, []string{"jessie@example.com"}, notifier.sent)
	assert.Len(t, publisher.published, 1)
}

// Test: team member order is preserved exactly as submitted.
func TestSubmit_PreservesMemberOrder(t *testing.T) {
	conn := &store.FakeConnector{ConnectedVal: true}
	regs := store.NewFakeRegistrationStore()
	svc := newTestService(conn, regs, &fakeNotifier{}, nil)

	reg, _, err := svc.Submit(context.Background(), validRequest(), false)

	require.NoError(t, err)
	require.Len(t, reg.TeamMembers, 2)
	assert.Equal(t, "James", reg.TeamMembers[0].Name)
	assert.Equal(t, "Meowth", reg.TeamMembers[1].Name)
}

// Test: test registrations go to the isolated collection and send no email.
func TestSubmit_TestMode(t *testing.T) {
	conn := &store.FakeConnector{ConnectedVal: true}
	regs := store.NewFakeRegistrationStore()
	notifier := &fakeNotifier{}
	publisher := &fakePublisher{}
	svc := newTestService(conn, regs, notifier, publisher)

	_, saved, err := svc.Submit(context.Background(), validRequest(), true)

	require.NoError(t, err)
	assert.True(t, saved)
	assert.Empty(t, regs.Registrations)
	assert.Len(t, regs.TestRegistrations, 1)
	assert.Empty(t, notifier.sent, "test registrations must not send email")
	assert.Empty(t, publisher.published, "test registrations must not hit the feed")
}

// Test: the database being unreachable still yields a successful submission.
func TestSubmit_DegradedMode_NotConnected(t *testing.T) {
	conn := &store.FakeConnector{ConnectedVal: false}
	regs := store.NewFakeRegistrationStore()
	notifier := &fakeNotifier{}
	svc := newTestService(conn, regs, notifier, nil)

	reg, saved, err := svc.Submit(context.Background(), validRequest(), false)

	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, "Team Rocket", reg.TeamName)
	assert.Empty(t, regs.Registrations, "nothing should be written when disconnected")
	assert.Equal(t, []string{"jessie@example.com"}, notifier.sent, "email still goes out in degraded mode")
}

// Test: a failing insert is swallowed and the record echoed back.
func TestSubmit_DegradedMode_SaveFails(t *testing.T) {
	conn := &store.FakeConnector{ConnectedVal: true}
	regs := store.NewFakeRegistrationStore()
	regs.InsertErr = assert.AnError
	svc := newTestService(conn, regs, &fakeNotifier{}, nil)

	reg, saved, err := svc.Submit(context.Background(), validRequest(), false)

	require.NoError(t, err, "save failures must not surface to the caller")
	assert.False(t, saved)
	assert.Equal(t, "Team Rocket", reg.TeamName)
}

// Test: submitting the identical payload twice creates two distinct records.
// Dedup is intentionally absent.
func TestSubmit_NoDeduplication(t *testing.T) {
	conn := &store.FakeConnector{ConnectedVal: true}
	regs := store.NewFakeRegistrationStore()
	svc := newTestService(conn, regs, &fakeNotifier{}, nil)

	first, _, err := svc.Submit(context.Background(), validRequest(), false)
	require.NoError(t, err)
	second, _, err := svc.Submit(context.Background(), validRequest(), false)
	require.NoError(t, err)

	assert.Len(t, regs.Registrations, 2)
	assert.NotEqual(t, first.ID, second.ID)
}

// Test: submissions after the cutoff are rejected independent of payload.
func TestSubmit_WindowClosed(t *testing.T) {
	conn := &store.FakeConnector{ConnectedVal: true}
	regs := store.NewFakeRegistrationStore()
	svc := NewRegistrationService(conn, regs, &fakeNotifier{}, nil, time.Now().Add(-time.Hour), false)

	_, _, err := svc.Submit(context.Background(), validRequest(), false)

	assert.ErrorIs(t, err, ErrWindowClosed)
	assert.Empty(t, regs.Registrations)
}

// Test: the cutoff does not apply to test registrations.
func TestSubmit_WindowClosed_TestModeStillOpen(t *testing.T) {
	conn := &store.FakeConnector{ConnectedVal: true}
	regs := store.NewFakeRegistrationStore()
	svc := NewRegistrationService(conn, regs, &fakeNotifier{}, nil, time.Now().Add(-time.Hour), false)

	_, _, err := svc.Submit(context.Background(), validRequest(), true)

	assert.NoError(t, err)
	assert.Len(t, regs.TestRegistrations, 1)
}

// Test: the global disable switch rejects everything, including tests.
func TestSubmit_RegistrationsStopped(t *testing.T) {
	conn := &store.FakeConnector{ConnectedVal: true}
	regs := store.NewFakeRegistrationStore()
	svc := NewRegistrationService(conn, regs, &fakeNotifier{}, nil, time.Time{}, true)

	_, _, err := svc.Submit(context.Background(), validRequest(), false)
	assert.ErrorIs(t, err, ErrRegistrationsStopped)

	_, _, err = svc.Submit(context.Background(), validRequest(), true)
	assert.ErrorIs(t, err, ErrRegistrationsStopped)
}

// ---------------- link validation ----------------

func TestValidateInovactLink(t *testing.T) {
	tests := []struct {
		name    string
		link    string
		wantErr string
	}{
		{"empty link is fine", "", ""},
		{"valid link", "https://inovact.in/post?id=abc", ""},
		{"valid subdomain link", "https://api.inovact.in/v1/post?id=12345", ""},
		{"not a url", "not a url at all", "Please enter a valid URL for the Inovact Social link"},
		{"missing scheme", "inovact.in/post?id=1", "Please enter a valid URL for the Inovact Social link"},
		{"wrong domain", "https://example.com/post?id=1", "Please enter a valid Inovact Social link (e.g., https://inovact.in/...)"},
		{"lookalike domain", "https://notinovact.in/post?id=1", "Please enter a valid Inovact Social link (e.g., https://inovact.in/...)"},
		{"missing id", "https://inovact.in/post", "Invalid Inovact Social link. Please provide a link with an ID parameter (e.g., ?id=...)"},
		{"empty id", "https://inovact.in/post?id=", "Invalid Inovact Social link. Please provide a link with an ID parameter (e.g., ?id=...)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateInovactLink(tt.link)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

// Test: a rejected link never reaches the store or the notifier.
func TestSubmit_InvalidLinkRejected(t *testing.T) {
	conn := &store.FakeConnector{ConnectedVal: true}
	regs := store.NewFakeRegistrationStore()
	notifier := &fakeNotifier{}
	svc := newTestService(conn, regs, notifier, nil)

	req := validRequest()
	req.InovactSocialLink = "https://example.com/post?id=1"

	_, _, err := svc.Submit(context.Background(), req, false)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "inovactSocialLink", verr.Field)
	assert.Empty(t, regs.Registrations)
	assert.Empty(t, notifier.sent)
}
