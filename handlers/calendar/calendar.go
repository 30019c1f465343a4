// Package calendar schedules Google Calendar events with a Google Meet
// conference attached.
package calendar

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/CerealNotFound/function-calling-server/actions"
	"github.com/CerealNotFound/function-calling-server/core/protocol"
	"github.com/CerealNotFound/function-calling-server/integration"
)

const (
	// Action is the catalogue name this handler serves.
	Action = "scheduleMeeting"
	// DefaultBaseURL is the Google APIs root.
	DefaultBaseURL = "https://www.googleapis.com"
	// DefaultCalendar is the calendar events are inserted into.
	DefaultCalendar = "primary"
)

// Event types, by attendee count excluding the host.
const (
	EventSolo     = "solo"
	EventDuo      = "duo"
	EventMultiple = "multiple"
)

// Attendee is one invited participant.
type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Meeting is the validated argument payload.
type Meeting struct {
	Summary       string     `json:"summary"`
	Description   string     `json:"description"`
	StartDateTime string     `json:"startDateTime"`
	EndDateTime   string     `json:"endDateTime"`
	TimeZone      string     `json:"timeZone"`
	Attendees     []Attendee `json:"attendees"`
	EventType     string     `json:"eventType"`
}

// Result is the success payload recorded for the model.
type Result struct {
	EventID  string `json:"eventId"`
	HTMLLink string `json:"htmlLink,omitempty"`
	MeetLink string `json:"meetLink,omitempty"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

// Handler inserts events through the Calendar v3 API.
type Handler struct {
	client   *integration.Client
	calendar string
}

// Option configures a Handler.
type Option func(*Handler)

// WithCalendar targets a calendar other than the user's primary one.
func WithCalendar(id string) Option {
	return func(h *Handler) { h.calendar = id }
}

// New creates a Handler.
func New(client *integration.Client, opts ...Option) *Handler {
	h := &Handler{client: client, calendar: DefaultCalendar}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register binds a Handler to Action in set.
func Register(set *actions.HandlerSet, client *integration.Client, opts ...Option) error {
	return set.Register(Action, New(client, opts...))
}

func (h *Handler) Execute(ctx context.Context, args actions.Arguments) protocol.Outcome {
	var m Meeting
	if err := args.Decode(&m); err != nil {
		return protocol.HandlerFailure(Action, protocol.CauseInvalidArguments, err.Error())
	}
	if err := m.check(); err != nil {
		return protocol.HandlerFailure(Action, protocol.CauseInvalidArguments, err.Error())
	}

	path := fmt.Sprintf("/calendar/v3/calendars/%s/events", url.PathEscape(h.calendar))
	query := url.Values{
		"conferenceDataVersion": {"1"},
		"sendUpdates":           {"all"},
	}

	res, err := h.client.Post(ctx, path, query, m.event())
	if err != nil {
		return integration.Fail(Action, err)
	}

	id := res.Get("id").String()
	if id == "" {
		return protocol.HandlerFailure(Action, protocol.CauseMalformedResponse, "response carries no event id")
	}

	return protocol.Success(Action, Result{
		EventID:  id,
		HTMLLink: res.Get("htmlLink").String(),
		MeetLink: res.Get("hangoutLink").String(),
		Start:    m.StartDateTime,
		End:      m.EndDateTime,
	})
}

// check rejects values the schema cannot express: RFC3339 timestamps in
// order, a known IANA zone, and an event type matching the attendee count.
func (m Meeting) check() error {
	if _, err := time.LoadLocation(m.TimeZone); err != nil {
		return fmt.Errorf("timeZone %q is not a known IANA time zone", m.TimeZone)
	}

	start, err := time.Parse(time.RFC3339, m.StartDateTime)
	if err != nil {
		return fmt.Errorf("startDateTime %q is not RFC3339", m.StartDateTime)
	}
	end, err := time.Parse(time.RFC3339, m.EndDateTime)
	if err != nil {
		return fmt.Errorf("endDateTime %q is not RFC3339", m.EndDateTime)
	}
	if !end.After(start) {
		return fmt.Errorf("endDateTime %s is not after startDateTime %s", m.EndDateTime, m.StartDateTime)
	}

	if want := eventType(len(m.Attendees)); m.EventType != want {
		return fmt.Errorf("eventType %q does not match %d attendee(s), expected %q", m.EventType, len(m.Attendees), want)
	}
	return nil
}

func eventType(attendees int) string {
	switch attendees {
	case 0:
		return EventSolo
	case 1:
		return EventDuo
	}
	return EventMultiple
}

func (m Meeting) event() map[string]any {
	attendees := make([]map[string]string, 0, len(m.Attendees))
	for _, a := range m.Attendees {
		entry := map[string]string{"email": a.Email}
		if a.Name != "" {
			entry["displayName"] = a.Name
		}
		attendees = append(attendees, entry)
	}

	event := map[string]any{
		"summary": m.Summary,
		"start":   map[string]string{"dateTime": m.StartDateTime, "timeZone": m.TimeZone},
		"end":     map[string]string{"dateTime": m.EndDateTime, "timeZone": m.TimeZone},
		"conferenceData": map[string]any{
			"createRequest": map[string]any{
				"requestId":             uuid.NewString(),
				"conferenceSolutionKey": map[string]string{"type": "hangoutsMeet"},
			},
		},
	}
	if m.Description != "" {
		event["description"] = m.Description
	}
	if len(attendees) > 0 {
		event["attendees"] = attendees
	}
	return event
}
