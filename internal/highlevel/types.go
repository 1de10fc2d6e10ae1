package highlevel

import "time"

// User is an upstream staff account.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Deleted   bool   `json:"deleted,omitempty"`
}

// Contact is an upstream CRM contact.
type Contact struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ContactsPage is one page of the contacts listing plus paging meta.
type ContactsPage struct {
	Contacts []Contact `json:"contacts"`
	Page     int       `json:"page"`
	Total    int       `json:"total"`
	NextPage *int      `json:"nextPage"`
	PrevPage *int      `json:"prevPage"`
}

// CreateContactRequest is the payload for contact creation.
type CreateContactRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// DaySlots is the upstream free-slots bucket for one calendar day.
type DaySlots struct {
	Slots []string `json:"slots"`
}

// Appointment is an upstream booking as returned by the appointments
// API. Start/end fields vary by endpoint version, hence the aliases.
type Appointment struct {
	ID                string `json:"id"`
	CalendarID        string `json:"calendarId"`
	ContactID         string `json:"contactId"`
	Title             string `json:"title,omitempty"`
	Status            string `json:"status,omitempty"`
	AppointmentStatus string `json:"appointmentStatus,omitempty"`
	AssignedUserID    string `json:"assignedUserId,omitempty"`
	Address           string `json:"address,omitempty"`
	IsRecurring       bool   `json:"isRecurring,omitempty"`
	TraceID           string `json:"traceId,omitempty"`

	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	StartAt   string `json:"startAt,omitempty"`
	EndAt     string `json:"endAt,omitempty"`
}

// Start returns the first usable start-time field, parsed.
func (a *Appointment) Start() (time.Time, bool) {
	return firstTime(a.StartTime, a.StartAt)
}

// End returns the first usable end-time field, parsed.
func (a *Appointment) End() (time.Time, bool) {
	return firstTime(a.EndTime, a.EndAt)
}

func firstTime(candidates ...string) (time.Time, bool) {
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// CreateAppointmentRequest books a calendar slot upstream.
type CreateAppointmentRequest struct {
	CalendarID     string `json:"calendarId"`
	LocationID     string `json:"locationId"`
	ContactID      string `json:"contactId"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	Title          string `json:"title,omitempty"`
	AssignedUserID string `json:"assignedUserId,omitempty"`
	Address        string `json:"address,omitempty"`
}

// PaymentSessionRequest creates an upstream checkout session.
type PaymentSessionRequest struct {
	LocationID         string         `json:"locationId"`
	SuccessURL         string         `json:"successUrl"`
	CancelURL          string         `json:"cancelUrl"`
	PaymentMethods     []string       `json:"paymentMethods,omitempty"`
	PaymentSessionData map[string]any `json:"paymentSessionData"`
}

// PaymentSession is the created checkout session.
type PaymentSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
