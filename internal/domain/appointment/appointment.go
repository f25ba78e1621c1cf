package appointment

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Status of an appointment. PENDING and CONFIRMED count as active; a
// cancelled appointment frees its slot.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ActiveStatuses is the set of statuses that occupy a slot.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// TimePattern validates slot times of the form HH:MM (00-23 / 00-59).
var TimePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// DailySlots is the canonical daily template: 30-minute slots from 08:00
// to 18:00 inclusive, 21 in total. Availability is computed by removing
// actively booked times from this list; per-doctor working hours live in
// the doctor's free-text availableHours and are not machine enforced.
var DailySlots = []string{
	"08:00", "08:30", "09:00", "09:30", "10:00", "10:30",
	"11:00", "11:30", "12:00", "12:30", "13:00", "13:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
	"17:00", "17:30", "18:00",
}

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Date time.Time `gorm:"column:date;type:date;not null;index" json:"date"`
	Time string    `gorm:"column:time;type:varchar(5);not null" json:"time"`

	Status    Status    `gorm:"column:status;type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patientId"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctorId"`

	Reason string `gorm:"column:reason;type:text" json:"reason,omitempty"`
	Notes  string `gorm:"column:notes;type:text" json:"notes,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) IsToday() bool {
	now := time.Now()
	return a.Date.Year() == now.Year() && a.Date.Month() == now.Month() && a.Date.Day() == now.Day()
}

func (a *Appointment) IsActive() bool {
	return a.Status.IsActive()
}

// Day normalizes a timestamp to its calendar day in UTC. All date
// comparisons in the scheduling engine happen at day granularity.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type CreateCommand struct {
	Date      time.Time
	Time      string
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Reason    string
	Notes     string
	Status    Status // empty means PENDING
}

// UpdateCommand carries only the fields explicitly supplied by the caller.
// Nil fields must not touch the stored record.
type UpdateCommand struct {
	Date   *time.Time
	Time   *string
	Reason *string
	Notes  *string
	Status *Status
}

// Values projects exactly the supplied fields into a column->value map
// suitable for a partial update.
func (c *UpdateCommand) Values() map[string]any {
	values := map[string]any{}
	if c.Date != nil {
		values["date"] = *c.Date
	}
	if c.Time != nil {
		values["time"] = *c.Time
	}
	if c.Reason != nil {
		values["reason"] = *c.Reason
	}
	if c.Notes != nil {
		values["notes"] = *c.Notes
	}
	if c.Status != nil {
		values["status"] = *c.Status
	}
	return values
}
