package appointment

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotUnavailable     = errors.New("doctor is not available at this time")
	ErrInvalidStatus       = errors.New("invalid appointment status")
	ErrReminderNotAllowed  = errors.New("reminders can only be sent for confirmed appointments")
	ErrReminderInPast      = errors.New("reminders cannot be sent for past appointments")
)
