package patient

import "errors"

var (
	ErrPatientNotFound       = errors.New("patient not found")
	ErrUserAlreadyLinked     = errors.New("user is already associated with a patient")
	ErrHasActiveAppointments = errors.New("cannot delete patient with active appointments")
)
