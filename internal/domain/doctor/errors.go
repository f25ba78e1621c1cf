package doctor

import "errors"

var (
	ErrDoctorNotFound        = errors.New("doctor not found")
	ErrEmailInUse            = errors.New("doctor with this email already exists")
	ErrLicenseInUse          = errors.New("doctor with this license number already exists")
	ErrUserAlreadyLinked     = errors.New("user is already associated with a doctor")
	ErrHasActiveAppointments = errors.New("cannot delete doctor with active appointments")
)
