package doctor

import (
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Name          string `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Specialty     string `gorm:"column:specialty;type:varchar(100);not null;index" json:"specialty"`
	Phone         string `gorm:"column:phone;type:varchar(30);not null" json:"phone"`
	Email         string `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	LicenseNumber string `gorm:"column:license_number;type:varchar(50);uniqueIndex;not null" json:"licenseNumber"`

	// Optional link to the login account of this doctor.
	UserID *uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex" json:"userId,omitempty"`

	ExperienceYears *int     `gorm:"column:experience_years" json:"experience,omitempty"`
	Education       string   `gorm:"column:education;type:text" json:"education,omitempty"`
	Bio             string   `gorm:"column:bio;type:text" json:"bio,omitempty"`
	ConsultationFee *float64 `gorm:"column:consultation_fee" json:"consultationFee,omitempty"`

	// Free-text working hours, informational only. The scheduling engine
	// uses the canonical slot template, not this field.
	AvailableHours string `gorm:"column:available_hours;type:varchar(100)" json:"availableHours,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

type CreateCommand struct {
	Name            string
	Specialty       string
	Phone           string
	Email           string
	LicenseNumber   string
	ExperienceYears *int
	Education       string
	Bio             string
	ConsultationFee *float64
	AvailableHours  string
	UserID          *uuid.UUID
}

type UpdateCommand struct {
	Name            *string
	Specialty       *string
	Phone           *string
	Email           *string
	LicenseNumber   *string
	ExperienceYears *int
	Education       *string
	Bio             *string
	ConsultationFee *float64
	AvailableHours  *string
}

func (c *UpdateCommand) Values() map[string]any {
	values := map[string]any{}
	if c.Name != nil {
		values["name"] = *c.Name
	}
	if c.Specialty != nil {
		values["specialty"] = *c.Specialty
	}
	if c.Phone != nil {
		values["phone"] = *c.Phone
	}
	if c.Email != nil {
		values["email"] = *c.Email
	}
	if c.LicenseNumber != nil {
		values["license_number"] = *c.LicenseNumber
	}
	if c.ExperienceYears != nil {
		values["experience_years"] = *c.ExperienceYears
	}
	if c.Education != nil {
		values["education"] = *c.Education
	}
	if c.Bio != nil {
		values["bio"] = *c.Bio
	}
	if c.ConsultationFee != nil {
		values["consultation_fee"] = *c.ConsultationFee
	}
	if c.AvailableHours != nil {
		values["available_hours"] = *c.AvailableHours
	}
	return values
}
