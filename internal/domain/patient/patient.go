package patient

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Name      string    `gorm:"column:name;type:varchar(100);not null" json:"name"`
	BirthDate time.Time `gorm:"column:birth_date;type:date;not null" json:"birthDate"`
	Phone     string    `gorm:"column:phone;type:varchar(30);not null" json:"phone"`
	Address   string    `gorm:"column:address;type:text;not null" json:"address"`

	// Link to the login account of this patient.
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex;not null" json:"userId"`

	Gender           string `gorm:"column:gender;type:varchar(20)" json:"gender,omitempty"`
	BloodType        string `gorm:"column:blood_type;type:varchar(5)" json:"bloodType,omitempty"`
	EmergencyContact string `gorm:"column:emergency_contact;type:varchar(255)" json:"emergencyContact,omitempty"`
	MedicalHistory   string `gorm:"column:medical_history;type:text" json:"medicalHistory,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

func (p *Patient) Age() int {
	now := time.Now()
	years := now.Year() - p.BirthDate.Year()
	if now.Month() < p.BirthDate.Month() ||
		(now.Month() == p.BirthDate.Month() && now.Day() < p.BirthDate.Day()) {
		years--
	}
	return years
}

type CreateCommand struct {
	Name             string
	BirthDate        time.Time
	Phone            string
	Address          string
	UserID           uuid.UUID
	Gender           string
	BloodType        string
	EmergencyContact string
	MedicalHistory   string
}

type UpdateCommand struct {
	Name             *string
	BirthDate        *time.Time
	Phone            *string
	Address          *string
	Gender           *string
	BloodType        *string
	EmergencyContact *string
	MedicalHistory   *string
}

func (c *UpdateCommand) Values() map[string]any {
	values := map[string]any{}
	if c.Name != nil {
		values["name"] = *c.Name
	}
	if c.BirthDate != nil {
		values["birth_date"] = *c.BirthDate
	}
	if c.Phone != nil {
		values["phone"] = *c.Phone
	}
	if c.Address != nil {
		values["address"] = *c.Address
	}
	if c.Gender != nil {
		values["gender"] = *c.Gender
	}
	if c.BloodType != nil {
		values["blood_type"] = *c.BloodType
	}
	if c.EmergencyContact != nil {
		values["emergency_contact"] = *c.EmergencyContact
	}
	if c.MedicalHistory != nil {
		values["medical_history"] = *c.MedicalHistory
	}
	return values
}
