package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Patient struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"` // lower-cased, unique
	Phone            string             `bson:"phone" json:"phone"`
	Address          string             `bson:"address" json:"address"`
	DateOfBirth      time.Time          `bson:"dateOfBirth" json:"dateOfBirth"`
	EmergencyContact string             `bson:"emergencyContact" json:"emergencyContact"`
	MedicalHistory   string             `bson:"medicalHistory" json:"medicalHistory"`
	Token            string             `bson:"token" json:"token"`
	RegisteredBy     string             `bson:"registeredBy" json:"registeredBy"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PatientRef is the short patient card returned next to per-patient listings.
type PatientRef struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Token string             `json:"token"`
}

func (p *Patient) Ref() PatientRef {
	return PatientRef{ID: p.ID, Name: p.Name, Token: p.Token}
}
