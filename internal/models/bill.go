package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	BillPending = "pending"
	BillPaid    = "paid"
)

// ValidBillStatus reports whether s is a bill status the API accepts.
func ValidBillStatus(s string) bool {
	return s == BillPending || s == BillPaid
}

type BillItem struct {
	Description string  `bson:"description" json:"description"`
	Amount      float64 `bson:"amount" json:"amount"`
}

type Bill struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID     primitive.ObjectID `bson:"patientId" json:"patientId"`
	PatientName   string             `bson:"patientName" json:"patientName"`
	Items         []BillItem         `bson:"items" json:"items"`
	TotalAmount   float64            `bson:"totalAmount" json:"totalAmount"`
	Status        string             `bson:"status" json:"status"` // "pending" -> "paid", never back
	CreatedBy     string             `bson:"createdBy" json:"createdBy"`
	CreatedByName string             `bson:"createdByName" json:"createdByName"`
	UpdatedBy     string             `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	UpdatedByName string             `bson:"updatedByName,omitempty" json:"updatedByName,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
	PaidAt        *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
}

func (b *Bill) IsPaid() bool {
	return b.Status == BillPaid
}
