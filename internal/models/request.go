package models

import "time"

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestFulfilled RequestStatus = "fulfilled"
)

// Terminal reports whether no further transition is allowed out of s.
func (s RequestStatus) Terminal() bool {
	return s == RequestRejected || s == RequestFulfilled
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Request: a hospital's ask for blood units. Mutated only by admin actions.
type Request struct {
	ID           uint   `gorm:"primaryKey"`
	Reference    string `gorm:"size:36;uniqueIndex;not null"`
	HospitalID   uint   `gorm:"index;not null"`
	Hospital     Hospital
	BloodType    BloodType     `gorm:"size:3;not null"`
	Quantity     int           `gorm:"not null"`
	Urgency      Urgency       `gorm:"size:10;not null"`
	Status       RequestStatus `gorm:"size:20;index;not null"`
	Notes        string        `gorm:"size:500"`
	AdminNotes   string        `gorm:"size:500"`
	ResponseDate *time.Time
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}
