package model

import (
	"time"
)

// DateLayout is the ISO-8601 calendar date format used on every boundary.
const DateLayout = "2006-01-02"

type DogSize string

const (
	DogSizeSmall  DogSize = "small"
	DogSizeMedium DogSize = "medium"
	DogSizeLarge  DogSize = "large"
)

// Units is the capacity cost of one booking for a dog of this size.
func (s DogSize) Units() int {
	if s == DogSizeLarge {
		return 2
	}
	return 1
}

func (s DogSize) Valid() bool {
	switch s {
	case DogSizeSmall, DogSizeMedium, DogSizeLarge:
		return true
	}
	return false
}

type Status string

const (
	StatusBooked Status = "Booked"
	StatusFailed Status = "Failed"
)

// BookingRequest is validated input for a booking commit. Build it with ParseBookingRequest.
type BookingRequest struct {
	DogName       string
	DogSize       DogSize
	RequestedDate time.Time
	RequestedTime string
	CustomerName  string
	ContactNumber string
}

type BookingRecord struct {
	ID            string    `json:"id,omitempty"`
	DogName       string    `json:"dog_name"`
	DogSize       DogSize   `json:"dog_size"`
	RequestedDate string    `json:"requested_date"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	CustomerName  string    `json:"customer_name"`
	ContactNumber string    `json:"contact_number"`
	Status        Status    `json:"status"`
	Reason        Reason    `json:"reason,omitempty"`
	Notes         []string  `json:"notes"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

type Availability struct {
	RequestedDate  string   `json:"requested_date"`
	OperatingDate  string   `json:"operating_date"`
	DogSize        DogSize  `json:"dog_size"`
	AvailableSlots []string `json:"available_slots"`
	Notes          []string `json:"notes"`
}

// FormatDate renders d as an ISO date.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}
