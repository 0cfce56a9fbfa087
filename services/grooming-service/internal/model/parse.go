package model

import (
	"strings"
	"time"
)

func ParseDogSize(raw string) (DogSize, error) {
	s := DogSize(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", Reject(ReasonInvalidInput, "dog_size must be small, medium, or large (got %q)", raw)
	}
	return s, nil
}

// ParseDate accepts an ISO-8601 calendar date and returns midnight UTC of that day.
func ParseDate(raw string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, Reject(ReasonInvalidInput, "date must be YYYY-MM-DD (got %q)", raw)
	}
	return d, nil
}

// BookingInput is the raw, string-typed form of a booking as received from callers.
type BookingInput struct {
	DogName       string `json:"dog_name"`
	DogSize       string `json:"dog_size"`
	RequestedDate string `json:"requested_date"`
	RequestedTime string `json:"requested_time"`
	CustomerName  string `json:"customer_name"`
	ContactNumber string `json:"contact_number"`
}

// ParseBookingRequest validates in and converts it into a BookingRequest. The requested
// time is only trimmed here; catalog membership is a business rule checked by the engine.
func ParseBookingRequest(in BookingInput) (BookingRequest, error) {
	req := BookingRequest{
		DogName:       strings.TrimSpace(in.DogName),
		RequestedTime: strings.TrimSpace(in.RequestedTime),
		CustomerName:  strings.TrimSpace(in.CustomerName),
		ContactNumber: strings.TrimSpace(in.ContactNumber),
	}
	if req.DogName == "" || req.CustomerName == "" || req.ContactNumber == "" || req.RequestedTime == "" {
		return BookingRequest{}, Reject(ReasonInvalidInput, "dog_name, requested_time, customer_name, and contact_number are required")
	}

	size, err := ParseDogSize(in.DogSize)
	if err != nil {
		return BookingRequest{}, err
	}
	req.DogSize = size

	date, err := ParseDate(in.RequestedDate)
	if err != nil {
		return BookingRequest{}, err
	}
	req.RequestedDate = date
	return req, nil
}
