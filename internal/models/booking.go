package models

import "time"

type Booking struct {
	ID           string    `json:"id"`
	TeamName     string    `json:"teamName"`
	Date         string    `json:"date"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	Duration     int       `json:"duration"`
	StartMinutes int       `json:"startMinutes"`
	EndMinutes   int       `json:"endMinutes"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}
