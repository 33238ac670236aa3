package domain

import "time"

// User is a registered library member. The phone number doubles as the
// login credential and is compared in plaintext.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	PhoneNumber string    `json:"phoneNumber"`
	CreatedAt   time.Time `json:"createdAt"`
}
