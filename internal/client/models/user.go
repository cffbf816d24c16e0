// Package models defines client-side data models used by authkeeper.
package models

import "encoding/json"

// User is the profile snapshot returned by the Auth API on login or OTP
// verification. The client never patches it; a new login replaces it whole.
type User struct {
	ID           string `json:"id,omitempty"`
	FullName     string `json:"fullName,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Professional string `json:"professional,omitempty"`
}

// UnmarshalJSON accepts "_id" as the identifier when "id" is absent, which is
// what document-store backends tend to send.
func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	aux := struct {
		*plain
		MongoID string `json:"_id"`
	}{plain: (*plain)(u)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = aux.MongoID
	}
	return nil
}

// Profile holds the registration form fields sent alongside the password.
type Profile struct {
	FullName     string `json:"fullName" validate:"notblank,trimmed_min=2,trimmed_max=50"`
	Phone        string `json:"phone" validate:"notblank,phone"`
	Email        string `json:"email" validate:"notblank,email_addr"`
	Professional string `json:"professional" validate:"notblank,trimmed_min=2,trimmed_max=100"`
}
