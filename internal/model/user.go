package model

import "time"

type Address struct {
	Street     string `db:"street" json:"street"`
	City       string `db:"city" json:"city"`
	State      string `db:"state" json:"state"`
	PostalCode string `db:"postal_code" json:"postal_code"`
	Country    string `db:"country" json:"country"`
}

type User struct {
	BaseModel
	Address      `json:"address"` // flattened into the users table
	Email        string           `db:"email" json:"email"`
	FullName     string           `db:"full_name" json:"full_name"`
	Phone        *string          `db:"phone" json:"phone"`
	ProfileImage *string          `db:"profile_image" json:"profile_image"`
	DateOfBirth  *time.Time       `db:"date_of_birth" json:"date_of_birth"`
	IsCompleted  bool             `db:"is_completed" json:"is_completed"`
}
