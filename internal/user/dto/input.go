package dto

// UpdateProfileInput changes only the fields that are set. An empty phone clears it.
// DateOfBirth is a calendar date in YYYY-MM-DD form; "" clears it.
type UpdateProfileInput struct {
	UserID      string  `json:"-"`
	FullName    *string `json:"full_name"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"date_of_birth"`
	IsCompleted *bool   `json:"is_completed"`
}

// UpdateAddressInput replaces the whole address.
type UpdateAddressInput struct {
	UserID     string `json:"-"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type UpdateProfileImageInput struct {
	UserID       string `json:"-"`
	ProfileImage string `json:"profile_image"`
}
