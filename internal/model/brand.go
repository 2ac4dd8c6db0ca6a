package model

type Brand struct {
	BaseModel
	Name        string  `db:"name" json:"name"`
	Slug        string  `db:"slug" json:"slug"`
	Description *string `db:"description" json:"description"`
	LogoURL     *string `db:"logo_url" json:"logo_url"`
	IsActive    bool    `db:"is_active" json:"is_active"`
}
