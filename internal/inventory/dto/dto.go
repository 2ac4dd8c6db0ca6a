package dto

type MovementFilters struct {
	ProductID     string
	MovementType  string
	ReferenceType string
	ReferenceID   string
	Page          int
	PageSize      int
}
