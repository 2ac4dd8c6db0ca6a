package dto

type CategoryFilters struct {
	Name      string
	ParentID  *string // nil ignores the parent, "" selects root categories
	IsActive  *bool
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}
