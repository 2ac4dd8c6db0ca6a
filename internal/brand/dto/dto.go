package dto

type BrandFilters struct {
	Name      string
	IsActive  *bool
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}
