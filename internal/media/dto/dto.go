package dto

type MediaFilters struct {
	Folder string
	// MimePrefix matches e.g. "image/" or "application/pdf".
	MimePrefix string
	Page       int
	PageSize   int
}
