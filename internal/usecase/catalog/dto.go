package catalog

// CreateBookRequest carries the fields of a new catalog entry. Title and
// author are trimmed before validation.
type CreateBookRequest struct {
	Title    string `validate:"required,min=2"`
	Author   string `validate:"required,min=2"`
	Category string `validate:"required"`
	ImageURL string `validate:"omitempty,coverpath"`
}

// UpdateBookRequest carries replacement metadata for an existing entry.
// Available is only written when explicitly set; a nil value preserves
// whatever lending state the book is in.
type UpdateBookRequest struct {
	ID        int64
	Title     string `validate:"required,min=2"`
	Author    string `validate:"required,min=2"`
	Category  string `validate:"required"`
	ImageURL  string `validate:"omitempty,coverpath"`
	Available *bool
}

// DeleteBookRequest asks to remove a catalog entry. Confirmed must be
// set; an unconfirmed delete issues no write.
type DeleteBookRequest struct {
	ID        int64
	Confirmed bool
}

// ListBooksRequest filters the catalog. An empty category means all.
type ListBooksRequest struct {
	Category string
}
