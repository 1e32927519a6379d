package book

import "strings"

// Book represents a catalog record.
type Book struct {
	ID        int64  `json:"id" db:"id"`
	Title     string `json:"title" db:"title"`
	Author    string `json:"author" db:"author"`
	Year      int    `json:"year" db:"year"`
	ISBN      string `json:"isbn" db:"isbn"`
	Available bool   `json:"available" db:"available"`
}

// AddBook is the input for creating a book. New books are always available.
type AddBook struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	Year   int    `json:"year" validate:"pubyear"`
	ISBN   string `json:"isbn" validate:"isbn13"`
}

// UpdateBook is a partial patch: nil fields keep the stored value.
type UpdateBook struct {
	Title     *string `json:"title,omitempty"`
	Author    *string `json:"author,omitempty"`
	Year      *int    `json:"year,omitempty"`
	ISBN      *string `json:"isbn,omitempty"`
	Available *bool   `json:"available,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (u UpdateBook) IsEmpty() bool {
	return u.Title == nil && u.Author == nil && u.Year == nil && u.ISBN == nil && u.Available == nil
}

// Apply returns b with the present patch fields merged in. The id is never touched.
func (u UpdateBook) Apply(b Book) Book {
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Author != nil {
		b.Author = *u.Author
	}
	if u.Year != nil {
		b.Year = *u.Year
	}
	if u.ISBN != nil {
		b.ISBN = *u.ISBN
	}
	if u.Available != nil {
		b.Available = *u.Available
	}
	return b
}

// Filter narrows a listing. Nil fields match everything; set fields are ANDed.
type Filter struct {
	Available *bool
	Author    *string
	Year      *int
}

// Match reports whether b passes every set predicate. Author matching is a
// case-insensitive substring test.
func (f Filter) Match(b Book) bool {
	if f.Available != nil && b.Available != *f.Available {
		return false
	}
	if f.Author != nil && !strings.Contains(strings.ToLower(b.Author), strings.ToLower(*f.Author)) {
		return false
	}
	if f.Year != nil && b.Year != *f.Year {
		return false
	}
	return true
}
