package library

// Role distinguishes regular members from catalog administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// LoanStatus is the lifecycle state of a loan. A loan is created as
// borrowed and transitions exactly once to returned.
type LoanStatus string

const (
	StatusBorrowed LoanStatus = "borrowed"
	StatusReturned LoanStatus = "returned"
)

// User represents a registered member of the library.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"` // opaque to the engine; bcrypt hash as stored
	Role     Role   `json:"role"`
}

// Book represents a catalog entry. Available is owned jointly by the
// catalog service (create/update) and the lending engine (borrow/return);
// it must equal "no open loan exists for this book".
type Book struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Category  string `json:"category,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Available bool   `json:"available"`
}

// BookPatch carries a partial book update with merge semantics: nil
// fields keep their stored values. Available in particular stays
// untouched unless explicitly set, so metadata edits cannot toggle
// lending state by accident.
type BookPatch struct {
	Title     *string `json:"title,omitempty"`
	Author    *string `json:"author,omitempty"`
	Category  *string `json:"category,omitempty"`
	ImageURL  *string `json:"imageUrl,omitempty"`
	Available *bool   `json:"available,omitempty"`
}

// Loan links a user to a book. Date and ReturnDate are calendar dates in
// ISO form (YYYY-MM-DD) as the store records them; ReturnDate is present
// iff Status is returned.
type Loan struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"userId"`
	BookID     int64      `json:"bookId"`
	Date       string     `json:"date"`
	Status     LoanStatus `json:"status"`
	ReturnDate string     `json:"returnDate,omitempty"`
}

// Open reports whether the loan is still outstanding.
func (l Loan) Open() bool {
	return l.Status == StatusBorrowed
}

// Actor is the signed-in identity performing an operation. The engines
// never read session state themselves; callers resolve the actor and pass
// it explicitly.
type Actor struct {
	ID   int64
	Name string
	Role Role
}

// IsAdmin reports whether the actor may manage the catalog.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}
