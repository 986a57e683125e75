package reporting

import (
	library "lending-service/internal/domain/library"
)

// KPIs are the headline counters of the stats view.
type KPIs struct {
	TotalLoans       int
	ActiveLoans      int
	ReturnedLoans    int
	TotalBooks       int
	AvailableBooks   int
	UnavailableBooks int
	TotalUsers       int
}

// UserLoanRow is one row of the loans-by-user ranking.
type UserLoanRow struct {
	UserID int64
	Name   string
	Role   library.Role
	Count  int
}

// BookLoanRow is one row of the loans-by-book ranking.
type BookLoanRow struct {
	BookID   int64
	Title    string
	Author   string
	Category string
	Count    int
}

// AgingRow is one open loan with its age in whole days. Days is nil when
// the loan's date is missing or unparsable; such rows sort after every
// row with a defined age.
type AgingRow struct {
	LoanID int64
	UserID int64
	BookID int64
	Title  string
	Date   string
	Days   *int
}

// Overview is the full report, recomputed from scratch on every refresh.
type Overview struct {
	KPIs            KPIs
	LoansByUser     []UserLoanRow
	LoansByBook     []BookLoanRow
	ActiveLoanAging []AgingRow
}
