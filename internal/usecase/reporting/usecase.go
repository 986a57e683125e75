// Package reporting derives the stats views from the three raw
// collections. Everything here is a pure function of one fetched
// snapshot; there is no incremental state and no write path.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	library "lending-service/internal/domain/library"
)

const dateLayout = "2006-01-02"

// UserSource lists all users.
type UserSource interface {
	ListAll(ctx context.Context) ([]library.User, error)
}

// BookSource lists books; reporting always asks for every category.
type BookSource interface {
	List(ctx context.Context, category string) ([]library.Book, error)
}

// LoanSource lists all loans.
type LoanSource interface {
	ListAll(ctx context.Context) ([]library.Loan, error)
}

// Usecase computes the reporting views.
type Usecase struct {
	users UserSource
	books BookSource
	loans LoanSource
	log   *zap.Logger
	now   func() time.Time
}

// New creates a reporting engine over the given sources.
func New(users UserSource, books BookSource, loans LoanSource, log *zap.Logger) *Usecase {
	return &Usecase{users: users, books: books, loans: loans, log: log, now: time.Now}
}

// snapshot is one full fetch of the three collections. The collections
// are small and always read whole; the three reads run concurrently.
type snapshot struct {
	users []library.User
	books []library.Book
	loans []library.Loan
}

func (uc *Usecase) fetch(ctx context.Context) (*snapshot, error) {
	var snap snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := uc.users.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("fetch users: %w", err)
		}
		snap.users = users
		return nil
	})
	g.Go(func() error {
		books, err := uc.books.List(gctx, "")
		if err != nil {
			return fmt.Errorf("fetch books: %w", err)
		}
		snap.books = books
		return nil
	})
	g.Go(func() error {
		loans, err := uc.loans.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("fetch loans: %w", err)
		}
		snap.loans = loans
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Overview fetches a fresh snapshot and computes all four views.
func (uc *Usecase) Overview(ctx context.Context) (*Overview, error) {
	snap, err := uc.fetch(ctx)
	if err != nil {
		uc.log.Error("failed to build report", zap.Error(err))
		return nil, err
	}

	now := uc.now()
	overview := &Overview{
		KPIs:            computeKPIs(snap),
		LoansByUser:     loansByUser(snap),
		LoansByBook:     loansByBook(snap),
		ActiveLoanAging: activeLoanAging(snap, now),
	}

	uc.log.Debug("report computed",
		zap.Int("users", len(snap.users)),
		zap.Int("books", len(snap.books)),
		zap.Int("loans", len(snap.loans)),
	)
	return overview, nil
}

func computeKPIs(snap *snapshot) KPIs {
	k := KPIs{
		TotalLoans: len(snap.loans),
		TotalBooks: len(snap.books),
		TotalUsers: len(snap.users),
	}
	for _, l := range snap.loans {
		if l.Open() {
			k.ActiveLoans++
		} else {
			k.ReturnedLoans++
		}
	}
	for _, b := range snap.books {
		if b.Available {
			k.AvailableBooks++
		}
	}
	k.UnavailableBooks = k.TotalBooks - k.AvailableBooks
	return k
}

// loansByUser groups loans by user, joined to user names. Ties keep the
// order in which a user first appears in the loans collection.
func loansByUser(snap *snapshot) []UserLoanRow {
	users := make(map[int64]library.User, len(snap.users))
	for _, u := range snap.users {
		users[u.ID] = u
	}

	counts := make(map[int64]int)
	var order []int64
	for _, l := range snap.loans {
		if counts[l.UserID] == 0 {
			order = append(order, l.UserID)
		}
		counts[l.UserID]++
	}

	rows := make([]UserLoanRow, 0, len(order))
	for _, id := range order {
		row := UserLoanRow{UserID: id, Count: counts[id]}
		if u, ok := users[id]; ok {
			row.Name = u.Name
			row.Role = u.Role
		} else {
			row.Name = fmt.Sprintf("User #%d", id)
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}

// loansByBook mirrors loansByUser for books.
func loansByBook(snap *snapshot) []BookLoanRow {
	books := make(map[int64]library.Book, len(snap.books))
	for _, b := range snap.books {
		books[b.ID] = b
	}

	counts := make(map[int64]int)
	var order []int64
	for _, l := range snap.loans {
		if counts[l.BookID] == 0 {
			order = append(order, l.BookID)
		}
		counts[l.BookID]++
	}

	rows := make([]BookLoanRow, 0, len(order))
	for _, id := range order {
		row := BookLoanRow{BookID: id, Count: counts[id]}
		if b, ok := books[id]; ok {
			row.Title = b.Title
			row.Author = b.Author
			row.Category = b.Category
		} else {
			row.Title = fmt.Sprintf("Book #%d", id)
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}

// activeLoanAging lists open loans oldest first. Age is whole days,
// never negative; rows whose date cannot be parsed carry a nil age and
// sort last.
func activeLoanAging(snap *snapshot, now time.Time) []AgingRow {
	books := make(map[int64]library.Book, len(snap.books))
	for _, b := range snap.books {
		books[b.ID] = b
	}

	var rows []AgingRow
	for _, l := range snap.loans {
		if !l.Open() {
			continue
		}
		row := AgingRow{
			LoanID: l.ID,
			UserID: l.UserID,
			BookID: l.BookID,
			Date:   l.Date,
			Days:   loanAge(l.Date, now),
		}
		if b, ok := books[l.BookID]; ok {
			row.Title = b.Title
		} else {
			row.Title = fmt.Sprintf("Book #%d", l.BookID)
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Days, rows[j].Days
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return rows
}

func loanAge(date string, now time.Time) *int {
	if date == "" {
		return nil
	}
	started, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil
	}
	days := int(now.Sub(started).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}
