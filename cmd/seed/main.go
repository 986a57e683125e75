// Command seed populates the collection store with a small demo data
// set: an admin, a couple of members, a handful of books and loan
// history covering open and returned loans.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"lending-service/internal/store"
)

type userSeed struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type bookSeed struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	ImageURL  string `json:"imageUrl"`
	Available bool   `json:"available"`
}

type loanSeed struct {
	UserID     int64  `json:"userId"`
	BookID     int64  `json:"bookId"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	ReturnDate string `json:"returnDate,omitempty"`
}

func main() {
	baseURL := flag.String("store", "http://localhost:3001", "base URL of the collection store")
	flag.Parse()

	l, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer l.Sync()

	client := store.NewHTTPClient(store.HTTPConfig{
		BaseURL: *baseURL,
		Timeout: 10 * time.Second,
	}, l)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := seed(ctx, client); err != nil {
		l.Fatal("seeding failed", zap.Error(err))
	}
	l.Info("seeding complete", zap.String("store", *baseURL))
}

func seed(ctx context.Context, client store.Client) error {
	users := []userSeed{
		{Name: "Admin", Email: "admin@library.dev", Password: "admin123", Role: "admin"},
		{Name: "Ana Martins", Email: "ana@library.dev", Password: "ana12345", Role: "user"},
		{Name: "Bruno Costa", Email: "bruno@library.dev", Password: "bruno123", Role: "user"},
	}
	for i := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(users[i].Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", users[i].Email, err)
		}
		users[i].Password = string(hash)
		if _, err := client.Create(ctx, store.Users, users[i]); err != nil {
			return fmt.Errorf("create user %s: %w", users[i].Email, err)
		}
	}

	books := []bookSeed{
		{Title: "Dune", Author: "Frank Herbert", Category: "Science Fiction", ImageURL: "/covers/dune.jpg", Available: false},
		{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Category: "Science Fiction", ImageURL: "/covers/left-hand.jpg", Available: true},
		{Title: "Clean Architecture", Author: "Robert C. Martin", Category: "Software", ImageURL: "/covers/clean-architecture.png", Available: true},
		{Title: "The Pragmatic Programmer", Author: "Andrew Hunt", Category: "Software", ImageURL: "/covers/pragmatic.png", Available: false},
		{Title: "Meditations", Author: "Marcus Aurelius", Category: "Philosophy", ImageURL: "/covers/meditations.webp", Available: true},
	}
	for _, b := range books {
		if _, err := client.Create(ctx, store.Books, b); err != nil {
			return fmt.Errorf("create book %q: %w", b.Title, err)
		}
	}

	today := time.Now().Format("2006-01-02")
	lastWeek := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	lastMonth := time.Now().AddDate(0, -1, 0).Format("2006-01-02")

	loans := []loanSeed{
		{UserID: 2, BookID: 1, Date: lastWeek, Status: "borrowed"},
		{UserID: 3, BookID: 4, Date: today, Status: "borrowed"},
		{UserID: 2, BookID: 3, Date: lastMonth, Status: "returned", ReturnDate: lastWeek},
		{UserID: 3, BookID: 1, Date: lastMonth, Status: "returned", ReturnDate: lastWeek},
	}
	for _, ln := range loans {
		if _, err := client.Create(ctx, store.Loans, ln); err != nil {
			return fmt.Errorf("create loan for user %d book %d: %w", ln.UserID, ln.BookID, err)
		}
	}

	return nil
}
