// Command seed loads the sample CO2 dataset and optionally creates an
// admin account.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ecolens/ecolens/internal/auth"
	"github.com/ecolens/ecolens/internal/model"
	"github.com/ecolens/ecolens/internal/repository"
)

// sampleData is the reference emission dataset.
var sampleData = []struct {
	code    string
	country string
	years   []int
	values  []float64
}{
	{model.GlobalCode, "Global", []int{2000, 2005, 2010, 2015, 2020}, []float64{280, 310, 340, 400, 420}},
	{"PK", "Pakistan", []int{2000, 2005, 2010, 2020}, []float64{100, 120, 180, 250}},
	{"US", "United States", []int{2000, 2005, 2010, 2020}, []float64{6000, 6200, 5800, 5400}},
	{"IN", "India", []int{2000, 2005, 2010, 2020}, []float64{900, 1200, 1700, 2400}},
}

func main() {
	var (
		databaseURL   = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		adminEmail    = flag.String("admin-email", "", "Create an admin account with this email")
		adminPassword = flag.String("admin-password", "", "Password for the admin account")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := seedCO2(ctx, repo); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	if *adminEmail != "" {
		if err := ensureAdmin(ctx, repo, *adminEmail, *adminPassword); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}

	fmt.Println("seed complete")
}

func seedCO2(ctx context.Context, repo *repository.Repository) error {
	for _, entry := range sampleData {
		records := make([]model.CO2Record, 0, len(entry.years))
		for i, year := range entry.years {
			records = append(records, model.CO2Record{
				CountryCode: entry.code,
				Country:     entry.country,
				Year:        year,
				Emissions:   entry.values[i],
				Source:      "sample",
				DataType:    "historical",
			})
		}
		if err := repo.InsertCO2Records(ctx, records); err != nil {
			return fmt.Errorf("seed %s: %w", entry.code, err)
		}
		fmt.Printf("seeded %s (%d rows)\n", entry.code, len(records))
	}
	return nil
}

func ensureAdmin(ctx context.Context, repo *repository.Repository, email, password string) error {
	if password == "" {
		return errors.New("admin-password is required with admin-email")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			fmt.Printf("admin %s already exists\n", email)
			return nil
		}
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Printf("created admin %s (%s)\n", email, user.ID)
	return nil
}
