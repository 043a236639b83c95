// Package sandbox loads starter data for demo and development
// environments: the initial doctor roster and an admin account.
package sandbox

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/medibook/medibook/internal/domain/account"
	"github.com/medibook/medibook/internal/domain/doctor"
)

// starterDoctors is the roster loaded into a fresh environment.
var starterDoctors = []doctor.Doctor{
	{
		Name:       "Dr. Richard James",
		Specialty:  "General physician",
		ImageURL:   "https://images.unsplash.com/photo-1511367461989-f85a21fda167?auto=format&fit=facearea&w=400&h=400",
		Available:  true,
		Experience: "15 years",
		Featured:   true,
	},
	{
		Name:       "Dr. Christopher Davis",
		Specialty:  "General physician",
		ImageURL:   "https://images.unsplash.com/photo-1508214751196-bcfd4ca60f91?auto=format&fit=facearea&w=400&h=400",
		Available:  true,
		Experience: "12 years",
	},
	{
		Name:       "Dr. Sarah Wilson",
		Specialty:  "Gynecologist",
		ImageURL:   "https://images.unsplash.com/photo-1559839734-2b71ea197ec2?auto=format&fit=facearea&w=400&h=400",
		Available:  true,
		Experience: "18 years",
		Featured:   true,
	},
	{
		Name:       "Dr. Michael Brown",
		Specialty:  "Dermatologist",
		ImageURL:   "https://images.unsplash.com/photo-1612349317150-e413f6a5b16d?auto=format&fit=facearea&w=400&h=400",
		Available:  true,
		Experience: "16 years",
	},
}

// Result summarizes a seed run.
type Result struct {
	Doctors  int `json:"doctors"`
	Accounts int `json:"accounts"`
}

// Seeder writes starter records through the domain repositories.
type Seeder struct {
	doctors  doctor.Repository
	accounts account.Repository
}

func NewSeeder(doctors doctor.Repository, accounts account.Repository) *Seeder {
	return &Seeder{doctors: doctors, accounts: accounts}
}

// Seed inserts the starter doctors and, when adminEmail is set, an admin
// account with the given credentials. Seeding an already-populated store
// adds duplicates; it is meant for fresh environments.
func (s *Seeder) Seed(ctx context.Context, adminEmail, adminPassword string) (*Result, error) {
	res := &Result{}

	for i := range starterDoctors {
		d := starterDoctors[i]
		if err := s.doctors.Create(ctx, &d); err != nil {
			return nil, fmt.Errorf("seed doctor %q: %w", d.Name, err)
		}
		res.Doctors++
	}

	if adminEmail != "" {
		if _, err := s.accounts.GetByEmail(ctx, adminEmail); err == nil {
			return res, nil
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		a := &account.Account{
			Email:        adminEmail,
			DisplayName:  "Administrator",
			Role:         account.RoleAdmin,
			PasswordHash: string(hash),
		}
		if err := s.accounts.Create(ctx, a); err != nil {
			return nil, fmt.Errorf("seed admin account: %w", err)
		}
		res.Accounts++
	}

	return res, nil
}
