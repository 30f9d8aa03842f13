package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"bugscape/internal/auth"
	"bugscape/internal/config"
	"bugscape/internal/db"
	apperrors "bugscape/internal/errors"
	"bugscape/internal/logging"
	"bugscape/internal/model"
	"bugscape/internal/repository"
	"bugscape/internal/repository/mongodb"
)

// SeedUserData is one entry of the seed file.
type SeedUserData struct {
	Email     string            `json:"email"`
	Password  string            `json:"password"`
	FirstName string            `json:"firstName"`
	LastName  string            `json:"lastName"`
	Roles     []model.RoleGrant `json:"roles"`
}

var defaultUsers = []SeedUserData{
	{Email: "dev@bugscape.local", Password: "password123", FirstName: "Dev", LastName: "User",
		Roles: []model.RoleGrant{{TeamID: "default", Role: model.RoleAdmin}}},
}

func main() {
	file := flag.String("file", "", "JSON file with users to seed (defaults to one dev user)")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg := config.Load()
	ctx := context.Background()

	users := defaultUsers
	if *file != "" {
		var err error
		users, err = readSeedFile(*file)
		if err != nil {
			log.Fatalf("Failed to read seed file: %v", err)
		}
	}
	log.Printf("Loaded %d users to seed", len(users))

	repo, closeFn, err := openUserRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to %s store: %v", cfg.StoreDriver, err)
	}
	defer closeFn()

	hasher := auth.NewArgon2Hasher(auth.DefaultArgon2Params, logging.Nop())

	seeded, updated, err := seedUsers(ctx, repo, hasher, users)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", seeded)
	log.Printf("  - Existing users updated: %d", updated)
}

func openUserRepository(ctx context.Context, cfg *config.Config) (repository.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMySQL:
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.Migrate(gormDB); err != nil {
			return nil, nil, fmt.Errorf("auto-migrate: %w", err)
		}
		return repository.NewUserRepository(gormDB), func() {}, nil
	case config.StoreMongo:
		client, database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			return nil, nil, err
		}
		return mongodb.NewUserRepository(database), func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("seeding is not supported for STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func readSeedFile(path string) ([]SeedUserData, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var users []SeedUserData
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return users, nil
}

// seedUsers creates verified users, or resets the password and roles of
// those that already exist.
func seedUsers(ctx context.Context, repo repository.UserRepository, hasher auth.PasswordHasher, users []SeedUserData) (seeded int, updated int, err error) {
	for _, item := range users {
		email := model.NormalizeEmail(item.Email)
		if email == "" || item.Password == "" {
			log.Printf("Skipping seed entry without email or password")
			continue
		}

		existing, err := repo.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return seeded, updated, fmt.Errorf("error checking user %s: %w", email, err)
		}

		user := existing
		if user == nil {
			user = &model.User{Email: email}
		}
		user.FirstName = item.FirstName
		user.LastName = item.LastName
		user.Roles = item.Roles
		user.Verified = true
		user.VerificationCode = ""
		user.PasswordResetCode = nil
		if err := user.SetPassword(hasher, item.Password); err != nil {
			return seeded, updated, fmt.Errorf("error hashing password for %s: %w", email, err)
		}

		if existing != nil {
			if err := repo.Save(ctx, user); err != nil {
				return seeded, updated, fmt.Errorf("error updating user %s: %w", email, err)
			}
			updated++
			continue
		}
		if err := repo.Create(ctx, user); err != nil {
			return seeded, updated, fmt.Errorf("error creating user %s: %w", email, err)
		}
		seeded++
	}
	return seeded, updated, nil
}
