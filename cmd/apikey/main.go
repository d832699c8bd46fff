package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/rostam/opsdesk/internal/application/auth"
	"github.com/rostam/opsdesk/internal/config"
	"github.com/rostam/opsdesk/internal/domain"
	"github.com/rostam/opsdesk/internal/infrastructure/persistence/postgres"
	"github.com/rostam/opsdesk/internal/infrastructure/persistence/sqlite"
)

// keyStore is the storage surface this tool needs: API key persistence
// plus staff creation. Both database backends satisfy it.
type keyStore interface {
	auth.Repository
	CreateStaff(ctx context.Context, staff *domain.Staff) (*domain.Staff, error)
	FindStaffByEmail(ctx context.Context, email string) (*domain.Staff, error)
	Close() error
}

// Bootstraps a staff member and mints an API key for them. Development
// utility, not a user management surface.
func main() {
	staffName := flag.String("staff-name", "", "Name of the staff member (required)")
	staffEmail := flag.String("staff-email", "", "Email of the staff member (required)")
	staffRole := flag.String("staff-role", "staff", "Role: staff or admin")
	keyName := flag.String("key-name", "", "Name/description for the API key (required)")
	days := flag.Int("days", 0, "Days until expiration (0 = never expires)")

	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadAPIKeyGenConfig(*staffName, *staffEmail, *staffRole, *keyName, *days)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		flag.Usage()
		log.Fatal(err)
	}

	role, err := domain.NewRole(cfg.StaffRole)
	if err != nil {
		log.Fatalf("Invalid role: %v", err)
	}

	ctx := context.Background()

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Failed to close store: %v", err)
		}
	}()

	staff, err := resolveStaff(ctx, store, cfg, role)
	if err != nil {
		log.Fatalf("Failed to resolve staff member: %v", err)
	}

	var expiresAt *time.Time
	if cfg.DaysValid > 0 {
		expiry := time.Now().UTC().AddDate(0, 0, cfg.DaysValid)
		expiresAt = &expiry
	}

	apiKey, err := auth.CreateAPIKey(ctx, store, staff.ID, cfg.KeyName, expiresAt)
	if err != nil {
		log.Fatalf("Failed to create API key: %v", err)
	}

	fmt.Println("\nAPI key created successfully!")
	fmt.Println("----------------------------------------")
	fmt.Printf("Staff: %s <%s> (%s)\n", staff.Name, staff.Email, staff.Role)
	fmt.Printf("Key name: %s\n", cfg.KeyName)
	if expiresAt != nil {
		fmt.Printf("Expires: %s (%d days)\n", expiresAt.Format(time.RFC3339), cfg.DaysValid)
	} else {
		fmt.Println("Expires: Never")
	}
	fmt.Println("----------------------------------------")
	fmt.Printf("\nAPI Key: %s\n\n", apiKey)
	fmt.Println("IMPORTANT: Save this key now! It will not be shown again.")
	fmt.Println("Usage example:")
	fmt.Printf("  curl -H \"Authorization: Bearer %s\" http://localhost:8081/api/tasks\n", apiKey)
}

// resolveStaff reuses an existing staff member with the given email or
// creates a new one.
func resolveStaff(ctx context.Context, store keyStore, cfg *config.APIKeyGenConfig, role domain.Role) (*domain.Staff, error) {
	existing, err := store.FindStaffByEmail(ctx, cfg.StaffEmail)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrStaffNotFound) {
		return nil, err
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate staff id: %w", err)
	}

	return store.CreateStaff(ctx, &domain.Staff{
		ID:        idObj.String(),
		Name:      cfg.StaffName,
		Email:     cfg.StaffEmail,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (keyStore, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		})
	case config.DriverSQLite:
		return sqlite.NewSQLiteStore(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
}
