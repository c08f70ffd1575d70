// Package testutil provides database helpers for integration tests.
// Tests that need PostgreSQL skip themselves when no server is reachable,
// so the pure unit tests still run everywhere.
package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/agencydesk/commerce-api/internal/database"
	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB connects to the test PostgreSQL database using environment
// variables, falling back to the docker-compose defaults. The test is
// skipped when no database is reachable.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	host := getEnvOrDefault("DATABASE_HOST", "localhost")
	port := getEnvOrDefault("DATABASE_PORT", "5432")
	user := getEnvOrDefault("DATABASE_USER", "commerce_user")
	password := getEnvOrDefault("DATABASE_PASSWORD", "commerce_password")
	dbname := getEnvOrDefault("DATABASE_NAME", "commerce_test")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("skipping: test database not reachable: %v", err)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	if err := sqlDB.Ping(); err != nil {
		t.Skipf("skipping: test database not reachable: %v", err)
	}

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// SetupCleanTestDB connects and wipes all application tables so the test
// starts from an empty state.
func SetupCleanTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := SetupTestDB(t)
	CleanupTestData(t, db)
	return db
}

// CleanupTestData deletes rows from every application table, children first
// to respect foreign keys.
func CleanupTestData(t *testing.T, db *gorm.DB) {
	t.Helper()

	tables := []string{
		"notifications",
		"activities",
		"line_items",
		"workflow_tasks",
		"workflows",
		"quotations",
		"contracts",
		"clients",
		"leads",
		"number_sequences",
		"employees",
	}
	for _, table := range tables {
		err := db.Exec("DELETE FROM " + table).Error
		require.NoError(t, err, "failed to clean table %s", table)
	}
}

// CreateTestLead inserts a lead with sensible defaults
func CreateTestLead(t *testing.T, db *gorm.DB, name string) *domain.Lead {
	t.Helper()

	lead := &domain.Lead{
		Name:   name,
		Email:  "lead@example.com",
		Status: domain.LeadStatusNew,
	}
	require.NoError(t, db.Create(lead).Error)
	return lead
}

// CreateTestClient inserts an active client with sensible defaults
func CreateTestClient(t *testing.T, db *gorm.DB, name string) *domain.Client {
	t.Helper()

	client := &domain.Client{
		Name:     name,
		Email:    "client@example.com",
		IsActive: true,
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
