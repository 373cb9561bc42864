// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AliRajag51/bookstore-backend/initializers"
	"github.com/AliRajag51/bookstore-backend/models"
	"github.com/AliRajag51/bookstore-backend/utils"
)

const Password = "password123"

// NewDB opens a migrated SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "bookstore.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, initializers.SyncDatabase(db))
	return db
}

// NewLogger returns a logger that discards output.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// CreateUser stores an active user whose password is Password.
func CreateUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()

	hashed, err := utils.HashPassword(Password)
	require.NoError(t, err)

	user := models.User{
		FirstName:     "Test",
		LastName:      "User",
		Email:         email,
		Password:      hashed,
		AcceptedTerms: true,
		Role:          role,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreateBook stores an active book with the given price.
func CreateBook(t *testing.T, db *gorm.DB, title, price string) models.Book {
	t.Helper()

	book := models.Book{
		Title:    title,
		Author:   "Author of " + title,
		Category: "General",
		Price:    decimal.RequireFromString(price),
		Stock:    10,
		IsActive: true,
	}
	require.NoError(t, db.Create(&book).Error)
	return book
}
