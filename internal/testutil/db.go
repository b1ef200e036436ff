// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/go-linksports/internal/database"
	"github.com/iyunix/go-linksports/internal/domain"
)

// NewTestDB returns a migrated in-memory SQLite database private to t.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:", true)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Clock is a settable time source.
type Clock struct {
	current time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{current: start}
}

func (c *Clock) Now() time.Time { return c.current }

func (c *Clock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func (c *Clock) Set(t time.Time) { c.current = t }

// CreateUser inserts a user with a hashed password and a profile of the
// matching variant.
func CreateUser(t *testing.T, db *gorm.DB, username string, userType domain.UserType) *domain.User {
	t.Helper()
	u := &domain.User{
		Username:  username,
		Email:     username + "@example.com",
		Phone:     domain.NormalizePhone(nextPhone()),
		FirstName: "Test",
		LastName:  username,
		UserType:  userType,
		Role:      domain.RoleUser,
		Active:    true,
	}
	require.NoError(t, u.HashPassword("password123"))
	require.NoError(t, db.Create(u).Error)

	p, err := domain.NewProfileForUser(u)
	require.NoError(t, err)
	require.NoError(t, db.Create(p).Error)
	return u
}

var phoneSeq atomic.Int64

func nextPhone() string {
	return fmt.Sprintf("9%09d", phoneSeq.Add(1))
}
