package user_services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-linksports/internal/auth"
	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/repository/contact"
	"github.com/iyunix/go-linksports/internal/repository/user"
	"github.com/iyunix/go-linksports/internal/services"
	"github.com/iyunix/go-linksports/internal/testutil"
)

type sentCode struct {
	channel domain.ContactType
	to      string
	code    string
}

// captureDispatcher records every queued code instead of delivering it.
type captureDispatcher struct {
	mu   sync.Mutex
	sent []sentCode
	err  error
}

func (d *captureDispatcher) Dispatch(ctx context.Context, channel domain.ContactType, to, code string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return "", d.err
	}
	d.sent = append(d.sent, sentCode{channel: channel, to: to, code: code})
	return "job", nil
}

func (d *captureDispatcher) last() (sentCode, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.sent) == 0 {
		return sentCode{}, false
	}
	return d.sent[len(d.sent)-1], true
}

func (d *captureDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

type fixture struct {
	db           *gorm.DB
	clock        *testutil.Clock
	dispatcher   *captureDispatcher
	contacts     contact.ContactRepository
	users        user.UserRepository
	verification *VerificationService
	auth         *AuthService
	tokens       *auth.TokenManager
}

func newFixture(t *testing.T, codes ...string) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	clock := testutil.NewClock(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	dispatcher := &captureDispatcher{}
	contacts := contact.NewGormContactRepository(db)
	users := user.NewGormUserRepository(db)
	logger := &services.NoOpLogger{}

	opts := []VerificationOption{WithClock(clock.Now), WithLocation(time.UTC)}
	if len(codes) > 0 {
		queue := append([]string(nil), codes...)
		opts = append(opts, WithCodeGenerator(func() (string, error) {
			if len(queue) == 0 {
				return "", errors.New("no more codes")
			}
			code := queue[0]
			if len(queue) > 1 {
				queue = queue[1:]
			}
			return code, nil
		}))
	}
	verification := NewVerificationService(contacts, dispatcher, logger, opts...)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	authService := NewAuthService(users, verification, tokens, "boss@linksports.test", logger)
	authService.now = clock.Now

	return &fixture{
		db:           db,
		clock:        clock,
		dispatcher:   dispatcher,
		contacts:     contacts,
		users:        users,
		verification: verification,
		auth:         authService,
		tokens:       tokens,
	}
}
