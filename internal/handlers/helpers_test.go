package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/go-linksports/internal/auth"
	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/dtos"
	"github.com/iyunix/go-linksports/internal/metrics"
	"github.com/iyunix/go-linksports/internal/ratelimit"
	"github.com/iyunix/go-linksports/internal/repository/audit"
	"github.com/iyunix/go-linksports/internal/repository/connection"
	"github.com/iyunix/go-linksports/internal/repository/contact"
	"github.com/iyunix/go-linksports/internal/repository/post"
	"github.com/iyunix/go-linksports/internal/repository/profile"
	"github.com/iyunix/go-linksports/internal/repository/sport"
	"github.com/iyunix/go-linksports/internal/repository/user"
	"github.com/iyunix/go-linksports/internal/services"
	"github.com/iyunix/go-linksports/internal/services/admin_services"
	"github.com/iyunix/go-linksports/internal/services/profile_services"
	"github.com/iyunix/go-linksports/internal/services/social_services"
	"github.com/iyunix/go-linksports/internal/services/sport_services"
	"github.com/iyunix/go-linksports/internal/services/user_services"
	"github.com/iyunix/go-linksports/internal/testutil"
)

const testCode = "123456"

type sentCode struct {
	channel domain.ContactType
	to      string
	code    string
}

type captureDispatcher struct {
	mu   sync.Mutex
	sent []sentCode
}

func (d *captureDispatcher) Dispatch(_ context.Context, channel domain.ContactType, to, code string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentCode{channel: channel, to: to, code: code})
	return "job", nil
}

func (d *captureDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

type server struct {
	t          *testing.T
	db         *gorm.DB
	router     http.Handler
	tokens     *auth.TokenManager
	dispatcher *captureDispatcher
	metrics    *metrics.Metrics
}

type serverOption func(*RouterConfig)

func newServer(t *testing.T, opts ...serverOption) *server {
	t.Helper()
	db := testutil.NewTestDB(t)
	logger := &services.NoOpLogger{}
	dispatcher := &captureDispatcher{}
	tokens := auth.NewTokenManager("handler-secret", time.Hour)
	m := metrics.New()

	users := user.NewGormUserRepository(db)
	contacts := contact.NewGormContactRepository(db)
	sportRepo := sport.NewGormSportRepository(db)

	verification := user_services.NewVerificationService(contacts, dispatcher, logger,
		user_services.WithCodeGenerator(func() (string, error) { return testCode, nil }),
		user_services.WithObserver(m))
	authService := user_services.NewAuthService(users, verification, tokens, "boss@linksports.test", logger)
	profiles := profile_services.NewProfileService(profile.NewGormProfileRepository(db), sportRepo, logger)
	connections := social_services.NewConnectionService(connection.NewGormConnectionRepository(db), users, social_services.OpenPolicy{}, logger)
	posts := social_services.NewPostService(post.NewGormPostRepository(db), connections, logger)
	sports := sport_services.NewSportService(sportRepo, logger)
	admin := admin_services.NewAdminService(users, contacts, audit.NewGormAuditRepository(db), sports, logger)

	cfg := RouterConfig{
		Auth:           NewAuthHandler(authService, verification, logger, time.Hour, false),
		Profiles:       NewProfileHandler(profiles, logger),
		Connections:    NewConnectionHandler(connections, logger),
		Posts:          NewPostHandler(posts, logger),
		Sports:         NewSportHandler(sports, logger),
		Admin:          NewAdminHandler(admin, logger),
		Logs:           NewLogHandler(logger),
		Tokens:         tokens,
		Users:          users,
		Metrics:        m,
		MetricsHandler: m.Handler(),
		Logger:         logger,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &server{
		t:          t,
		db:         db,
		router:     NewRouter(cfg),
		tokens:     tokens,
		dispatcher: dispatcher,
		metrics:    m,
	}
}

func withAuthLimiter(l *ratelimit.MemoryRateLimiter) serverOption {
	return func(c *RouterConfig) { c.AuthLimiter = l }
}

func withAPILimiter(l ratelimit.Limiter) serverOption {
	return func(c *RouterConfig) { c.APILimiter = l }
}

// user creates an account and returns it with a bearer token.
func (s *server) user(username string, userType domain.UserType) (*domain.User, string) {
	s.t.Helper()
	u := testutil.CreateUser(s.t, s.db, username, userType)
	token, err := s.tokens.GenerateJWT(u.ID)
	require.NoError(s.t, err)
	return u, token
}

func (s *server) staff(username string, role domain.Role) (*domain.User, string) {
	s.t.Helper()
	u, token := s.user(username, domain.UserTypeClub)
	require.NoError(s.t, s.db.Model(u).Update("role", role).Error)
	u.Role = role
	return u, token
}

func (s *server) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// envelope decodes the response and unmarshals its data into data when
// data is non-nil.
func envelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) dtos.Envelope {
	t.Helper()
	var raw struct {
		Success bool                `json:"success"`
		Message string              `json:"message"`
		Data    json.RawMessage     `json:"data"`
		Errors  map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw), rec.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data), string(raw.Data))
	}
	return dtos.Envelope{Success: raw.Success, Message: raw.Message, Errors: raw.Errors}
}

type paged[T any] struct {
	Items      []T             `json:"items"`
	Pagination dtos.Pagination `json:"pagination"`
}
