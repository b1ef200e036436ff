// File: internal/services/social_services/connection_service.go
package social_services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/repository/connection"
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// UserFinder resolves a user id, failing with domain.ErrNotFound.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
}

type ConnectionService struct {
	repo   connection.ConnectionRepository
	users  UserFinder
	policy TransitionPolicy
	logger Logger
	now    func() time.Time
}

func NewConnectionService(repo connection.ConnectionRepository, users UserFinder, policy TransitionPolicy, logger Logger) *ConnectionService {
	if policy == nil {
		policy = OpenPolicy{}
	}
	return &ConnectionService{
		repo:   repo,
		users:  users,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Request creates a pending connection from requester to addressee. An
// existing connection in either direction is returned unchanged, with
// created reporting false.
func (s *ConnectionService) Request(ctx context.Context, requesterID, addresseeID uint) (conn *domain.Connection, created bool, err error) {
	if requesterID == addresseeID {
		return nil, false, domain.ErrSelfConnection
	}
	if _, err := s.users.FindByID(ctx, addresseeID); err != nil {
		return nil, false, err
	}

	existing, err := s.repo.FindBetween(ctx, requesterID, addresseeID)
	if err == nil {
		s.logger.Debug("connection already exists", "connection_id", existing.ID, "status", existing.Status)
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	conn = &domain.Connection{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      domain.ConnectionPending,
	}
	if err := s.repo.Create(ctx, conn); err != nil {
		if errors.Is(err, connection.ErrDuplicateConnection) {
			existing, findErr := s.repo.FindBetween(ctx, requesterID, addresseeID)
			if findErr == nil {
				return existing, false, nil
			}
		}
		s.logger.Error("connection request failed", "error", err, "requester_id", requesterID, "addressee_id", addresseeID)
		return nil, false, fmt.Errorf("failed to create connection: %w", err)
	}
	s.logger.Info("connection requested", "connection_id", conn.ID, "requester_id", requesterID, "addressee_id", addresseeID)
	return conn, true, nil
}

// FindBetween is order independent.
func (s *ConnectionService) FindBetween(ctx context.Context, a, b uint) (*domain.Connection, error) {
	return s.repo.FindBetween(ctx, a, b)
}

// UpdateStatus moves the connection to status on behalf of actor, who must
// be one of its participants and satisfy the configured policy.
func (s *ConnectionService) UpdateStatus(ctx context.Context, id, actor uint, status domain.ConnectionStatus) (*domain.Connection, error) {
	if !status.Valid() {
		verr := domain.NewValidationError()
		verr.Add("status", "must be one of pending, accepted, blocked")
		return nil, verr
	}
	c, err := s.participantConnection(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Allow(c, actor, status); err != nil {
		s.logger.Warn("connection transition refused",
			"connection_id", c.ID,
			"actor_id", actor,
			"from", c.Status,
			"to", status,
			"policy", s.policy.Name())
		return nil, err
	}

	from := c.Status
	c.Transition(status, actor, s.now())
	if err := s.repo.UpdateStatus(ctx, c); err != nil {
		s.logger.Error("connection update failed", "error", err, "connection_id", c.ID)
		return nil, fmt.Errorf("failed to update connection: %w", err)
	}
	s.logger.Info("connection status changed", "connection_id", c.ID, "actor_id", actor, "from", from, "to", status)
	return c, nil
}

// Delete removes the connection. Only participants may delete it.
func (s *ConnectionService) Delete(ctx context.Context, id, actor uint) error {
	c, err := s.participantConnection(ctx, id, actor)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, c.ID); err != nil {
		return err
	}
	s.logger.Info("connection deleted", "connection_id", c.ID, "actor_id", actor)
	return nil
}

func (s *ConnectionService) ListAccepted(ctx context.Context, userID uint) ([]domain.Connection, error) {
	return s.repo.ListAccepted(ctx, userID)
}

func (s *ConnectionService) ListRequests(ctx context.Context, userID uint) ([]domain.Connection, error) {
	return s.repo.ListPendingFor(ctx, userID)
}

// ConnectedUserIDs returns the users userID has an accepted connection with.
func (s *ConnectionService) ConnectedUserIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.repo.ConnectedUserIDs(ctx, userID)
}

// IsConnected reports whether a and b have an accepted connection.
func (s *ConnectionService) IsConnected(ctx context.Context, a, b uint) (bool, error) {
	c, err := s.repo.FindBetween(ctx, a, b)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return c.Status == domain.ConnectionAccepted, nil
}

func (s *ConnectionService) participantConnection(ctx context.Context, id, actor uint) (*domain.Connection, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Involves(actor) {
		s.logger.Warn("connection access by non-participant", "connection_id", id, "actor_id", actor)
		return nil, domain.ErrForbidden
	}
	return c, nil
}
