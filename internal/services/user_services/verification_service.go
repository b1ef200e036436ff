// File: internal/services/user_services/verification_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/repository/contact"
)

// VerificationService issues and checks one-time codes per contact channel.
type VerificationService struct {
	contactRepo contact.ContactRepository
	dispatcher  Dispatcher
	logger      Logger
	now         Clock
	location    *time.Location
	generate    func() (string, error)
	observer    Observer
}

type VerificationOption func(*VerificationService)

// WithClock replaces the time source.
func WithClock(now Clock) VerificationOption {
	return func(s *VerificationService) { s.now = now }
}

// WithLocation sets the timezone whose calendar day bounds the daily cap.
func WithLocation(loc *time.Location) VerificationOption {
	return func(s *VerificationService) { s.location = loc }
}

// WithCodeGenerator replaces the random code source.
func WithCodeGenerator(gen func() (string, error)) VerificationOption {
	return func(s *VerificationService) { s.generate = gen }
}

// WithObserver reports send and check outcomes to o.
func WithObserver(o Observer) VerificationOption {
	return func(s *VerificationService) { s.observer = o }
}

func NewVerificationService(contactRepo contact.ContactRepository, dispatcher Dispatcher, logger Logger, opts ...VerificationOption) *VerificationService {
	s := &VerificationService{
		contactRepo: contactRepo,
		dispatcher:  dispatcher,
		logger:      logger,
		now:         time.Now,
		location:    time.UTC,
		generate:    domain.GenerateCode,
		observer:    nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestCode issues a fresh code for the user's current address on channel
// and queues its delivery. The code itself is never returned.
func (s *VerificationService) RequestCode(ctx context.Context, u *domain.User, channel domain.ContactType) (*domain.UserContact, error) {
	if !channel.Valid() {
		return nil, fmt.Errorf("unknown contact type %q", channel)
	}
	value := u.ChannelValue(channel)
	if value == "" {
		verr := domain.NewValidationError()
		verr.Add(string(channel), "can't be blank")
		return nil, verr
	}

	c, err := s.contactRepo.FindOrCreate(ctx, u.ID, channel, value)
	if err != nil {
		if errors.Is(err, contact.ErrContactTaken) {
			verr := domain.NewValidationError()
			verr.Add(string(channel), "has already been taken")
			return nil, verr
		}
		s.logger.Error("failed to load contact", "error", err, "user_id", u.ID, "channel", channel)
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}

	now := s.now()
	if err := c.CheckSendAllowed(now, s.location); err != nil {
		s.logger.Warn("verification code send throttled",
			"user_id", u.ID,
			"channel", channel,
			"reason", err.Error())
		s.observer.CodeRequested(channel, err)
		return nil, err
	}

	code, err := s.generate()
	if err != nil {
		s.logger.Error("code generation failed", "error", err, "user_id", u.ID)
		return nil, err
	}
	c.IssueCode(code, now, s.location)
	if err := s.contactRepo.RecordSend(ctx, c); err != nil {
		s.logger.Error("failed to save verification code", "error", err, "user_id", u.ID, "channel", channel)
		return nil, fmt.Errorf("failed to save verification code: %w", err)
	}

	jobID, err := s.dispatcher.Dispatch(ctx, channel, c.Value, code)
	if err != nil {
		s.logger.Error("failed to queue code delivery",
			"error", err,
			"user_id", u.ID,
			"channel", channel,
			"to", mask(c.Value))
	} else {
		s.logger.Info("verification code issued",
			"user_id", u.ID,
			"channel", channel,
			"to", mask(c.Value),
			"job_id", jobID,
			"sends_today", c.DailySendCount)
	}
	s.observer.CodeRequested(channel, nil)
	return c, nil
}

// VerifyCode spends one attempt on c and reports whether submitted matched.
// A match clears the code state and marks the channel verified.
func (s *VerificationService) VerifyCode(ctx context.Context, c *domain.UserContact, submitted string) (bool, error) {
	if c.Attempts >= domain.MaxVerifyAttempts {
		s.logger.Warn("verification blocked after too many attempts", "contact_id", c.ID, "user_id", c.UserID)
		s.observer.CodeChecked(c.ContactType, CheckTooManyAttempts)
		return false, domain.ErrTooManyAttempts
	}

	if err := s.contactRepo.IncrementAttempts(ctx, c.ID); err != nil {
		s.logger.Error("failed to record verification attempt", "error", err, "contact_id", c.ID)
		return false, fmt.Errorf("failed to record attempt: %w", err)
	}
	c.Attempts++

	if !c.CodeValid(submitted, s.now()) {
		s.logger.Warn("invalid verification code",
			"contact_id", c.ID,
			"user_id", c.UserID,
			"attempts", c.Attempts)
		s.observer.CodeChecked(c.ContactType, CheckInvalid)
		return false, nil
	}

	c.MarkVerified()
	if err := s.contactRepo.MarkVerified(ctx, c); err != nil {
		s.logger.Error("failed to save verification status", "error", err, "contact_id", c.ID)
		return false, fmt.Errorf("failed to save verification status: %w", err)
	}
	s.logger.Info("contact verified", "contact_id", c.ID, "user_id", c.UserID, "channel", c.ContactType)
	s.observer.CodeChecked(c.ContactType, CheckVerified)
	return true, nil
}

// LookupContact finds the contact for a raw address, normalizing it first.
func (s *VerificationService) LookupContact(ctx context.Context, channel domain.ContactType, raw string) (*domain.UserContact, error) {
	return s.contactRepo.FindByValue(ctx, channel, domain.NormalizeContact(channel, raw))
}

// VerifyUserChannel verifies the user's current address on channel.
func (s *VerificationService) VerifyUserChannel(ctx context.Context, u *domain.User, channel domain.ContactType, code string) error {
	c, err := s.LookupContact(ctx, channel, u.ChannelValue(channel))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrVerificationNotInitiated
		}
		return err
	}
	if c.UserID != u.ID {
		return domain.ErrVerificationNotInitiated
	}

	ok, err := s.VerifyCode(ctx, c, code)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidCode
	}
	return nil
}

// IsVerified derives the channel's state from the user's contacts.
func (s *VerificationService) IsVerified(ctx context.Context, u *domain.User, channel domain.ContactType) (bool, error) {
	contacts, err := s.contactRepo.ListByUser(ctx, u.ID)
	if err != nil {
		return false, err
	}
	return u.IsVerified(contacts, channel), nil
}

// Status returns the verified flag of both channels.
func (s *VerificationService) Status(ctx context.Context, u *domain.User) (email, phone bool, err error) {
	contacts, err := s.contactRepo.ListByUser(ctx, u.ID)
	if err != nil {
		return false, false, err
	}
	return u.IsVerified(contacts, domain.ContactEmail), u.IsVerified(contacts, domain.ContactPhone), nil
}
