package service

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"buildingportal/internal/auth"
	"buildingportal/internal/config"
	"buildingportal/internal/notify"
	"buildingportal/internal/store"
)

var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrExpired            = errors.New("session expired")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type Service struct {
	cfg    config.Config
	st     *store.Store
	tokens *auth.TokenIssuer
	sender notify.Sender
	logger *zap.Logger
	now    func() time.Time
}

func New(cfg config.Config, st *store.Store, tokens *auth.TokenIssuer, sender notify.Sender, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = notify.LogSender{}
	}
	if cfg.ParkingCapacity <= 0 {
		cfg.ParkingCapacity = DefaultParkingCapacity
	}
	return &Service{cfg: cfg, st: st, tokens: tokens, sender: sender, logger: logger, now: time.Now}
}

func (s *Service) Store() *store.Store { return s.st }

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// storeErr translates store sentinels into service errors and passes
// anything else through unchanged.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrConflict):
		return invalidInput("record already exists")
	}
	return err
}

// mintAccessCardID returns a year-prefixed reference such as 2026-48213-A.
// Uniqueness rests on the size of the random space.
func (s *Service) mintAccessCardID() string {
	return fmt.Sprintf("%d-%05d-A", s.now().Year(), 10000+rand.IntN(90000))
}
