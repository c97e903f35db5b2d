package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rently/internal/providers"
	"rently/internal/retry"
	"rently/internal/structures"
)

// ErrLockedOut is returned while an account's lockout window is active.
var ErrLockedOut = errors.New("account temporarily locked out")

type loginRecord struct {
	failures     int
	lockoutUntil time.Time
}

type session struct {
	expiresAt time.Time
	timer     *time.Timer
}

// AuthService gates login attempts with a per-email failure counter and
// lockout window, and manages JWT sessions with an absolute expiry. It is
// an explicitly constructed service with its own lifecycle, not a
// process-wide singleton.
type AuthService struct {
	mu       sync.Mutex
	attempts map[string]*loginRecord
	sessions map[string]*session

	identity providers.IdentityVerifierInterface
	retrier  *retry.Policy
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	clock    func() time.Time

	maxAttempts     int
	lockoutDuration time.Duration
	sessionTTL      time.Duration
	sweepInterval   time.Duration
	secret          []byte

	// OnForceSignOut runs when a session expires via its timer.
	OnForceSignOut func(email string)

	done chan struct{}
	wg   sync.WaitGroup
}

func NewAuthService(conf *structures.Config, identity providers.IdentityVerifierInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *AuthService {
	retryAttempts := conf.Auth.RetryAttempts
	if retryAttempts <= 0 {
		retryAttempts = 3
	}
	retryDelay := conf.Auth.RetryBaseDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	return &AuthService{
		attempts:        make(map[string]*loginRecord),
		sessions:        make(map[string]*session),
		identity:        identity,
		retrier:         retry.NewPolicy(retryAttempts, retryDelay, logger),
		logger:          logger,
		metrics:         metrics,
		clock:           time.Now,
		maxAttempts:     conf.Auth.MaxAttempts,
		lockoutDuration: conf.Auth.LockoutDuration,
		sessionTTL:      conf.Auth.SessionTTL,
		sweepInterval:   conf.Auth.SweepInterval,
		secret:          []byte(conf.Auth.JWTSecret),
	}
}

// Start launches the periodic sweep clearing expired lockout records.
func (s *AuthService) Start() {
	s.done = make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweepLockouts()
			case <-s.done:
				return
			}
		}
	}()
}

func (s *AuthService) Stop() {
	if s.done == nil {
		return
	}
	close(s.done)
	s.wg.Wait()
	s.done = nil

	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.timer.Stop()
	}
	s.sessions = make(map[string]*session)
	s.mu.Unlock()
}

// Login verifies credentials against the identity provider, retrying
// network-class failures, and issues a session token on success.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if s.IsUserLockedOut(email) {
		return "", ErrLockedOut
	}

	var userID string
	err := s.retrier.Do(ctx, "verify credentials", func() error {
		var verifyErr error
		userID, verifyErr = s.identity.VerifyCredentials(ctx, email, password)
		return verifyErr
	})
	if err != nil {
		if errors.Is(err, providers.ErrInvalidCredentials) {
			s.RecordLoginAttempt(email, false)
		}
		return "", err
	}

	s.RecordLoginAttempt(email, true)
	token, _, err := s.StartSession(email, userID)
	return token, err
}

// RecordLoginAttempt clears the failure counter on success; on failure it
// increments and, at the configured threshold, opens the lockout window.
func (s *AuthService) RecordLoginAttempt(email string, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if success {
		delete(s.attempts, email)
		return
	}

	rec := s.attempts[email]
	if rec == nil {
		rec = &loginRecord{}
		s.attempts[email] = rec
	}
	rec.failures++
	if rec.failures >= s.maxAttempts {
		rec.lockoutUntil = s.clock().Add(s.lockoutDuration)
		s.logger.Warnf(providers.TypeApp, "Account %s locked out after %d failed attempts", email, rec.failures)
	}
}

// IsUserLockedOut is a pure time comparison against the lockout record.
func (s *AuthService) IsUserLockedOut(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.attempts[email]
	return rec != nil && s.clock().Before(rec.lockoutUntil)
}

func (s *AuthService) FailedAttempts(email string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec := s.attempts[email]; rec != nil {
		return rec.failures
	}
	return 0
}

type sessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// StartSession issues a signed token carrying the absolute expiry and
// schedules a timer that force-signs-out the account when it elapses.
func (s *AuthService) StartSession(email, userID string) (string, time.Time, error) {
	now := s.clock()
	expiresAt := now.Add(s.sessionTTL)

	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	s.mu.Lock()
	if prev := s.sessions[email]; prev != nil {
		prev.timer.Stop()
	}
	s.sessions[email] = &session{
		expiresAt: expiresAt,
		timer: time.AfterFunc(s.sessionTTL, func() {
			s.expireSession(email)
		}),
	}
	s.mu.Unlock()

	return token, expiresAt, nil
}

// CheckSession re-validates a token against its persisted expiry, for
// callers whose timer may not have fired (a suspended client, say).
func (s *AuthService) CheckSession(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock))
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}

func (s *AuthService) EndSession(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.sessions[email]; sess != nil {
		sess.timer.Stop()
		delete(s.sessions, email)
	}
}

func (s *AuthService) expireSession(email string) {
	s.mu.Lock()
	delete(s.sessions, email)
	s.mu.Unlock()

	s.logger.Infof(providers.TypeApp, "Session for %s expired, forcing sign-out", email)
	if s.OnForceSignOut != nil {
		s.OnForceSignOut(email)
	}
}

// sweepLockouts drops records whose lockout window has passed and reports
// the active count.
func (s *AuthService) sweepLockouts() {
	now := s.clock()
	s.mu.Lock()
	active := 0
	for email, rec := range s.attempts {
		if !rec.lockoutUntil.IsZero() && !now.Before(rec.lockoutUntil) {
			delete(s.attempts, email)
			continue
		}
		if now.Before(rec.lockoutUntil) {
			active++
		}
	}
	s.mu.Unlock()
	s.metrics.SetActiveLockouts(active)
}
