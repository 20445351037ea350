package verification

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"encoding/json"
	"fmt"
	"time"

	"taxly/config"
	"taxly/models"
	"taxly/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RateLimitedError reports that a verification email was requested again
// before the server-side resend window elapsed. The remaining wait is the
// authoritative cooldown the caller must adopt.
type RateLimitedError struct {
	Remaining time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("verification email already sent; retry in %s", e.Remaining.Round(time.Second))
}

// ErrInvalidToken signals an unknown or expired verification link token.
var ErrInvalidToken = fmt.Errorf("verification token is invalid or expired")

// AccountProvisioner creates or updates the account record once an address is
// confirmed, and returns the identifiers the verification poll reports.
type AccountProvisioner interface {
	MarkVerified(ctx context.Context, email string) (*models.VerificationStatus, error)
}

// MailEnqueuer hands verification emails to the background mail worker.
type MailEnqueuer interface {
	EnqueueVerificationEmail(ctx context.Context, email, link string) error
}

// SignalWriter records the side-channel signal a flow resume consumes once.
type SignalWriter interface {
	WriteSignal(ctx context.Context, flowID string, signal models.VerifySignal) error
}

// Service sends verification emails and consumes verification link tokens.
type Service interface {
	Send(ctx context.Context, flowID, email string) error
	Confirm(ctx context.Context, token string) (*models.VerifySignal, error)
}

// DefaultService is the production implementation, backed by Redis.
type DefaultService struct {
	Cache    *redis.Client
	Accounts AccountProvisioner
	Mail     MailEnqueuer
	Signals  SignalWriter
	Logger   *zap.Logger

	// Cooldown is the server-side minimum wait between sends per address.
	Cooldown time.Duration
	// TokenTTL is how long a verification link stays valid.
	TokenTTL time.Duration
}

// tokenRecord ties a verification link token back to the flow that issued it.
type tokenRecord struct {
	Email  string `json:"email"`
	FlowID string `json:"flowId"`
}

// NewDefaultService constructs a verification service with standard windows.
func NewDefaultService(cache *redis.Client, accounts AccountProvisioner, mail MailEnqueuer, signals SignalWriter, logger *zap.Logger) *DefaultService {
	return &DefaultService{
		Cache:    cache,
		Accounts: accounts,
		Mail:     mail,
		Signals:  signals,
		Logger:   logger,
		Cooldown: 60 * time.Second,
		TokenTTL: 24 * time.Hour,
	}
}

// generateSecureToken generates a secure random token of the specified length.
// It returns a base32 encoded string (without padding) truncated to the desired length.
func generateSecureToken(length int) (string, error) {
	numBytes := (length*5 + 7) / 8
	randomBytes := make([]byte, numBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	token := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	if len(token) > length {
		token = token[:length]
	}
	return token, nil
}

// Send issues a verification email for the given address. The resend window
// is enforced here with a Redis NX key; a request inside the window returns a
// RateLimitedError carrying the remaining TTL.
func (s *DefaultService) Send(ctx context.Context, flowID, email string) error {
	cooldownKey := utils.VerifyCooldownPrefix + email

	ok, err := s.Cache.SetNX(ctx, cooldownKey, "1", s.Cooldown).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve verification send: %w", err)
	}
	if !ok {
		remaining, err := s.Cache.TTL(ctx, cooldownKey).Result()
		if err != nil || remaining <= 0 {
			remaining = s.Cooldown
		}
		return &RateLimitedError{Remaining: remaining}
	}

	token, err := generateSecureToken(32)
	if err != nil {
		s.Cache.Del(ctx, cooldownKey)
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	record, err := json.Marshal(tokenRecord{Email: email, FlowID: flowID})
	if err != nil {
		s.Cache.Del(ctx, cooldownKey)
		return fmt.Errorf("failed to marshal token record: %w", err)
	}
	if err := s.Cache.Set(ctx, utils.VerifyTokenPrefix+token, record, s.TokenTTL).Err(); err != nil {
		s.Cache.Del(ctx, cooldownKey)
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	link := fmt.Sprintf("%s/verify?token=%s", config.AppConfig.VerifyBaseURL, token)
	if err := s.Mail.EnqueueVerificationEmail(ctx, email, link); err != nil {
		// Release the window so the user can retry immediately.
		s.Cache.Del(ctx, cooldownKey)
		return fmt.Errorf("failed to queue verification email: %w", err)
	}

	s.Logger.Info("verification email queued", zap.String("email", email), zap.String("flowId", flowID))
	return nil
}

// Confirm consumes a verification link token: it marks the address verified,
// provisions the pending account, and writes the side-channel signal the flow
// picks up on its next resume. The token is single-use.
func (s *DefaultService) Confirm(ctx context.Context, token string) (*models.VerifySignal, error) {
	data, err := s.Cache.Get(ctx, utils.VerifyTokenPrefix+token).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}

	var rec tokenRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token record: %w", err)
	}

	if _, err := s.Accounts.MarkVerified(ctx, rec.Email); err != nil {
		return nil, fmt.Errorf("failed to mark email verified: %w", err)
	}

	signal := models.VerifySignal{Email: rec.Email, Verified: true}
	if err := s.Signals.WriteSignal(ctx, rec.FlowID, signal); err != nil {
		s.Logger.Error("failed to write verify signal", zap.String("flowId", rec.FlowID), zap.Error(err))
	}

	if err := s.Cache.Del(ctx, utils.VerifyTokenPrefix+token).Err(); err != nil {
		s.Logger.Error("failed to delete verification token", zap.Error(err))
	}

	return &signal, nil
}
