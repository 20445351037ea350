package account

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	userRepo "taxly/database/repository/user"
	"taxly/models"
	"taxly/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenDuration     = 24 * time.Hour
	verifiedRecordTTL = 30 * time.Minute
	trialDuration     = 14 * 24 * time.Hour
)

// Service owns account records for the signup funnel: availability checks,
// provisional creation at verification, finalization at the personal-info
// step, and trial activation.
type Service interface {
	IsEmailAvailable(ctx context.Context, email string) (bool, error)
	MarkVerified(ctx context.Context, email string) (*models.VerificationStatus, error)
	VerificationStatus(ctx context.Context, email string) (*models.VerificationStatus, error)
	Finalize(ctx context.Context, email string, req models.PersonalInfoRequest) (*models.AuthResult, error)
	ActivateTrial(ctx context.Context, email, planName string) error
}

// DefaultService is the production implementation.
type DefaultService struct {
	Repo   userRepo.UserRepository
	Cache  *redis.Client
	Logger *zap.Logger
}

// NewDefaultService wires the account service.
func NewDefaultService(repo userRepo.UserRepository, cache *redis.Client, logger *zap.Logger) *DefaultService {
	return &DefaultService{Repo: repo, Cache: cache, Logger: logger}
}

// IsEmailAvailable reports whether the address can start a new registration.
// A pending provisional record does not block; the flow simply resumes it.
func (s *DefaultService) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	existing, err := s.Repo.GetByEmailWithProjection(email, bson.M{"id": 1, "status": 1})
	if err != nil {
		s.Logger.Error("IsEmailAvailable: lookup failed", zap.Error(err))
		return false, fmt.Errorf("failed to check email availability: %w", err)
	}
	if existing == nil {
		return true, nil
	}
	return existing.Status == models.UserStatusPending, nil
}

// MarkVerified records a confirmed address. It provisions a pending account
// if none exists, mints the auth token the poll reports, and caches the
// verified record for the flow to pick up.
func (s *DefaultService) MarkVerified(ctx context.Context, email string) (*models.VerificationStatus, error) {
	usr, err := s.Repo.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if usr == nil {
		usr = &models.User{
			ID:            uuid.New().String(),
			Email:         email,
			EmailVerified: true,
			Status:        models.UserStatusPending,
		}
		if err := s.Repo.Create(usr); err != nil {
			return nil, fmt.Errorf("failed to create provisional account: %w", err)
		}
	}

	token, err := utils.GenerateToken(usr.ID, usr.Email, tokenDuration)
	if err != nil {
		s.Logger.Error("MarkVerified: failed to generate auth token", zap.Error(err))
		return nil, fmt.Errorf("verification failed, please try again")
	}

	if err := s.Repo.UpdateFields(usr.ID, map[string]interface{}{
		"emailVerified": true,
		"token_hash":    utils.HashToken(token),
	}); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	status := &models.VerificationStatus{Verified: true, UserID: usr.ID, Token: token}
	payload, err := json.Marshal(status)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal verification status: %w", err)
	}
	if err := s.Cache.Set(ctx, utils.VerifiedEmailPrefix+email, payload, verifiedRecordTTL).Err(); err != nil {
		s.Logger.Error("MarkVerified: failed to cache verified record", zap.Error(err))
	}

	return status, nil
}

// VerificationStatus reports whether the address has been confirmed. Unknown
// addresses are simply unverified, never an error.
func (s *DefaultService) VerificationStatus(ctx context.Context, email string) (*models.VerificationStatus, error) {
	data, err := s.Cache.Get(ctx, utils.VerifiedEmailPrefix+email).Result()
	if err != nil {
		if err == redis.Nil {
			return &models.VerificationStatus{Verified: false}, nil
		}
		return nil, fmt.Errorf("failed to read verification status: %w", err)
	}

	var status models.VerificationStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verification status: %w", err)
	}
	return &status, nil
}

// Finalize fills in the verified provisional record with the user's personal
// details and credentials, and returns the account identifiers. The token
// issued at verification is reused when still live so the flow's identifiers
// stay stable.
func (s *DefaultService) Finalize(ctx context.Context, email string, req models.PersonalInfoRequest) (*models.AuthResult, error) {
	usr, err := s.Repo.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if usr == nil || !usr.EmailVerified {
		return nil, fmt.Errorf("email has not been verified")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.Logger.Error("Finalize: failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	token := ""
	if cached, err := s.VerificationStatus(ctx, email); err == nil && cached.Verified && cached.UserID == usr.ID {
		token = cached.Token
	}
	if token == "" {
		token, err = utils.GenerateToken(usr.ID, usr.Email, tokenDuration)
		if err != nil {
			s.Logger.Error("Finalize: failed to generate auth token", zap.Error(err))
			return nil, fmt.Errorf("registration failed, please try again")
		}
	}

	usr.FirstName = req.FirstName
	usr.LastName = req.LastName
	usr.Role = req.Role
	usr.PasswordHash = string(hashedPassword)
	usr.Password = ""
	usr.Status = models.UserStatusActive
	usr.TokenHash = utils.HashToken(token)

	if err := s.Repo.Update(usr); err != nil {
		s.Logger.Error("Finalize: failed to update account", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	return &models.AuthResult{UserID: usr.ID, Token: token}, nil
}

// ActivateTrial enables the trial tier on the account. Activating an already
// active trial is a no-op, so callers can fire it blindly.
func (s *DefaultService) ActivateTrial(ctx context.Context, email, planName string) error {
	usr, err := s.Repo.GetByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}
	if usr == nil {
		return fmt.Errorf("no account for %s", email)
	}
	if usr.TrialActive {
		return nil
	}

	if err := s.Repo.UpdateFields(usr.ID, map[string]interface{}{
		"trialActive":    true,
		"planName":       planName,
		"trialExpiresAt": time.Now().Add(trialDuration),
	}); err != nil {
		return fmt.Errorf("failed to activate trial: %w", err)
	}
	return nil
}
