package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ghuser/todoreminder/services/account/domain"
	"github.com/ghuser/todoreminder/services/account/domain/models"
	"github.com/ghuser/todoreminder/services/account/domain/repositories"
)

// AccountService handles sign-up, login and LINE linking.
type AccountService struct {
	repo repositories.UserRepository
	cost int
}

// NewAccountService returns an AccountService hashing with bcrypt.DefaultCost.
func NewAccountService(repo repositories.UserRepository) *AccountService {
	return &AccountService{repo: repo, cost: bcrypt.DefaultCost}
}

// Signup creates an account for email and returns it.
func (s *AccountService) Signup(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{Email: models.NormalizeEmail(email), PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login returns the account for email when password matches. Unknown
// addresses and wrong passwords both yield ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

// LinkLine sets the LINE user id reminders for userID are pushed to.
func (s *AccountService) LinkLine(ctx context.Context, userID, lineUserID string) error {
	return s.repo.SetLineUserID(ctx, userID, lineUserID)
}

// LineUserID returns the linked LINE recipient for userID, or
// ErrLineNotLinked.
func (s *AccountService) LineUserID(ctx context.Context, userID string) (string, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.LineUserID == "" {
		return "", domain.ErrLineNotLinked
	}
	return u.LineUserID, nil
}
