package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/todoreminder/pkg/database"
	"github.com/ghuser/todoreminder/services/account/domain"
	"github.com/ghuser/todoreminder/services/account/domain/models"
	"github.com/ghuser/todoreminder/services/account/infrastructure/persistence/postgres/db"
)

// UserRepository implements repositories.UserRepository against PostgreSQL.
type UserRepository struct {
	db *database.Database
}

// NewUserRepository returns a UserRepository on the given pool.
func NewUserRepository(database *database.Database) *UserRepository {
	return &UserRepository{db: database}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	id := uuid.New()
	createdAt, err := db.New(r.db.DB()).InsertUser(ctx, db.InsertUserParams{
		ID:           id,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = id.String()
	u.CreatedAt = createdAt
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row, err := db.New(r.db.DB()).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return rowToUser(row), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	row, err := db.New(r.db.DB()).GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return rowToUser(row), nil
}

// SetLineUserID links lineUserID to the account; an empty value unlinks it.
func (r *UserRepository) SetLineUserID(ctx context.Context, id, lineUserID string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	n, err := db.New(r.db.DB()).SetLineUserID(ctx, db.SetLineUserIDParams{
		ID:         uid,
		LineUserID: sql.NullString{String: lineUserID, Valid: lineUserID != ""},
	})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func rowToUser(row db.User) *models.User {
	return &models.User{
		ID:           row.ID.String(),
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		LineUserID:   row.LineUserID.String,
		CreatedAt:    row.CreatedAt,
	}
}
