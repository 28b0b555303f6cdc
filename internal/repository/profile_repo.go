package repository

import (
	"context"
	"errors"

	"portal-notification-service/internal/domain"
	"portal-notification-service/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository loads recipient contact records.
type ProfileRepository interface {
	// GetProfile returns xerrors.ErrNotFound when the user does not exist.
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
}

type pgProfileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) ProfileRepository {
	return &pgProfileRepo{db: db}
}

func (p *pgProfileRepo) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT id, COALESCE(email, ''), COALESCE(display_name, ''), COALESCE(phone, '')
		FROM users
		WHERE id = $1
	`

	var profile domain.Profile
	err := p.db.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Email,
		&profile.DisplayName,
		&profile.Phone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}
