package repository

import (
	"context"
	"errors"

	"portal-notification-service/internal/domain"
	"portal-notification-service/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PreferenceRepository reads and writes per-user channel toggles. The
// dispatch engine itself only reads; the write path serves the settings UI.
type PreferenceRepository interface {
	// Get returns xerrors.ErrNotFound when the user has no row for the key.
	Get(ctx context.Context, userID, preferenceKey string) (*domain.ChannelPreference, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.ChannelPreference, error)
	Upsert(ctx context.Context, pref *domain.ChannelPreference) (*domain.ChannelPreference, error)
}

type pgPreferenceRepo struct {
	db *pgxpool.Pool
}

func NewPreferenceRepository(db *pgxpool.Pool) PreferenceRepository {
	return &pgPreferenceRepo{db: db}
}

func (p *pgPreferenceRepo) Get(ctx context.Context, userID, preferenceKey string) (*domain.ChannelPreference, error) {
	query := `
		SELECT user_id, preference_key, email_enabled, sms_enabled, in_app_enabled
		FROM notification_preferences
		WHERE user_id = $1 AND preference_key = $2
	`

	var pref domain.ChannelPreference
	err := p.db.QueryRow(ctx, query, userID, preferenceKey).Scan(
		&pref.UserID,
		&pref.PreferenceKey,
		&pref.EmailEnabled,
		&pref.SMSEnabled,
		&pref.InAppEnabled,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return &pref, nil
}

func (p *pgPreferenceRepo) ListByUser(ctx context.Context, userID string) ([]*domain.ChannelPreference, error) {
	query := `
		SELECT user_id, preference_key, email_enabled, sms_enabled, in_app_enabled
		FROM notification_preferences
		WHERE user_id = $1
		ORDER BY preference_key
	`

	rows, err := p.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prefs []*domain.ChannelPreference
	for rows.Next() {
		var pref domain.ChannelPreference
		if err := rows.Scan(
			&pref.UserID,
			&pref.PreferenceKey,
			&pref.EmailEnabled,
			&pref.SMSEnabled,
			&pref.InAppEnabled,
		); err != nil {
			return nil, err
		}
		prefs = append(prefs, &pref)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return prefs, nil
}

func (p *pgPreferenceRepo) Upsert(ctx context.Context, pref *domain.ChannelPreference) (*domain.ChannelPreference, error) {
	query := `
		INSERT INTO notification_preferences (
			user_id, preference_key, email_enabled, sms_enabled, in_app_enabled
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, preference_key) DO UPDATE SET
			email_enabled  = EXCLUDED.email_enabled,
			sms_enabled    = EXCLUDED.sms_enabled,
			in_app_enabled = EXCLUDED.in_app_enabled
		RETURNING user_id, preference_key, email_enabled, sms_enabled, in_app_enabled
	`

	var saved domain.ChannelPreference
	err := p.db.QueryRow(ctx, query,
		pref.UserID,
		pref.PreferenceKey,
		pref.EmailEnabled,
		pref.SMSEnabled,
		pref.InAppEnabled,
	).Scan(
		&saved.UserID,
		&saved.PreferenceKey,
		&saved.EmailEnabled,
		&saved.SMSEnabled,
		&saved.InAppEnabled,
	)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}
