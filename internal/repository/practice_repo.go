package repository

import (
	"context"
	"errors"

	"portal-notification-service/internal/domain"
	"portal-notification-service/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PracticeLink is one resolved account→practice linkage. Phone carries the
// linkage record's own number when it has one (patients keep a contact
// phone on the patient record itself).
type PracticeLink struct {
	PracticeID string
	Phone      string
}

// PracticeRepository resolves which practice owns automation policy for a
// user, and loads that practice's automation settings.
type PracticeRepository interface {
	// ResolveLink tries the patient linkage first, then the staff linkage;
	// first match wins. Returns xerrors.ErrNotFound when neither matches.
	ResolveLink(ctx context.Context, userID string) (*PracticeLink, error)

	// GetAutomationSettings returns xerrors.ErrNotFound when the practice
	// has no settings row.
	GetAutomationSettings(ctx context.Context, practiceID string) (*domain.PracticeAutomationSettings, error)
}

type pgPracticeRepo struct {
	db *pgxpool.Pool
}

func NewPracticeRepository(db *pgxpool.Pool) PracticeRepository {
	return &pgPracticeRepo{db: db}
}

func (p *pgPracticeRepo) ResolveLink(ctx context.Context, userID string) (*PracticeLink, error) {
	// Ordered resolver chain: dependent/managed party first, then principal.
	resolvers := []func(context.Context, string) (*PracticeLink, error){
		p.resolvePatientLink,
		p.resolveStaffLink,
	}

	for _, resolve := range resolvers {
		link, err := resolve(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, err
		}
		return link, nil
	}
	return nil, xerrors.ErrNotFound
}

func (p *pgPracticeRepo) resolvePatientLink(ctx context.Context, userID string) (*PracticeLink, error) {
	query := `
		SELECT practice_id, COALESCE(phone, '')
		FROM patients
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var link PracticeLink
	if err := p.db.QueryRow(ctx, query, userID).Scan(&link.PracticeID, &link.Phone); err != nil {
		return nil, err
	}
	return &link, nil
}

func (p *pgPracticeRepo) resolveStaffLink(ctx context.Context, userID string) (*PracticeLink, error) {
	query := `
		SELECT practice_id
		FROM practice_staff
		WHERE user_id = $1
		LIMIT 1
	`

	var link PracticeLink
	if err := p.db.QueryRow(ctx, query, userID).Scan(&link.PracticeID); err != nil {
		return nil, err
	}
	return &link, nil
}

func (p *pgPracticeRepo) GetAutomationSettings(ctx context.Context, practiceID string) (*domain.PracticeAutomationSettings, error) {
	query := `
		SELECT practice_id, automation_email_enabled, automation_sms_enabled
		FROM practice_settings
		WHERE practice_id = $1
	`

	var settings domain.PracticeAutomationSettings
	err := p.db.QueryRow(ctx, query, practiceID).Scan(
		&settings.PracticeID,
		&settings.EmailEnabled,
		&settings.SMSEnabled,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return &settings, nil
}
