package repository

import (
	"context"
	"errors"

	"portal-notification-service/internal/domain"
	"portal-notification-service/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository owns the notifications table. The dispatch engine
// only appends; read/mutate operations serve the inbox.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	GetByID(ctx context.Context, id int64) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error)
	ListUnread(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, id int64, userID string) error
	Hide(ctx context.Context, id int64, userID string) error
}

type pgNotificationRepo struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepo{db: db}
}

const notificationColumns = `
	id, request_id, user_id, event_kind, title, body, severity,
	metadata, action_url, entity_type, entity_id, read, created_at`

func (p *pgNotificationRepo) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	query := `
		INSERT INTO notifications (
			request_id, user_id, event_kind, title, body, severity,
			metadata, action_url, entity_type, entity_id
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10
		)
		RETURNING` + notificationColumns

	row := p.db.QueryRow(ctx, query,
		n.RequestID,
		n.UserID,
		n.EventKind,
		n.Title,
		n.Body,
		n.Severity,
		n.Metadata,
		n.ActionURL,
		n.EntityType,
		n.EntityID,
	)

	var created domain.Notification
	if err := scanNotification(row, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (p *pgNotificationRepo) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	query := `SELECT` + notificationColumns + ` FROM notifications WHERE id = $1`

	var n domain.Notification
	if err := scanNotification(p.db.QueryRow(ctx, query, id), &n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (p *pgNotificationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	query := `
		SELECT` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return p.list(ctx, query, userID, limit, offset)
}

func (p *pgNotificationRepo) ListUnread(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	query := `
		SELECT` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		  AND read = false
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return p.list(ctx, query, userID, limit, offset)
}

func (p *pgNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1
		  AND read = false
	`

	var count int
	if err := p.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (p *pgNotificationRepo) MarkAsRead(ctx context.Context, id int64, userID string) error {
	query := `
		UPDATE notifications
		SET read = true
		WHERE id = $1
		  AND user_id = $2
		  AND read = false
	`

	ct, err := p.db.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (p *pgNotificationRepo) Hide(ctx context.Context, id int64, userID string) error {
	query := `
		DELETE FROM notifications
		WHERE id = $1
		  AND user_id = $2
	`

	ct, err := p.db.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (p *pgNotificationRepo) list(ctx context.Context, query string, userID string, limit, offset int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := p.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := scanNotification(rows, &n); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return notifications, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner, n *domain.Notification) error {
	return row.Scan(
		&n.ID,
		&n.RequestID,
		&n.UserID,
		&n.EventKind,
		&n.Title,
		&n.Body,
		&n.Severity,
		&n.Metadata,
		&n.ActionURL,
		&n.EntityType,
		&n.EntityID,
		&n.Read,
		&n.CreatedAt,
	)
}
