package repository

import (
	"context"

	"portal-notification-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DeliveryLogRepository appends one row per channel evaluated per dispatch
// call. The table is append-only from the engine's point of view.
type DeliveryLogRepository interface {
	Insert(ctx context.Context, entry *domain.DeliveryLog) error
	ListByNotification(ctx context.Context, notificationID int64) ([]*domain.DeliveryLog, error)
}

type pgDeliveryLogRepo struct {
	db *pgxpool.Pool
}

func NewDeliveryLogRepository(db *pgxpool.Pool) DeliveryLogRepository {
	return &pgDeliveryLogRepo{db: db}
}

func (p *pgDeliveryLogRepo) Insert(ctx context.Context, entry *domain.DeliveryLog) error {
	query := `
		INSERT INTO delivery_logs (
			notification_id, user_id, channel, status, external_id, error_message
		) VALUES (
			$1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), NULLIF($6, '')
		)
		RETURNING id, created_at
	`

	return p.db.QueryRow(ctx, query,
		entry.NotificationID,
		entry.UserID,
		entry.Channel,
		entry.Status,
		entry.ExternalID,
		entry.ErrorMessage,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (p *pgDeliveryLogRepo) ListByNotification(ctx context.Context, notificationID int64) ([]*domain.DeliveryLog, error) {
	query := `
		SELECT id, notification_id, COALESCE(user_id, ''), channel, status,
		       COALESCE(external_id, ''), COALESCE(error_message, ''), created_at
		FROM delivery_logs
		WHERE notification_id = $1
		ORDER BY created_at ASC
	`

	rows, err := p.db.Query(ctx, query, notificationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.DeliveryLog
	for rows.Next() {
		var e domain.DeliveryLog
		if err := rows.Scan(
			&e.ID,
			&e.NotificationID,
			&e.UserID,
			&e.Channel,
			&e.Status,
			&e.ExternalID,
			&e.ErrorMessage,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}
