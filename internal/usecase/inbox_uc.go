package usecase

import (
	"context"

	"portal-notification-service/internal/domain"
	"portal-notification-service/internal/repository"
	"portal-notification-service/pkg/xerrors"
)

// InboxUsecase serves the inbox UI and the preference settings screen.
// It never dispatches anything.
type InboxUsecase struct {
	notifications repository.NotificationRepository
	prefs         repository.PreferenceRepository
}

func NewInboxUsecase(notifications repository.NotificationRepository, prefs repository.PreferenceRepository) *InboxUsecase {
	return &InboxUsecase{
		notifications: notifications,
		prefs:         prefs,
	}
}

func (uc *InboxUsecase) List(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	return uc.notifications.ListByUser(ctx, userID, limit, offset)
}

func (uc *InboxUsecase) ListUnread(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	return uc.notifications.ListUnread(ctx, userID, limit, offset)
}

func (uc *InboxUsecase) CountUnread(ctx context.Context, userID string) (int, error) {
	return uc.notifications.CountUnread(ctx, userID)
}

func (uc *InboxUsecase) MarkAsRead(ctx context.Context, id int64, userID string) error {
	if id <= 0 {
		return xerrors.ErrInvalidInput
	}
	return uc.notifications.MarkAsRead(ctx, id, userID)
}

func (uc *InboxUsecase) Hide(ctx context.Context, id int64, userID string) error {
	if id <= 0 {
		return xerrors.ErrInvalidInput
	}
	return uc.notifications.Hide(ctx, id, userID)
}

func (uc *InboxUsecase) ListPreferences(ctx context.Context, userID string) ([]*domain.ChannelPreference, error) {
	return uc.prefs.ListByUser(ctx, userID)
}

func (uc *InboxUsecase) UpsertPreference(ctx context.Context, pref *domain.ChannelPreference) (*domain.ChannelPreference, error) {
	if pref.PreferenceKey == "" {
		return nil, xerrors.ErrInvalidInput
	}
	return uc.prefs.Upsert(ctx, pref)
}
