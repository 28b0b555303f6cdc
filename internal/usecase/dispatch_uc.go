package usecase

import (
	"context"
	"errors"
	"fmt"
	"html"

	"portal-notification-service/internal/domain"
	"portal-notification-service/internal/repository"
	"portal-notification-service/pkg/notifier"
	"portal-notification-service/pkg/template"
	"portal-notification-service/pkg/xerrors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// LivePublisher pushes a freshly written notification to live inbox
// clients. Best-effort: it has no error to report.
type LivePublisher interface {
	Publish(userID string, n *domain.Notification)
}

// DispatchUsecase is the dispatch orchestrator: it classifies the event,
// resolves contact and practice, evaluates policy, fans out to the three
// channel dispatchers and aggregates the outcome. One call, one result;
// there is no queue and no retry.
type DispatchUsecase struct {
	notifications repository.NotificationRepository
	logs          repository.DeliveryLogRepository
	prefs         repository.PreferenceRepository
	profiles      repository.ProfileRepository
	practices     repository.PracticeRepository
	email         notifier.EmailSender
	sms           notifier.SMSSender
	templates     *template.Service
	live          LivePublisher
	portalURL     string
	log           *zap.Logger
}

func NewDispatchUsecase(
	notifications repository.NotificationRepository,
	logs repository.DeliveryLogRepository,
	prefs repository.PreferenceRepository,
	profiles repository.ProfileRepository,
	practices repository.PracticeRepository,
	email notifier.EmailSender,
	sms notifier.SMSSender,
	templates *template.Service,
	live LivePublisher,
	portalURL string,
	log *zap.Logger,
) *DispatchUsecase {
	return &DispatchUsecase{
		notifications: notifications,
		logs:          logs,
		prefs:         prefs,
		profiles:      profiles,
		practices:     practices,
		email:         email,
		sms:           sms,
		templates:     templates,
		live:          live,
		portalURL:     portalURL,
		log:           log,
	}
}

// Dispatch runs one notification event through the full pipeline. Only a
// structurally malformed request returns an error; every per-channel
// decline or provider failure is folded into the result.
func (uc *DispatchUsecase) Dispatch(ctx context.Context, req *domain.DispatchRequest) (*domain.DispatchResult, error) {
	if req == nil || req.UserID == "" {
		return nil, xerrors.ErrNoRecipient
	}

	requestID := ulid.Make().String()
	class := domain.ClassifyEvent(req.EventKind)
	contact := uc.resolveContact(ctx, req.UserID)
	pref := uc.loadPreference(ctx, req.UserID, class.PreferenceKey)
	practice := uc.loadAutomationSettings(ctx, class, contact.PracticeID)

	uc.log.Info("dispatching notification",
		zap.String("request_id", requestID),
		zap.String("user_id", req.UserID),
		zap.String("event_kind", req.EventKind),
		zap.String("preference_key", class.PreferenceKey),
		zap.Bool("is_automation", class.IsAutomation))

	result := &domain.DispatchResult{
		Success:      true,
		ChannelsSent: []string{},
		Errors:       []string{},
	}

	// Full opt-out: three skipped rows, zero provider calls, success.
	if pref.AllDisabled() {
		for _, ch := range []struct {
			channel domain.Channel
			reason  string
		}{
			{domain.ChannelInApp, ReasonInAppUserDisabled},
			{domain.ChannelEmail, ReasonEmailUserDisabled},
			{domain.ChannelSMS, ReasonSMSUserDisabled},
		} {
			uc.logDelivery(ctx, &domain.DeliveryLog{
				UserID:       req.UserID,
				Channel:      ch.channel,
				Status:       domain.DeliverySkipped,
				ErrorMessage: ch.reason,
			})
			result.AddError(ch.reason)
		}
		return result, nil
	}

	decision := EvaluatePolicy(class, pref, contact, practice)

	notificationID := uc.dispatchInApp(ctx, req, requestID, decision.InApp, result)
	uc.dispatchEmail(ctx, req, contact, decision.Email, notificationID, result)
	uc.dispatchSMS(ctx, req, req.UserID, contact.Phone, decision.SMS, notificationID, result)

	return result, nil
}

// DispatchGuest sends directly to a raw email/phone pair, bypassing the
// classifier, preferences and practice policy. No inbox entry is created;
// outcomes are logged with an empty user id.
func (uc *DispatchUsecase) DispatchGuest(ctx context.Context, req *domain.GuestDispatchRequest) (*domain.DispatchResult, error) {
	if req == nil || (req.Email == "" && req.Phone == "") {
		return nil, xerrors.ErrNoGuestContact
	}

	result := &domain.DispatchResult{
		Success:      true,
		ChannelsSent: []string{},
		Errors:       []string{},
	}

	if req.Email != "" {
		emailReq := &domain.DispatchRequest{
			Title:    req.Title,
			Body:     req.Body,
			Metadata: req.Metadata,
		}
		uc.dispatchEmail(ctx, emailReq, domain.Contact{Email: req.Email}, ChannelDecision{Deliver: true}, nil, result)
	}

	if req.Phone != "" {
		smsReq := &domain.DispatchRequest{
			Title:    req.Title,
			Body:     req.Body,
			Metadata: req.Metadata,
		}
		uc.dispatchSMS(ctx, smsReq, "", req.Phone, ChannelDecision{Deliver: true}, nil, result)
	}

	return result, nil
}

// ----------------------
// Channel dispatchers
// ----------------------

func (uc *DispatchUsecase) dispatchInApp(ctx context.Context, req *domain.DispatchRequest, requestID string, decision ChannelDecision, result *domain.DispatchResult) *int64 {
	if !decision.Deliver {
		uc.logDelivery(ctx, &domain.DeliveryLog{
			UserID:       req.UserID,
			Channel:      domain.ChannelInApp,
			Status:       domain.DeliverySkipped,
			ErrorMessage: decision.Reason,
		})
		result.AddError(decision.Reason)
		return nil
	}

	severity := req.Severity
	if severity == "" {
		severity = "info"
	}

	created, err := uc.notifications.Create(ctx, &domain.Notification{
		RequestID:  requestID,
		UserID:     req.UserID,
		EventKind:  req.EventKind,
		Title:      req.Title,
		Body:       req.Body,
		Severity:   severity,
		Metadata:   req.Metadata,
		ActionURL:  req.ActionURL,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
	})
	if err != nil {
		uc.log.Warn("in-app write failed",
			zap.String("user_id", req.UserID),
			zap.Error(err))
		uc.logDelivery(ctx, &domain.DeliveryLog{
			UserID:       req.UserID,
			Channel:      domain.ChannelInApp,
			Status:       domain.DeliveryFailed,
			ErrorMessage: err.Error(),
		})
		result.AddError(fmt.Sprintf("in_app delivery failed: %v", err))
		return nil
	}

	uc.logDelivery(ctx, &domain.DeliveryLog{
		NotificationID: &created.ID,
		UserID:         req.UserID,
		Channel:        domain.ChannelInApp,
		Status:         domain.DeliverySent,
	})
	result.MarkSent(domain.ChannelInApp)

	if uc.live != nil {
		uc.live.Publish(req.UserID, created)
	}
	return &created.ID
}

func (uc *DispatchUsecase) dispatchEmail(ctx context.Context, req *domain.DispatchRequest, contact domain.Contact, decision ChannelDecision, notificationID *int64, result *domain.DispatchResult) {
	if !decision.Deliver {
		uc.logDelivery(ctx, &domain.DeliveryLog{
			NotificationID: notificationID,
			UserID:         req.UserID,
			Channel:        domain.ChannelEmail,
			Status:         domain.DeliverySkipped,
			ErrorMessage:   decision.Reason,
		})
		result.AddError(decision.Reason)
		return
	}

	actionURL := uc.resolveActionURL(req)
	htmlBody, textBody := uc.renderEmail(contact.DisplayName, req.Title, req.Body, actionURL)

	messageID, err := uc.email.Send(ctx, notifier.EmailMessage{
		To:       contact.Email,
		Subject:  req.Title,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		uc.logDelivery(ctx, &domain.DeliveryLog{
			NotificationID: notificationID,
			UserID:         req.UserID,
			Channel:        domain.ChannelEmail,
			Status:         domain.DeliveryFailed,
			ErrorMessage:   err.Error(),
		})
		result.AddError(fmt.Sprintf("email delivery failed: %v", err))
		return
	}

	uc.logDelivery(ctx, &domain.DeliveryLog{
		NotificationID: notificationID,
		UserID:         req.UserID,
		Channel:        domain.ChannelEmail,
		Status:         domain.DeliverySent,
		ExternalID:     messageID,
	})
	result.MarkSent(domain.ChannelEmail)
}

func (uc *DispatchUsecase) dispatchSMS(ctx context.Context, req *domain.DispatchRequest, userID, phone string, decision ChannelDecision, notificationID *int64, result *domain.DispatchResult) {
	if !decision.Deliver {
		uc.logDelivery(ctx, &domain.DeliveryLog{
			NotificationID: notificationID,
			UserID:         userID,
			Channel:        domain.ChannelSMS,
			Status:         domain.DeliverySkipped,
			ErrorMessage:   decision.Reason,
		})
		result.AddError(decision.Reason)
		return
	}

	to := notifier.NormalizePhone(phone)
	body := uc.composeSMS(req)

	messageID, err := uc.sms.Send(ctx, to, body)
	switch {
	case err == nil:
		uc.logDelivery(ctx, &domain.DeliveryLog{
			NotificationID: notificationID,
			UserID:         userID,
			Channel:        domain.ChannelSMS,
			Status:         domain.DeliverySent,
			ExternalID:     messageID,
		})
		result.MarkSent(domain.ChannelSMS)

	case errors.Is(err, notifier.ErrGatewayTimeout):
		// The gateway often delivers after the window closes; classify as
		// queued rather than failed.
		uc.logDelivery(ctx, &domain.DeliveryLog{
			NotificationID: notificationID,
			UserID:         userID,
			Channel:        domain.ChannelSMS,
			Status:         domain.DeliverySent,
			ErrorMessage:   "gateway timeout; assumed queued",
		})
		result.MarkSent(domain.ChannelSMS)

	default:
		uc.logDelivery(ctx, &domain.DeliveryLog{
			NotificationID: notificationID,
			UserID:         userID,
			Channel:        domain.ChannelSMS,
			Status:         domain.DeliveryFailed,
			ErrorMessage:   err.Error(),
		})
		result.AddError(fmt.Sprintf("sms delivery failed: %v", err))
	}
}

// ----------------------
// Resolution helpers
// ----------------------

// resolveContact degrades to empty contact info on a missing profile;
// downstream channels then skip for lack of an address, not as failures.
func (uc *DispatchUsecase) resolveContact(ctx context.Context, userID string) domain.Contact {
	var contact domain.Contact

	profile, err := uc.profiles.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, xerrors.ErrNotFound) {
			uc.log.Warn("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
	} else {
		contact.Email = profile.Email
		contact.DisplayName = profile.DisplayName
		contact.Phone = profile.Phone
	}

	link, err := uc.practices.ResolveLink(ctx, userID)
	if err != nil {
		if !errors.Is(err, xerrors.ErrNotFound) {
			uc.log.Warn("practice link lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return contact
	}

	contact.PracticeID = link.PracticeID
	// The profile's phone always wins; the linkage record only backfills.
	if contact.Phone == "" && link.Phone != "" {
		contact.Phone = link.Phone
	}
	return contact
}

// loadPreference treats a missing row and a failed lookup the same way:
// open defaults. A preference problem must never block a dispatch.
func (uc *DispatchUsecase) loadPreference(ctx context.Context, userID, preferenceKey string) *domain.ChannelPreference {
	pref, err := uc.prefs.Get(ctx, userID, preferenceKey)
	if err != nil {
		if !errors.Is(err, xerrors.ErrNotFound) {
			uc.log.Warn("preference lookup failed, using open defaults",
				zap.String("user_id", userID),
				zap.String("preference_key", preferenceKey),
				zap.Error(err))
		}
		return domain.OpenChannelPreference(userID, preferenceKey)
	}
	return pref
}

// loadAutomationSettings is only consulted for automation events with a
// resolved practice; everything else gets open settings so the policy
// formula stays total.
func (uc *DispatchUsecase) loadAutomationSettings(ctx context.Context, class domain.EventClassification, practiceID string) *domain.PracticeAutomationSettings {
	if !class.IsAutomation || practiceID == "" {
		return domain.OpenAutomationSettings(practiceID)
	}

	settings, err := uc.practices.GetAutomationSettings(ctx, practiceID)
	if err != nil {
		if !errors.Is(err, xerrors.ErrNotFound) {
			uc.log.Warn("automation settings lookup failed, using open defaults",
				zap.String("practice_id", practiceID),
				zap.Error(err))
		}
		return domain.OpenAutomationSettings(practiceID)
	}
	return settings
}

// resolveActionURL picks the most specific link: the metadata join link,
// then the request's action URL, then the generic portal URL.
func (uc *DispatchUsecase) resolveActionURL(req *domain.DispatchRequest) string {
	if join := req.JoinURL(); join != "" {
		return join
	}
	if req.ActionURL != "" {
		return req.ActionURL
	}
	return uc.portalURL
}

// renderEmail falls back to a bare-bones body when templates are missing
// or broken; a render problem must not cost the user the email.
func (uc *DispatchUsecase) renderEmail(displayName, title, body, actionURL string) (string, string) {
	if uc.templates != nil {
		htmlBody, textBody, err := uc.templates.RenderEmail(template.EmailData{
			DisplayName: displayName,
			Title:       title,
			Body:        body,
			ActionURL:   actionURL,
		})
		if err == nil {
			return htmlBody, textBody
		}
		uc.log.Warn("email template render failed, falling back to plain body", zap.Error(err))
	}

	htmlBody := fmt.Sprintf("<h2>%s</h2><p>%s</p><p><a href=%q>View in Portal</a></p>",
		html.EscapeString(title), html.EscapeString(body), actionURL)
	textBody := fmt.Sprintf("%s\n\n%s\n\n%s", title, body, actionURL)
	return htmlBody, textBody
}

// composeSMS builds the message as title, blank line, body, then the join
// link when present or the generic portal URL.
func (uc *DispatchUsecase) composeSMS(req *domain.DispatchRequest) string {
	link := req.JoinURL()
	if link == "" {
		link = uc.portalURL
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", req.Title, req.Body, link)
}

// logDelivery is a best-effort sink: a logging failure must never fail the
// dispatch or retrigger a channel, so errors go to the diagnostic stream
// and nowhere else.
func (uc *DispatchUsecase) logDelivery(ctx context.Context, entry *domain.DeliveryLog) {
	if err := uc.logs.Insert(ctx, entry); err != nil {
		uc.log.Warn("delivery log write failed",
			zap.String("channel", string(entry.Channel)),
			zap.String("status", string(entry.Status)),
			zap.Error(err))
	}
}
