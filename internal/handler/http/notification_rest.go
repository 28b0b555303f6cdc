package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"portal-notification-service/internal/domain"
	"portal-notification-service/internal/middleware"
	"portal-notification-service/internal/usecase"
	"portal-notification-service/pkg/response"
	"portal-notification-service/pkg/xerrors"
)

type NotificationHandler struct {
	dispatch *usecase.DispatchUsecase
	inbox    *usecase.InboxUsecase
}

func NewNotificationHandler(dispatch *usecase.DispatchUsecase, inbox *usecase.InboxUsecase) *NotificationHandler {
	return &NotificationHandler{
		dispatch: dispatch,
		inbox:    inbox,
	}
}

// ----------------------
// Dispatch Handlers
// ----------------------

func (h *NotificationHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req domain.DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.dispatch.Dispatch(r.Context(), &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrNoRecipient) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, result)
}

func (h *NotificationHandler) DispatchGuest(w http.ResponseWriter, r *http.Request) {
	var req domain.GuestDispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.dispatch.DispatchGuest(r.Context(), &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrNoGuestContact) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// ----------------------
// Inbox Handlers
// ----------------------

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFrom(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.inbox.List(r.Context(), userID, limit, offset)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *NotificationHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFrom(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.inbox.ListUnread(r.Context(), userID, limit, offset)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *NotificationHandler) CountUnread(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFrom(r.Context())

	count, err := h.inbox.CountUnread(r.Context(), userID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, _ := strconv.ParseInt(idStr, 10, 64)
	userID := middleware.UserIDFrom(r.Context())

	if err := h.inbox.MarkAsRead(r.Context(), id, userID); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "notification not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) HideNotification(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, _ := strconv.ParseInt(idStr, 10, 64)
	userID := middleware.UserIDFrom(r.Context())

	if err := h.inbox.Hide(r.Context(), id, userID); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "notification not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----------------------
// Preference Handlers
// ----------------------

func (h *NotificationHandler) ListPreferences(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFrom(r.Context())

	prefs, err := h.inbox.ListPreferences(r.Context(), userID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, prefs)
}

func (h *NotificationHandler) UpsertPreference(w http.ResponseWriter, r *http.Request) {
	var pref domain.ChannelPreference
	if err := json.NewDecoder(r.Body).Decode(&pref); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid input")
		return
	}
	pref.UserID = middleware.UserIDFrom(r.Context())

	saved, err := h.inbox.UpsertPreference(r.Context(), &pref)
	if err != nil {
		if errors.Is(err, xerrors.ErrInvalidInput) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, saved)
}
