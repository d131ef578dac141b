package api

import (
	"net/http"

	"github.com/billbatista/chama360/notification"
)

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Inbox().List(actor(r)))
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"unread": h.svc.Inbox().UnreadCount(actor(r))})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "notificationID")
	if !ok {
		return
	}
	if err := h.svc.Inbox().MarkRead(actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	h.svc.Inbox().MarkAllRead(actor(r))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "notificationID")
	if !ok {
		return
	}
	if err := h.svc.Inbox().Delete(actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Inbox().Preferences(actor(r)))
}

func (h *Handler) setPreferences(w http.ResponseWriter, r *http.Request) {
	var p notification.Preferences
	if !decode(w, r, &p) {
		return
	}
	h.svc.Inbox().SetPreferences(actor(r), p)
	writeJSON(w, http.StatusOK, p)
}
