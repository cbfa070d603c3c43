package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Janrichter12345/freetables/middleware"
	"github.com/Janrichter12345/freetables/services/history"
	"github.com/Janrichter12345/freetables/services/reservation"
)

// HistoryHandler reconciles a device's cached reservation history with the
// authoritative server state and returns the unified display view.
type HistoryHandler struct {
	Service reservation.ReservationService
	Store   history.Store
	Logger  *zap.Logger
}

// NewHistoryHandler constructs a HistoryHandler.
func NewHistoryHandler(svc reservation.ReservationService, store history.Store, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{Service: svc, Store: store, Logger: logger}
}

// SyncHistoryHandler handles POST /api/reservations/history/sync. The client
// uploads its cached entries; the server merges in its own cached copy and
// the authoritative statuses, dedupes, prunes, and returns the partitioned
// view along with the cleaned entry list for the client to store.
func (h *HistoryHandler) SyncHistoryHandler(c *gin.Context) {
	var input struct {
		Entries []history.Entry `json:"entries"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid_body"})
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	cached, err := h.Store.Load(ctx, userID)
	if err != nil {
		h.Logger.Warn("failed to load cached history", zap.String("userId", userID), zap.Error(err))
		cached = []history.Entry{}
	}
	merged := mergeEntrySets(cached, input.Entries)

	ids := make([]string, 0, len(merged))
	for _, e := range merged {
		if e.ID != "" {
			ids = append(ids, e.ID)
		}
	}

	items, err := h.Service.Statuses(ctx, ids, userID)
	if err != nil {
		h.Logger.Error("failed to poll authoritative statuses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "db_failed"})
		return
	}

	cleaned, view := history.Unify(merged, items, time.Now())

	if err := h.Store.Save(ctx, userID, cleaned); err != nil {
		h.Logger.Warn("failed to save history cache", zap.String("userId", userID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"entries": cleaned,
		"current": view.Current,
		"past":    view.Past,
	})
}

// mergeEntrySets folds uploaded entries over the server-cached ones by id.
// Uploaded fields win where set; the earliest known creation time and the
// earliest acceptance time are preserved.
func mergeEntrySets(cached, uploaded []history.Entry) []history.Entry {
	byID := make(map[string]history.Entry, len(cached))
	var order []string
	for _, e := range cached {
		if e.ID == "" {
			continue
		}
		byID[e.ID] = e
		order = append(order, e.ID)
	}

	for _, e := range uploaded {
		if e.ID == "" {
			continue
		}
		existing, ok := byID[e.ID]
		if !ok {
			byID[e.ID] = e
			order = append(order, e.ID)
			continue
		}
		if existing.CreatedAt != 0 && (e.CreatedAt == 0 || existing.CreatedAt < e.CreatedAt) {
			e.CreatedAt = existing.CreatedAt
		}
		if existing.AcceptedAt != 0 && e.AcceptedAt == 0 {
			e.AcceptedAt = existing.AcceptedAt
		}
		byID[e.ID] = e
	}

	out := make([]history.Entry, 0, len(byID))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}
