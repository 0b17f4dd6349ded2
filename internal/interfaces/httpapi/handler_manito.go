package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/haeun-dev/manito/internal/usecase"
)

func (h *Handler) GetManitoInfo(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetManitoInfo")
	defer span.End()

	principal, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	info, err := h.manitoService.CurrentInfo(ctx, principal.UserID, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "get manito info failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, manitoInfoToDTO(info))
}

func (h *Handler) GetAnonymousName(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAnonymousName")
	defer span.End()

	principal, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	week := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("week")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: week must be an integer", usecase.ErrInvalidInput))
			return
		}
		week = parsed
	}

	snapshot, err := h.anonymityService.GetOrCreateName(ctx, principal.UserID, groupID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "get anonymous name failed", "group_id", groupID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, anonymousNameDTO{
		UserID:        snapshot.UserID,
		GroupID:       snapshot.GroupID,
		Week:          snapshot.Week,
		AnonymousName: snapshot.AnonymousName,
		CreatedAt:     snapshot.CreatedAt.UTC().Format(time.RFC3339),
	})
}
