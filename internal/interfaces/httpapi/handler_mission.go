package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/haeun-dev/manito/internal/usecase"
)

type selectMissionRequest struct {
	MissionID string `json:"mission_id" validate:"required,max=64"`
}

func (h *Handler) ListGroupMissions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGroupMissions")
	defer span.End()

	principal, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	board, err := h.missionService.ListAvailable(ctx, principal.UserID, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "list group missions failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, missionBoardToDTO(board))
}

func (h *Handler) SelectMission(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SelectMission")
	defer span.End()

	principal, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	var req selectMissionRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.missionService.Select(ctx, usecase.SelectMissionInput{
		UserID:    principal.UserID,
		GroupID:   groupID,
		MissionID: strings.TrimSpace(req.MissionID),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "select mission failed",
			"group_id", groupID,
			"mission_id", req.MissionID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, assignmentToDTO(created))
}

func (h *Handler) AutoAssignMission(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AutoAssignMission")
	defer span.End()

	principal, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	created, err := h.missionService.AutoAssign(ctx, principal.UserID, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "auto assign mission failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, assignmentToDTO(created))
}
