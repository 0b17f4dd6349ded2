package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/haeun-dev/manito/internal/usecase"
)

type recountQuotasRequest struct {
	GroupID    string `json:"group_id" validate:"required,max=64"`
	MaxWorkers int    `json:"max_workers" validate:"omitempty,min=1,max=32"`
	DryRun     bool   `json:"dry_run"`
}

// CompleteAssignment is the internal endpoint the mission-review job calls
// once a submitted proof is accepted. It is idempotent: re-confirming an
// already completed assignment returns the row unchanged.
func (h *Handler) CompleteAssignment(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteAssignment")
	defer span.End()

	assignmentID := strings.TrimSpace(r.PathValue("assignmentID"))
	if assignmentID == "" {
		writeError(ctx, w, fmt.Errorf("%w: assignment id is required", usecase.ErrInvalidInput))
		return
	}

	updated, err := h.missionService.Complete(ctx, assignmentID)
	if err != nil {
		h.logger.WarnContext(ctx, "complete assignment failed", "assignment_id", assignmentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, assignmentToDTO(updated))
}

// RecountQuotas rebuilds remaining quota counters for a group's current week
// from the assignment ledger.
func (h *Handler) RecountQuotas(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecountQuotas")
	defer span.End()

	var req recountQuotasRequest
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

	result, err := h.missionService.RecountQuotas(ctx, usecase.RecountQuotasInput{
		GroupID:    strings.TrimSpace(req.GroupID),
		MaxWorkers: req.MaxWorkers,
		DryRun:     req.DryRun,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "recount quotas failed", "group_id", req.GroupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
