package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/haeun-dev/manito/internal/domain/assignment"
	"github.com/haeun-dev/manito/internal/domain/member"
	"github.com/haeun-dev/manito/internal/platform/logging"
	"github.com/haeun-dev/manito/internal/usecase"
)

const assignedDateLayout = "2006-01-02"

type Handler struct {
	missionService   *usecase.MissionService
	manitoService    *usecase.ManitoService
	anonymityService *usecase.AnonymityService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	missionService *usecase.MissionService,
	manitoService *usecase.ManitoService,
	anonymityService *usecase.AnonymityService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		missionService:   missionService,
		manitoService:    manitoService,
		anonymityService: anonymityService,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func requirePrincipal(ctx context.Context, w http.ResponseWriter) (member.Principal, bool) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return member.Principal{}, false
	}
	return principal, true
}

type assignmentDTO struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	GroupID       string `json:"group_id"`
	MissionID     string `json:"mission_id"`
	Week          int    `json:"week"`
	AssignedDate  string `json:"assigned_date"`
	SelectionType string `json:"selection_type"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func assignmentToDTO(item assignment.Assignment) assignmentDTO {
	return assignmentDTO{
		ID:            item.ID,
		UserID:        item.UserID,
		GroupID:       item.GroupID,
		MissionID:     item.MissionID,
		Week:          item.Week,
		AssignedDate:  item.AssignedDate.Format(assignedDateLayout),
		SelectionType: string(item.SelectionType),
		Status:        string(item.Status),
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type missionTemplateDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Difficulty  string `json:"difficulty"`
}

type availableMissionDTO struct {
	Mission                 missionTemplateDTO `json:"mission"`
	MaxAssignable           int                `json:"max_assignable"`
	RemainingToday          int                `json:"remaining_today"`
	AlreadySelectedThisWeek bool               `json:"already_selected_this_week"`
	Selectable              bool               `json:"selectable"`
}

type missionBoardDTO struct {
	Week           int                   `json:"week"`
	Missions       []availableMissionDTO `json:"missions"`
	CanSelectToday bool                  `json:"can_select_today"`
	TodaySelection *assignmentDTO        `json:"today_selection,omitempty"`
}

func missionBoardToDTO(board usecase.MissionBoard) missionBoardDTO {
	missions := make([]availableMissionDTO, 0, len(board.Missions))
	for _, item := range board.Missions {
		missions = append(missions, availableMissionDTO{
			Mission: missionTemplateDTO{
				ID:          item.Mission.ID,
				Title:       item.Mission.Title,
				Description: item.Mission.Description,
				Difficulty:  string(item.Mission.Difficulty),
			},
			MaxAssignable:           item.MaxAssignable,
			RemainingToday:          item.RemainingToday,
			AlreadySelectedThisWeek: item.AlreadySelectedThisWeek,
			Selectable:              item.Selectable,
		})
	}

	out := missionBoardDTO{
		Week:           board.Week,
		Missions:       missions,
		CanSelectToday: board.CanSelectToday,
	}
	if board.TodaySelection != nil {
		today := assignmentToDTO(*board.TodaySelection)
		out.TodaySelection = &today
	}
	return out
}

type manitoInfoDTO struct {
	Week           int    `json:"week"`
	Phase          string `json:"phase"`
	Countdown      string `json:"countdown"`
	NextTransition string `json:"next_transition"`
	ManitteeUserID string `json:"manittee_user_id"`
	ManittoUserID  string `json:"manitto_user_id,omitempty"`
}

func manitoInfoToDTO(info usecase.ManitoInfo) manitoInfoDTO {
	return manitoInfoDTO{
		Week:           info.Week,
		Phase:          string(info.Phase),
		Countdown:      info.Countdown,
		NextTransition: info.NextTransition.Format(time.RFC3339),
		ManitteeUserID: info.ManitteeUserID,
		ManittoUserID:  info.ManittoUserID,
	}
}

type anonymousNameDTO struct {
	UserID        string `json:"user_id"`
	GroupID       string `json:"group_id"`
	Week          int    `json:"week"`
	AnonymousName string `json:"anonymous_name"`
	CreatedAt     string `json:"created_at"`
}
