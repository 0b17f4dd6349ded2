package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/haeun-dev/manito/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_SelectionConflicts(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{name: "duplicate selection", err: fmt.Errorf("%w: already picked today", usecase.ErrDuplicateSelection), wantStatus: http.StatusConflict, wantReason: "duplicateSelection"},
		{name: "capacity exhausted", err: fmt.Errorf("%w: no slots left", usecase.ErrCapacityExhausted), wantStatus: http.StatusConflict, wantReason: "capacityExhausted"},
		{name: "precondition failed", err: fmt.Errorf("%w: not paired this week", usecase.ErrPreconditionFailed), wantStatus: http.StatusConflict, wantReason: "preconditionFailed"},
		{name: "cycle not ready", err: fmt.Errorf("%w: quotas not provisioned", usecase.ErrCycleNotReady), wantStatus: http.StatusServiceUnavailable, wantReason: "cycleNotReady"},
		{name: "dependency unavailable", err: fmt.Errorf("%w: dasom is down", usecase.ErrDependencyUnavailable), wantStatus: http.StatusServiceUnavailable, wantReason: "dependencyUnavailable"},
		{name: "not found", err: fmt.Errorf("%w: unknown mission", usecase.ErrNotFound), wantStatus: http.StatusNotFound, wantReason: "notFound"},
		{name: "unknown error", err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError, wantReason: "internalError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(context.Background(), tt.err)
			if got.HTTPStatus != tt.wantStatus {
				t.Fatalf("status=%d want=%d", got.HTTPStatus, tt.wantStatus)
			}
			if got.Reason != tt.wantReason {
				t.Fatalf("reason=%q want=%q", got.Reason, tt.wantReason)
			}
		})
	}
}
