package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/groups/{groupID}/missions", RequireAuth(verifier, http.HandlerFunc(handler.ListGroupMissions)))
	mux.Handle("POST /v1/groups/{groupID}/missions/select", RequireAuth(verifier, http.HandlerFunc(handler.SelectMission)))
	mux.Handle("POST /v1/groups/{groupID}/missions/auto-assignment", RequireAuth(verifier, http.HandlerFunc(handler.AutoAssignMission)))
	mux.Handle("GET /v1/groups/{groupID}/manito", RequireAuth(verifier, http.HandlerFunc(handler.GetManitoInfo)))
	mux.Handle("GET /v1/groups/{groupID}/anonymous-name", RequireAuth(verifier, http.HandlerFunc(handler.GetAnonymousName)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/assignments/{assignmentID}/complete", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.CompleteAssignment)))
	mux.Handle("POST /v1/internal/quotas/recount", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RecountQuotas)))
}
