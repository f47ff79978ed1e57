package handler

import (
	"encoding/json"
	"net/http"
	"travelgram/internal/api/middleware"
	"travelgram/internal/app/service"
	"travelgram/internal/common"

	"github.com/go-chi/chi/v5"
)

// RecoveryHandler exposes the stateless three-step password recovery flow
// plus the authenticated reset for logged-in users.
type RecoveryHandler struct {
	recoveryService *service.RecoveryService
}

func NewRecoveryHandler(rs *service.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{recoveryService: rs}
}

func (h *RecoveryHandler) RegisterRoutes(r chi.Router) {
	r.Post("/requestReset", h.requestReset)
	r.Post("/verifySecurityAnswer", h.verifySecurityAnswer)
	r.Post("/forgot-password-reset/{userId}", h.forgotPasswordReset)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/reset-password/{userId}", h.resetPassword)
	})
}

func (h *RecoveryHandler) requestReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	challenge, err := h.recoveryService.RequestReset(r.Context(), req.Identifier)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, challenge)
}

func (h *RecoveryHandler) verifySecurityAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier     string `json:"identifier"`
		SecurityAnswer string `json:"securityAnswer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	isCorrect, err := h.recoveryService.VerifyAnswer(r.Context(), req.Identifier, req.SecurityAnswer)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]bool{"isCorrect": isCorrect})
}

func (h *RecoveryHandler) forgotPasswordReset(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	var req struct {
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.recoveryService.CompleteReset(r.Context(), userID, req.NewPassword); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
}

func (h *RecoveryHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.recoveryService.AuthenticatedReset(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
}
