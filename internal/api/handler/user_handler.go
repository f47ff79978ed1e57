package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"travelgram/internal/api/middleware"
	"travelgram/internal/app/service"
	"travelgram/internal/common"
	"travelgram/internal/domain/model"
	"travelgram/internal/platform/upload"

	"github.com/go-chi/chi/v5"
)

const maxProfileUploadBytes = 10 << 20 // 10 MB

type UserHandler struct {
	userService *service.UserService
	uploads     *upload.Store
}

func NewUserHandler(us *service.UserService, uploads *upload.Store) *UserHandler {
	return &UserHandler{userService: us, uploads: uploads}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
	r.Get("/profile/{id}", h.getProfile)
	r.Get("/posts/{userId}", h.getUserPosts)
	r.Get("/favorites/{userId}", h.getFavorites)
	r.Get("/{userId}", h.getUser)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/toggleFavorite", h.toggleFavorite)
		authed.Put("/{userId}", h.updateProfile)
		authed.Delete("/{userId}", h.deleteUser)

		authed.Group(func(admin chi.Router) {
			admin.Use(middleware.AdminOnly)
			admin.Put("/{userId}/isAdmin", h.setAdmin)
		})
	})
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.GetAll(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Unexpected Error")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string][]*model.User{"users": users})
}

func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]*model.User{"user": user})
}

func (h *UserHandler) getUserPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.userService.PostsOf(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string][]*model.Post{"posts": posts})
}

func (h *UserHandler) getFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.userService.Favorites(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string][]*model.Post{"favorites": favorites})
}

func (h *UserHandler) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		PostID string `json:"postId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	// The token, not the payload, decides whose favorites are toggled.
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	favorites, err := h.userService.ToggleFavorite(r.Context(), callerID, req.PostID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string][]string{"favorites": favorites})
}

func (h *UserHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	callerID, _ := middleware.GetUserIDFromContext(r.Context())
	if callerID != userID && !middleware.GetIsAdminFromContext(r.Context()) {
		common.RespondWithError(w, http.StatusForbidden, "You may only edit your own profile")
		return
	}

	if err := r.ParseMultipartForm(maxProfileUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid form data: "+err.Error())
		return
	}

	req := service.UpdateProfileRequest{
		FirstName: r.FormValue("firstName"),
		LastName:  r.FormValue("lastName"),
		Username:  r.FormValue("username"),
		Bio:       r.FormValue("bio"),
	}

	if file, header, err := r.FormFile("profileImage"); err == nil {
		defer file.Close()
		stored, err := h.uploads.Save(file, header.Filename)
		if err != nil {
			common.RespondWithError(w, http.StatusInternalServerError, "Failed to store profile image")
			return
		}
		req.ImagePath = stored
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (h *UserHandler) setAdmin(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	var req struct {
		IsAdmin bool `json:"isAdmin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.userService.SetAdmin(r.Context(), userID, req.IsAdmin)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	callerID, _ := middleware.GetUserIDFromContext(r.Context())
	if callerID != userID && !middleware.GetIsAdminFromContext(r.Context()) {
		common.RespondWithError(w, http.StatusForbidden, "You may only delete your own account")
		return
	}

	if err := h.userService.Delete(r.Context(), userID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "User and associated posts deleted successfully",
	})
}
