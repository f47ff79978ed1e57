package handler

import (
	"net/http"
	"travelgram/internal/api/middleware"
	"travelgram/internal/app/service"
	"travelgram/internal/common"
	"travelgram/internal/domain/model"
	"travelgram/internal/platform/upload"

	"github.com/go-chi/chi/v5"
)

const (
	maxPostUploadBytes = 30 << 20 // 3 images at 10 MB
	maxPostImages      = 3
)

type PostHandler struct {
	postService *service.PostService
	uploads     *upload.Store
}

func NewPostHandler(ps *service.PostService, uploads *upload.Store) *PostHandler {
	return &PostHandler{postService: ps, uploads: uploads}
}

func (h *PostHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listPosts)
	r.Get("/{id}", h.getPost)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/addPost", h.addPost)
		authed.Put("/{id}", h.updatePost)
		authed.Delete("/{id}", h.deletePost)
	})
}

func (h *PostHandler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.List(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Unexpected Error occured")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string][]*model.Post{"posts": posts})
}

func (h *PostHandler) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), "No Post Found")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]*model.Post{"post": post})
}

func (h *PostHandler) addPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	if err := r.ParseMultipartForm(maxPostUploadBytes); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid form data: "+err.Error())
		return
	}

	// The 1..3 image cap is enforced here at the transport boundary and
	// re-checked in the service.
	files := r.MultipartForm.File["images"]
	if len(files) < 1 || len(files) > maxPostImages {
		common.RespondWithError(w, http.StatusBadRequest, "A post requires between 1 and 3 images")
		return
	}

	var imagePaths []string
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Failed to read uploaded image")
			return
		}
		stored, err := h.uploads.Save(file, header.Filename)
		file.Close()
		if err != nil {
			common.RespondWithError(w, http.StatusInternalServerError, "Failed to store uploaded image")
			return
		}
		imagePaths = append(imagePaths, stored)
	}

	req := service.CreatePostRequest{
		Location:    r.FormValue("location"),
		SubLocation: r.FormValue("subLocation"),
		Description: r.FormValue("description"),
		LocationURL: r.FormValue("locationUrl"),
		Date:        r.FormValue("date"),
		ImagePaths:  imagePaths,
	}

	post, err := h.postService.Create(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]*model.Post{"post": post})
}

func (h *PostHandler) updatePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	callerID, _ := middleware.GetUserIDFromContext(r.Context())

	if err := r.ParseMultipartForm(maxPostUploadBytes); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid form data: "+err.Error())
		return
	}

	req := service.UpdatePostRequest{
		Location:    r.FormValue("location"),
		SubLocation: r.FormValue("subLocation"),
		Description: r.FormValue("description"),
		LocationURL: r.FormValue("locationUrl"),
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		stored, err := h.uploads.Save(file, header.Filename)
		if err != nil {
			common.RespondWithError(w, http.StatusInternalServerError, "Failed to store uploaded image")
			return
		}
		req.ImagePath = stored
	}

	post, err := h.postService.Update(r.Context(), callerID, middleware.GetIsAdminFromContext(r.Context()), postID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]*model.Post{"post": post})
}

func (h *PostHandler) deletePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	callerID, _ := middleware.GetUserIDFromContext(r.Context())

	err := h.postService.Delete(r.Context(), callerID, middleware.GetIsAdminFromContext(r.Context()), postID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}
