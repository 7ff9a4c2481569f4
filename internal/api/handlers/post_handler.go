package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/cms-be/internal/models"
	"github.com/isdelr/cms-be/internal/services"
	"github.com/rs/zerolog/log"
)

// PostHandler handles HTTP requests related to posts and tags.
type PostHandler struct {
	service services.PostServiceProvider
	tags    services.TagServiceProvider
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service services.PostServiceProvider, tags services.TagServiceProvider) *PostHandler {
	return &PostHandler{service: service, tags: tags}
}

// CreatePostPayload is the expected JSON body for creating a post.
type CreatePostPayload struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// Create handles the request to publish a new post.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}
	var payload CreatePostPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	post, err := h.service.CreatePost(r.Context(), claims.UserID, claims.Username, payload.Title, payload.Content, payload.Tags)
	if err != nil {
		writeServiceError(w, err, "Failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// GetAll handles the request to list posts, optionally filtered by ?userId=.
func (h *PostHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	var (
		posts []models.Post
		err   error
	)
	if userID := r.URL.Query().Get("userId"); userID != "" {
		posts, err = h.service.GetPostsByUser(r.Context(), userID)
	} else {
		posts, err = h.service.GetAllPosts(r.Context())
	}
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve posts")
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// GetRecent handles the request for the newest posts.
func (h *PostHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > services.RecentPostsLimit {
		limit = services.RecentPostsLimit
	}

	posts, err := h.service.GetRecentPosts(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve recent posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Get handles the request to get a single post by its ID.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "postId")
	post, err := h.service.GetPostByID(r.Context(), id)
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		}
		writeServiceError(w, err, "Failed to retrieve post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Delete handles the request to delete a post owned by the caller.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}
	postID := chi.URLParam(r, "postId")

	if err := h.service.DeletePost(r.Context(), claims.UserID, postID); err != nil {
		log.Warn().Err(err).Str("post_id", postID).Str("user_id", claims.UserID).Msg("Failed to delete post")
		writeServiceError(w, err, "Failed to delete post")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted", "postId": postID})
}

// GetTags handles the request to list every known tag.
func (h *PostHandler) GetTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.GetAllTags(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve tags")
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}
