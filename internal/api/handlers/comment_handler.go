package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/cms-be/internal/models"
	"github.com/isdelr/cms-be/internal/services"
)

// CommentHandler handles HTTP requests related to comments.
type CommentHandler struct {
	service services.CommentServiceProvider
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(service services.CommentServiceProvider) *CommentHandler {
	return &CommentHandler{service: service}
}

// Create handles the request to comment on a post.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}
	var payload struct {
		PostID  string `json:"postId"`
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	comment, err := h.service.CreateComment(r.Context(), claims.UserID, claims.Username, payload.PostID, payload.Content)
	if err != nil {
		writeServiceError(w, err, "Failed to create comment")
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// GetAllForPost handles the request to list a post's comments.
func (h *CommentHandler) GetAllForPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	comments, err := h.service.GetCommentsForPost(r.Context(), postID)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve comments")
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

// Delete handles the request to delete a comment.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrFail(w, r)
	if !ok {
		return
	}
	commentID := chi.URLParam(r, "id")
	if err := h.service.DeleteComment(r.Context(), claims.UserID, commentID); err != nil {
		writeServiceError(w, err, "Failed to delete comment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted", "commentId": commentID})
}
