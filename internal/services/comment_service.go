package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/cms-be/internal/models"
	"github.com/isdelr/cms-be/internal/store"
)

// CommentServiceProvider defines the interface for comment services.
type CommentServiceProvider interface {
	CreateComment(ctx context.Context, userID, username, postID, content string) (models.Comment, error)
	GetCommentsForPost(ctx context.Context, postID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID string) error
}

// CommentService provides business logic for comments.
type CommentService struct {
	store  store.Store
	events EventPublisher
	now    func() time.Time
}

// NewCommentService creates a new CommentService.
func NewCommentService(st store.Store, events EventPublisher) *CommentService {
	return &CommentService{store: st, events: publisherOrNoop(events), now: time.Now}
}

// CreateComment adds a comment to an existing post.
func (s *CommentService) CreateComment(ctx context.Context, userID, username, postID, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if postID == "" || content == "" {
		return models.Comment{}, fmt.Errorf("%w: postId and content are required", ErrInvalidInput)
	}
	if _, err := s.store.Get(ctx, models.PostsTable, postID); err != nil {
		return models.Comment{}, fmt.Errorf("post %s: %w", postID, err)
	}

	comment := models.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    userID,
		Username:  username,
		Content:   content,
		CreatedAt: s.now().UnixMilli(),
	}
	item, err := store.ToItem(comment)
	if err != nil {
		return models.Comment{}, err
	}
	if err := s.store.Put(ctx, models.CommentsTable, item); err != nil {
		return models.Comment{}, err
	}

	s.events.Publish("comment.created", comment)
	return comment, nil
}

// GetCommentsForPost returns a post's comments, oldest first.
func (s *CommentService) GetCommentsForPost(ctx context.Context, postID string) ([]models.Comment, error) {
	items, err := s.store.Query(ctx, models.CommentsTable, "postId", postID)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Comment](store.OldestFirst(items))
}

// DeleteComment removes a comment. The comment author and the post author may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID string) error {
	item, err := s.store.Get(ctx, models.CommentsTable, commentID)
	if err != nil {
		return fmt.Errorf("comment %s: %w", commentID, err)
	}
	comment, err := decodeOne[models.Comment](item)
	if err != nil {
		return err
	}

	if comment.UserID != userID {
		postItem, err := s.store.Get(ctx, models.PostsTable, comment.PostID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if postItem == nil || postItem["userId"] != userID {
			return fmt.Errorf("%w: comment %s belongs to another user", ErrForbidden, commentID)
		}
	}

	if err := s.store.Delete(ctx, models.CommentsTable, commentID); err != nil {
		return err
	}
	s.events.Publish("comment.deleted", map[string]string{"commentId": commentID, "postId": comment.PostID})
	return nil
}

// DeleteCommentsForPost removes every comment of a post and returns how many were deleted.
func (s *CommentService) DeleteCommentsForPost(ctx context.Context, postID string) (int, error) {
	items, err := s.store.Query(ctx, models.CommentsTable, "postId", postID)
	if err != nil {
		return 0, err
	}
	deleted := 0
	var errs []error
	for _, item := range items {
		id, _ := item["commentId"].(string)
		if err := s.store.Delete(ctx, models.CommentsTable, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			errs = append(errs, err)
			continue
		}
		deleted++
	}
	return deleted, errors.Join(errs...)
}
