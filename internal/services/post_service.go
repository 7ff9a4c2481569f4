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
	"github.com/rs/zerolog/log"
)

// RecentPostsLimit is how many posts the recent listing returns.
const RecentPostsLimit = 20

// PostServiceProvider defines the interface for post services.
type PostServiceProvider interface {
	CreatePost(ctx context.Context, userID, username, title, content string, tags []string) (models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetPostsByUser(ctx context.Context, userID string) ([]models.Post, error)
	GetRecentPosts(ctx context.Context, limit int) ([]models.Post, error)
	GetPostByID(ctx context.Context, id string) (models.Post, error)
	DeletePost(ctx context.Context, userID, postID string) error
}

// PostService provides business logic for posts.
type PostService struct {
	store    store.Store
	tags     TagServiceProvider
	comments *CommentService
	events   EventPublisher
	now      func() time.Time
}

// NewPostService creates a new PostService.
func NewPostService(st store.Store, tags TagServiceProvider, comments *CommentService, events EventPublisher) *PostService {
	return &PostService{
		store:    st,
		tags:     tags,
		comments: comments,
		events:   publisherOrNoop(events),
		now:      time.Now,
	}
}

// CreatePost stores a new post authored by userID.
func (s *PostService) CreatePost(ctx context.Context, userID, username, title, content string, tags []string) (models.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return models.Post{}, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}

	tags = NormalizeTags(tags)
	if err := s.tags.EnsureTags(ctx, tags); err != nil {
		return models.Post{}, fmt.Errorf("registering tags: %w", err)
	}

	post := models.Post{
		ID:        uuid.New().String(),
		UserID:    userID,
		Username:  username,
		Title:     title,
		Content:   content,
		Tags:      tags,
		CreatedAt: s.now().UnixMilli(),
	}
	item, err := store.ToItem(post)
	if err != nil {
		return models.Post{}, err
	}
	if err := s.store.Put(ctx, models.PostsTable, item); err != nil {
		return models.Post{}, err
	}

	s.events.Publish("post.created", post)
	return post, nil
}

// GetAllPosts returns every post, newest first.
func (s *PostService) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	items, err := s.store.Scan(ctx, models.PostsTable)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Post](store.NewestFirst(items, 0))
}

// GetPostsByUser returns the posts of one author, newest first.
func (s *PostService) GetPostsByUser(ctx context.Context, userID string) ([]models.Post, error) {
	items, err := s.store.Query(ctx, models.PostsTable, "userId", userID)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Post](store.NewestFirst(items, 0))
}

// GetRecentPosts scans all posts and returns the newest limit of them.
func (s *PostService) GetRecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = RecentPostsLimit
	}
	items, err := s.store.Scan(ctx, models.PostsTable)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Post](store.NewestFirst(items, limit))
}

// GetPostByID retrieves a single post.
func (s *PostService) GetPostByID(ctx context.Context, id string) (models.Post, error) {
	item, err := s.store.Get(ctx, models.PostsTable, id)
	if err != nil {
		return models.Post{}, fmt.Errorf("post %s: %w", id, err)
	}
	return decodeOne[models.Post](item)
}

// DeletePost removes a post and its comments. Only the author may delete it.
func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return fmt.Errorf("%w: post %s belongs to another user", ErrForbidden, postID)
	}

	if err := s.store.Delete(ctx, models.PostsTable, postID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if s.comments != nil {
		if n, err := s.comments.DeleteCommentsForPost(ctx, postID); err != nil {
			log.Warn().Err(err).Str("post_id", postID).Msg("Failed to delete comments of deleted post")
		} else if n > 0 {
			log.Info().Str("post_id", postID).Int("count", n).Msg("Deleted comments of deleted post")
		}
	}

	s.events.Publish("post.deleted", map[string]string{"postId": postID})
	return nil
}

// NormalizeTags trims, lowercases and de-duplicates tag names, preserving first occurrence order.
func NormalizeTags(tags []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
