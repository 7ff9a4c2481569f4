package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/cms-be/internal/models"
	"github.com/isdelr/cms-be/internal/store"
)

// TagServiceProvider defines the interface for tag services.
type TagServiceProvider interface {
	EnsureTags(ctx context.Context, names []string) error
	GetAllTags(ctx context.Context) ([]models.Tag, error)
}

// TagService keeps the CMS-Tags table in sync with the tags used by posts.
type TagService struct {
	store store.Store
	now   func() time.Time
}

// NewTagService creates a new TagService.
func NewTagService(st store.Store) *TagService {
	return &TagService{store: st, now: time.Now}
}

// EnsureTags creates any tag in names that does not exist yet.
func (s *TagService) EnsureTags(ctx context.Context, names []string) error {
	for _, name := range names {
		existing, err := s.store.Query(ctx, models.TagsTable, "name", name)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}
		item, err := store.ToItem(models.Tag{ID: uuid.New().String(), Name: name, CreatedAt: s.now().UnixMilli()})
		if err != nil {
			return err
		}
		if err := s.store.Put(ctx, models.TagsTable, item); err != nil {
			return err
		}
	}
	return nil
}

// GetAllTags returns every tag ordered by name.
func (s *TagService) GetAllTags(ctx context.Context) ([]models.Tag, error) {
	items, err := s.store.Scan(ctx, models.TagsTable)
	if err != nil {
		return nil, err
	}
	tags, err := decodeAll[models.Tag](items)
	if err != nil {
		return nil, err
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}
