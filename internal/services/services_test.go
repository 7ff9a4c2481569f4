package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/isdelr/cms-be/internal/models"
	"github.com/isdelr/cms-be/internal/store/storetest"
)

// tickingClock returns a clock advancing one millisecond per call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

type recordedEvent struct {
	action  string
	payload interface{}
}

type recordingPublisher struct {
	events []recordedEvent
}

func (p *recordingPublisher) Publish(action string, payload interface{}) {
	p.events = append(p.events, recordedEvent{action, payload})
}

func (p *recordingPublisher) actions() []string {
	var out []string
	for _, e := range p.events {
		out = append(out, e.action)
	}
	return out
}

type fixture struct {
	users    *UserService
	posts    *PostService
	comments *CommentService
	tags     *TagService
	events   *recordingPublisher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st := storetest.New(t)
	events := &recordingPublisher{}
	clock := tickingClock()

	users := NewUserService(st)
	users.now = clock
	tags := NewTagService(st)
	tags.now = clock
	comments := NewCommentService(st, events)
	comments.now = clock
	posts := NewPostService(st, tags, comments, events)
	posts.now = clock

	return fixture{users: users, posts: posts, comments: comments, tags: tags, events: events}
}

func TestUserRegistrationAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.users.CreateUser(ctx, " alice ", "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID == "" || user.Username != "alice" || user.PasswordHash != "" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := f.users.CreateUser(ctx, "alice", "other@example.com", "hunter22"); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate username err=%v want ErrConflict", err)
	}
	if _, err := f.users.CreateUser(ctx, "bob", "", "123"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("short password err=%v want ErrInvalidInput", err)
	}

	got, err := f.users.AuthenticateUser(ctx, "alice", "hunter22")
	if err != nil {
		t.Fatalf("AuthenticateUser: %v", err)
	}
	if got.ID != user.ID || got.PasswordHash != "" {
		t.Fatalf("authenticated user=%+v", got)
	}
	if _, err := f.users.AuthenticateUser(ctx, "alice", "wrong-password"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("bad password err=%v want ErrUnauthorized", err)
	}
	if _, err := f.users.AuthenticateUser(ctx, "nobody", "hunter22"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unknown user err=%v want ErrUnauthorized", err)
	}

	profile, err := f.users.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if profile.Email != "alice@example.com" || profile.PasswordHash != "" {
		t.Fatalf("profile=%+v", profile)
	}
	if _, err := f.users.GetUserByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user err=%v want ErrNotFound", err)
	}
}

func TestAvatars(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user, err := f.users.CreateUser(ctx, "alice", "", "hunter22")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.users.AddAvatar(ctx, user.ID, "not a url"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad url err=%v want ErrInvalidInput", err)
	}
	avatar, err := f.users.AddAvatar(ctx, user.ID, "https://cdn.example.com/a.png")
	if err != nil {
		t.Fatalf("AddAvatar: %v", err)
	}

	if err := f.users.SetActiveAvatar(ctx, user.ID, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty avatar id err=%v", err)
	}
	if err := f.users.SetActiveAvatar(ctx, user.ID, "unknown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown avatar err=%v want ErrNotFound", err)
	}
	if err := f.users.SetActiveAvatar(ctx, user.ID, avatar.ID); err != nil {
		t.Fatalf("SetActiveAvatar: %v", err)
	}

	profile, err := f.users.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if profile.ActiveAvatarID != avatar.ID || profile.UpdatedAt == "" {
		t.Fatalf("active avatar not stored: %+v", profile)
	}
	if diff := cmp.Diff([]models.Avatar{avatar}, profile.Avatars); diff != "" {
		t.Fatalf("avatars mismatch (-want +got):\n%s", diff)
	}

	// The password hash survives partial updates.
	if _, err := f.users.AuthenticateUser(ctx, "alice", "hunter22"); err != nil {
		t.Fatalf("login after avatar update: %v", err)
	}
}

func TestPostsLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.posts.CreatePost(ctx, "u1", "alice", " ", "body", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty title err=%v want ErrInvalidInput", err)
	}

	var ids []string
	for i := 0; i < 25; i++ {
		author := "u1"
		if i%2 == 1 {
			author = "u2"
		}
		p, err := f.posts.CreatePost(ctx, author, "name", "title", "content", []string{" Go ", "go", "CMS"})
		if err != nil {
			t.Fatalf("CreatePost %d: %v", i, err)
		}
		ids = append(ids, p.ID)
	}

	recent, err := f.posts.GetRecentPosts(ctx, 0)
	if err != nil {
		t.Fatalf("GetRecentPosts: %v", err)
	}
	if len(recent) != RecentPostsLimit || recent[0].ID != ids[24] || recent[19].ID != ids[5] {
		t.Fatalf("recent posts not the newest 20 in order")
	}
	if diff := cmp.Diff([]string{"go", "cms"}, recent[0].Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}

	all, err := f.posts.GetAllPosts(ctx)
	if err != nil || len(all) != 25 || all[24].ID != ids[0] {
		t.Fatalf("GetAllPosts len=%d err=%v", len(all), err)
	}
	mine, err := f.posts.GetPostsByUser(ctx, "u2")
	if err != nil || len(mine) != 12 {
		t.Fatalf("GetPostsByUser len=%d err=%v", len(mine), err)
	}

	tags, err := f.tags.GetAllTags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 || tags[0].Name != "cms" || tags[1].Name != "go" {
		t.Fatalf("tags=%+v", tags)
	}

	if err := f.posts.DeletePost(ctx, "u2", ids[0]); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete by non-owner err=%v want ErrForbidden", err)
	}
	if err := f.posts.DeletePost(ctx, "u1", ids[0]); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if _, err := f.posts.GetPostByID(ctx, ids[0]); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted post err=%v want ErrNotFound", err)
	}
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	post, err := f.posts.CreatePost(ctx, "owner", "olga", "title", "content", nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.comments.CreateComment(ctx, "u1", "alice", "missing", "hi"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("comment on missing post err=%v want ErrNotFound", err)
	}
	if _, err := f.comments.CreateComment(ctx, "u1", "alice", post.ID, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty comment err=%v want ErrInvalidInput", err)
	}

	c1, err := f.comments.CreateComment(ctx, "u1", "alice", post.ID, "first")
	if err != nil {
		t.Fatal(err)
	}
	c2, err := f.comments.CreateComment(ctx, "u2", "bob", post.ID, "second")
	if err != nil {
		t.Fatal(err)
	}

	list, err := f.comments.GetCommentsForPost(ctx, post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != c1.ID || list[1].ID != c2.ID {
		t.Fatalf("comments not oldest first: %+v", list)
	}

	if err := f.comments.DeleteComment(ctx, "u2", c1.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete other's comment err=%v want ErrForbidden", err)
	}
	if err := f.comments.DeleteComment(ctx, "owner", c1.ID); err != nil {
		t.Fatalf("post owner delete: %v", err)
	}
	if err := f.comments.DeleteComment(ctx, "u2", c2.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}

	// Comments go away with their post.
	c3, err := f.comments.CreateComment(ctx, "u1", "alice", post.ID, "third")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.posts.DeletePost(ctx, "owner", post.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.comments.DeleteComment(ctx, "u1", c3.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("comment of deleted post err=%v want ErrNotFound", err)
	}

	want := []string{"post.created", "comment.created", "comment.created", "comment.deleted", "comment.deleted", "comment.created", "post.deleted"}
	if diff := cmp.Diff(want, f.events.actions()); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Go", "", "go ", "News", "  "})
	if diff := cmp.Diff([]string{"go", "news"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if got := NormalizeTags(nil); got == nil || len(got) != 0 {
		t.Fatalf("nil input should give empty slice, got %#v", got)
	}
}

type captureHub struct {
	messages [][]byte
}

func (c *captureHub) BroadcastMessage(m []byte) { c.messages = append(c.messages, m) }

func TestEventServiceBoundedFeed(t *testing.T) {
	hub := &captureHub{}
	svc := NewEventService(hub, 3)
	for _, a := range []string{"a", "b", "c", "d"} {
		svc.Publish(a, nil)
	}

	recent := svc.GetRecentEvents(10)
	var got []string
	for _, e := range recent {
		got = append(got, e.Action)
	}
	if diff := cmp.Diff([]string{"d", "c", "b"}, got); diff != "" {
		t.Fatalf("feed mismatch (-want +got):\n%s", diff)
	}
	if len(svc.GetRecentEvents(1)) != 1 {
		t.Fatalf("limit not applied")
	}
	if len(hub.messages) != 4 {
		t.Fatalf("broadcast %d messages want 4", len(hub.messages))
	}
}
