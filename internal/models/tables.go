package models

import "github.com/isdelr/cms-be/internal/store"

// Table names in the document store.
const (
	UsersTable    = "CMS-Users"
	PostsTable    = "CMS-Posts"
	CommentsTable = "CMS-Comments"
	TagsTable     = "CMS-Tags"
)

// Tables returns the schema of every table the application uses.
func Tables() []store.TableSpec {
	return []store.TableSpec{
		{Name: UsersTable, Key: "userId", Indexes: []string{"username"}},
		{Name: PostsTable, Key: "postId", Indexes: []string{"userId", "createdAt"}},
		{Name: CommentsTable, Key: "commentId", Indexes: []string{"postId"}},
		{Name: TagsTable, Key: "tagId", Indexes: []string{"name"}},
	}
}
