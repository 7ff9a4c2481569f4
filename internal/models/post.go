package models

// Post is a piece of published content.
type Post struct {
	ID        string   `json:"postId"`
	UserID    string   `json:"userId"`
	Username  string   `json:"username"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	CreatedAt int64    `json:"createdAt"` // Unix milliseconds
}

// Comment is a reply attached to a post.
type Comment struct {
	ID        string `json:"commentId"`
	PostID    string `json:"postId"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"` // Unix milliseconds
}

// Tag is a label posts can carry.
type Tag struct {
	ID        string `json:"tagId"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}
