package models

// User represents a registered account.
type User struct {
	ID             string   `json:"userId"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	PasswordHash   string   `json:"passwordHash,omitempty"`
	Avatars        []Avatar `json:"avatars"`
	ActiveAvatarID string   `json:"activeAvatarId,omitempty"`
	CreatedAt      int64    `json:"createdAt"` // Unix milliseconds
	UpdatedAt      string   `json:"updatedAt,omitempty"`
}

// Avatar is an image a user uploaded; one of them may be active.
type Avatar struct {
	ID         string `json:"avatarId"`
	URL        string `json:"url"`
	UploadedAt int64  `json:"uploadedAt"`
}

// HasAvatar reports whether the user owns an avatar with the given ID.
func (u User) HasAvatar(avatarID string) bool {
	for _, a := range u.Avatars {
		if a.ID == avatarID {
			return true
		}
	}
	return false
}

// Public returns a copy safe to send to clients.
func (u User) Public() User {
	u.PasswordHash = ""
	if u.Avatars == nil {
		u.Avatars = []Avatar{}
	}
	return u
}
