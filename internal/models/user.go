package models

import "time"

// User represents a registered account. Following and Favorites hold the ids
// of followed users and favorited articles for the loaded user.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Bio          string    `json:"bio"`
	Image        string    `json:"image"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	Following    []string  `json:"-"`
	Favorites    []string  `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Follows reports whether the user follows the user with the given id.
func (u User) Follows(userID string) bool {
	for _, id := range u.Following {
		if id == userID {
			return true
		}
	}
	return false
}

// HasFavorited reports whether the user has favorited the article with the
// given id.
func (u User) HasFavorited(articleID string) bool {
	for _, id := range u.Favorites {
		if id == articleID {
			return true
		}
	}
	return false
}

// UserAuth is the self view of an account, returned only to its owner.
type UserAuth struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
	Token    string `json:"token"`
}

// Profile is the public view of an account, with Following computed against
// the viewing user's follow set.
type Profile struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	Following bool   `json:"following"`
}

// NewUserAuth projects a user into its owner-only view.
func NewUserAuth(u User, token string) UserAuth {
	return UserAuth{
		Username: u.Username,
		Email:    u.Email,
		Bio:      u.Bio,
		Image:    u.Image,
		Token:    token,
	}
}

// NewProfile projects a user into its public view relative to the viewer.
// A nil viewer is anonymous; following is always false for it.
func NewProfile(u User, viewer *User) Profile {
	return Profile{
		Username:  u.Username,
		Bio:       u.Bio,
		Image:     u.Image,
		Following: viewer != nil && viewer.Follows(u.ID),
	}
}
