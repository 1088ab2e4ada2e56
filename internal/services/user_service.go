package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/realworld-go/conduit-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserUpdate carries a partial profile update. Nil fields are left untouched.
type UserUpdate struct {
	Username *string
	Email    *string
	Bio      *string
	Image    *string
	Password *string
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(username, email, password string) (models.User, error)
	Authenticate(email, password string) (models.User, error)
	GetByID(id string) (models.User, error)
	GetByUsername(username string) (models.User, error)
	Update(id string, upd UserUpdate) (models.User, error)
	Follow(followerID, username string) (models.User, error)
	Unfollow(followerID, username string) (models.User, error)
}

// UserService provides business logic for accounts, follow sets and
// credentials.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a new user, hashing their password.
func (s *UserService) Register(username, email, password string) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.Exec(
		"INSERT INTO users(id, username, email, password_hash, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Email, string(hashedPassword), now.Unix(), now.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err, "users.username") {
			return models.User{}, ErrDuplicateUsername
		}
		if isUniqueViolation(err, "users.email") {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}

	return user, nil
}

// Authenticate verifies a user's credentials.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	user, hash, err := s.getByEmail(email)
	if err != nil {
		if err == ErrNotFound {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID retrieves a single user by their ID, including their follow and
// favorite sets.
func (s *UserService) GetByID(id string) (models.User, error) {
	return s.getOne("id = ?", id)
}

// GetByUsername retrieves a single user by username, including their follow
// and favorite sets.
func (s *UserService) GetByUsername(username string) (models.User, error) {
	return s.getOne("username = ?", username)
}

// Update applies a partial update; only non-nil fields are touched.
func (s *UserService) Update(id string, upd UserUpdate) (models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return models.User{}, err
	}

	if upd.Username != nil {
		user.Username = *upd.Username
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	if upd.Image != nil {
		user.Image = *upd.Image
	}

	setPassword := ""
	if upd.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		setPassword = string(hashed)
	}

	user.UpdatedAt = time.Now().UTC()
	if setPassword != "" {
		_, err = s.db.Exec(
			"UPDATE users SET username = ?, email = ?, bio = ?, image = ?, password_hash = ?, updated_at = ? WHERE id = ?",
			user.Username, user.Email, user.Bio, user.Image, setPassword, user.UpdatedAt.Unix(), id,
		)
	} else {
		_, err = s.db.Exec(
			"UPDATE users SET username = ?, email = ?, bio = ?, image = ?, updated_at = ? WHERE id = ?",
			user.Username, user.Email, user.Bio, user.Image, user.UpdatedAt.Unix(), id,
		)
	}
	if err != nil {
		if isUniqueViolation(err, "users.username") {
			return models.User{}, ErrDuplicateUsername
		}
		if isUniqueViolation(err, "users.email") {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}

	return user, nil
}

// Follow adds the target user to the follower's follow set. Following an
// already-followed user is a no-op. Returns the target user.
func (s *UserService) Follow(followerID, username string) (models.User, error) {
	target, err := s.GetByUsername(username)
	if err != nil {
		return models.User{}, err
	}

	_, err = s.db.Exec(
		"INSERT OR IGNORE INTO follows(follower_id, followed_id) VALUES(?, ?)",
		followerID, target.ID,
	)
	if err != nil {
		return models.User{}, err
	}
	return target, nil
}

// Unfollow removes the target user from the follower's follow set.
// Unfollowing a user that is not followed is a no-op. Returns the target user.
func (s *UserService) Unfollow(followerID, username string) (models.User, error) {
	target, err := s.GetByUsername(username)
	if err != nil {
		return models.User{}, err
	}

	_, err = s.db.Exec(
		"DELETE FROM follows WHERE follower_id = ? AND followed_id = ?",
		followerID, target.ID,
	)
	if err != nil {
		return models.User{}, err
	}
	return target, nil
}

func (s *UserService) getOne(where string, arg interface{}) (models.User, error) {
	var user models.User
	var createdAt, updatedAt int64
	row := s.db.QueryRow(
		"SELECT id, username, email, bio, image, created_at, updated_at FROM users WHERE "+where, arg,
	)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Bio, &user.Image, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	user.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	if err := s.loadSets(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) getByEmail(email string) (models.User, string, error) {
	var user models.User
	var hash string
	var createdAt, updatedAt int64
	row := s.db.QueryRow(
		"SELECT id, username, email, bio, image, password_hash, created_at, updated_at FROM users WHERE email = ?", email,
	)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Bio, &user.Image, &hash, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, "", ErrNotFound
		}
		return models.User{}, "", err
	}
	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	user.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	if err := s.loadSets(&user); err != nil {
		return models.User{}, "", err
	}
	return user, hash, nil
}

// loadSets fills in the user's follow and favorite id sets.
func (s *UserService) loadSets(user *models.User) error {
	rows, err := s.db.Query("SELECT followed_id FROM follows WHERE follower_id = ?", user.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		user.Following = append(user.Following, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	favRows, err := s.db.Query("SELECT article_id FROM favorites WHERE user_id = ?", user.ID)
	if err != nil {
		return err
	}
	defer favRows.Close()
	for favRows.Next() {
		var id string
		if err := favRows.Scan(&id); err != nil {
			return err
		}
		user.Favorites = append(user.Favorites, id)
	}
	return favRows.Err()
}
