package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nsorokina/bookclub/internal/model"
)

// CreateUser saves a new user, assigning an ID if none is set.
func (s *Store) CreateUser(user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if err := s.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(id string) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// FindUserByUsername retrieves a user by username.
func (s *Store) FindUserByUsername(username string) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// SearchUsers filters users by a username substring.
func (s *Store) SearchUsers(search string) ([]*model.User, error) {
	q := s.db.Model(&model.User{})
	if search != "" {
		q = q.Where("username LIKE ?", "%"+search+"%")
	}
	var users []*model.User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// GetProfile returns the profile belonging to a user.
func (s *Store) GetProfile(userID string) (*model.Profile, error) {
	var profile model.Profile
	if err := s.db.First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &profile, nil
}

// CreateProfile saves a new profile, assigning an ID if none is set.
func (s *Store) CreateProfile(profile *model.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if err := s.db.Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// UpdateProfile applies a partial update to a user's profile. Only
// non-empty fields overwrite stored values.
func (s *Store) UpdateProfile(userID string, name, bio, photoURL string) (*model.Profile, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if name != "" {
		updates["name"] = name
	}
	if bio != "" {
		updates["bio"] = bio
	}
	if photoURL != "" {
		updates["photo_url"] = photoURL
	}
	if len(updates) > 0 {
		if err := s.db.Model(profile).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}
	return profile, nil
}

// FollowUser records that follower follows followee. Following the same
// user twice returns ErrAlreadyExists.
func (s *Store) FollowUser(followerID, followeeID string) error {
	var count int64
	s.db.Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count)
	if count > 0 {
		return ErrAlreadyExists
	}
	follow := &model.Follow{FollowerID: followerID, FolloweeID: followeeID, CreatedAt: time.Now()}
	if err := s.db.Create(follow).Error; err != nil {
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

// FeedPosts returns posts authored by users the caller follows, newest
// first.
func (s *Store) FeedPosts(userID string) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.Model(&model.Post{}).
		Joins("JOIN follows ON follows.followee_id = posts.author_id").
		Where("follows.follower_id = ?", userID).
		Order("posts.created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	return posts, nil
}

// CreatePost saves a new post, assigning an ID if none is set.
func (s *Store) CreatePost(post *model.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	if err := s.db.Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// ListNotifications returns a recipient's notifications, newest first.
func (s *Store) ListNotifications(recipientID string) ([]*model.Notification, error) {
	var notifications []*model.Notification
	err := s.db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// CreateNotification saves a notification, assigning an ID if none is set.
func (s *Store) CreateNotification(n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if err := s.db.Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListMessages returns a recipient's inbox, newest first.
func (s *Store) ListMessages(recipientID string) ([]*model.Message, error) {
	var messages []*model.Message
	err := s.db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// CreateMessage saves a direct message, assigning an ID if none is set.
func (s *Store) CreateMessage(msg *model.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if err := s.db.Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListDiscussions returns the discussion threads attached to a book.
func (s *Store) ListDiscussions(bookID string) ([]*model.Discussion, error) {
	var discussions []*model.Discussion
	err := s.db.Where("book_id = ?", bookID).
		Order("created_at ASC").
		Find(&discussions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list discussions: %w", err)
	}
	return discussions, nil
}

// CreateDiscussion saves a discussion thread, assigning an ID if none is set.
func (s *Store) CreateDiscussion(d *model.Discussion) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	if err := s.db.Create(d).Error; err != nil {
		return fmt.Errorf("failed to create discussion: %w", err)
	}
	return nil
}

// ListComments returns the comments in a discussion, oldest first.
func (s *Store) ListComments(discussionID string) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := s.db.Where("discussion_id = ?", discussionID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// CreateComment saves a comment, assigning an ID if none is set.
func (s *Store) CreateComment(c *model.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if err := s.db.Create(c).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}
