// Package model defines the persisted entities of the platform.
package model

import "time"

// User is a platform account. Token issuance lives elsewhere; handlers
// receive the caller's user ID from a trusted header.
type User struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	Username  string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:255" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Shelf names a book list on a profile.
type Shelf string

const (
	ShelfFavourite  Shelf = "favourite"
	ShelfRead       Shelf = "read"
	ShelfWantToRead Shelf = "want_to_read"
	ShelfDisliked   Shelf = "disliked"
)

// Profile is the public face of a user.
type Profile struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;uniqueIndex;not null" json:"user_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Bio       string    `gorm:"size:500" json:"bio"`
	PhotoURL  string    `gorm:"size:255" json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ShelfEntry places a book on one of a user's shelves.
type ShelfEntry struct {
	ID     uint   `gorm:"primarykey" json:"-"`
	UserID string `gorm:"size:36;uniqueIndex:idx_shelf_entry;not null" json:"user_id"`
	BookID string `gorm:"size:36;uniqueIndex:idx_shelf_entry;not null" json:"book_id"`
	Shelf  Shelf  `gorm:"size:20;uniqueIndex:idx_shelf_entry;not null" json:"shelf"`
}

// Author is a book author.
type Author struct {
	ID   string `gorm:"primarykey;size:36" json:"id"`
	Name string `gorm:"size:255;not null" json:"name"`
	Bio  string `gorm:"size:500" json:"bio,omitempty"`
}

// Book is a title in the shared library. FilePath points at the uploaded
// document (PDF/EPUB/FB2) whose text is extracted on demand.
type Book struct {
	ID          string    `gorm:"primarykey;size:36" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"size:2000" json:"description"`
	Author      string    `gorm:"size:255" json:"author"`
	CoverURL    string    `gorm:"size:255" json:"cover_url,omitempty"`
	FilePath    string    `gorm:"size:255" json:"file_path,omitempty"`
	Rating      float64   `gorm:"default:0" json:"rating"`
	UploadedBy  string    `gorm:"size:36" json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Post is a status update shown in followers' feeds.
type Post struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	AuthorID  string    `gorm:"size:36;index;not null" json:"author_id"`
	Body      string    `gorm:"size:2000;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Follow links a follower to a followee.
type Follow struct {
	ID         uint      `gorm:"primarykey" json:"-"`
	FollowerID string    `gorm:"size:36;uniqueIndex:idx_follow;not null" json:"follower_id"`
	FolloweeID string    `gorm:"size:36;uniqueIndex:idx_follow;not null" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Notification is delivered to a single recipient.
type Notification struct {
	ID          string    `gorm:"primarykey;size:36" json:"id"`
	RecipientID string    `gorm:"size:36;index;not null" json:"recipient_id"`
	Text        string    `gorm:"size:500;not null" json:"text"`
	Read        bool      `gorm:"default:false" json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Message is a direct message between two users.
type Message struct {
	ID          string    `gorm:"primarykey;size:36" json:"id"`
	SenderID    string    `gorm:"size:36;index;not null" json:"sender_id"`
	RecipientID string    `gorm:"size:36;index;not null" json:"recipient_id"`
	Body        string    `gorm:"size:2000;not null" json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// Discussion is a thread attached to a book.
type Discussion struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	BookID    string    `gorm:"size:36;index;not null" json:"book_id"`
	UserID    string    `gorm:"size:36;not null" json:"user_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Body      string    `gorm:"size:2000" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a reply inside a discussion.
type Comment struct {
	ID           string    `gorm:"primarykey;size:36" json:"id"`
	DiscussionID string    `gorm:"size:36;index;not null" json:"discussion_id"`
	UserID       string    `gorm:"size:36;not null" json:"user_id"`
	Body         string    `gorm:"size:2000;not null" json:"body"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReadingProgress tracks how far a user is through a book, outside of any
// room. Last write wins on concurrent updates.
type ReadingProgress struct {
	ID          uint      `gorm:"primarykey" json:"-"`
	UserID      string    `gorm:"size:36;uniqueIndex:idx_reading_progress;not null" json:"user_id"`
	BookID      string    `gorm:"size:36;uniqueIndex:idx_reading_progress;not null" json:"book_id"`
	CurrentPage int       `gorm:"not null;default:0" json:"current_page"`
	Percent     float64   `gorm:"default:0" json:"percent"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ReadingRoom is a collaborative session scoped to one book. Rooms are
// never deleted; live participation is tracked separately by the relay.
type ReadingRoom struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	BookID    string    `gorm:"size:36;index;not null" json:"book_id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomMember records persisted room membership. Joining twice is a no-op.
type RoomMember struct {
	ID     uint   `gorm:"primarykey" json:"-"`
	RoomID string `gorm:"size:36;uniqueIndex:idx_room_member;not null" json:"room_id"`
	UserID string `gorm:"size:36;uniqueIndex:idx_room_member;not null" json:"user_id"`
}

// RoomProgress is the persisted counterpart of a progress_update event,
// upserted by the HTTP layer keyed by (room, user).
type RoomProgress struct {
	ID          uint      `gorm:"primarykey" json:"-"`
	RoomID      string    `gorm:"size:36;uniqueIndex:idx_room_progress;not null" json:"room_id"`
	UserID      string    `gorm:"size:36;uniqueIndex:idx_room_progress;not null" json:"user_id"`
	CurrentPage int       `gorm:"not null;default:0" json:"current_page"`
	UpdatedAt   time.Time `json:"last_updated"`
}

// ChatMessage is the persisted counterpart of a chat_message event.
type ChatMessage struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	RoomID    string    `gorm:"size:36;index;not null" json:"room_id"`
	UserID    string    `gorm:"size:36;not null" json:"user_id"`
	Message   string    `gorm:"size:2000;not null" json:"message"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

// All lists every entity for migration at startup.
func All() []any {
	return []any{
		&User{}, &Profile{}, &ShelfEntry{}, &Author{}, &Book{}, &Post{},
		&Follow{}, &Notification{}, &Message{}, &Discussion{}, &Comment{},
		&ReadingProgress{}, &ReadingRoom{}, &RoomMember{}, &RoomProgress{},
		&ChatMessage{},
	}
}
