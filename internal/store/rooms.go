package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nsorokina/bookclub/internal/model"
)

// CreateRoom creates a reading room for a book with the creator as its
// first member, and returns the new room.
func (s *Store) CreateRoom(name, bookID, creatorID string) (*model.ReadingRoom, error) {
	room := &model.ReadingRoom{
		ID:        uuid.NewString(),
		BookID:    bookID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		member := &model.RoomMember{RoomID: room.ID, UserID: creatorID}
		return tx.Create(member).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return room, nil
}

// GetRoom retrieves a reading room by ID.
func (s *Store) GetRoom(id string) (*model.ReadingRoom, error) {
	var room model.ReadingRoom
	if err := s.db.First(&room, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return &room, nil
}

// JoinRoom adds a user to a room's membership. Joining twice is a no-op;
// joining an unknown room returns ErrNotFound.
func (s *Store) JoinRoom(roomID, userID string) error {
	if _, err := s.GetRoom(roomID); err != nil {
		return err
	}
	member := &model.RoomMember{RoomID: roomID, UserID: userID}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(member).Error
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}
	return nil
}

// RoomMembers returns the user IDs persisted as members of a room.
func (s *Store) RoomMembers(roomID string) ([]string, error) {
	var ids []string
	err := s.db.Model(&model.RoomMember{}).
		Where("room_id = ?", roomID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list room members: %w", err)
	}
	return ids, nil
}

// RoomProgress returns each member's recorded position in a room.
func (s *Store) RoomProgress(roomID string) ([]*model.RoomProgress, error) {
	var progress []*model.RoomProgress
	err := s.db.Where("room_id = ?", roomID).
		Order("updated_at DESC").
		Find(&progress).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list room progress: %w", err)
	}
	return progress, nil
}

// SaveRoomProgress upserts a user's position in a room, keyed by
// (room, user). Last write wins on concurrent updates.
func (s *Store) SaveRoomProgress(roomID, userID string, currentPage int) error {
	progress := &model.RoomProgress{
		RoomID:      roomID,
		UserID:      userID,
		CurrentPage: currentPage,
		UpdatedAt:   time.Now(),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_page", "updated_at"}),
	}).Create(progress).Error
	if err != nil {
		return fmt.Errorf("failed to save room progress: %w", err)
	}
	return nil
}

// CreateChatMessage persists a room chat line.
func (s *Store) CreateChatMessage(msg *model.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if err := s.db.Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

// ListChatMessages returns a room's chat history ordered by timestamp
// ascending.
func (s *Store) ListChatMessages(roomID string) ([]*model.ChatMessage, error) {
	var messages []*model.ChatMessage
	err := s.db.Where("room_id = ?", roomID).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return messages, nil
}
