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

// ListBooks returns every book in the library.
func (s *Store) ListBooks() ([]*model.Book, error) {
	var books []*model.Book
	if err := s.db.Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// CreateBook saves a new book, assigning an ID if none is set.
func (s *Store) CreateBook(book *model.Book) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	if err := s.db.Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(id string) (*model.Book, error) {
	var book model.Book
	if err := s.db.First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find book: %w", err)
	}
	return &book, nil
}

// UpdateBook updates an existing book.
func (s *Store) UpdateBook(book *model.Book) error {
	result := s.db.Model(&model.Book{}).Where("id = ?", book.ID).Updates(book)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// searchOrderings maps the accepted ordering parameter values to SQL.
var searchOrderings = map[string]string{
	"title":       "title ASC",
	"-title":      "title DESC",
	"rating":      "rating ASC",
	"-rating":     "rating DESC",
	"created_at":  "created_at ASC",
	"-created_at": "created_at DESC",
}

// SearchBooks filters books by a case-insensitive substring of title or
// author, with an optional ordering from the accepted set.
func (s *Store) SearchBooks(search, ordering string) ([]*model.Book, error) {
	q := s.db.Model(&model.Book{})
	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where("title LIKE ? OR author LIKE ?", pattern, pattern)
	}
	if ordering != "" {
		order, ok := searchOrderings[ordering]
		if !ok {
			return nil, fmt.Errorf("unsupported ordering %q", ordering)
		}
		q = q.Order(order)
	}
	var books []*model.Book
	if err := q.Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}
	return books, nil
}

// ListAuthors returns every author.
func (s *Store) ListAuthors() ([]*model.Author, error) {
	var authors []*model.Author
	if err := s.db.Find(&authors).Error; err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	return authors, nil
}

// SearchAuthors filters authors by a name substring.
func (s *Store) SearchAuthors(search string) ([]*model.Author, error) {
	q := s.db.Model(&model.Author{})
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	var authors []*model.Author
	if err := q.Find(&authors).Error; err != nil {
		return nil, fmt.Errorf("failed to search authors: %w", err)
	}
	return authors, nil
}

// AddToShelf places a book on one of a user's shelves. Adding a book that
// is already on the shelf returns ErrAlreadyExists.
func (s *Store) AddToShelf(userID, bookID string, shelf model.Shelf) error {
	if _, err := s.GetBook(bookID); err != nil {
		return err
	}
	entry := &model.ShelfEntry{UserID: userID, BookID: bookID, Shelf: shelf}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}, {Name: "shelf"}},
		DoNothing: true,
	}).Create(entry)
	if result.Error != nil {
		return fmt.Errorf("failed to add shelf entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// ListShelf returns the books on one of a user's shelves.
func (s *Store) ListShelf(userID string, shelf model.Shelf) ([]*model.Book, error) {
	var books []*model.Book
	err := s.db.Model(&model.Book{}).
		Joins("JOIN shelf_entries ON shelf_entries.book_id = books.id").
		Where("shelf_entries.user_id = ? AND shelf_entries.shelf = ?", userID, shelf).
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shelf: %w", err)
	}
	return books, nil
}

// GetReadingProgress returns a user's progress through a book.
func (s *Store) GetReadingProgress(userID, bookID string) (*model.ReadingProgress, error) {
	var progress model.ReadingProgress
	err := s.db.First(&progress, "user_id = ? AND book_id = ?", userID, bookID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reading progress: %w", err)
	}
	return &progress, nil
}

// SaveReadingProgress upserts a user's progress through a book, keyed by
// (user, book). Last write wins.
func (s *Store) SaveReadingProgress(userID, bookID string, currentPage int, percent float64) error {
	progress := &model.ReadingProgress{
		UserID:      userID,
		BookID:      bookID,
		CurrentPage: currentPage,
		Percent:     percent,
		UpdatedAt:   time.Now(),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_page", "percent", "updated_at"}),
	}).Create(progress).Error
	if err != nil {
		return fmt.Errorf("failed to save reading progress: %w", err)
	}
	return nil
}
