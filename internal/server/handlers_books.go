package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/nsorokina/bookclub/internal/content"
	"github.com/nsorokina/bookclub/internal/model"
	"github.com/nsorokina/bookclub/internal/store"
)

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.store.ListBooks()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list books")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

type createBookRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Author      string  `json:"author" validate:"required,max=255"`
	CoverURL    string  `json:"cover_url"`
	FilePath    string  `json:"file_path"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	var req createBookRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	book := &model.Book{
		Title:       req.Title,
		Description: req.Description,
		Author:      req.Author,
		CoverURL:    req.CoverURL,
		FilePath:    req.FilePath,
		Rating:      req.Rating,
		UploadedBy:  caller,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateBook(book); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create book")
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

// bookDetailResponse carries the book record plus its extracted text.
type bookDetailResponse struct {
	*model.Book
	Content string `json:"content,omitempty"`
}

func (s *Server) handleBookDetail(w http.ResponseWriter, r *http.Request) {
	book, err := s.store.GetBook(r.PathValue("bookID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load book")
		return
	}

	resp := bookDetailResponse{Book: book}
	if s.extractor != nil && book.FilePath != "" {
		text, err := s.extractor.Extract(r.Context(), book.ID, book.FilePath)
		switch {
		case err == nil:
			resp.Content = text
		case errors.Is(err, content.ErrUnsupportedFormat):
			// The record is still useful without its text.
		default:
			log.Printf("server: content extraction failed for book %s: %v", book.ID, err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type updateBookRequest struct {
	Title       string  `json:"title" validate:"omitempty,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Author      string  `json:"author" validate:"omitempty,max=255"`
	CoverURL    string  `json:"cover_url"`
	FilePath    string  `json:"file_path"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	if requireCaller(w, r) == "" {
		return
	}
	var req updateBookRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	bookID := r.PathValue("bookID")
	book := &model.Book{
		ID:          bookID,
		Title:       req.Title,
		Description: req.Description,
		Author:      req.Author,
		CoverURL:    req.CoverURL,
		FilePath:    req.FilePath,
		Rating:      req.Rating,
	}
	if err := s.store.UpdateBook(book); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "book not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update book")
		return
	}
	if s.extractor != nil {
		s.extractor.Invalidate(r.Context(), bookID)
	}
	updated, err := s.store.GetBook(bookID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load book")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.store.SearchBooks(r.URL.Query().Get("search"), r.URL.Query().Get("ordering"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleAddFavourite(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	err := s.store.AddToShelf(caller, r.PathValue("bookID"), model.ShelfFavourite)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "book not found")
	case errors.Is(err, store.ErrAlreadyExists):
		writeError(w, http.StatusBadRequest, "book is already in favourites")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to add favourite")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "book added to favourites"})
	}
}

// shelfNames maps path segments to shelf values.
var shelfNames = map[string]model.Shelf{
	"favourite":    model.ShelfFavourite,
	"read":         model.ShelfRead,
	"want_to_read": model.ShelfWantToRead,
	"disliked":     model.ShelfDisliked,
}

func (s *Server) handleListShelf(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	shelf, ok := shelfNames[r.PathValue("shelf")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown shelf")
		return
	}
	books, err := s.store.ListShelf(caller, shelf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list shelf")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := s.store.ListAuthors()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list authors")
		return
	}
	writeJSON(w, http.StatusOK, authors)
}

func (s *Server) handleSearchAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := s.store.SearchAuthors(r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search authors")
		return
	}
	writeJSON(w, http.StatusOK, authors)
}

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.SearchUsers(r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}
