package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nsorokina/bookclub/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username}
	if err := s.CreateUser(u); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func seedBook(t *testing.T, s *Store, title, author string) *model.Book {
	t.Helper()
	b := &model.Book{Title: title, Author: author, CreatedAt: time.Now()}
	if err := s.CreateBook(b); err != nil {
		t.Fatalf("failed to seed book: %v", err)
	}
	return b
}

func TestBookCRUD(t *testing.T) {
	s := newTestStore(t)

	book := seedBook(t, s, "Dune", "Frank Herbert")
	if book.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := s.GetBook(book.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Title != "Dune" {
		t.Errorf("expected Dune, got %q", got.Title)
	}

	got.Description = "Spice"
	if err := s.UpdateBook(got); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	updated, _ := s.GetBook(book.ID)
	if updated.Description != "Spice" {
		t.Errorf("update not applied: %q", updated.Description)
	}

	if _, err := s.GetBook("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateBook(&model.Book{ID: "missing", Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on update, got %v", err)
	}

	books, err := s.ListBooks()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(books) != 1 {
		t.Errorf("expected 1 book, got %d", len(books))
	}
}

func TestSearchBooks(t *testing.T) {
	s := newTestStore(t)
	seedBook(t, s, "Dune", "Frank Herbert")
	seedBook(t, s, "Dune Messiah", "Frank Herbert")
	seedBook(t, s, "Neuromancer", "William Gibson")

	books, err := s.SearchBooks("Dune", "")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(books))
	}

	// Author substring also matches.
	books, err = s.SearchBooks("Gibson", "")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(books) != 1 || books[0].Title != "Neuromancer" {
		t.Fatalf("expected Neuromancer, got %v", books)
	}

	books, err = s.SearchBooks("", "-title")
	if err != nil {
		t.Fatalf("ordered search failed: %v", err)
	}
	if books[0].Title != "Neuromancer" {
		t.Errorf("expected descending title order, got %q first", books[0].Title)
	}

	if _, err := s.SearchBooks("", "drop table"); err == nil {
		t.Error("expected error for unsupported ordering")
	}
}

func TestShelves(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s, "alice")
	book := seedBook(t, s, "Dune", "Frank Herbert")

	if err := s.AddToShelf(user.ID, book.ID, model.ShelfFavourite); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := s.AddToShelf(user.ID, book.ID, model.ShelfFavourite); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := s.AddToShelf(user.ID, "missing", model.ShelfFavourite); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// The same book can sit on a different shelf.
	if err := s.AddToShelf(user.ID, book.ID, model.ShelfRead); err != nil {
		t.Fatalf("second shelf failed: %v", err)
	}

	favourites, err := s.ListShelf(user.ID, model.ShelfFavourite)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(favourites) != 1 || favourites[0].ID != book.ID {
		t.Errorf("unexpected favourites: %v", favourites)
	}
}

func TestFollowAndFeed(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	carol := seedUser(t, s, "carol")

	if err := s.FollowUser(alice.ID, bob.ID); err != nil {
		t.Fatalf("follow failed: %v", err)
	}
	if err := s.FollowUser(alice.ID, bob.ID); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	if err := s.CreatePost(&model.Post{AuthorID: bob.ID, Body: "from bob"}); err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if err := s.CreatePost(&model.Post{AuthorID: carol.ID, Body: "from carol"}); err != nil {
		t.Fatalf("post failed: %v", err)
	}

	feed, err := s.FeedPosts(alice.ID)
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(feed) != 1 || feed[0].Body != "from bob" {
		t.Fatalf("feed should only contain followed authors, got %v", feed)
	}
}

func TestReadingProgressUpsert(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s, "alice")
	book := seedBook(t, s, "Dune", "Frank Herbert")

	if _, err := s.GetReadingProgress(user.ID, book.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.SaveReadingProgress(user.ID, book.ID, 10, 2.5); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SaveReadingProgress(user.ID, book.ID, 25, 6.0); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	progress, err := s.GetReadingProgress(user.ID, book.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if progress.CurrentPage != 25 {
		t.Errorf("last write should win, got page %d", progress.CurrentPage)
	}
}

func TestRoomLifecycle(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	book := seedBook(t, s, "Dune", "Frank Herbert")

	room, err := s.CreateRoom("dune readers", book.ID, alice.ID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	members, err := s.RoomMembers(room.ID)
	if err != nil {
		t.Fatalf("members failed: %v", err)
	}
	if len(members) != 1 || members[0] != alice.ID {
		t.Fatalf("creator should be the first member, got %v", members)
	}

	if err := s.JoinRoom(room.ID, bob.ID); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	// Joining twice is a no-op.
	if err := s.JoinRoom(room.ID, bob.ID); err != nil {
		t.Fatalf("repeat join failed: %v", err)
	}
	members, _ = s.RoomMembers(room.ID)
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	if err := s.JoinRoom("missing", bob.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoomProgressUpsert(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "alice")
	book := seedBook(t, s, "Dune", "Frank Herbert")
	room, _ := s.CreateRoom("readers", book.ID, alice.ID)

	if err := s.SaveRoomProgress(room.ID, alice.ID, 10); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SaveRoomProgress(room.ID, alice.ID, 30); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	progress, err := s.RoomProgress(room.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("upsert should keep one row per (room, user), got %d", len(progress))
	}
	if progress[0].CurrentPage != 30 {
		t.Errorf("last write should win, got page %d", progress[0].CurrentPage)
	}
}

func TestChatMessagesOrderedByTimestamp(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "alice")
	book := seedBook(t, s, "Dune", "Frank Herbert")
	room, _ := s.CreateRoom("readers", book.ID, alice.ID)

	base := time.Now()
	for i, text := range []string{"second", "first", "third"} {
		offset := []time.Duration{time.Second, 0, 2 * time.Second}[i]
		msg := &model.ChatMessage{
			RoomID:    room.ID,
			UserID:    alice.ID,
			Message:   text,
			Timestamp: base.Add(offset),
		}
		if err := s.CreateChatMessage(msg); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	messages, err := s.ListChatMessages(room.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	got := []string{}
	for _, m := range messages {
		got = append(got, m.Message)
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestProfileUpdatePartial(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s, "alice")
	if err := s.CreateProfile(&model.Profile{UserID: user.ID, Name: "Alice", Bio: "reader"}); err != nil {
		t.Fatalf("create profile failed: %v", err)
	}

	updated, err := s.UpdateProfile(user.ID, "", "night reader", "")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Alice" {
		t.Errorf("name should be untouched, got %q", updated.Name)
	}

	got, _ := s.GetProfile(user.ID)
	if got.Bio != "night reader" {
		t.Errorf("bio not updated: %q", got.Bio)
	}
}
