package server

import (
	"errors"
	"net/http"

	"github.com/nsorokina/bookclub/internal/model"
	"github.com/nsorokina/bookclub/internal/store"
)

type createRoomRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	BookID string `json:"book_id" validate:"required"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	var req createRoomRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	room, err := s.store.CreateRoom(req.Name, req.BookID, caller)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"room_id": room.ID})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	if err := s.store.JoinRoom(r.PathValue("roomID"), caller); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to join room")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "joined the room"})
}

func (s *Server) handleRoomMembers(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")
	if _, err := s.store.GetRoom(roomID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load room")
		return
	}
	members, err := s.store.RoomMembers(roomID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

func (s *Server) handleRoomProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.store.RoomProgress(r.PathValue("roomID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load room progress")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

type roomProgressRequest struct {
	CurrentPage int `json:"current_page" validate:"gte=0"`
}

func (s *Server) handleSaveRoomProgress(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	var req roomProgressRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	roomID := r.PathValue("roomID")
	if _, err := s.store.GetRoom(roomID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load room")
		return
	}
	if err := s.store.SaveRoomProgress(roomID, caller, req.CurrentPage); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save progress")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "progress updated"})
}

func (s *Server) handleListChat(w http.ResponseWriter, r *http.Request) {
	messages, err := s.store.ListChatMessages(r.PathValue("roomID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list chat messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

type postChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

func (s *Server) handlePostChat(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	var req postChatRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	roomID := r.PathValue("roomID")
	if _, err := s.store.GetRoom(roomID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load room")
		return
	}
	msg := &model.ChatMessage{RoomID: roomID, UserID: caller, Message: req.Message}
	if err := s.store.CreateChatMessage(msg); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
