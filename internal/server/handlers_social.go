package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/nsorokina/bookclub/internal/model"
	"github.com/nsorokina/bookclub/internal/store"
)

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// handleCreateUser registers an account record. Credentials and token
// issuance live with an external identity provider.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if _, err := s.store.FindUserByUsername(req.Username); err == nil {
		writeError(w, http.StatusBadRequest, "username is taken")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to check username")
		return
	}
	user := &model.User{Username: req.Username, Email: req.Email}
	if err := s.store.CreateUser(user); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	profile, err := s.store.GetProfile(caller)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type createProfileRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Bio      string `json:"bio" validate:"max=500"`
	PhotoURL string `json:"photo_url"`
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	var req createProfileRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if _, err := s.store.GetProfile(caller); err == nil {
		writeError(w, http.StatusBadRequest, "profile already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	profile := &model.Profile{
		UserID:   caller,
		Name:     req.Name,
		Bio:      req.Bio,
		PhotoURL: req.PhotoURL,
	}
	if err := s.store.CreateProfile(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create profile")
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

type updateProfileRequest struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Bio      string `json:"bio" validate:"max=500"`
	PhotoURL string `json:"photo_url"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	var req updateProfileRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	profile, err := s.store.UpdateProfile(caller, req.Name, req.Bio, req.PhotoURL)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleFollowUser(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	target, err := s.store.FindUserByUsername(r.PathValue("username"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to find user")
		return
	}
	if target.ID == caller {
		writeError(w, http.StatusBadRequest, "you cannot follow yourself")
		return
	}
	if err := s.store.FollowUser(caller, target.ID); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			writeError(w, http.StatusBadRequest, "already following this user")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to follow user")
		return
	}
	s.notifyNewFollower(caller, target.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "following"})
}

// notifyNewFollower tells the followee about a new follower. Delivery is
// best effort; the follow itself has already been recorded.
func (s *Server) notifyNewFollower(followerID, followeeID string) {
	follower, err := s.store.GetUser(followerID)
	if err != nil {
		log.Printf("server: follower lookup failed: %v", err)
		return
	}
	n := &model.Notification{
		RecipientID: followeeID,
		Text:        follower.Username + " started following you",
	}
	if err := s.store.CreateNotification(n); err != nil {
		log.Printf("server: failed to create follow notification: %v", err)
	}
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	posts, err := s.store.FeedPosts(caller)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load feed")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

type createPostRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	var req createPostRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	post := &model.Post{AuthorID: caller, Body: req.Body}
	if err := s.store.CreatePost(post); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	notifications, err := s.store.ListNotifications(caller)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	messages, err := s.store.ListMessages(caller)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

type sendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Body        string `json:"body" validate:"required,max=2000"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	var req sendMessageRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	msg := &model.Message{SenderID: caller, RecipientID: req.RecipientID, Body: req.Body}
	if err := s.store.CreateMessage(msg); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleListDiscussions(w http.ResponseWriter, r *http.Request) {
	discussions, err := s.store.ListDiscussions(r.PathValue("bookID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list discussions")
		return
	}
	writeJSON(w, http.StatusOK, discussions)
}

type createDiscussionRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"max=2000"`
}

func (s *Server) handleCreateDiscussion(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	var req createDiscussionRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	discussion := &model.Discussion{
		BookID: r.PathValue("bookID"),
		UserID: caller,
		Title:  req.Title,
		Body:   req.Body,
	}
	if err := s.store.CreateDiscussion(discussion); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create discussion")
		return
	}
	writeJSON(w, http.StatusCreated, discussion)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.store.ListComments(r.PathValue("discussionID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list comments")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

type createCommentRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	var req createCommentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	comment := &model.Comment{
		DiscussionID: r.PathValue("discussionID"),
		UserID:       caller,
		Body:         req.Body,
	}
	if err := s.store.CreateComment(comment); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create comment")
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}
