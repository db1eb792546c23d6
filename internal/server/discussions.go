package server

import (
	"net/http"
	"strconv"
	"strings"

	"studyhub/internal/store"
	"studyhub/pkg/domain"
)

type createPostRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type createReplyRequest struct {
	Content string `json:"content"`
}

type voteRequest struct {
	Delta int `json:"delta"`
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := store.PostFilter{AuthorID: queryInt64Ptr(r, "authorId")}
		posts, err := s.app.ListPosts(filter, r.URL.Query().Get("q"))
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse(posts))
	case http.MethodPost:
		s.authenticated(s.handleCreatePost).ServeHTTP(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	post, err := s.app.CreatePost(r.Context(), user, req.Title, req.Content, req.Tags)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// /api/posts/{id}, /api/posts/{id}/vote, /api/posts/{id}/replies
func (s *Server) handlePostByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/posts/")
	parts := strings.SplitN(rest, "/", 2)
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		post, replies, err := s.app.GetPost(id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"post":    post,
			"replies": replies,
		})
		return
	}
	switch parts[1] {
	case "vote":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.authenticated(func(w http.ResponseWriter, r *http.Request, _ domain.User) {
			s.handleVotePost(w, r, id)
		}).ServeHTTP(w, r)
	case "replies":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.authenticated(func(w http.ResponseWriter, r *http.Request, user domain.User) {
			s.handleCreateReply(w, r, user, id)
		}).ServeHTTP(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleVotePost(w http.ResponseWriter, r *http.Request, id int64) {
	var req voteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	post, err := s.app.VotePost(id, req.Delta)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleCreateReply(w http.ResponseWriter, r *http.Request, user domain.User, postID int64) {
	var req createReplyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	reply, err := s.app.CreateReply(r.Context(), user, postID, req.Content)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

// /api/replies/{id}/vote
func (s *Server) handleReplyByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/replies/")
	parts := strings.SplitN(rest, "/", 2)
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || len(parts) != 2 || parts[1] != "vote" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s.authenticated(func(w http.ResponseWriter, r *http.Request, _ domain.User) {
		var req voteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		reply, err := s.app.VoteReply(id, req.Delta)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	}).ServeHTTP(w, r)
}
