package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"studyhub/internal/app"
	"studyhub/internal/store"
	"studyhub/pkg/domain"
)

type createGroupRequest struct {
	Name   string `json:"name"`
	Course string `json:"course"`
	Color  string `json:"color"`
}

type scheduleSessionRequest struct {
	Title       string    `json:"title"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	IsVirtual   bool      `json:"isVirtual"`
	Location    string    `json:"location"`
	MeetingLink string    `json:"meetingLink"`
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := store.GroupFilter{
			CreatorID: queryInt64Ptr(r, "creatorId"),
			Course:    queryStrPtr(r, "course"),
		}
		groups, err := s.app.ListStudyGroups(filter)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse(groups))
	case http.MethodPost:
		s.authenticated(s.handleCreateGroup).ServeHTTP(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	group, err := s.app.CreateStudyGroup(r.Context(), user, req.Name, req.Course, req.Color)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

// /api/groups/{id} plus members, join, leave and sessions subresources.
func (s *Server) handleGroupByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/groups/")
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
		group, err := s.app.GetStudyGroup(id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, group)
		return
	}
	switch parts[1] {
	case "members":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		members, err := s.app.GroupMembers(id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse(members))
	case "join":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.authenticated(func(w http.ResponseWriter, r *http.Request, user domain.User) {
			member, err := s.app.JoinGroup(r.Context(), user, id)
			if err != nil {
				s.writeAppError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, member)
		}).ServeHTTP(w, r)
	case "leave":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.authenticated(func(w http.ResponseWriter, r *http.Request, user domain.User) {
			if err := s.app.LeaveGroup(r.Context(), user, id); err != nil {
				s.writeAppError(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}).ServeHTTP(w, r)
	case "sessions":
		s.handleGroupSessions(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleGroupSessions(w http.ResponseWriter, r *http.Request, groupID int64) {
	switch r.Method {
	case http.MethodGet:
		sessions, err := s.app.GroupSessions(groupID)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse(sessions))
	case http.MethodPost:
		s.authenticated(func(w http.ResponseWriter, r *http.Request, user domain.User) {
			var req scheduleSessionRequest
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			session, err := s.app.ScheduleSession(r.Context(), user, app.ScheduleSessionInput{
				GroupID:     groupID,
				Title:       req.Title,
				StartTime:   req.StartTime,
				EndTime:     req.EndTime,
				IsVirtual:   req.IsVirtual,
				Location:    req.Location,
				MeetingLink: req.MeetingLink,
			})
			if err != nil {
				s.writeAppError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, session)
		}).ServeHTTP(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleMyGroups(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	groups, err := s.app.MyGroups(user.ID)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(groups))
}

func (s *Server) handleUpcomingSessions(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	sessions, err := s.app.UpcomingSessions(user.ID)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(sessions))
}
