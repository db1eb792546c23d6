package server

import "net/http"

// handleActivity serves the recent activity feed, newest first. An optional
// userId query narrows it to a single member's history.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	limit := queryInt(r, "limit")
	if userID := queryInt64Ptr(r, "userId"); userID != nil {
		entries, err := s.app.UserActivity(*userID, limit)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse(entries))
		return
	}
	entries, err := s.app.RecentActivity(limit)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(entries))
}
