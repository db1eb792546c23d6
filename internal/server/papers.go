package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"studyhub/internal/app"
	"studyhub/internal/store"
	"studyhub/pkg/domain"
)

func (s *Server) handlePapers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListPapers(w, r)
	case http.MethodPost:
		s.authenticated(s.handleUploadPaper).ServeHTTP(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListPapers(w http.ResponseWriter, r *http.Request) {
	filter := store.PaperFilter{
		UploaderID:  queryInt64Ptr(r, "uploaderId"),
		Course:      queryStrPtr(r, "course"),
		Year:        queryIntPtr(r, "year"),
		Institution: queryStrPtr(r, "institution"),
	}
	papers, err := s.app.ListPapers(filter, r.URL.Query().Get("q"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(papers))
}

// handleUploadPaper accepts a multipart form with a "file" part plus course,
// year and institution fields. The whole upload is capped at maxUploadBytes.
func (s *Server) handleUploadPaper(w http.ResponseWriter, r *http.Request, user domain.User) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}
	year, _ := strconv.Atoi(r.FormValue("year"))
	paper, err := s.app.UploadPaper(r.Context(), user, app.UploadPaperInput{
		Course:      r.FormValue("course"),
		Year:        year,
		Institution: r.FormValue("institution"),
		Filename:    header.Filename,
		Data:        data,
	})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.audit(r, "paper.upload", "success", "user_id", user.ID, "paper_id", paper.ID)
	writeJSON(w, http.StatusCreated, paper)
}

// /api/papers/{id} and /api/papers/{id}/download
func (s *Server) handlePaperByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/papers/")
	parts := strings.SplitN(rest, "/", 2)
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 2 {
		if parts[1] != "download" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		s.authenticated(func(w http.ResponseWriter, r *http.Request, user domain.User) {
			s.handleDownloadPaper(w, r, user, id)
		}).ServeHTTP(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	paper, err := s.app.GetPaper(id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paper)
}

func (s *Server) handleDownloadPaper(w http.ResponseWriter, r *http.Request, user domain.User, id int64) {
	paper, url, err := s.app.DownloadPaper(r.Context(), user, id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"paper": paper,
		"url":   url,
	})
}
