package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Hayor63/ApplyLy/internal/jobs"
)

type bookmarkRequest struct {
	JobListingID string `json:"jobListingId"`
}

func (s *Server) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	var req bookmarkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.JobListingID == "" {
		writeFailure(w, http.StatusBadRequest, "Job listing id is required")
		return
	}

	listing, err := s.Listings.FindByID(r.Context(), req.JobListingID)
	if err != nil {
		respondError(w, err)
		return
	}
	if listing == nil {
		respondError(w, jobs.ErrNotFound)
		return
	}

	bookmark, err := s.Bookmarks.Create(r.Context(), claims.Subject, req.JobListingID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeData(w, http.StatusCreated, bookmark)
}

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	bookmarks, err := s.Bookmarks.ByUser(r.Context(), claims.Subject)
	if err != nil {
		respondError(w, err)
		return
	}
	writeData(w, http.StatusOK, bookmarks)
}

func (s *Server) handleBookmarkStatus(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	exists, err := s.Bookmarks.Exists(r.Context(), claims.Subject, chi.URLParam(r, "jobListingId"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"bookmarked": exists})
}

func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	if err := s.Bookmarks.Delete(r.Context(), claims.Subject, chi.URLParam(r, "jobListingId")); err != nil {
		respondError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Bookmark removed")
}
