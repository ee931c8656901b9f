package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Hayor63/ApplyLy/internal/auth"
	"github.com/Hayor63/ApplyLy/internal/jobs"
)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	listings, err := s.Listings.All(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeData(w, http.StatusOK, listings)
}

func (s *Server) handleFilterJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := jobs.ListingFilter{
		Location:        strings.TrimSpace(q.Get("location")),
		Status:          jobs.ListingStatus(q.Get("status")),
		WorkMode:        jobs.WorkMode(q.Get("workMode")),
		ExperienceLevel: jobs.ExperienceLevel(q.Get("experienceLevel")),
		JobType:         jobs.JobType(q.Get("jobType")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		writeFailure(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	if filter.WorkMode != "" && !filter.WorkMode.Valid() {
		writeFailure(w, http.StatusBadRequest, "Invalid work mode filter")
		return
	}
	if filter.ExperienceLevel != "" && !filter.ExperienceLevel.Valid() {
		writeFailure(w, http.StatusBadRequest, "Invalid experience level filter")
		return
	}
	if filter.JobType != "" && !filter.JobType.Valid() {
		writeFailure(w, http.StatusBadRequest, "Invalid job type filter")
		return
	}
	if raw := q.Get("minSalary"); raw != "" {
		min, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || min < 0 {
			writeFailure(w, http.StatusBadRequest, "Invalid minimum salary")
			return
		}
		filter.MinSalary = min
	}

	listings, err := s.Listings.Filter(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	writeData(w, http.StatusOK, listings)
}

// handleRecommendedJobs matches open listings against the requesting
// job seeker's skills.
func (s *Server) handleRecommendedJobs(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	profile, err := s.Seekers.FindByUserID(r.Context(), claims.Subject)
	if err != nil {
		respondError(w, err)
		return
	}
	if profile == nil {
		respondError(w, auth.ErrProfileNotFound)
		return
	}

	listings, err := s.Listings.Recommend(r.Context(), profile.Skills)
	if err != nil {
		respondError(w, err)
		return
	}
	if len(listings) == 0 {
		writeFailure(w, http.StatusNotFound, "No job recommendations found")
		return
	}
	writeData(w, http.StatusOK, listings)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	listing, err := s.Listings.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if listing == nil {
		respondError(w, jobs.ErrNotFound)
		return
	}
	writeData(w, http.StatusOK, listing)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	profile, err := s.Employers.FindByUserID(r.Context(), claims.Subject)
	if err != nil {
		respondError(w, err)
		return
	}
	if profile == nil {
		respondError(w, auth.ErrProfileNotFound)
		return
	}

	var in jobs.ListingCreate
	if err := decodeJSON(r, &in); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		writeFailure(w, http.StatusBadRequest, "Title and description are required")
		return
	}
	if in.Status == "" {
		in.Status = jobs.ListingOpen
	}
	if !in.Status.Valid() {
		writeFailure(w, http.StatusBadRequest, "Invalid listing status")
		return
	}
	if !in.WorkMode.Valid() {
		writeFailure(w, http.StatusBadRequest, "Invalid work mode")
		return
	}
	if !in.ExperienceLevel.Valid() {
		writeFailure(w, http.StatusBadRequest, "Invalid experience level")
		return
	}
	if !in.JobType.Valid() {
		writeFailure(w, http.StatusBadRequest, "Invalid job type")
		return
	}

	listing, err := s.Listings.Create(r.Context(), profile.ID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	writeData(w, http.StatusCreated, listing)
}

func (s *Server) handleEmployerJobs(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	profile, err := s.Employers.FindByUserID(r.Context(), claims.Subject)
	if err != nil {
		respondError(w, err)
		return
	}
	if profile == nil {
		respondError(w, auth.ErrProfileNotFound)
		return
	}

	listings, err := s.Listings.ByEmployer(r.Context(), profile.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeData(w, http.StatusOK, listings)
}

// ownedListing loads a listing and checks that the requesting employer
// owns it, resolving the requester to their employer profile first.
func (s *Server) ownedListing(r *http.Request, listingID string) (*jobs.JobListing, error) {
	claims := identityFromContext(r.Context())

	listing, err := s.Listings.FindByID(r.Context(), listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, jobs.ErrNotFound
	}

	profile, err := s.Employers.FindByUserID(r.Context(), claims.Subject)
	if err != nil {
		return nil, err
	}
	var profileID string
	if profile != nil {
		profileID = profile.ID
	}
	if err := auth.AuthorizeOwner(listing.EmployerID, profileID); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	listing, err := s.ownedListing(r, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	var upd jobs.ListingUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if upd.WorkMode != nil && !upd.WorkMode.Valid() {
		writeFailure(w, http.StatusBadRequest, "Invalid work mode")
		return
	}
	if upd.ExperienceLevel != nil && !upd.ExperienceLevel.Valid() {
		writeFailure(w, http.StatusBadRequest, "Invalid experience level")
		return
	}
	if upd.JobType != nil && !upd.JobType.Valid() {
		writeFailure(w, http.StatusBadRequest, "Invalid job type")
		return
	}

	updated, err := s.Listings.Update(r.Context(), listing.ID, upd)
	if err != nil {
		respondError(w, err)
		return
	}
	if updated == nil {
		// Deleted between the ownership check and the update.
		respondError(w, jobs.ErrNotFound)
		return
	}
	writeData(w, http.StatusOK, updated)
}

type listingStatusRequest struct {
	Status jobs.ListingStatus `json:"status"`
}

func (s *Server) handleUpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	listing, err := s.ownedListing(r, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	var req listingStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Status.Valid() {
		writeFailure(w, http.StatusBadRequest, "Status must be open or closed")
		return
	}

	updated, err := s.Listings.SetStatus(r.Context(), listing.ID, req.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	if updated == nil {
		respondError(w, jobs.ErrNotFound)
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	listing, err := s.ownedListing(r, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.Listings.Delete(r.Context(), listing.ID); err != nil {
		respondError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Job listing deleted")
}
