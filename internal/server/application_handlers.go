package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Hayor63/ApplyLy/internal/auth"
	"github.com/Hayor63/ApplyLy/internal/jobs"
)

type applyRequest struct {
	CoverLetter string  `json:"coverLetter"`
	Resume      *string `json:"resume"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
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

	listing, err := s.Listings.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if listing == nil {
		respondError(w, jobs.ErrNotFound)
		return
	}
	if listing.Status != jobs.ListingOpen {
		writeFailure(w, http.StatusBadRequest, "This job is no longer accepting applications")
		return
	}

	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.CoverLetter) == "" {
		writeFailure(w, http.StatusBadRequest, "Cover letter is required")
		return
	}

	exists, err := s.Applications.Exists(r.Context(), listing.ID, profile.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	if exists {
		respondError(w, jobs.ErrDuplicateApplication)
		return
	}

	application, err := s.Applications.Create(r.Context(), jobs.ApplicationCreate{
		JobID:       listing.ID,
		ApplicantID: profile.ID,
		EmployerID:  listing.EmployerID,
		CoverLetter: req.CoverLetter,
		Resume:      req.Resume,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	// The counter is advisory; losing it to a crash between the two
	// statements only skews the displayed count.
	if err := s.Listings.IncrementApplications(r.Context(), listing.ID); err != nil {
		logUnexpected(err)
	}

	writeData(w, http.StatusCreated, application)
}

// handleJobApplications lists every application for one job; only the
// employer who posted the listing may see them.
func (s *Server) handleJobApplications(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	listing, err := s.Listings.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if listing == nil {
		respondError(w, jobs.ErrNotFound)
		return
	}

	profile, err := s.Employers.FindByUserID(r.Context(), claims.Subject)
	if err != nil {
		respondError(w, err)
		return
	}
	var profileID string
	if profile != nil {
		profileID = profile.ID
	}
	if err := auth.AuthorizeOwner(listing.EmployerID, profileID); err != nil {
		respondError(w, err)
		return
	}

	applications, err := s.Applications.ByJob(r.Context(), listing.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeData(w, http.StatusOK, applications)
}

func (s *Server) handleMyApplications(w http.ResponseWriter, r *http.Request) {
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

	applications, err := s.Applications.ByApplicant(r.Context(), profile.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeData(w, http.StatusOK, applications)
}

func (s *Server) handleEmployerApplications(w http.ResponseWriter, r *http.Request) {
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

	applications, err := s.Applications.ByEmployer(r.Context(), profile.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeData(w, http.StatusOK, applications)
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	application, err := s.Applications.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if application == nil {
		respondError(w, jobs.ErrNotFound)
		return
	}

	// Only the applicant and the hiring employer may read an
	// application; which side the requester is depends on account type.
	var profileID string
	switch claims.Type {
	case auth.AccountJobSeeker:
		profile, err := s.Seekers.FindByUserID(r.Context(), claims.Subject)
		if err != nil {
			respondError(w, err)
			return
		}
		if profile != nil {
			profileID = profile.ID
		}
		if err := auth.AuthorizeOwner(application.ApplicantID, profileID); err != nil {
			respondError(w, err)
			return
		}
	case auth.AccountEmployer:
		profile, err := s.Employers.FindByUserID(r.Context(), claims.Subject)
		if err != nil {
			respondError(w, err)
			return
		}
		if profile != nil {
			profileID = profile.ID
		}
		if err := auth.AuthorizeOwner(application.EmployerID, profileID); err != nil {
			respondError(w, err)
			return
		}
	default:
		respondError(w, auth.ErrForbidden)
		return
	}

	writeData(w, http.StatusOK, application)
}

// applicantOwnedApplication loads an application and checks the
// requesting job seeker submitted it.
func (s *Server) applicantOwnedApplication(r *http.Request, id string) (*jobs.JobApplication, error) {
	claims := identityFromContext(r.Context())

	application, err := s.Applications.FindByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if application == nil {
		return nil, jobs.ErrNotFound
	}

	profile, err := s.Seekers.FindByUserID(r.Context(), claims.Subject)
	if err != nil {
		return nil, err
	}
	var profileID string
	if profile != nil {
		profileID = profile.ID
	}
	if err := auth.AuthorizeOwner(application.ApplicantID, profileID); err != nil {
		return nil, err
	}
	return application, nil
}

func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	application, err := s.applicantOwnedApplication(r, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if application.Status != jobs.ApplicationPending {
		writeFailure(w, http.StatusBadRequest, "Only pending applications can be edited")
		return
	}

	var upd jobs.ApplicationUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if upd.CoverLetter != nil && strings.TrimSpace(*upd.CoverLetter) == "" {
		writeFailure(w, http.StatusBadRequest, "Cover letter cannot be empty")
		return
	}

	updated, err := s.Applications.Update(r.Context(), application.ID, upd)
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

type applicationStatusRequest struct {
	Status jobs.ApplicationStatus `json:"status"`
}

func (s *Server) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	claims := identityFromContext(r.Context())

	application, err := s.Applications.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if application == nil {
		respondError(w, jobs.ErrNotFound)
		return
	}

	profile, err := s.Employers.FindByUserID(r.Context(), claims.Subject)
	if err != nil {
		respondError(w, err)
		return
	}
	var profileID string
	if profile != nil {
		profileID = profile.ID
	}
	if err := auth.AuthorizeOwner(application.EmployerID, profileID); err != nil {
		respondError(w, err)
		return
	}

	var req applicationStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Status.Valid() {
		writeFailure(w, http.StatusBadRequest, "Invalid application status")
		return
	}

	updated, err := s.Applications.SetStatus(r.Context(), application.ID, req.Status)
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

func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	application, err := s.applicantOwnedApplication(r, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.Applications.Delete(r.Context(), application.ID); err != nil {
		respondError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Application withdrawn")
}
