package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Hayor63/ApplyLy/internal/auth"
	"github.com/Hayor63/ApplyLy/internal/config"
	"github.com/Hayor63/ApplyLy/internal/jobs"
)

// Store interfaces are declared here, on the consumer side, so handler
// tests can swap in fakes without a database.

type EmployerStore interface {
	Create(ctx context.Context, userID string, in jobs.EmployerCreate) (*jobs.EmployerProfile, error)
	FindByID(ctx context.Context, id string) (*jobs.EmployerProfile, error)
	FindByUserID(ctx context.Context, userID string) (*jobs.EmployerProfile, error)
	Update(ctx context.Context, id string, upd jobs.EmployerUpdate) (*jobs.EmployerProfile, error)
	Delete(ctx context.Context, id string) error
}

type JobSeekerStore interface {
	Create(ctx context.Context, userID string, in jobs.JobSeekerCreate) (*jobs.JobSeekerProfile, error)
	FindByID(ctx context.Context, id string) (*jobs.JobSeekerProfile, error)
	FindByUserID(ctx context.Context, userID string) (*jobs.JobSeekerProfile, error)
	Update(ctx context.Context, id string, upd jobs.JobSeekerUpdate) (*jobs.JobSeekerProfile, error)
	Delete(ctx context.Context, id string) error
}

type ListingStore interface {
	Create(ctx context.Context, employerID string, in jobs.ListingCreate) (*jobs.JobListing, error)
	FindByID(ctx context.Context, id string) (*jobs.JobListing, error)
	All(ctx context.Context) ([]jobs.JobListing, error)
	Filter(ctx context.Context, f jobs.ListingFilter) ([]jobs.JobListing, error)
	Recommend(ctx context.Context, skills []string) ([]jobs.JobListing, error)
	ByEmployer(ctx context.Context, employerID string) ([]jobs.JobListing, error)
	Update(ctx context.Context, id string, upd jobs.ListingUpdate) (*jobs.JobListing, error)
	SetStatus(ctx context.Context, id string, status jobs.ListingStatus) (*jobs.JobListing, error)
	Delete(ctx context.Context, id string) error
	IncrementApplications(ctx context.Context, id string) error
}

type ApplicationStore interface {
	Create(ctx context.Context, in jobs.ApplicationCreate) (*jobs.JobApplication, error)
	FindByID(ctx context.Context, id string) (*jobs.JobApplication, error)
	ByApplicant(ctx context.Context, applicantID string) ([]jobs.JobApplication, error)
	ByJob(ctx context.Context, jobID string) ([]jobs.JobApplication, error)
	ByEmployer(ctx context.Context, employerID string) ([]jobs.JobApplication, error)
	Exists(ctx context.Context, jobID, applicantID string) (bool, error)
	Update(ctx context.Context, id string, upd jobs.ApplicationUpdate) (*jobs.JobApplication, error)
	SetStatus(ctx context.Context, id string, status jobs.ApplicationStatus) (*jobs.JobApplication, error)
	Delete(ctx context.Context, id string) error
}

type BookmarkStore interface {
	Create(ctx context.Context, userID, jobListingID string) (*jobs.Bookmark, error)
	Delete(ctx context.Context, userID, jobListingID string) error
	ByUser(ctx context.Context, userID string) ([]jobs.Bookmark, error)
	Exists(ctx context.Context, userID, jobListingID string) (bool, error)
}

// Limiter is the slice of the redis rate limiter the handlers consult.
type Limiter interface {
	IsIPBanned(ctx context.Context, ip string) bool
	RegisterLoginFailure(ctx context.Context, ip string) error
	ResetLogin(ctx context.Context, ip string)
	RegisterVerifyAttempt(ctx context.Context, userID string) (bool, time.Duration, error)
	ResetVerify(ctx context.Context, userID string)
	RegisterResetAttempt(ctx context.Context, email string) (bool, time.Duration, error)
	RegisterRegisterAttempt(ctx context.Context, email, ip string) (bool, time.Duration, error)
	CooldownTTL(ctx context.Context, key string) time.Duration
	SetCooldown(ctx context.Context, key string, ttl time.Duration)
}

type Server struct {
	Config         config.Config
	Auth           *auth.Flow
	Tokens         *auth.TokenIssuer
	Limiter        Limiter
	Employers      EmployerStore
	Seekers        JobSeekerStore
	Listings       ListingStore
	Applications   ApplicationStore
	Bookmarks      BookmarkStore
	trustedProxies []net.IPNet
}

func NewServer(cfg config.Config, flow *auth.Flow, tokens *auth.TokenIssuer, limiter Limiter,
	employers EmployerStore, seekers JobSeekerStore, listings ListingStore,
	applications ApplicationStore, bookmarks BookmarkStore) *Server {
	return &Server{
		Config:         cfg,
		Auth:           flow,
		Tokens:         tokens,
		Limiter:        limiter,
		Employers:      employers,
		Seekers:        seekers,
		Listings:       listings,
		Applications:   applications,
		Bookmarks:      bookmarks,
		trustedProxies: parseProxyCIDRs(cfg.TrustedProxies),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	formatter := &middleware.DefaultLogFormatter{
		Logger:  log.New(log.Writer(), "", log.Flags()),
		NoColor: true,
	}
	r.Use(middleware.RequestLogger(formatter))
	r.Use(middleware.Recoverer)
	r.Use(secureHeaders)

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/users/create", s.handleRegister)
		api.Patch("/users/verify-account/{userId}/{token}", s.handleVerifyAccount)

		api.Post("/auth/login", s.handleLogin)
		api.Post("/auth/resend-verification", s.handleResendVerification)
		api.Post("/auth/forgot-password", s.handleForgotPassword)
		api.Post("/auth/reset-password/{id}/{token}", s.handleResetPassword)

		api.Group(func(pr chi.Router) {
			pr.Use(s.requireAuth)

			pr.Post("/auth/change-password", s.handleChangePassword)
			pr.Get("/auth/profile", s.handleProfile)
			pr.Patch("/auth/profile/update", s.handleUpdateProfile)
		})

		api.Route("/employer", func(er chi.Router) {
			er.Get("/{id}", s.handleGetEmployer)
			er.Group(func(pr chi.Router) {
				pr.Use(s.requireAuth, s.requireType(auth.AccountEmployer))
				pr.Post("/create", s.handleCreateEmployer)
				pr.Patch("/update", s.handleUpdateEmployer)
				pr.Delete("/delete", s.handleDeleteEmployer)
			})
		})

		api.Route("/applicant", func(ar chi.Router) {
			ar.Get("/{id}", s.handleGetJobSeeker)
			ar.Group(func(pr chi.Router) {
				pr.Use(s.requireAuth, s.requireType(auth.AccountJobSeeker))
				pr.Post("/create", s.handleCreateJobSeeker)
				pr.Patch("/update", s.handleUpdateJobSeeker)
				pr.Delete("/delete", s.handleDeleteJobSeeker)
			})
		})

		api.Route("/jobListing", func(jr chi.Router) {
			jr.Get("/", s.handleListJobs)
			jr.Get("/filter", s.handleFilterJobs)
			jr.With(s.requireAuth, s.requireType(auth.AccountJobSeeker)).
				Get("/recommendations", s.handleRecommendedJobs)
			jr.Get("/{id}", s.handleGetJob)
			jr.Group(func(pr chi.Router) {
				pr.Use(s.requireAuth, s.requireType(auth.AccountEmployer))
				pr.Post("/create", s.handleCreateJob)
				pr.Get("/employer/listings", s.handleEmployerJobs)
				pr.Patch("/{id}", s.handleUpdateJob)
				pr.Patch("/{id}/status", s.handleUpdateJobStatus)
				pr.Delete("/{id}", s.handleDeleteJob)
			})
		})

		api.Route("/jobApplication", func(ar chi.Router) {
			ar.Use(s.requireAuth)
			ar.With(s.requireType(auth.AccountJobSeeker)).Post("/{id}/apply", s.handleApply)
			ar.With(s.requireType(auth.AccountEmployer)).Get("/{id}/applications", s.handleJobApplications)
			ar.With(s.requireType(auth.AccountJobSeeker)).Get("/mine", s.handleMyApplications)
			ar.With(s.requireType(auth.AccountEmployer)).Get("/employer", s.handleEmployerApplications)
			ar.Get("/{id}", s.handleGetApplication)
			ar.With(s.requireType(auth.AccountJobSeeker)).Patch("/{id}", s.handleUpdateApplication)
			ar.With(s.requireType(auth.AccountEmployer)).Patch("/{id}/status", s.handleUpdateApplicationStatus)
			ar.With(s.requireType(auth.AccountJobSeeker)).Delete("/{id}", s.handleDeleteApplication)
		})

		api.Route("/bookmark", func(br chi.Router) {
			br.Use(s.requireAuth, s.requireType(auth.AccountJobSeeker))
			br.Post("/create", s.handleCreateBookmark)
			br.Get("/", s.handleListBookmarks)
			br.Get("/{jobListingId}/status", s.handleBookmarkStatus)
			br.Delete("/{jobListingId}", s.handleDeleteBookmark)
		})
	})

	return r
}
