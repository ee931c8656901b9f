package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hayor63/ApplyLy/internal/auth"
	"github.com/Hayor63/ApplyLy/internal/config"
	"github.com/Hayor63/ApplyLy/internal/jobs"
)

// ---- credential fakes -------------------------------------------------

type fakeUsers struct {
	seq   int
	users map[string]*auth.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[string]*auth.User{}} }

func (f *fakeUsers) Create(_ context.Context, fullName, email, passwordHash string, typ auth.AccountType) (*auth.User, error) {
	f.seq++
	u := &auth.User{
		ID:           fmt.Sprintf("user-%d", f.seq),
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		Type:         typ,
	}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUsers) SetVerified(_ context.Context, id string) error {
	if u, ok := f.users[id]; ok {
		u.IsVerified = true
	}
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	if u, ok := f.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id string, upd auth.UserUpdate) (*auth.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	cp := *u
	return &cp, nil
}

type fakeTokens struct {
	tokens map[string]string
}

func newFakeTokens() *fakeTokens { return &fakeTokens{tokens: map[string]string{}} }

func (f *fakeTokens) Replace(_ context.Context, userID string, purpose auth.TokenPurpose, rawToken string, _ *time.Time) error {
	f.tokens[userID+"/"+string(purpose)] = rawToken
	return nil
}

func (f *fakeTokens) Consume(_ context.Context, userID string, purpose auth.TokenPurpose, rawToken string) error {
	key := userID + "/" + string(purpose)
	if f.tokens[key] != rawToken {
		return auth.ErrInvalidOrExpiredToken
	}
	delete(f.tokens, key)
	return nil
}

type fakeMailer struct{ sent int }

func (f *fakeMailer) Send(context.Context, string, string, string, string) error {
	f.sent++
	return nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainHasher) Compare(hash, password string) bool { return hash == "plain:"+password }

// noopLimiter never throttles; rate limiting has its own redis-backed
// implementation.
type noopLimiter struct{}

func (noopLimiter) IsIPBanned(context.Context, string) bool            { return false }
func (noopLimiter) RegisterLoginFailure(context.Context, string) error { return nil }
func (noopLimiter) ResetLogin(context.Context, string)                 {}
func (noopLimiter) RegisterVerifyAttempt(context.Context, string) (bool, time.Duration, error) {
	return false, 0, nil
}
func (noopLimiter) ResetVerify(context.Context, string) {}
func (noopLimiter) RegisterResetAttempt(context.Context, string) (bool, time.Duration, error) {
	return false, 0, nil
}
func (noopLimiter) RegisterRegisterAttempt(context.Context, string, string) (bool, time.Duration, error) {
	return false, 0, nil
}
func (noopLimiter) CooldownTTL(context.Context, string) time.Duration  { return 0 }
func (noopLimiter) SetCooldown(context.Context, string, time.Duration) {}

// ---- job store fakes --------------------------------------------------

type fakeEmployers struct {
	seq      int
	profiles map[string]*jobs.EmployerProfile
}

func newFakeEmployers() *fakeEmployers {
	return &fakeEmployers{profiles: map[string]*jobs.EmployerProfile{}}
}

func (f *fakeEmployers) Create(_ context.Context, userID string, in jobs.EmployerCreate) (*jobs.EmployerProfile, error) {
	for _, p := range f.profiles {
		if p.UserID == userID {
			return nil, jobs.ErrDuplicateProfile
		}
	}
	f.seq++
	p := &jobs.EmployerProfile{
		ID:          fmt.Sprintf("employer-%d", f.seq),
		UserID:      userID,
		CompanyName: in.CompanyName,
	}
	f.profiles[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *fakeEmployers) FindByID(_ context.Context, id string) (*jobs.EmployerProfile, error) {
	if p, ok := f.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeEmployers) FindByUserID(_ context.Context, userID string) (*jobs.EmployerProfile, error) {
	for _, p := range f.profiles {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeEmployers) Update(_ context.Context, id string, upd jobs.EmployerUpdate) (*jobs.EmployerProfile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	if upd.CompanyName != nil {
		p.CompanyName = *upd.CompanyName
	}
	cp := *p
	return &cp, nil
}

func (f *fakeEmployers) Delete(_ context.Context, id string) error {
	if _, ok := f.profiles[id]; !ok {
		return jobs.ErrNotFound
	}
	delete(f.profiles, id)
	return nil
}

type fakeSeekers struct {
	seq      int
	profiles map[string]*jobs.JobSeekerProfile
}

func newFakeSeekers() *fakeSeekers {
	return &fakeSeekers{profiles: map[string]*jobs.JobSeekerProfile{}}
}

func (f *fakeSeekers) Create(_ context.Context, userID string, in jobs.JobSeekerCreate) (*jobs.JobSeekerProfile, error) {
	for _, p := range f.profiles {
		if p.UserID == userID {
			return nil, jobs.ErrDuplicateProfile
		}
	}
	f.seq++
	bio := "Bio not added yet"
	if in.Bio != nil {
		bio = *in.Bio
	}
	p := &jobs.JobSeekerProfile{
		ID:     fmt.Sprintf("seeker-%d", f.seq),
		UserID: userID,
		Bio:    bio,
		Skills: in.Skills,
	}
	f.profiles[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *fakeSeekers) FindByID(_ context.Context, id string) (*jobs.JobSeekerProfile, error) {
	if p, ok := f.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeSeekers) FindByUserID(_ context.Context, userID string) (*jobs.JobSeekerProfile, error) {
	for _, p := range f.profiles {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSeekers) Update(_ context.Context, id string, upd jobs.JobSeekerUpdate) (*jobs.JobSeekerProfile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	if upd.Bio != nil {
		p.Bio = *upd.Bio
	}
	cp := *p
	return &cp, nil
}

func (f *fakeSeekers) Delete(_ context.Context, id string) error {
	if _, ok := f.profiles[id]; !ok {
		return jobs.ErrNotFound
	}
	delete(f.profiles, id)
	return nil
}

type fakeListings struct {
	seq      int
	listings map[string]*jobs.JobListing
}

func newFakeListings() *fakeListings {
	return &fakeListings{listings: map[string]*jobs.JobListing{}}
}

func (f *fakeListings) Create(_ context.Context, employerID string, in jobs.ListingCreate) (*jobs.JobListing, error) {
	f.seq++
	l := &jobs.JobListing{
		ID:              fmt.Sprintf("listing-%d", f.seq),
		EmployerID:      employerID,
		Title:           in.Title,
		Description:     in.Description,
		Location:        in.Location,
		Salary:          in.Salary,
		Status:          in.Status,
		WorkMode:        in.WorkMode,
		ExperienceLevel: in.ExperienceLevel,
		JobType:         in.JobType,
		Skills:          in.Skills,
	}
	f.listings[l.ID] = l
	cp := *l
	return &cp, nil
}

func (f *fakeListings) FindByID(_ context.Context, id string) (*jobs.JobListing, error) {
	if l, ok := f.listings[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeListings) All(_ context.Context) ([]jobs.JobListing, error) {
	out := []jobs.JobListing{}
	for _, l := range f.listings {
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeListings) Filter(ctx context.Context, filter jobs.ListingFilter) ([]jobs.JobListing, error) {
	out := []jobs.JobListing{}
	for _, l := range f.listings {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.WorkMode != "" && l.WorkMode != filter.WorkMode {
			continue
		}
		if filter.MinSalary > 0 && l.Salary < filter.MinSalary {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeListings) Recommend(_ context.Context, skills []string) ([]jobs.JobListing, error) {
	out := []jobs.JobListing{}
	if len(skills) == 0 {
		return out, nil
	}
	wanted := map[string]bool{}
	for _, s := range skills {
		wanted[s] = true
	}
	for _, l := range f.listings {
		if l.Status != jobs.ListingOpen {
			continue
		}
		for _, s := range l.Skills {
			if wanted[s] {
				out = append(out, *l)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeListings) ByEmployer(_ context.Context, employerID string) ([]jobs.JobListing, error) {
	out := []jobs.JobListing{}
	for _, l := range f.listings {
		if l.EmployerID == employerID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeListings) Update(_ context.Context, id string, upd jobs.ListingUpdate) (*jobs.JobListing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	if upd.Title != nil {
		l.Title = *upd.Title
	}
	if upd.Salary != nil {
		l.Salary = *upd.Salary
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListings) SetStatus(_ context.Context, id string, status jobs.ListingStatus) (*jobs.JobListing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	l.Status = status
	cp := *l
	return &cp, nil
}

func (f *fakeListings) Delete(_ context.Context, id string) error {
	if _, ok := f.listings[id]; !ok {
		return jobs.ErrNotFound
	}
	delete(f.listings, id)
	return nil
}

func (f *fakeListings) IncrementApplications(_ context.Context, id string) error {
	if l, ok := f.listings[id]; ok {
		l.ApplicationCount++
	}
	return nil
}

type fakeApplications struct {
	seq  int
	apps map[string]*jobs.JobApplication
}

func newFakeApplications() *fakeApplications {
	return &fakeApplications{apps: map[string]*jobs.JobApplication{}}
}

func (f *fakeApplications) Create(_ context.Context, in jobs.ApplicationCreate) (*jobs.JobApplication, error) {
	for _, a := range f.apps {
		if a.JobID == in.JobID && a.ApplicantID == in.ApplicantID {
			return nil, jobs.ErrDuplicateApplication
		}
	}
	f.seq++
	a := &jobs.JobApplication{
		ID:          fmt.Sprintf("application-%d", f.seq),
		JobID:       in.JobID,
		ApplicantID: in.ApplicantID,
		EmployerID:  in.EmployerID,
		Status:      jobs.ApplicationPending,
		CoverLetter: in.CoverLetter,
		Resume:      in.Resume,
	}
	f.apps[a.ID] = a
	cp := *a
	return &cp, nil
}

func (f *fakeApplications) FindByID(_ context.Context, id string) (*jobs.JobApplication, error) {
	if a, ok := f.apps[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeApplications) ByJob(_ context.Context, jobID string) ([]jobs.JobApplication, error) {
	out := []jobs.JobApplication{}
	for _, a := range f.apps {
		if a.JobID == jobID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeApplications) ByApplicant(_ context.Context, applicantID string) ([]jobs.JobApplication, error) {
	out := []jobs.JobApplication{}
	for _, a := range f.apps {
		if a.ApplicantID == applicantID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeApplications) ByEmployer(_ context.Context, employerID string) ([]jobs.JobApplication, error) {
	out := []jobs.JobApplication{}
	for _, a := range f.apps {
		if a.EmployerID == employerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeApplications) Exists(_ context.Context, jobID, applicantID string) (bool, error) {
	for _, a := range f.apps {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplications) Update(_ context.Context, id string, upd jobs.ApplicationUpdate) (*jobs.JobApplication, error) {
	a, ok := f.apps[id]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	if upd.CoverLetter != nil {
		a.CoverLetter = *upd.CoverLetter
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApplications) SetStatus(_ context.Context, id string, status jobs.ApplicationStatus) (*jobs.JobApplication, error) {
	a, ok := f.apps[id]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	a.Status = status
	cp := *a
	return &cp, nil
}

func (f *fakeApplications) Delete(_ context.Context, id string) error {
	if _, ok := f.apps[id]; !ok {
		return jobs.ErrNotFound
	}
	delete(f.apps, id)
	return nil
}

type fakeBookmarks struct {
	seq   int
	marks map[string]*jobs.Bookmark
}

func newFakeBookmarks() *fakeBookmarks {
	return &fakeBookmarks{marks: map[string]*jobs.Bookmark{}}
}

func (f *fakeBookmarks) Create(_ context.Context, userID, jobListingID string) (*jobs.Bookmark, error) {
	for _, b := range f.marks {
		if b.UserID == userID && b.JobListingID == jobListingID {
			return nil, jobs.ErrDuplicateBookmark
		}
	}
	f.seq++
	b := &jobs.Bookmark{
		ID:           fmt.Sprintf("bookmark-%d", f.seq),
		UserID:       userID,
		JobListingID: jobListingID,
	}
	f.marks[b.ID] = b
	cp := *b
	return &cp, nil
}

func (f *fakeBookmarks) Delete(_ context.Context, userID, jobListingID string) error {
	for id, b := range f.marks {
		if b.UserID == userID && b.JobListingID == jobListingID {
			delete(f.marks, id)
			return nil
		}
	}
	return jobs.ErrNotFound
}

func (f *fakeBookmarks) ByUser(_ context.Context, userID string) ([]jobs.Bookmark, error) {
	out := []jobs.Bookmark{}
	for _, b := range f.marks {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookmarks) Exists(_ context.Context, userID, jobListingID string) (bool, error) {
	for _, b := range f.marks {
		if b.UserID == userID && b.JobListingID == jobListingID {
			return true, nil
		}
	}
	return false, nil
}

// ---- fixture ----------------------------------------------------------

type serverFixture struct {
	server *Server
	router http.Handler
	users  *fakeUsers
	tokens *fakeTokens
	issuer *auth.TokenIssuer
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	cfg := config.Config{
		BaseURL: "http://localhost:3000",
		Tokens: config.TokenConfig{
			AccessSecret: "access-secret",
			EmailSecret:  "email-secret",
			ResetSecret:  "reset-secret",
			AccessTTL:    time.Hour,
			EmailTTL:     30 * time.Minute,
			ResetTTL:     time.Hour,
		},
	}

	users := newFakeUsers()
	tokens := newFakeTokens()
	issuer := auth.NewTokenIssuer(cfg.Tokens)
	flow := auth.NewFlow(users, tokens, issuer, plainHasher{}, &fakeMailer{}, cfg.BaseURL, time.Hour)

	srv := NewServer(cfg, flow, issuer, noopLimiter{},
		newFakeEmployers(), newFakeSeekers(), newFakeListings(),
		newFakeApplications(), newFakeBookmarks())

	return &serverFixture{
		server: srv,
		router: srv.Router(),
		users:  users,
		tokens: tokens,
		issuer: issuer,
	}
}

// verifiedUser creates a verified account directly in the fake store
// and returns a bearer token for it.
func (f *serverFixture) verifiedUser(t *testing.T, email string, typ auth.AccountType) (*auth.User, string) {
	t.Helper()
	user, err := f.users.Create(context.Background(), "Test User", email, "plain:Sup3rSecret!", typ)
	require.NoError(t, err)
	require.NoError(t, f.users.SetVerified(context.Background(), user.ID))
	user.IsVerified = true

	token, err := f.issuer.IssueAccessToken(user)
	require.NoError(t, err)
	return user, token
}

func (f *serverFixture) do(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (envelope, map[string]json.RawMessage) {
	t.Helper()
	var env struct {
		Success    bool            `json:"success"`
		StatusCode int             `json:"statusCode"`
		Data       json.RawMessage `json:"data"`
		Message    string          `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	fields := map[string]json.RawMessage{}
	if len(env.Data) > 0 && env.Data[0] == '{' {
		require.NoError(t, json.Unmarshal(env.Data, &fields))
	}
	return envelope{Success: env.Success, StatusCode: env.StatusCode, Message: env.Message}, fields
}

// ---- tests ------------------------------------------------------------

func TestRegisterValidation(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/users/create", "", map[string]string{
		"fullName": "Ada", "email": "not-an-email", "password": "Sup3rSecret!", "type": "jobseeker",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/users/create", "", map[string]string{
		"fullName": "Ada", "email": "ada@example.com", "password": "weak", "type": "jobseeker",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/users/create", "", map[string]string{
		"fullName": "Ada", "email": "ada@example.com", "password": "Sup3rSecret!", "type": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterVerifyLogin(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/users/create", "", map[string]string{
		"fullName": "Ada", "email": "ada@example.com", "password": "Sup3rSecret!", "type": "jobseeker",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	user, err := f.users.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)

	// Login before verification is refused.
	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "Sup3rSecret!",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	token := f.tokens.tokens[user.ID+"/"+string(auth.PurposeVerifyEmail)]
	require.NotEmpty(t, token)
	rec = f.do(t, http.MethodPatch, "/api/v1/users/verify-account/"+user.ID+"/"+token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "Sup3rSecret!",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	env, fields := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var accessToken string
	require.NoError(t, json.Unmarshal(fields["accessToken"], &accessToken))
	claims, err := f.issuer.VerifyAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)

	// The credential hash must never leave the server.
	require.NotEmpty(t, fields["user"])
	assert.NotContains(t, strings.ToLower(string(fields["user"])), "password")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/auth/profile", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireTypeBlocksWrongAccount(t *testing.T) {
	f := newServerFixture(t)
	_, seekerToken := f.verifiedUser(t, "seeker@example.com", auth.AccountJobSeeker)

	rec := f.do(t, http.MethodPost, "/api/v1/employer/create", seekerToken, map[string]string{
		"companyName": "Acme",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListingOwnership(t *testing.T) {
	f := newServerFixture(t)
	_, ownerToken := f.verifiedUser(t, "owner@example.com", auth.AccountEmployer)
	_, otherToken := f.verifiedUser(t, "other@example.com", auth.AccountEmployer)

	rec := f.do(t, http.MethodPost, "/api/v1/employer/create", ownerToken, map[string]string{"companyName": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/employer/create", otherToken, map[string]string{"companyName": "Rivals Inc"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/jobListing/create", ownerToken, map[string]interface{}{
		"title": "Go Engineer", "description": "Build services", "location": "Remote",
		"salary": 120000, "workMode": "remote", "experienceLevel": "senior", "jobType": "full-time",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	_, fields := decodeEnvelope(t, rec)
	var listingID string
	require.NoError(t, json.Unmarshal(fields["id"], &listingID))

	// The listing is publicly readable.
	rec = f.do(t, http.MethodGet, "/api/v1/jobListing/"+listingID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A different employer cannot touch it.
	newTitle := "Hijacked"
	rec = f.do(t, http.MethodPatch, "/api/v1/jobListing/"+listingID, otherToken, map[string]string{"title": newTitle})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, http.MethodDelete, "/api/v1/jobListing/"+listingID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The owner can.
	rec = f.do(t, http.MethodPatch, "/api/v1/jobListing/"+listingID+"/status", ownerToken, map[string]string{"status": "closed"})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodDelete, "/api/v1/jobListing/"+listingID, ownerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplyFlow(t *testing.T) {
	f := newServerFixture(t)
	_, employerToken := f.verifiedUser(t, "employer@example.com", auth.AccountEmployer)
	_, seekerToken := f.verifiedUser(t, "seeker@example.com", auth.AccountJobSeeker)

	rec := f.do(t, http.MethodPost, "/api/v1/employer/create", employerToken, map[string]string{"companyName": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/applicant/create", seekerToken, map[string]interface{}{
		"skills": []string{"go"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/jobListing/create", employerToken, map[string]interface{}{
		"title": "Go Engineer", "description": "Build services", "location": "Remote",
		"salary": 120000, "workMode": "remote", "experienceLevel": "mid", "jobType": "full-time",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	_, fields := decodeEnvelope(t, rec)
	var listingID string
	require.NoError(t, json.Unmarshal(fields["id"], &listingID))

	// Applying without a cover letter fails.
	rec = f.do(t, http.MethodPost, "/api/v1/jobApplication/"+listingID+"/apply", seekerToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/jobApplication/"+listingID+"/apply", seekerToken, map[string]string{
		"coverLetter": "I would love to work on this.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// A second application to the same job is refused.
	rec = f.do(t, http.MethodPost, "/api/v1/jobApplication/"+listingID+"/apply", seekerToken, map[string]string{
		"coverLetter": "Second try.",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The counter reflects the single accepted application.
	rec = f.do(t, http.MethodGet, "/api/v1/jobListing/"+listingID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, fields = decodeEnvelope(t, rec)
	var count int
	require.NoError(t, json.Unmarshal(fields["applicationCount"], &count))
	assert.Equal(t, 1, count)

	// The employer sees the application, the seeker sees their own.
	rec = f.do(t, http.MethodGet, "/api/v1/jobApplication/employer", employerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/v1/jobApplication/mine", seekerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A closed listing stops accepting applications.
	rec = f.do(t, http.MethodPatch, "/api/v1/jobListing/"+listingID+"/status", employerToken, map[string]string{"status": "closed"})
	require.Equal(t, http.StatusOK, rec.Code)
	_, seeker2Token := f.verifiedUser(t, "seeker2@example.com", auth.AccountJobSeeker)
	rec = f.do(t, http.MethodPost, "/api/v1/applicant/create", seeker2Token, map[string]interface{}{})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/jobApplication/"+listingID+"/apply", seeker2Token, map[string]string{
		"coverLetter": "Too late.",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplicationStatusOwnership(t *testing.T) {
	f := newServerFixture(t)
	_, employerToken := f.verifiedUser(t, "employer@example.com", auth.AccountEmployer)
	_, intruderToken := f.verifiedUser(t, "intruder@example.com", auth.AccountEmployer)
	_, seekerToken := f.verifiedUser(t, "seeker@example.com", auth.AccountJobSeeker)

	rec := f.do(t, http.MethodPost, "/api/v1/employer/create", employerToken, map[string]string{"companyName": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/employer/create", intruderToken, map[string]string{"companyName": "Intruders"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/applicant/create", seekerToken, map[string]interface{}{})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/jobListing/create", employerToken, map[string]interface{}{
		"title": "Go Engineer", "description": "Build services", "location": "Remote",
		"salary": 120000, "workMode": "remote", "experienceLevel": "mid", "jobType": "full-time",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	_, fields := decodeEnvelope(t, rec)
	var listingID string
	require.NoError(t, json.Unmarshal(fields["id"], &listingID))

	rec = f.do(t, http.MethodPost, "/api/v1/jobApplication/"+listingID+"/apply", seekerToken, map[string]string{
		"coverLetter": "Hire me.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	_, fields = decodeEnvelope(t, rec)
	var applicationID string
	require.NoError(t, json.Unmarshal(fields["id"], &applicationID))

	// Only the hiring employer may change the status.
	rec = f.do(t, http.MethodPatch, "/api/v1/jobApplication/"+applicationID+"/status", intruderToken, map[string]string{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, http.MethodPatch, "/api/v1/jobApplication/"+applicationID+"/status", employerToken, map[string]string{"status": "reviewed"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// A reviewed application can no longer be edited by the applicant.
	rec = f.do(t, http.MethodPatch, "/api/v1/jobApplication/"+applicationID, seekerToken, map[string]string{"coverLetter": "Edited."})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Both participants may read it; the applicant may withdraw it.
	rec = f.do(t, http.MethodGet, "/api/v1/jobApplication/"+applicationID, employerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/v1/jobApplication/"+applicationID, seekerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodDelete, "/api/v1/jobApplication/"+applicationID, seekerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJobApplicationsForListing(t *testing.T) {
	f := newServerFixture(t)
	_, employerToken := f.verifiedUser(t, "employer@example.com", auth.AccountEmployer)
	_, intruderToken := f.verifiedUser(t, "intruder@example.com", auth.AccountEmployer)
	_, seekerToken := f.verifiedUser(t, "seeker@example.com", auth.AccountJobSeeker)

	rec := f.do(t, http.MethodPost, "/api/v1/employer/create", employerToken, map[string]string{"companyName": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/employer/create", intruderToken, map[string]string{"companyName": "Intruders"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/applicant/create", seekerToken, map[string]interface{}{})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/jobListing/create", employerToken, map[string]interface{}{
		"title": "Go Engineer", "description": "Build services", "location": "Remote",
		"salary": 120000, "workMode": "remote", "experienceLevel": "mid", "jobType": "full-time",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	_, fields := decodeEnvelope(t, rec)
	var listingID string
	require.NoError(t, json.Unmarshal(fields["id"], &listingID))

	rec = f.do(t, http.MethodPost, "/api/v1/jobApplication/"+listingID+"/apply", seekerToken, map[string]string{
		"coverLetter": "Hire me.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Only the employer who posted the job may list its applicants.
	rec = f.do(t, http.MethodGet, "/api/v1/jobApplication/"+listingID+"/applications", intruderToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/jobApplication/missing/applications", employerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/jobApplication/"+listingID+"/applications", employerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []jobs.JobApplication `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, listingID, env.Data[0].JobID)
	assert.Equal(t, "Hire me.", env.Data[0].CoverLetter)
}

func TestJobRecommendations(t *testing.T) {
	f := newServerFixture(t)
	_, employerToken := f.verifiedUser(t, "employer@example.com", auth.AccountEmployer)
	_, seekerToken := f.verifiedUser(t, "seeker@example.com", auth.AccountJobSeeker)

	rec := f.do(t, http.MethodPost, "/api/v1/employer/create", employerToken, map[string]string{"companyName": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// No profile yet.
	rec = f.do(t, http.MethodGet, "/api/v1/jobListing/recommendations", seekerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/applicant/create", seekerToken, map[string]interface{}{
		"skills": []string{"go", "postgres"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// No listings match yet.
	rec = f.do(t, http.MethodGet, "/api/v1/jobListing/recommendations", seekerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	post := func(title string, skills []string) string {
		rec := f.do(t, http.MethodPost, "/api/v1/jobListing/create", employerToken, map[string]interface{}{
			"title": title, "description": "Build services", "location": "Remote",
			"salary": 120000, "workMode": "remote", "experienceLevel": "mid", "jobType": "full-time",
			"skills": skills,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		_, fields := decodeEnvelope(t, rec)
		var id string
		require.NoError(t, json.Unmarshal(fields["id"], &id))
		return id
	}
	matchID := post("Go Engineer", []string{"go", "kubernetes"})
	post("Rust Engineer", []string{"rust"})
	closedID := post("Go Engineer (filled)", []string{"go"})
	rec = f.do(t, http.MethodPatch, "/api/v1/jobListing/"+closedID+"/status", employerToken, map[string]string{"status": "closed"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Only the open listing sharing a skill comes back.
	rec = f.do(t, http.MethodGet, "/api/v1/jobListing/recommendations", seekerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []jobs.JobListing `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, matchID, env.Data[0].ID)
}

// vanishingListings simulates a listing deleted between the ownership
// check and the update statement.
type vanishingListings struct{ *fakeListings }

func (vanishingListings) Update(context.Context, string, jobs.ListingUpdate) (*jobs.JobListing, error) {
	return nil, nil
}

func (vanishingListings) SetStatus(context.Context, string, jobs.ListingStatus) (*jobs.JobListing, error) {
	return nil, nil
}

type vanishingApplications struct{ *fakeApplications }

func (vanishingApplications) Update(context.Context, string, jobs.ApplicationUpdate) (*jobs.JobApplication, error) {
	return nil, nil
}

func (vanishingApplications) SetStatus(context.Context, string, jobs.ApplicationStatus) (*jobs.JobApplication, error) {
	return nil, nil
}

func TestUpdateAfterRowVanishesIsNotFound(t *testing.T) {
	f := newServerFixture(t)
	_, employerToken := f.verifiedUser(t, "employer@example.com", auth.AccountEmployer)
	_, seekerToken := f.verifiedUser(t, "seeker@example.com", auth.AccountJobSeeker)

	rec := f.do(t, http.MethodPost, "/api/v1/employer/create", employerToken, map[string]string{"companyName": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/applicant/create", seekerToken, map[string]interface{}{})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/jobListing/create", employerToken, map[string]interface{}{
		"title": "Go Engineer", "description": "Build services", "location": "Remote",
		"salary": 120000, "workMode": "remote", "experienceLevel": "mid", "jobType": "full-time",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	_, fields := decodeEnvelope(t, rec)
	var listingID string
	require.NoError(t, json.Unmarshal(fields["id"], &listingID))

	rec = f.do(t, http.MethodPost, "/api/v1/jobApplication/"+listingID+"/apply", seekerToken, map[string]string{
		"coverLetter": "Hire me.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	_, fields = decodeEnvelope(t, rec)
	var applicationID string
	require.NoError(t, json.Unmarshal(fields["id"], &applicationID))

	// Lookups still see the rows, but writes arrive after a concurrent
	// delete took them away.
	f.server.Listings = vanishingListings{f.server.Listings.(*fakeListings)}
	f.server.Applications = vanishingApplications{f.server.Applications.(*fakeApplications)}

	rec = f.do(t, http.MethodPatch, "/api/v1/jobListing/"+listingID, employerToken, map[string]string{"title": "New title"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodPatch, "/api/v1/jobListing/"+listingID+"/status", employerToken, map[string]string{"status": "closed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodPatch, "/api/v1/jobApplication/"+applicationID, seekerToken, map[string]string{"coverLetter": "Edited."})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodPatch, "/api/v1/jobApplication/"+applicationID+"/status", employerToken, map[string]string{"status": "reviewed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookmarks(t *testing.T) {
	f := newServerFixture(t)
	_, employerToken := f.verifiedUser(t, "employer@example.com", auth.AccountEmployer)
	_, seekerToken := f.verifiedUser(t, "seeker@example.com", auth.AccountJobSeeker)

	rec := f.do(t, http.MethodPost, "/api/v1/employer/create", employerToken, map[string]string{"companyName": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/jobListing/create", employerToken, map[string]interface{}{
		"title": "Go Engineer", "description": "Build services", "location": "Remote",
		"salary": 120000, "workMode": "remote", "experienceLevel": "mid", "jobType": "full-time",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	_, fields := decodeEnvelope(t, rec)
	var listingID string
	require.NoError(t, json.Unmarshal(fields["id"], &listingID))

	rec = f.do(t, http.MethodPost, "/api/v1/bookmark/create", seekerToken, map[string]string{"jobListingId": listingID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/bookmark/create", seekerToken, map[string]string{"jobListingId": listingID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/bookmark/create", seekerToken, map[string]string{"jobListingId": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/bookmark/"+listingID+"/status", seekerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, fields = decodeEnvelope(t, rec)
	var bookmarked bool
	require.NoError(t, json.Unmarshal(fields["bookmarked"], &bookmarked))
	assert.True(t, bookmarked)

	rec = f.do(t, http.MethodDelete, "/api/v1/bookmark/"+listingID, seekerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/bookmark/"+listingID+"/status", seekerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, fields = decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(fields["bookmarked"], &bookmarked))
	assert.False(t, bookmarked)
}

func TestProfileUpdate(t *testing.T) {
	f := newServerFixture(t)
	_, token := f.verifiedUser(t, "ada@example.com", auth.AccountJobSeeker)

	rec := f.do(t, http.MethodGet, "/api/v1/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/v1/auth/profile/update", token, map[string]string{"fullName": "Ada King"})
	require.Equal(t, http.StatusOK, rec.Code)
	_, fields := decodeEnvelope(t, rec)
	var name string
	require.NoError(t, json.Unmarshal(fields["fullName"], &name))
	assert.Equal(t, "Ada King", name)

	// Unknown fields are rejected, not ignored.
	rec = f.do(t, http.MethodPatch, "/api/v1/auth/profile/update", token, map[string]string{"isVerified": "true"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
