package jobs

import (
	"errors"
	"time"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateProfile     = errors.New("profile already exists for this user")
	ErrDuplicateApplication = errors.New("already applied for this job")
	ErrDuplicateBookmark    = errors.New("job already bookmarked")
)

type ListingStatus string

const (
	ListingOpen   ListingStatus = "open"
	ListingClosed ListingStatus = "closed"
)

func (s ListingStatus) Valid() bool {
	return s == ListingOpen || s == ListingClosed
}

type WorkMode string

const (
	WorkRemote WorkMode = "remote"
	WorkOnSite WorkMode = "on-site"
	WorkHybrid WorkMode = "hybrid"
)

func (m WorkMode) Valid() bool {
	return m == WorkRemote || m == WorkOnSite || m == WorkHybrid
}

type ExperienceLevel string

const (
	LevelJunior ExperienceLevel = "junior"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
)

func (l ExperienceLevel) Valid() bool {
	return l == LevelJunior || l == LevelMid || l == LevelSenior
}

type JobType string

const (
	JobFullTime   JobType = "full-time"
	JobPartTime   JobType = "part-time"
	JobContract   JobType = "contract"
	JobInternship JobType = "internship"
)

func (t JobType) Valid() bool {
	switch t {
	case JobFullTime, JobPartTime, JobContract, JobInternship:
		return true
	}
	return false
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationReviewed ApplicationStatus = "reviewed"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationReviewed, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

type EmployerProfile struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	CompanyName        string    `json:"companyName"`
	CompanyWebsite     *string   `json:"companyWebsite,omitempty"`
	CompanyDescription *string   `json:"companyDescription,omitempty"`
	CompanySize        *string   `json:"companySize,omitempty"`
	Industry           *string   `json:"industry,omitempty"`
	CompanyLocation    *string   `json:"companyLocation,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// EmployerUpdate enumerates the mutable employer profile fields.
type EmployerUpdate struct {
	CompanyName        *string `json:"companyName"`
	CompanyWebsite     *string `json:"companyWebsite"`
	CompanyDescription *string `json:"companyDescription"`
	CompanySize        *string `json:"companySize"`
	Industry           *string `json:"industry"`
	CompanyLocation    *string `json:"companyLocation"`
}

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description,omitempty"`
}

type Education struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate,omitempty"`
}

type SocialLinks struct {
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

type JobSeekerProfile struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	PhoneNumber *string      `json:"phoneNumber,omitempty"`
	Bio         string       `json:"bio"`
	Location    *string      `json:"location,omitempty"`
	Resume      *string      `json:"resume,omitempty"`
	Skills      []string     `json:"skills"`
	Experiences []Experience `json:"experiences"`
	Education   []Education  `json:"education"`
	SocialLinks SocialLinks  `json:"socialLinks"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type JobSeekerUpdate struct {
	PhoneNumber *string       `json:"phoneNumber"`
	Bio         *string       `json:"bio"`
	Location    *string       `json:"location"`
	Resume      *string       `json:"resume"`
	Skills      *[]string     `json:"skills"`
	Experiences *[]Experience `json:"experiences"`
	Education   *[]Education  `json:"education"`
	SocialLinks *SocialLinks  `json:"socialLinks"`
}

type JobListing struct {
	ID               string          `json:"id"`
	EmployerID       string          `json:"employerId"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Location         string          `json:"location"`
	Salary           int64           `json:"salary"`
	IsFilled         bool            `json:"isFilled"`
	ApplicationCount int             `json:"applicationCount"`
	Status           ListingStatus   `json:"status"`
	WorkMode         WorkMode        `json:"workMode"`
	ExperienceLevel  ExperienceLevel `json:"experienceLevel"`
	JobType          JobType         `json:"jobType"`
	Skills           []string        `json:"skills"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type ListingUpdate struct {
	Title           *string          `json:"title"`
	Description     *string          `json:"description"`
	Location        *string          `json:"location"`
	Salary          *int64           `json:"salary"`
	IsFilled        *bool            `json:"isFilled"`
	WorkMode        *WorkMode        `json:"workMode"`
	ExperienceLevel *ExperienceLevel `json:"experienceLevel"`
	JobType         *JobType         `json:"jobType"`
	Skills          *[]string        `json:"skills"`
}

// ListingFilter narrows GetAll; zero values mean "any".
type ListingFilter struct {
	Location        string
	Status          ListingStatus
	WorkMode        WorkMode
	ExperienceLevel ExperienceLevel
	JobType         JobType
	MinSalary       int64
}

type JobApplication struct {
	ID          string            `json:"id"`
	JobID       string            `json:"jobId"`
	ApplicantID string            `json:"applicantId"`
	EmployerID  string            `json:"employerId"`
	Status      ApplicationStatus `json:"status"`
	CoverLetter string            `json:"coverLetter"`
	Resume      *string           `json:"resume,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type ApplicationUpdate struct {
	CoverLetter *string `json:"coverLetter"`
	Resume      *string `json:"resume"`
}

type Bookmark struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	JobListingID string    `json:"jobListingId"`
	CreatedAt    time.Time `json:"createdAt"`
}
