package models

import "strings"

// Person is the contact block shared by the individual application forms.
type Person struct {
	FirstName string `json:"firstName" gorm:"type:text;not null" validate:"required" label:"first name"`
	LastName  string `json:"lastName" gorm:"type:text;not null" validate:"required" label:"last name"`
	Email     string `json:"email" gorm:"type:text;not null;index" validate:"required,email_basic" label:"email"`
	Phone     string `json:"phone,omitempty" gorm:"type:text" label:"phone"`
}

func (p *Person) SubmitterName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Person) SubmitterEmail() string {
	return p.Email
}

type VolunteerApplication struct {
	Record
	Person
	Address            string     `json:"address,omitempty" gorm:"type:text" label:"address"`
	VolunteerInterests StringList `json:"volunteerInterests" gorm:"type:jsonb;not null" validate:"required" label:"volunteer interests"`
	Availability       string     `json:"availability,omitempty" gorm:"type:text" label:"availability"`
	Message            string     `json:"message,omitempty" gorm:"type:text" label:"message"`
}

type EnrollmentApplication struct {
	Record
	Person
	Age             Age    `json:"age" gorm:"type:integer;not null" validate:"required,between=12:80" label:"age"`
	School          string `json:"school,omitempty" gorm:"type:text" label:"school"`
	GradeLevel      string `json:"gradeLevel,omitempty" gorm:"type:text" label:"grade level"`
	ProgramInterest string `json:"programInterest" gorm:"type:text;not null" validate:"required" label:"program of interest"`
	Message         string `json:"message,omitempty" gorm:"type:text" label:"message"`
}

type TutorApplication struct {
	Record
	Person
	Age               *Age       `json:"age,omitempty" gorm:"type:integer" validate:"omitempty,between=16:80" label:"age"`
	TutorSubjects     StringList `json:"tutorSubjects" gorm:"type:jsonb;not null" validate:"required" label:"subjects"`
	Experience        string     `json:"experience,omitempty" gorm:"type:text" label:"experience"`
	TutorAvailability string     `json:"tutorAvailability,omitempty" gorm:"type:text" label:"availability"`
	Message           string     `json:"message,omitempty" gorm:"type:text" label:"message"`
}

type CareerApplication struct {
	Record
	Person
	Age         Age    `json:"age" gorm:"type:integer;not null" validate:"required,between=16:80" label:"age"`
	Interest    string `json:"interest" gorm:"type:text;not null" validate:"required" label:"area of interest"`
	CoverLetter string `json:"coverLetter,omitempty" gorm:"type:text" label:"cover letter"`
	ResumePath  string `json:"resumePath,omitempty" gorm:"type:text" label:"resume"`
}

type FundInternshipInquiry struct {
	Record
	Name             string `json:"name" gorm:"type:text;not null" validate:"required" label:"name"`
	Email            string `json:"email" gorm:"type:text;not null;index" validate:"required,email_basic" label:"email"`
	Phone            string `json:"phone,omitempty" gorm:"type:text" label:"phone"`
	SponsorshipLevel string `json:"sponsorshipLevel" gorm:"type:text;not null" validate:"required,oneof=Full Half Quarter Custom" label:"sponsorship level"`
	Message          string `json:"message,omitempty" gorm:"type:text" label:"message"`
}

func (f *FundInternshipInquiry) SubmitterName() string  { return f.Name }
func (f *FundInternshipInquiry) SubmitterEmail() string { return f.Email }

type PartnerInquiry struct {
	Record
	OrganizationName string `json:"organizationName" gorm:"type:text;not null" validate:"required" label:"organization name"`
	ContactName      string `json:"contactName" gorm:"type:text;not null" validate:"required" label:"contact name"`
	Email            string `json:"email" gorm:"type:text;not null;index" validate:"required,email_basic" label:"email"`
	Phone            string `json:"phone,omitempty" gorm:"type:text" label:"phone"`
	PartnershipType  string `json:"partnershipType" gorm:"type:text;not null" validate:"required" label:"partnership type"`
	Message          string `json:"message,omitempty" gorm:"type:text" label:"message"`
}

func (p *PartnerInquiry) SubmitterName() string  { return p.ContactName }
func (p *PartnerInquiry) SubmitterEmail() string { return p.Email }

type JoinTeamRegistration struct {
	Record
	Person
	Age                 Age    `json:"age" gorm:"type:integer;not null" validate:"required,between=12:80" label:"age"`
	TeamSportInterest   string `json:"teamSportInterest" gorm:"type:text;not null" validate:"required" label:"sport of interest"`
	TeamExperienceLevel string `json:"teamExperienceLevel,omitempty" gorm:"type:text" label:"experience level"`
	Message             string `json:"message,omitempty" gorm:"type:text" label:"message"`
}

type BootcampRegistration struct {
	Record
	Person
	Age             Age    `json:"age" gorm:"type:integer;not null" validate:"required,between=16:50" label:"age"`
	Program         string `json:"program" gorm:"type:text;not null" validate:"required" label:"program"`
	ExperienceLevel string `json:"experienceLevel" gorm:"type:text;not null" validate:"required,oneof='No Experience' 'Basic Concepts' Intermediate Advanced" label:"experience level"`
	Message         string `json:"message,omitempty" gorm:"type:text" label:"message"`
}
