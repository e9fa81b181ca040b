package database

import (
	"gorm.io/gorm"

	"github.com/rpupo63/melba-site-backend/models"
)

type Database struct {
	volunteers    Store[models.VolunteerApplication]
	enrollments   Store[models.EnrollmentApplication]
	tutors        Store[models.TutorApplication]
	careers       Store[models.CareerApplication]
	fundInquiries Store[models.FundInternshipInquiry]
	partners      Store[models.PartnerInquiry]
	joinTeam      Store[models.JoinTeamRegistration]
	bootcamp      Store[models.BootcampRegistration]
	contacts      Store[models.ContactSubmission]
	subscribers   Store[models.NewsletterSubscription]
	posts         Store[models.Post]
	programs      Store[models.Program]
}

// New initializes a new Database struct with each store using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		volunteers:    NewGormStore[models.VolunteerApplication](db),
		enrollments:   NewGormStore[models.EnrollmentApplication](db),
		tutors:        NewGormStore[models.TutorApplication](db),
		careers:       NewGormStore[models.CareerApplication](db),
		fundInquiries: NewGormStore[models.FundInternshipInquiry](db),
		partners:      NewGormStore[models.PartnerInquiry](db),
		joinTeam:      NewGormStore[models.JoinTeamRegistration](db),
		bootcamp:      NewGormStore[models.BootcampRegistration](db),
		contacts:      NewGormStore[models.ContactSubmission](db),
		subscribers:   NewGormStore[models.NewsletterSubscription](db),
		posts:         NewGormStore[models.Post](db),
		programs:      NewGormStore[models.Program](db),
	}
}

// NewMemory backs every store with process memory, for local runs and tests.
func NewMemory() Database {
	return Database{
		volunteers:    NewMemoryStore[models.VolunteerApplication](),
		enrollments:   NewMemoryStore[models.EnrollmentApplication](),
		tutors:        NewMemoryStore[models.TutorApplication](),
		careers:       NewMemoryStore[models.CareerApplication](),
		fundInquiries: NewMemoryStore[models.FundInternshipInquiry](),
		partners:      NewMemoryStore[models.PartnerInquiry](),
		joinTeam:      NewMemoryStore[models.JoinTeamRegistration](),
		bootcamp:      NewMemoryStore[models.BootcampRegistration](),
		contacts:      NewMemoryStore[models.ContactSubmission](),
		subscribers:   NewMemoryStore[models.NewsletterSubscription](),
		posts:         NewMemoryStore[models.Post](),
		programs:      NewMemoryStore[models.Program](),
	}
}

// Accessor methods for each store

func (d Database) Volunteers() Store[models.VolunteerApplication] { return d.volunteers }
func (d Database) Enrollments() Store[models.EnrollmentApplication] { return d.enrollments }
func (d Database) Tutors() Store[models.TutorApplication] { return d.tutors }
func (d Database) Careers() Store[models.CareerApplication] { return d.careers }
func (d Database) FundInquiries() Store[models.FundInternshipInquiry] { return d.fundInquiries }
func (d Database) Partners() Store[models.PartnerInquiry] { return d.partners }
func (d Database) JoinTeam() Store[models.JoinTeamRegistration] { return d.joinTeam }
func (d Database) Bootcamp() Store[models.BootcampRegistration] { return d.bootcamp }
func (d Database) Contacts() Store[models.ContactSubmission] { return d.contacts }
func (d Database) Subscribers() Store[models.NewsletterSubscription] { return d.subscribers }
func (d Database) Posts() Store[models.Post] { return d.posts }
func (d Database) Programs() Store[models.Program] { return d.programs }
