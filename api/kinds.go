package api

import (
	"net/http"

	"github.com/rpupo63/melba-site-backend/database"
	"github.com/rpupo63/melba-site-backend/validation"
)

// kindSpec declares how one public form is routed and answered.
type kindSpec struct {
	key      string
	label    string
	routes   []string
	messages validation.Messages
	success  string
	status   int
	// redirect is where plain HTML form posts are sent afterwards.
	redirect    string
	acknowledge bool
	// idempotent kinds answer a repeated email with the normal success.
	idempotent bool
}

var (
	volunteerKind = kindSpec{
		key:         "volunteer",
		label:       "Volunteer Application",
		routes:      []string{"/api/volunteer", "/applications/volunteer"},
		success:     "Volunteer application submitted successfully!",
		status:      http.StatusOK,
		acknowledge: true,
	}
	enrollmentKind = kindSpec{
		key:         "enrollment",
		label:       "Enrollment Application",
		routes:      []string{"/api/enrollment", "/applications/enrollment"},
		success:     "Enrollment application submitted successfully!",
		status:      http.StatusOK,
		acknowledge: true,
	}
	tutorKind = kindSpec{
		key:         "tutor",
		label:       "Tutor Application",
		routes:      []string{"/api/tutor", "/applications/tutor"},
		success:     "Tutor application submitted successfully!",
		status:      http.StatusOK,
		acknowledge: true,
	}
	careerApplyKind = kindSpec{
		key:         "career-apply",
		label:       "Internship Application",
		routes:      []string{"/api/career/apply", "/applications/career/apply"},
		success:     "Internship application submitted successfully!",
		status:      http.StatusOK,
		acknowledge: true,
	}
	careerFundKind = kindSpec{
		key:    "career-fund",
		label:  "Internship Funding Inquiry",
		routes: []string{"/api/career/fund", "/applications/career/fund-internships"},
		messages: validation.Messages{
			"sponsorshipLevel.oneof": "Please select a valid sponsorship level.",
		},
		success:     "Internship funding inquiry submitted successfully!",
		status:      http.StatusOK,
		acknowledge: true,
	}
	careerPartnerKind = kindSpec{
		key:         "career-partner",
		label:       "Partnership Inquiry",
		routes:      []string{"/api/career/partner", "/applications/career/partner"},
		success:     "Partnership inquiry submitted successfully!",
		status:      http.StatusOK,
		acknowledge: true,
	}
	joinTeamKind = kindSpec{
		key:         "join-team",
		label:       "Team Registration",
		routes:      []string{"/applications/sports/join-team"},
		success:     "Team registration submitted successfully!",
		status:      http.StatusOK,
		acknowledge: true,
	}
	bootcampKind = kindSpec{
		key:    "bootcamp",
		label:  "Bootcamp Registration",
		routes: []string{"/applications/bootcamp"},
		messages: validation.Messages{
			"experienceLevel.oneof": "Please select a valid experience level.",
		},
		success:     "Bootcamp registration submitted successfully!",
		status:      http.StatusOK,
		acknowledge: true,
	}
	contactKind = kindSpec{
		key:         "contact",
		label:       "Contact Message",
		routes:      []string{"/contact"},
		success:     "Thank you for your message! We'll get back to you soon.",
		status:      http.StatusOK,
		redirect:    "/contact",
		acknowledge: true,
	}
	newsletterKind = kindSpec{
		key:         "newsletter",
		label:       "Newsletter Subscription",
		routes:      []string{"/subscribe"},
		success:     "Thanks for subscribing! You'll now receive the latest stories and updates from Melba Community Center.",
		status:      http.StatusOK,
		acknowledge: true,
		idempotent:  true,
	}
)

func newSubmissionRoutes(db database.Database, deps submissionDeps) []submissionRoute {
	return []submissionRoute{
		newSubmission(volunteerKind, db.Volunteers(), deps),
		newSubmission(enrollmentKind, db.Enrollments(), deps),
		newSubmission(tutorKind, db.Tutors(), deps),
		newSubmission(careerApplyKind, db.Careers(), deps),
		newSubmission(careerFundKind, db.FundInquiries(), deps),
		newSubmission(careerPartnerKind, db.Partners(), deps),
		newSubmission(joinTeamKind, db.JoinTeam(), deps),
		newSubmission(bootcampKind, db.Bootcamp(), deps),
		newSubmission(contactKind, db.Contacts(), deps),
		newSubmission(newsletterKind, db.Subscribers(), deps),
	}
}
