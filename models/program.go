package models

import "strings"

type ProgramStatus string

const (
	ProgramActive   ProgramStatus = "Active"
	ProgramUpcoming ProgramStatus = "Upcoming"
	ProgramClosed   ProgramStatus = "Closed"
)

type Program struct {
	ContentRecord
	Title            string        `json:"title" db:"title" gorm:"type:text;not null" validate:"max=100" label:"title"`
	Slug             string        `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex:idx_programs_slug" validate:"slug" label:"slug"`
	AgeRange         string        `json:"ageRange,omitempty" db:"age_range" gorm:"type:text"`
	Status           ProgramStatus `json:"status" db:"status" gorm:"type:text;not null;default:'Active'" validate:"oneof=Active Upcoming Closed" label:"status"`
	ShortDescription string        `json:"shortDescription" db:"short_description" gorm:"type:text;not null"`
	FullDescription  string        `json:"fullDescription,omitempty" db:"full_description" gorm:"type:text"`
	Image            string        `json:"image,omitempty" db:"image" gorm:"type:text"`
}

func (p *Program) UniqueKeys() []string {
	return []string{"slug:" + strings.ToLower(p.Slug)}
}
