// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// EmploymentTarget is what a builder is looking for: an internship or a job.
//
// WHY A STRING TYPE AND NOT iota CONSTANTS?
// The value is stored in the database and serialized to JSON as-is, so a
// named string type gives us type safety in Go code while keeping the wire
// and storage representation human-readable. Anything that isn't "job" is
// normalized to "internship" — the default.
type EmploymentTarget string

const (
	EmploymentInternship EmploymentTarget = "internship"
	EmploymentJob        EmploymentTarget = "job"
)

// User represents one account.
//
// The identity provider issues the ID — an opaque string we store verbatim
// and never generate ourselves. The UNIQUE constraint on email in the DB
// ensures one mailbox maps to exactly one account.
//
// WHY Email string (not *string)?
// Every account requires an email (it's the precondition of account
// creation), so there is no "absent" state to model. All other optional
// text fields use the empty string as their zero value rather than a
// nullable pointer — simpler to work with and safe to display.
type User struct {
	ID              string           `json:"id"`       // issued by the identity provider, immutable
	Email           string           `json:"email"`    // unique, required
	Username        string           `json:"username"` // defaults to the local part of the email
	Name            string           `json:"name"`
	Pfp             string           `json:"pfp"` // avatar URL, defaulted from a fixed pool at creation
	OneLiner        string           `json:"oneLiner"`
	Location        string           `json:"location"`
	WhatWorkingOn   string           `json:"whatWorkingOn"`
	InternshipOrJob EmploymentTarget `json:"internshipOrJob"`
	// ProjectsNumber is a caller-maintained counter. It is NOT derived from
	// the projects relation — whoever increments it owns its consistency.
	ProjectsNumber int       `json:"projectsNumber"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Socials holds a user's external links. Each field is optional and
// represented as an empty string when absent. The whole record is written
// as a unit (full replace), never patched field by field.
type Socials struct {
	GitHub   string `json:"github"`
	LinkedIn string `json:"linkedIn"`
	Twitter  string `json:"twitter"`
}

// UserProfile is the full profile graph: the user row joined with its
// socials and all projects (each with its messages). This is a read model —
// assembled by the repository in a single query, never stored as-is.
type UserProfile struct {
	User
	Socials  Socials   `json:"socials"`
	Projects []Project `json:"projects"`
}

// Identity is the payload of an identity event: the signal from the
// identity provider that someone has authenticated. Name may be empty —
// the account workflow falls back to the local part of the email.
type Identity struct {
	ID    string
	Email string
	Name  string
}
