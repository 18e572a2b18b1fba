package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleReader    Role = "reader"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

// Identity is decoded from the bearer token, never persisted on its own.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type Book struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre,omitempty"`
	ISBN   string `json:"isbn,omitempty"`
	Year   int    `json:"year,omitempty"`
}

type Person struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Loan carries only the authoritative fields as stored remotely; due date
// and status are always derived from them, never persisted.
type Loan struct {
	ID           string     `json:"id"`
	BookID       string     `json:"bookId"`
	PersonID     string     `json:"personId"`
	StartDate    time.Time  `json:"startDate"`
	DurationDays int        `json:"durationDays"`
	ReturnDate   *time.Time `json:"returnDate,omitempty"`
}

// LoanDetails is a loan joined with its book and borrower and the status
// derived at response time.
type LoanDetails struct {
	Loan   `json:",inline"`
	Book   Book   `json:"book"`
	Person Person `json:"person"`
	Status string `json:"status"`
}

type Date struct {
	time.Time `json:",inline"`
}

func (d *Date) UnmarshalJSON(b []byte) (err error) {
	s := strings.Trim(string(b), "\"")
	date, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = date
	return
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Confirm  string `json:"-" validate:"eqfield=Password"`
}

type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

type CreateLoanRequest struct {
	BookID       string `json:"bookId" validate:"required"`
	PersonID     string `json:"personId" validate:"required"`
	DurationDays int    `json:"durationDays" validate:"required,min=1"`
}

type ExtendLoanRequest struct {
	DurationDays int `json:"durationDays" validate:"required,min=1"`
}

type ReturnLoanRequest struct {
	Date Date `json:"date" validate:"required"`
}

type CreateBookRequest struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	Genre  string `json:"genre"`
	ISBN   string `json:"isbn"`
	Year   int    `json:"year"`
}

type UpdatePersonRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  Role   `json:"role" validate:"required,oneof=reader librarian admin"`
}

type Summary struct {
	Books   int `json:"books"`
	People  int `json:"people"`
	Loans   int `json:"loans"`
	Overdue int `json:"overdue"`
}

// BibRecord is the informational result of an external bibliographic
// lookup by identifier.
type BibRecord struct {
	Identifier string   `json:"identifier"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Year       int      `json:"year,omitempty"`
}
