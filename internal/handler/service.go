package handler

import (
	"context"

	"github.com/libradesk/libradesk/internal/model"
	"github.com/libradesk/libradesk/internal/service/catalog"
	"github.com/libradesk/libradesk/internal/service/loans"
	"github.com/libradesk/libradesk/internal/service/people"
	"github.com/libradesk/libradesk/internal/service/stats"
	"github.com/libradesk/libradesk/internal/session"
	"github.com/libradesk/libradesk/internal/store"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

var (
	_ CatalogService = (*catalog.Service)(nil)
	_ LoanService    = (*loans.Service)(nil)
	_ PeopleService  = (*people.Service)(nil)
	_ StatsService   = (*stats.Service)(nil)
	_ SessionManager = (*session.Manager)(nil)
	_ ScanStore      = (*store.Store)(nil)
)

type CatalogService interface {
	ListBooks(ctx context.Context, search string) ([]model.Book, int, error)
	GetBook(ctx context.Context, bookID string) (model.Book, int, error)
	CreateBook(ctx context.Context, request model.CreateBookRequest) (model.Book, int, error)
	UpdateBook(ctx context.Context, bookID string, request model.CreateBookRequest) (model.Book, int, error)
	DeleteBook(ctx context.Context, bookID string) (int, error)
}

type LoanService interface {
	ListLoans(ctx context.Context) ([]model.Loan, int, error)
	IssueLoan(ctx context.Context, request model.CreateLoanRequest) (model.Loan, int, error)
	ReturnLoan(ctx context.Context, loanID string, request model.ReturnLoanRequest) (model.Loan, int, error)
	ExtendLoan(ctx context.Context, loanID string, request model.ExtendLoanRequest) (model.Loan, int, error)
}

type PeopleService interface {
	ListPeople(ctx context.Context) ([]model.Person, int, error)
	GetPerson(ctx context.Context, personID string) (model.Person, int, error)
	UpdatePerson(ctx context.Context, personID string, request model.UpdatePersonRequest) (model.Person, int, error)
	DeletePerson(ctx context.Context, personID string) (int, error)
}

type StatsService interface {
	GetSummary(ctx context.Context) (model.Summary, int, error)
}

type SessionManager interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, req model.RegisterRequest) error
	RegisterLibrarian(ctx context.Context, req model.RegisterRequest) error
	Logout(ctx context.Context)
	HasRole(roles ...model.Role) bool
	State() session.State
}

type ScanStore interface {
	RecentScans(ctx context.Context, limit int) ([]store.ScanEntry, error)
}
