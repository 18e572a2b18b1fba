package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/libradesk/libradesk/internal/loan"
	"github.com/libradesk/libradesk/internal/model"
)

func (h *Handler) GetLoans(c echo.Context) error {
	ctx := c.Request().Context()

	var items []model.Loan
	if err := h.cb.Call(func() error {
		list, code, err := h.loanSvc.ListLoans(ctx)
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		if code != http.StatusOK {
			return echo.NewHTTPError(code, "list loans")
		}
		items = list
		return nil
	}); err != nil {
		return err
	}

	bookIDs := make(map[string]struct{}, len(items))
	personIDs := make(map[string]struct{}, len(items))
	for _, l := range items {
		bookIDs[l.BookID] = struct{}{}
		personIDs[l.PersonID] = struct{}{}
	}

	books := make(map[string]model.Book, len(bookIDs))
	persons := make(map[string]model.Person, len(personIDs))
	gg, ctx := errgroup.WithContext(ctx)
	gg.Go(func() error {
		for id := range bookIDs {
			book, code, err := h.catalogSvc.GetBook(ctx, id)
			if err != nil {
				return echo.NewHTTPError(code, err.Error())
			}
			if code != http.StatusOK {
				return echo.NewHTTPError(code, "get book")
			}
			books[id] = book
		}
		return nil
	})
	gg.Go(func() error {
		for id := range personIDs {
			person, code, err := h.peopleSvc.GetPerson(ctx, id)
			if err != nil {
				return echo.NewHTTPError(code, err.Error())
			}
			if code != http.StatusOK {
				return echo.NewHTTPError(code, "get person")
			}
			persons[id] = person
		}
		return nil
	})
	if err := gg.Wait(); err != nil {
		return err
	}

	// status is derived per response from the stored fields, never cached
	now := time.Now()
	resp := make([]model.LoanDetails, 0, len(items))
	for _, l := range items {
		resp = append(resp, model.LoanDetails{
			Loan:   l,
			Book:   books[l.BookID],
			Person: persons[l.PersonID],
			Status: string(loan.DeriveStatus(l, now)),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) IssueLoan(c echo.Context) error {
	var req model.CreateLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	ln, code, err := h.loanSvc.IssueLoan(ctx, req)
	if err != nil {
		return echo.NewHTTPError(code, err.Error())
	}
	if code != http.StatusOK && code != http.StatusCreated {
		return echo.NewHTTPError(code, "issue loan")
	}
	return c.JSON(code, h.loanDetails(ctx, ln))
}

func (h *Handler) ReturnLoan(c echo.Context) error {
	loanID := c.Param("loanId")
	if loanID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty loanId")
	}
	var req model.ReturnLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	ln, code, err := h.loanSvc.ReturnLoan(ctx, loanID, req)
	if err != nil {
		return echo.NewHTTPError(code, err.Error())
	}
	if code != http.StatusOK {
		return echo.NewHTTPError(code, "return loan")
	}
	return c.JSON(http.StatusOK, h.loanDetails(ctx, ln))
}

func (h *Handler) ExtendLoan(c echo.Context) error {
	loanID := c.Param("loanId")
	if loanID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty loanId")
	}
	var req model.ExtendLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	ln, code, err := h.loanSvc.ExtendLoan(ctx, loanID, req)
	if err != nil {
		return echo.NewHTTPError(code, err.Error())
	}
	if code != http.StatusOK {
		return echo.NewHTTPError(code, "extend loan")
	}
	return c.JSON(http.StatusOK, h.loanDetails(ctx, ln))
}

// loanDetails enriches a single loan best-effort: the loan mutation
// already succeeded, a failed detail fetch should not fail the response.
func (h *Handler) loanDetails(ctx context.Context, ln model.Loan) model.LoanDetails {
	details := model.LoanDetails{
		Loan:   ln,
		Status: string(loan.DeriveStatus(ln, time.Now())),
	}
	if book, code, err := h.catalogSvc.GetBook(ctx, ln.BookID); err == nil && code == http.StatusOK {
		details.Book = book
	}
	if person, code, err := h.peopleSvc.GetPerson(ctx, ln.PersonID); err == nil && code == http.StatusOK {
		details.Person = person
	}
	return details
}
