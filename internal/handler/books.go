package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/libradesk/libradesk/internal/model"
)

func (h *Handler) GetBooks(c echo.Context) error {
	ctx := c.Request().Context()
	search := c.QueryParam("search")

	var resp interface{}
	if err := h.cb.Call(func() error {
		books, code, err := h.catalogSvc.ListBooks(ctx, search)
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		if code != http.StatusOK {
			return echo.NewHTTPError(code, "list books")
		}
		resp = books
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetBook(c echo.Context) error {
	bookID := c.Param("bookId")
	if bookID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty bookId")
	}
	ctx := c.Request().Context()

	var resp interface{}
	if err := h.cb.Call(func() error {
		book, code, err := h.catalogSvc.GetBook(ctx, bookID)
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		if code != http.StatusOK {
			return echo.NewHTTPError(code, "get book")
		}
		resp = book
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	book, code, err := h.catalogSvc.CreateBook(ctx, req)
	if err != nil {
		return echo.NewHTTPError(code, err.Error())
	}
	if code != http.StatusOK && code != http.StatusCreated {
		return echo.NewHTTPError(code, "create book")
	}
	return c.JSON(code, book)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	bookID := c.Param("bookId")
	if bookID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty bookId")
	}
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book, code, err := h.catalogSvc.UpdateBook(c.Request().Context(), bookID, req)
	if err != nil {
		return echo.NewHTTPError(code, err.Error())
	}
	if code != http.StatusOK {
		return echo.NewHTTPError(code, "update book")
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	bookID := c.Param("bookId")
	if bookID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty bookId")
	}
	code, err := h.catalogSvc.DeleteBook(c.Request().Context(), bookID)
	if err != nil {
		return echo.NewHTTPError(code, err.Error())
	}
	if code != http.StatusOK && code != http.StatusNoContent {
		return echo.NewHTTPError(code, "delete book")
	}
	return c.NoContent(http.StatusNoContent)
}
