package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/libradesk/libradesk/internal/model"
)

func (h *Handler) GetPeople(c echo.Context) error {
	var items []model.Person
	if err := h.cb.Call(func() error {
		list, code, err := h.peopleSvc.ListPeople(c.Request().Context())
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		if code != http.StatusOK {
			return echo.NewHTTPError(code, "list people")
		}
		items = list
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetPerson(c echo.Context) error {
	personID := c.Param("personId")
	if personID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty personId")
	}
	person, code, err := h.peopleSvc.GetPerson(c.Request().Context(), personID)
	if err != nil {
		return echo.NewHTTPError(code, err.Error())
	}
	if code != http.StatusOK {
		return echo.NewHTTPError(code, "get person")
	}
	return c.JSON(http.StatusOK, person)
}

func (h *Handler) UpdatePerson(c echo.Context) error {
	personID := c.Param("personId")
	if personID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty personId")
	}
	var req model.UpdatePersonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	person, code, err := h.peopleSvc.UpdatePerson(c.Request().Context(), personID, req)
	if err != nil {
		return echo.NewHTTPError(code, err.Error())
	}
	if code != http.StatusOK {
		return echo.NewHTTPError(code, "update person")
	}
	return c.JSON(http.StatusOK, person)
}

func (h *Handler) DeletePerson(c echo.Context) error {
	personID := c.Param("personId")
	if personID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty personId")
	}
	code, err := h.peopleSvc.DeletePerson(c.Request().Context(), personID)
	if err != nil {
		return echo.NewHTTPError(code, err.Error())
	}
	if code != http.StatusOK && code != http.StatusNoContent {
		return echo.NewHTTPError(code, "delete person")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetSummary(c echo.Context) error {
	var summary model.Summary
	if err := h.cb.Call(func() error {
		s, code, err := h.statsSvc.GetSummary(c.Request().Context())
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		if code != http.StatusOK {
			return echo.NewHTTPError(code, "get summary")
		}
		summary = s
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetScans(c echo.Context) error {
	const defaultLimit = 20
	limit := defaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	scans, err := h.scans.RecentScans(c.Request().Context(), limit)
	if err != nil {
		h.log.Error("recent scans", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "scan history unavailable")
	}
	return c.JSON(http.StatusOK, scans)
}
