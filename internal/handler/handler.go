package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/libradesk/libradesk/internal/model"
	"github.com/libradesk/libradesk/pkg/breaker"
	"github.com/libradesk/libradesk/pkg/validate"
)

// Handler exposes the local facade over the remote library API: the same
// /api/v1 contract, gated by the client session instead of per-request
// credentials.
type Handler struct {
	catalogSvc CatalogService
	loanSvc    LoanService
	peopleSvc  PeopleService
	statsSvc   StatsService
	sessions   SessionManager
	scans      ScanStore
	cb         breaker.Breaker
	log        *zap.Logger
}

func New(log *zap.Logger, catalogSvc CatalogService, loanSvc LoanService, peopleSvc PeopleService, statsSvc StatsService, sessions SessionManager, scans ScanStore) *Handler {
	const (
		cbWindow    = 20
		cbTimeout   = 10 * time.Second
		cbThreshold = 0.5
		cbRecovery  = 3
	)
	return &Handler{
		catalogSvc: catalogSvc,
		loanSvc:    loanSvc,
		peopleSvc:  peopleSvc,
		statsSvc:   statsSvc,
		sessions:   sessions,
		scans:      scans,
		cb:         breaker.New(cbWindow, cbTimeout, cbThreshold, cbRecovery),
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", newRateLimiterMW(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()

	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(requestLoggerConfig(h.log)),
		middleware.RequestID(),
		newRateLimiterMW(apiRPS),
	)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/logout", h.Logout)

	authed := api.Group("", h.sessionRequired)
	authed.POST("/auth/register/librarian", h.RegisterLibrarian, h.roleRequired(model.RoleAdmin))
	authed.GET("/session", h.Session)

	authed.GET("/books", h.GetBooks)
	authed.GET("/books/:bookId", h.GetBook)
	staff := h.roleRequired(model.RoleLibrarian, model.RoleAdmin)
	authed.POST("/books", h.CreateBook, staff)
	authed.PUT("/books/:bookId", h.UpdateBook, staff)
	authed.DELETE("/books/:bookId", h.DeleteBook, staff)

	authed.GET("/loan", h.GetLoans)
	authed.POST("/loan", h.IssueLoan, staff)
	authed.PATCH("/loan/:loanId/return", h.ReturnLoan, staff)
	authed.PATCH("/loan/:loanId/extend", h.ExtendLoan, staff)

	admin := h.roleRequired(model.RoleAdmin)
	authed.GET("/people", h.GetPeople, admin)
	authed.GET("/people/:personId", h.GetPerson, admin)
	authed.PUT("/people/:personId", h.UpdatePerson, admin)
	authed.DELETE("/people/:personId", h.DeletePerson, admin)

	authed.GET("/summary", h.GetSummary)
	authed.GET("/scans", h.GetScans)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.sessions.Login(c.Request().Context(), req.Email, req.Password); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return h.Session(c)
}

func (h *Handler) Register(c echo.Context) error {
	var req model.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Confirm = req.Password
	if err := h.sessions.Register(c.Request().Context(), req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.String(http.StatusCreated, "ok")
}

func (h *Handler) RegisterLibrarian(c echo.Context) error {
	var req model.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Confirm = req.Password
	if err := h.sessions.RegisterLibrarian(c.Request().Context(), req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.String(http.StatusCreated, "ok")
}

func (h *Handler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

type sessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	Identity      *model.Identity `json:"identity,omitempty"`
	Error         string          `json:"error,omitempty"`
}

func (h *Handler) Session(c echo.Context) error {
	state := h.sessions.State()
	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: state.Authenticated,
		Identity:      state.Identity,
		Error:         state.Err,
	})
}
