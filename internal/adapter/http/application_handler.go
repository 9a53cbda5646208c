package http

import (
	"net/http"

	"loantrack/internal/adapter/middleware"
	"loantrack/internal/domain/application"
	"loantrack/internal/domain/apperr"
	uc "loantrack/internal/usecase/application"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ApplicationHandler struct {
	m   *uc.Manager
	log *zap.Logger
}

func NewApplicationHandler(m *uc.Manager, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{m: m, log: log}
}

type submitReq struct {
	Amount     decimal.Decimal `json:"amount"      validate:"gt=0,dec2"`
	TermMonths int             `json:"term_months" validate:"gt=0"`
	Purpose    string          `json:"purpose"     validate:"required,max=500"`
}

type applicationPath struct {
	ApplicationID string `param:"application_id" validate:"hex32"`
}

// Action and reason are checked by the use case so its error order holds.
type decideReq struct {
	Action          string  `json:"action"`
	RejectionReason *string `json:"rejection_reason"`
}

func (h *ApplicationHandler) Submit(c echo.Context) error {
	sub, ok := middleware.SubjectFrom(c)
	if !ok {
		return writeError(c, h.log, apperr.Authentication("not authenticated"))
	}
	var req submitReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.m.Submit(c.Request().Context(), sub, uc.SubmitInput{
		Amount:     req.Amount,
		TermMonths: req.TermMonths,
		Purpose:    req.Purpose,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApplicationHandler) List(c echo.Context) error {
	sub, ok := middleware.SubjectFrom(c)
	if !ok {
		return writeError(c, h.log, apperr.Authentication("not authenticated"))
	}
	views, err := h.m.ListVisible(c.Request().Context(), sub)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *ApplicationHandler) Get(c echo.Context) error {
	sub, ok := middleware.SubjectFrom(c)
	if !ok {
		return writeError(c, h.log, apperr.Authentication("not authenticated"))
	}
	var p applicationPath
	if ok, err := bindPath(c, h.log, &p, "application not found"); !ok {
		return err
	}
	view, err := h.m.Get(c.Request().Context(), sub, p.ApplicationID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *ApplicationHandler) History(c echo.Context) error {
	sub, ok := middleware.SubjectFrom(c)
	if !ok {
		return writeError(c, h.log, apperr.Authentication("not authenticated"))
	}
	var p applicationPath
	if ok, err := bindPath(c, h.log, &p, "application not found"); !ok {
		return err
	}
	rows, err := h.m.History(c.Request().Context(), sub, p.ApplicationID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *ApplicationHandler) Stats(c echo.Context) error {
	sub, ok := middleware.SubjectFrom(c)
	if !ok {
		return writeError(c, h.log, apperr.Authentication("not authenticated"))
	}
	stats, err := h.m.Stats(c.Request().Context(), sub)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *ApplicationHandler) Decide(c echo.Context) error { return h.decide(c, "") }

// Verify and Approve serve the per-gate paths. They take the same body as
// Decide; a missing action defaults to the gate's positive action.
func (h *ApplicationHandler) Verify(c echo.Context) error {
	return h.decide(c, application.ActionVerify)
}

func (h *ApplicationHandler) Approve(c echo.Context) error {
	return h.decide(c, application.ActionApprove)
}

func (h *ApplicationHandler) decide(c echo.Context, defaultAction application.Action) error {
	sub, ok := middleware.SubjectFrom(c)
	if !ok {
		return writeError(c, h.log, apperr.Authentication("not authenticated"))
	}
	var p applicationPath
	if ok, err := bindPath(c, h.log, &p, "application not found"); !ok {
		return err
	}
	var req decideReq
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return badBody(c)
	}
	if req.Action == "" {
		req.Action = string(defaultAction)
	}
	dto, err := h.m.Decide(c.Request().Context(), p.ApplicationID, sub, uc.DecideInput{
		Action:          req.Action,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
