package http

import (
	"net/http"

	"loantrack/internal/adapter/middleware"
	"loantrack/internal/domain/apperr"
	"loantrack/internal/domain/identity"
	uc "loantrack/internal/usecase/identity"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc *uc.Service
	log *zap.Logger
}

func NewAuthHandler(svc *uc.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

type registerReq struct {
	Name     string `json:"name"     validate:"required,max=120"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginReq struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.svc.Register(c.Request().Context(), uc.RegisterInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.svc.Login(c.Request().Context(), uc.LoginInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) ListUsers(c echo.Context) error {
	sub, ok := middleware.SubjectFrom(c)
	if !ok {
		return writeError(c, h.log, apperr.Authentication("not authenticated"))
	}
	users, err := h.svc.ListUsers(c.Request().Context(), sub)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, users)
}

type userPath struct {
	UserID string `param:"user_id" validate:"hex32"`
}

func (h *AuthHandler) DeleteUser(c echo.Context) error {
	sub, ok := middleware.SubjectFrom(c)
	if !ok {
		return writeError(c, h.log, apperr.Authentication("not authenticated"))
	}
	var p userPath
	if ok, err := bindPath(c, h.log, &p, "user not found"); !ok {
		return err
	}
	if err := h.svc.DeleteUser(c.Request().Context(), sub, p.UserID); err != nil {
		return writeError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) CreateAdmin(c echo.Context) error {
	return h.createStaff(c, identity.RoleAdmin)
}

func (h *AuthHandler) CreateVerifier(c echo.Context) error {
	return h.createStaff(c, identity.RoleVerifier)
}

func (h *AuthHandler) createStaff(c echo.Context, role identity.Role) error {
	sub, ok := middleware.SubjectFrom(c)
	if !ok {
		return writeError(c, h.log, apperr.Authentication("not authenticated"))
	}
	var req registerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.svc.CreateStaff(c.Request().Context(), sub, role, uc.RegisterInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}
