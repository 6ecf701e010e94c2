package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/devconnector/internal/service"
)

// AccountHandler serves registration, login and the current-user lookup.
type AccountHandler struct {
	svc    *service.AccountService
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, logger: logger}
}

// HandleRegister creates an account.
//
// HTTP: POST /api/users/register
// REQUEST BODY: {"name":"Alice","email":"alice@example.com","password":"hunter22"}
// RESPONSE: the stored account, without its password hash.
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.svc.Register(r.Context(), in)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// HandleLogin exchanges credentials for a bearer token.
//
// HTTP: POST /api/users/login
// REQUEST BODY: {"email":"alice@example.com","password":"hunter22"}
// RESPONSE: {"success":true,"token":"Bearer eyJ..."}
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.svc.Login(r.Context(), in)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleCurrent returns the account the caller's token belongs to.
//
// HTTP: GET /api/users/current   (requires auth)
func (h *AccountHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	account, err := h.svc.Current(r.Context(), p)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}
