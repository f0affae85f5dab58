package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/geocoder89/blogspace/internal/domain/account"
	"github.com/geocoder89/blogspace/internal/http/middlewares"
	"github.com/geocoder89/blogspace/internal/security"
	"github.com/gin-gonic/gin"
)

type CredentialStore interface {
	CreateAccount(ctx context.Context, name, email, password string) (account.Summary, error)
	Authenticate(ctx context.Context, email, password string) (account.Summary, error)
	GetAccount(ctx context.Context, id string) (*account.Summary, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID, email, name string) (string, error)
}

type LoginRecorder interface {
	ObserveLogin(result string)
}

type AccountsHandler struct {
	store   CredentialStore
	tokens  TokenIssuer
	ttlSecs int64
	metrics LoginRecorder
}

func NewAccountsHandler(store CredentialStore, tokens TokenIssuer, ttlSecs int64, metrics LoginRecorder) *AccountsHandler {
	return &AccountsHandler{
		store:   store,
		tokens:  tokens,
		ttlSecs: ttlSecs,
		metrics: metrics,
	}
}

func (h *AccountsHandler) Register(ctx *gin.Context) {
	var req account.CreateAccountRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		RespondBadRequest(ctx, "Invalid request body", gin.H{
			"fields": []FieldError{{Field: "name", Rule: "required", Message: validationMessage("required", "")}},
		})
		return
	}

	// bcrypt dominates; give it more room than a plain store call
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*storeTimeout)
	defer cancel()

	created, err := h.store.CreateAccount(cctx, req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrDuplicateEmail):
			RespondConflict(ctx, "account_exists", "An account with this email already exists")
			return
		case errors.Is(err, account.ErrPasswordTooLong):
			param := strconv.Itoa(security.MaxPasswordBytes)
			RespondError(ctx, http.StatusBadRequest, "validation_failed", "Request failed validation", gin.H{
				"fields": []FieldError{{Field: "password", Rule: "maxbytes", Param: param, Message: validationMessage("maxbytes", param)}},
			})
			return
		}
		RespondInternal(ctx, "Could not create account", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":    created.ID,
		"name":  created.Name,
		"email": created.Email,
	})
}

func (h *AccountsHandler) Login(ctx *gin.Context) {
	var req account.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*storeTimeout)
	defer cancel()

	acc, err := h.store.Authenticate(cctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			h.observe("invalid")
			RespondUnauthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}
		h.observe("error")
		RespondInternal(ctx, "Could not sign in", err)
		return
	}

	accessToken, err := h.tokens.GenerateAccessToken(acc.ID, acc.Email, acc.Name)
	if err != nil {
		h.observe("error")
		RespondInternal(ctx, "Could not generate access token", err)
		return
	}

	h.observe("success")

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
		"tokenType":   "Bearer",
		"expiresIn":   h.ttlSecs,
		"account":     acc,
	})
}

func (h *AccountsHandler) Me(ctx *gin.Context) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing or invalid access token")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	acc, err := h.store.GetAccount(cctx, caller.ID)
	if err != nil && !errors.Is(err, account.ErrInvalidID) {
		RespondInternal(ctx, "Could not fetch account", err)
		return
	}

	// a token can outlive its account
	if acc == nil {
		RespondNotFound(ctx, "Account not found")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, acc)
}

func (h *AccountsHandler) observe(result string) {
	if h.metrics != nil {
		h.metrics.ObserveLogin(result)
	}
}
