package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/auth-service/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/auth-service/internal/domain/models"
	"github.com/Temutjin2k/auth-service/pkg/logger"
	wrap "github.com/Temutjin2k/auth-service/pkg/logger/wrapper"
	"github.com/Temutjin2k/auth-service/pkg/validator"
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.PublicIdentity, error)
	Login(ctx context.Context, username, password string) (*models.AccessToken, error)
}

type Auth struct {
	auth AuthService
	l    logger.Logger
}

func NewAuth(service AuthService, l logger.Logger) *Auth {
	return &Auth{
		auth: service,
		l:    l,
	}
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates an account. The password is stored only as a bcrypt hash.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterUserRequest true "User registration details"
// @Success      201 {object} dto.MessageResponse
// @Failure      400 {object} dto.ErrorResponse "Malformed body"
// @Failure      409 {object} dto.ErrorResponse "Username already taken"
// @Failure      422 {object} dto.ErrorResponse "Validation error"
// @Failure      500 {object} dto.ErrorResponse
// @Router       /register [post]
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "register_user")

	req := &dto.RegisterUserRequest{}
	if err := readJSON(w, r, req); err != nil {
		h.l.Debug(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	if _, err := h.auth.Register(ctx, req.ToModel()); err != nil {
		h.logServiceError(ctx, err, "failed to register a new user")
		serviceErrorResponse(w, err)
		return
	}

	response := dto.MessageResponse{Message: "User registered successfully"}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w)
	}
}

// Login godoc
// @Summary      User login
// @Description  Exchanges username and password for a bearer token. Accepts the OAuth2 password form or JSON.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Accept       json
// @Produce      json
// @Param        username   formData string true  "Username"
// @Param        password   formData string true  "Password"
// @Param        grant_type formData string false "Must be \"password\" when present"
// @Success      200 {object} dto.TokenResponse
// @Failure      400 {object} dto.ErrorResponse "Malformed body"
// @Failure      401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure      422 {object} dto.ErrorResponse "Missing fields"
// @Failure      500 {object} dto.ErrorResponse
// @Router       /login [post]
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "login_user")

	req := &dto.LoginRequest{}
	if isForm(r) {
		if err := readForm(w, r); err != nil {
			badRequestResponse(w, err.Error())
			return
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
		req.GrantType = r.PostFormValue("grant_type")
	} else if err := readJSON(w, r, req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	dto.ValidateLogin(v, req)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	ctx = wrap.WithUsername(ctx, req.Username)

	token, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.logServiceError(ctx, err, "failed to login user")
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, dto.NewTokenResponse(token), nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w)
	}
}

// Me godoc
// @Summary      Current identity
// @Description  Returns the public profile of the bearer of the token.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} models.PublicIdentity
// @Failure      401 {object} dto.ErrorResponse "Missing, invalid or expired token"
// @Failure      500 {object} dto.ErrorResponse
// @Router       /me [get]
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_me")

	identity := models.IdentityFromContext(ctx)
	if identity == nil {
		unauthorizedResponse(w, "not authenticated")
		return
	}

	if err := writeJSON(w, http.StatusOK, identity, nil); err != nil {
		h.l.Error(ctx, "failed to write JSON response", err)
		internalErrorResponse(w)
	}
}

// logServiceError logs server faults at error level. Rejections caused by the
// caller are routine and only logged at debug.
func (h *Auth) logServiceError(ctx context.Context, err error, msg string) {
	if GetCode(err) == http.StatusInternalServerError {
		h.l.Error(wrap.ErrorCtx(ctx, err), msg, err)
		return
	}
	h.l.Debug(wrap.ErrorCtx(ctx, err), msg, "reason", err.Error())
}
