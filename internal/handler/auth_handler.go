package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spendwise/api/internal/apperr"
	"github.com/spendwise/api/internal/command"
	"github.com/spendwise/api/internal/middleware"
	"github.com/spendwise/api/internal/models"
	"github.com/spendwise/api/internal/query"
)

// AuthCommander defines the write-side operations used by AuthHandler.
type AuthCommander interface {
	SignUp(ctx context.Context, cmd command.SignUpCommand) (*models.UserView, error)
	VerifyOTP(ctx context.Context, cmd command.VerifyOTPCommand) (*models.UserView, error)
	ResendOTP(ctx context.Context, cmd command.ResendOTPCommand) error
	ChangePassword(ctx context.Context, cmd command.ChangePasswordCommand) error
}

// AuthQuerier defines the read-side operations used by AuthHandler.
type AuthQuerier interface {
	SignIn(q query.SignInQuery) (*models.UserView, string, error)
	Me(userID string) (*models.UserView, error)
}

type AuthHandler struct {
	commands        AuthCommander
	queries         AuthQuerier
	cookieMaxAgeSec int
}

type SignUpRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

func NewAuthHandler(commands AuthCommander, queries AuthQuerier, cookieMaxAgeSec int) *AuthHandler {
	return &AuthHandler{commands: commands, queries: queries, cookieMaxAgeSec: cookieMaxAgeSec}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fieldErrors := middleware.ValidateRequest(req); fieldErrors != nil {
		middleware.RespondWithValidationError(c, fieldErrors)
		return
	}

	user, err := h.commands.SignUp(c.Request.Context(), command.SignUpCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusCreated, "User created successfully. A verification code has been sent to your email.", user)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fieldErrors := middleware.ValidateRequest(req); fieldErrors != nil {
		middleware.RespondWithValidationError(c, fieldErrors)
		return
	}

	user, signed, err := h.queries.SignIn(query.SignInQuery{Email: req.Email, Password: req.Password})
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("token", signed, h.cookieMaxAgeSec, "/", "", false, true)
	middleware.Respond(c, http.StatusOK, "User signed in successfully", gin.H{
		"user":  user,
		"token": signed,
	})
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	middleware.Respond(c, http.StatusOK, "User signed out successfully", nil)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fieldErrors := middleware.ValidateRequest(req); fieldErrors != nil {
		middleware.RespondWithValidationError(c, fieldErrors)
		return
	}

	user, err := h.commands.VerifyOTP(c.Request.Context(), command.VerifyOTPCommand{
		Email: req.Email,
		Code:  req.OTP,
	})
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "Email verified successfully", user)
}

func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fieldErrors := middleware.ValidateRequest(req); fieldErrors != nil {
		middleware.RespondWithValidationError(c, fieldErrors)
		return
	}

	if err := h.commands.ResendOTP(c.Request.Context(), command.ResendOTPCommand{Email: req.Email}); err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "A new verification code has been sent to your email.", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		middleware.RespondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	user, err := h.queries.Me(ident.ID)
	if err != nil {
		if errors.Is(err, apperr.NotFound("")) {
			middleware.RespondError(c, http.StatusUnauthorized, "User not found")
			return
		}
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "Current user fetched successfully", user)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		middleware.RespondError(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fieldErrors := middleware.ValidateRequest(req); fieldErrors != nil {
		middleware.RespondWithValidationError(c, fieldErrors)
		return
	}

	err := h.commands.ChangePassword(c.Request.Context(), command.ChangePasswordCommand{
		UserID:          ident.ID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		middleware.RespondAppError(c, err)
		return
	}

	middleware.Respond(c, http.StatusOK, "Password changed successfully", nil)
}
