package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AliRajag51/bookstore-backend/middlewares"
	"github.com/AliRajag51/bookstore-backend/models"
	"github.com/AliRajag51/bookstore-backend/services"
	"github.com/AliRajag51/bookstore-backend/utils"
)

const (
	msgLoggedOut     = "Logged out successfully"
	msgPasswordReset = "Password reset successful"
)

type AuthController struct {
	auth     *services.AuthService
	sessions *utils.SessionIssuer
	log      *logrus.Logger
}

func NewAuthController(auth *services.AuthService, sessions *utils.SessionIssuer, log *logrus.Logger) *AuthController {
	return &AuthController{auth: auth, sessions: sessions, log: log}
}

// Register handles user registration
func (c *AuthController) Register(ctx *gin.Context) {
	var data models.RegisterData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		respondWithBindError(ctx, err)
		return
	}

	user, token, err := c.auth.Register(ctx.Request.Context(), data)
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}

	c.log.WithField("user_id", user.ID).Info("User registered")
	c.sessions.AttachToRequest(ctx, token)
	sendJSONResponse(ctx, http.StatusCreated, gin.H{"user": user.Public(), "token": token})
}

// Login handles user authentication
func (c *AuthController) Login(ctx *gin.Context) {
	var data models.LoginData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		respondWithBindError(ctx, err)
		return
	}

	user, token, err := c.auth.Login(ctx.Request.Context(), data)
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}

	c.sessions.AttachToRequest(ctx, token)
	sendJSONResponse(ctx, http.StatusOK, gin.H{"user": user.Public(), "token": token})
}

func (c *AuthController) Logout(ctx *gin.Context) {
	c.sessions.Clear(ctx)
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgLoggedOut})
}

// CheckAuth returns the user behind the current session.
func (c *AuthController) CheckAuth(ctx *gin.Context) {
	user, err := c.auth.CurrentUser(ctx.Request.Context(), middlewares.UserID(ctx))
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"user": user.Public()})
}

// ForgotPassword answers the same way whether or not the account exists.
func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondWithBindError(ctx, err)
		return
	}

	if err := c.auth.RequestReset(ctx.Request.Context(), body.Email); err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": services.MsgResetRequested})
}

func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondWithBindError(ctx, err)
		return
	}

	if err := c.auth.PerformReset(ctx.Request.Context(), body.Token, body.Password); err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgPasswordReset})
}
