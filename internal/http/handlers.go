package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tazhibayda/identity-service/internal/auth"
	"github.com/tazhibayda/identity-service/internal/log"
	"github.com/tazhibayda/identity-service/internal/metrics"
	"github.com/tazhibayda/identity-service/internal/queue"
	"github.com/tazhibayda/identity-service/internal/repo"
)

// Pinger is what the health endpoint needs from the store backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Auth            *auth.Service
	DB              Pinger
	Redis           *repo.Redis
	RateLimitPerMin int
	Events          queue.Publisher
}

func NewHandler(svc *auth.Service, db Pinger, rds *repo.Redis, rlPerMin int, pub queue.Publisher) *Handler {
	if pub == nil {
		pub = queue.NewNoop()
	}
	return &Handler{Auth: svc, DB: db, Redis: rds, RateLimitPerMin: rlPerMin, Events: pub}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signoutReq struct {
	ID          string `json:"_id"`
	AccessToken string `json:"accessToken"`
}

type fbLoginReq struct {
	AccessToken string `json:"accessToken"`
}

type fbSignoutReq struct {
	ID          string `json:"_id"`
	UserID      string `json:"user_id"`
	AccessToken string `json:"accessToken"`
}

type sessionResp struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

type fbSessionResp struct {
	ID          string `json:"_id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

// writeAuthError maps the error taxonomy onto HTTP statuses and the
// original wire format: {"message": ...} with the validation case
// carrying every failing field.
func writeAuthError(c *gin.Context, err error) {
	var ve *auth.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"message": ve.Fields})
		return
	}
	switch {
	case errors.Is(err, auth.ErrDuplicateEmail),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidID),
		errors.Is(err, auth.ErrInvalidExternalID):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, auth.ErrProviderUnavailable):
		log.WithDD(c.Request.Context()).Warn("identity provider unavailable", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
	default:
		log.WithDD(c.Request.Context()).Error("auth request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

func outcome(err error) string {
	var ve *auth.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "validation"
	case errors.Is(err, auth.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, auth.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, auth.ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, auth.ErrInvalidExternalID):
		return "invalid_external_id"
	case errors.Is(err, auth.ErrProviderUnavailable):
		return "provider_unavailable"
	default:
		return "internal"
	}
}

// Register godoc
// @Summary Register with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerReq true "register"
// @Success 200 {object} sessionResp
// @Failure 400 {object} map[string]any
// @Failure 500 {object} map[string]string
// @Router /auth/email_password/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	sess, err := h.Auth.Register(c.Request.Context(), in.Name, in.Email, in.Password)
	metrics.AuthAttempts.WithLabelValues("email_password", "register", outcome(err)).Inc()
	if err != nil {
		writeAuthError(c, err)
		return
	}

	go h.Events.Publish(context.Background(), queue.Exchange, queue.KeyUserRegistered,
		queue.UserRegistered{UserID: sess.ID, Email: sess.Email, Name: sess.Name},
		reqID(c))

	c.JSON(http.StatusOK, sessionResp{ID: sess.ID, Name: sess.Name, Email: sess.Email, AccessToken: sess.Token})
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} sessionResp
// @Failure 400 {object} map[string]any
// @Router /auth/email_password/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	sess, err := h.Auth.LoginLocal(c.Request.Context(), in.Email, in.Password)
	metrics.AuthAttempts.WithLabelValues("email_password", "login", outcome(err)).Inc()
	if err != nil {
		writeAuthError(c, err)
		return
	}

	go h.Events.Publish(context.Background(), queue.Exchange, queue.KeyUserLoggedIn,
		queue.UserLoggedIn{UserID: sess.ID, Email: sess.Email, Method: "email_password"},
		reqID(c))

	c.JSON(http.StatusOK, sessionResp{ID: sess.ID, Name: sess.Name, Email: sess.Email, AccessToken: sess.Token})
}

// Signout godoc
// @Summary Signout an email/password session
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body signoutReq true "signout"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]any
// @Router /auth/email_password/signout [post]
func (h *Handler) Signout(c *gin.Context) {
	var in signoutReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	err := h.Auth.SignoutLocal(c.Request.Context(), in.ID, in.AccessToken)
	metrics.AuthAttempts.WithLabelValues("email_password", "signout", outcome(err)).Inc()
	if err != nil {
		writeAuthError(c, err)
		return
	}

	go h.Events.Publish(context.Background(), queue.Exchange, queue.KeyUserSignedOut,
		queue.UserSignedOut{UserID: in.ID, Method: "email_password"},
		reqID(c))

	c.JSON(http.StatusOK, gin.H{"message": "user signed out"})
}

// FacebookLogin godoc
// @Summary Login with a Facebook access token
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body fbLoginReq true "login"
// @Success 200 {object} fbSessionResp
// @Failure 400 {object} map[string]any
// @Failure 502 {object} map[string]string
// @Router /auth/facebook/login [post]
func (h *Handler) FacebookLogin(c *gin.Context) {
	var in fbLoginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	sess, err := h.Auth.LoginExternal(c.Request.Context(), in.AccessToken)
	metrics.AuthAttempts.WithLabelValues("facebook", "login", outcome(err)).Inc()
	if err != nil {
		writeAuthError(c, err)
		return
	}

	go h.Events.Publish(context.Background(), queue.Exchange, queue.KeyUserLoggedIn,
		queue.UserLoggedIn{UserID: sess.ID, Email: sess.Email, Method: "facebook"},
		reqID(c))

	c.JSON(http.StatusOK, fbSessionResp{
		ID: sess.ID, UserID: sess.ExternalID,
		Name: sess.Name, Email: sess.Email, AccessToken: sess.Token,
	})
}

// FacebookSignout godoc
// @Summary Signout a Facebook session
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body fbSignoutReq true "signout"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]any
// @Router /auth/facebook/signout [post]
func (h *Handler) FacebookSignout(c *gin.Context) {
	var in fbSignoutReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	err := h.Auth.SignoutExternal(c.Request.Context(), in.ID, in.UserID, in.AccessToken)
	metrics.AuthAttempts.WithLabelValues("facebook", "signout", outcome(err)).Inc()
	if err != nil {
		writeAuthError(c, err)
		return
	}

	go h.Events.Publish(context.Background(), queue.Exchange, queue.KeyUserSignedOut,
		queue.UserSignedOut{UserID: in.ID, Method: "facebook"},
		reqID(c))

	c.JSON(http.StatusOK, gin.H{"message": "user signed out successfully"})
}

func (h *Handler) Healthz(c *gin.Context) {
	if h.DB != nil {
		if err := h.DB.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
