package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/adapters/transport/http/middleware"
	appsvc "github.com/Miraines/MoonyAndStarry/blog-auth/internal/app/auth/service"
	userservice "github.com/Miraines/MoonyAndStarry/blog-auth/internal/app/user/service"
	authErrors "github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	auth   appsvc.Service
	users  userservice.Service
	checks map[string]HealthCheck
	log    *zap.Logger
}

func NewHandler(auth appsvc.Service, users userservice.Service, checks map[string]HealthCheck, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{auth: auth, users: users, checks: checks, log: log}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.health)

	auth := r.Group("/auth")
	auth.POST("/signup", h.signup)
	auth.POST("/login", h.login)

	users := r.Group("/users")
	me := users.Group("/me", middleware.RequireUser(h.auth))
	me.GET("", h.me)
	me.DELETE("", h.deleteMe)
	me.PUT("/edit", h.editProfile)
	me.PUT("/edit/email", h.editEmail)
	me.PUT("/edit/password", h.editPassword)
	users.GET("/:username", h.publicProfile)
}

func (h *Handler) signup(c *gin.Context) {
	var body dto.SignupDTO
	if !h.bind(c, &body) {
		return
	}
	tok, err := h.auth.Signup(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.log.Info("user signed up", zap.String("user_id", tok.UserID.String()))
	c.JSON(http.StatusCreated, dto.NewTokenResponse(tok))
}

func (h *Handler) login(c *gin.Context) {
	var body dto.LoginDTO
	if !h.bind(c, &body) {
		return
	}
	body.ClientIP = c.ClientIP()
	tok, err := h.auth.Login(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTokenResponse(tok))
}

func (h *Handler) me(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, dto.NewUserResponse(u))
}

func (h *Handler) publicProfile(c *gin.Context) {
	u, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPublicUserResponse(u))
}

func (h *Handler) editProfile(c *gin.Context) {
	var body dto.EditProfileDTO
	if !h.bind(c, &body) {
		return
	}
	u, _ := middleware.CurrentUser(c)
	h.respondEmpty(c, h.users.EditProfile(c.Request.Context(), u.ID, body))
}

func (h *Handler) editEmail(c *gin.Context) {
	var body dto.EditEmailDTO
	if !h.bind(c, &body) {
		return
	}
	u, _ := middleware.CurrentUser(c)
	h.respondEmpty(c, h.users.EditEmail(c.Request.Context(), u.ID, body))
}

func (h *Handler) editPassword(c *gin.Context) {
	var body dto.EditPasswordDTO
	if !h.bind(c, &body) {
		return
	}
	u, _ := middleware.CurrentUser(c)
	h.respondEmpty(c, h.users.EditPassword(c.Request.Context(), u.ID, body))
}

func (h *Handler) deleteMe(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	err := h.users.Delete(c.Request.Context(), u.ID)
	if err == nil {
		h.log.Info("user deleted", zap.String("user_id", u.ID.String()))
	}
	h.respondEmpty(c, err)
}

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{}
	code := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			status[name] = "down"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "up"
	}
	if code == http.StatusOK {
		status["status"] = "ok"
	} else {
		status["status"] = "unavailable"
	}
	c.JSON(code, status)
}

// bind decodes the JSON body; a body that does not decode is a 400.
func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": authErrors.NewInvalidArgument("malformed request body").Error()})
		return false
	}
	return true
}

func (h *Handler) respondEmpty(c *gin.Context, err error) {
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case authErrors.IsInvalidArgument(err):
		body := gin.H{"error": err.Error()}
		if fields := authErrors.ValidationFields(err); fields != nil {
			body["fields"] = fields
		}
		c.JSON(http.StatusBadRequest, body)
	case authErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "field": authErrors.ConflictField(err)})
	case authErrors.IsTooManyAttempts(err):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case authErrors.IsInvalidCredentials(err), authErrors.IsUnauthorized(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": authErrors.ErrInvalidCredentials.Error()})
	case authErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
