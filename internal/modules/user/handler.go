package user

import (
	"errors"

	"github.com/althea-labs/ident/internal/middleware"
	"github.com/althea-labs/ident/internal/pkg/response"
	"github.com/althea-labs/ident/internal/pkg/validate"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

// RegisterRoutes mounts the profile endpoints. Everything under
// /users/me requires a live token.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	me := rg.Group("/users/me", authMW)
	me.GET("", h.show)
	me.PATCH("", h.update)
	me.PATCH("/email", h.changeEmail)
	me.PATCH("/password", h.changePassword)
}

func (h *Handler) show(c *gin.Context) {
	response.OK(c, gin.H{"user": ToResponse(middleware.CurrentUser(c))})
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateProfileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c), &dto)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, gin.H{"user": ToResponse(u)})
}

func (h *Handler) changeEmail(c *gin.Context) {
	var dto ChangeEmailDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.ChangeEmail(c.Request.Context(), middleware.CurrentUser(c), &dto)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, gin.H{"user": ToResponse(u)})
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, token, err := h.svc.ChangePassword(c.Request.Context(), middleware.CurrentUser(c), &dto)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Authorization", "Bearer "+token)
	response.OK(c, gin.H{"user": ToResponse(u), "token": token})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var vErr *validate.Error
	switch {
	case errors.As(err, &vErr):
		response.UnprocessableEntity(c, vErr.Messages)
	case errors.Is(err, errCredentialRequired):
		response.UnauthorizedMsg(c, "current_password is required")
	case errors.Is(err, errInvalidCredential):
		response.UnauthorizedMsg(c, "current password is incorrect")
	default:
		h.log.Error("account request failed", zap.Error(err))
		response.InternalError(c)
	}
}
