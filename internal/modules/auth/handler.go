package auth

import (
	"errors"

	"github.com/althea-labs/ident/internal/middleware"
	"github.com/althea-labs/ident/internal/modules/user"
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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.POST("/sign_up", h.signUp)
	a.POST("/sign_in", h.signIn)
	a.DELETE("/sign_out", authMW, h.signOut)
}

func (h *Handler) signUp(c *gin.Context) {
	var dto SignUpDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.SignUp(c.Request.Context(), &dto)
	if err != nil {
		var vErr *validate.Error
		if errors.As(err, &vErr) {
			response.UnprocessableEntity(c, vErr.Messages)
			return
		}
		h.log.Error("sign up failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Created(c, gin.H{"user": user.ToResponse(u)})
}

func (h *Handler) signIn(c *gin.Context) {
	var dto SignInDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, token, err := h.svc.SignIn(c.Request.Context(), &dto)
	if err != nil {
		if errors.Is(err, errInvalidCredentials) {
			response.UnauthorizedMsg(c, "Invalid email or password")
			return
		}
		h.log.Error("sign in failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	c.Header("Authorization", "Bearer "+token)
	response.OK(c, gin.H{"user": user.ToResponse(u), "token": token})
}

func (h *Handler) signOut(c *gin.Context) {
	if err := h.svc.SignOut(c.Request.Context(), middleware.CurrentClaims(c)); err != nil {
		h.log.Error("sign out failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.NoContent(c)
}
