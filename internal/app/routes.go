package app

import (
	"github.com/althea-labs/ident/internal/middleware"
	"github.com/althea-labs/ident/internal/modules/auth"
	"github.com/althea-labs/ident/internal/modules/health"
	"github.com/althea-labs/ident/internal/modules/user"
	"github.com/althea-labs/ident/internal/pkg/denylist"
	"github.com/althea-labs/ident/internal/pkg/jwt"
	"github.com/althea-labs/ident/internal/pkg/mail"
	"github.com/althea-labs/ident/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes() {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	tokens := jwt.NewIssuer(a.cfg.JWTSecret, a.cfg.TokenTTL.Value())
	ledger := denylist.New(a.rc)
	users := user.NewRepository(a.db)
	authMW := middleware.Auth(middleware.NewGuard(tokens, ledger, users))
	mailer := mail.New(a.cfg.Mail)

	health.RegisterRoutes(r, a.db, a.rc)

	api := r.Group(apiPrefix)
	auth.NewHandler(auth.NewService(users, tokens, ledger), a.logger).RegisterRoutes(api, authMW)
	user.NewHandler(user.NewService(users, tokens, mailer, a.logger), a.logger).RegisterRoutes(api, authMW)
}
