// Package health exposes the liveness endpoint load balancers poll.
package health

import (
	"context"
	"net/http"

	pkgredis "github.com/althea-labs/ident/internal/pkg/redis"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

func RegisterRoutes(r gin.IRouter, db *gorm.DB, rc *pkgredis.Client) {
	register(r, dbPinger(db), rc.Ping)
}

func dbPinger(db *gorm.DB) Pinger {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func register(r gin.IRouter, db, redis Pinger) {
	r.GET("/up", func(c *gin.Context) {
		ctx := c.Request.Context()
		dbOK := db(ctx) == nil
		redisOK := redis(ctx) == nil

		status := "ok"
		code := http.StatusOK
		if !dbOK || !redisOK {
			status = "degraded"
			code = http.StatusInternalServerError
		}
		c.JSON(code, gin.H{
			"status":   status,
			"database": dbOK,
			"redis":    redisOK,
		})
	})
}
