package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"

	_ "github.com/tazhibayda/identity-service/docs"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gintrace.Middleware("identity-service"))
	r.Use(RequestID())
	r.Use(Metrics())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a := r.Group("/auth", h.RateLimit())
	{
		a.POST("/email_password/register", h.Register)
		a.POST("/email_password/login", h.Login)
		a.POST("/email_password/signout", h.Signout)

		a.POST("/facebook/login", h.FacebookLogin)
		a.POST("/facebook/signout", h.FacebookSignout)
	}

	return r
}
