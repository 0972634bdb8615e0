package restapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// SetupRouter builds the read-only inspection API. accessLog may be nil.
func SetupRouter(handler *ConfigHandler, accessLog *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if accessLog != nil {
		router.Use(AccessLog(accessLog))
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/config", handler.GetConfig)
		v1.GET("/networks", handler.ListNetworks)
		v1.GET("/networks/:name", handler.GetNetwork)
		v1.GET("/networks/:name/probe", handler.ProbeNetwork)
	}

	return router
}
