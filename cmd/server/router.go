package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"arguematch/config"
	"arguematch/middlewares"
	"arguematch/routes"
	"arguematch/services"
	"arguematch/websocket"
)

func setupRouter(cfg *config.Config, hub *websocket.Hub, coordinator *services.Coordinator) *gin.Engine {
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middlewares.RequestLogger())

	if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
		log.Warn().Err(err).Msg("[server] trusted proxies")
	}

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}
	if len(cfg.Server.AllowedOrigins) == 0 || contains(cfg.Server.AllowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	routes.SetupStatusRoutes(router, coordinator)

	// WebSocket endpoint for matchmaking, signaling and debate events
	ws := websocket.NewHandler(hub, coordinator, cfg.Server.AllowedOrigins)
	router.GET("/ws", ws.ServeWS)

	return router
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
