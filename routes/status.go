package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"arguematch/services"
)

// StatusSource is the read-only view the status routes need
type StatusSource interface {
	Stats() services.Stats
	Rooms() []services.RoomSummary
}

// SetupStatusRoutes registers /health, /active-users and /rooms.
func SetupStatusRoutes(router gin.IRoutes, source StatusSource) {
	started := time.Now()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(started).Round(time.Second).String(),
		})
	})

	router.GET("/active-users", func(c *gin.Context) {
		c.JSON(http.StatusOK, source.Stats())
	})

	router.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": source.Rooms()})
	})
}
