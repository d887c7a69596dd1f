package routes

import (
	"github.com/gin-gonic/gin"

	"regioncover/internal/service/region"
)

// SetupMainHandlers registers the main application endpoints
func SetupMainHandlers(router *gin.RouterGroup, svc *region.RegionService) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"regions": svc.Count(),
		})
	})
}
