package routes

import (
	"github.com/gin-gonic/gin"

	"regioncover/internal/service/progress"
	"regioncover/internal/service/region"
)

// SetupProgressHandlers registers the aggregated completion endpoints
func SetupProgressHandlers(router *gin.RouterGroup, svc *region.RegionService) {
	progressGroup := router.Group("/progress")

	progressGroup.GET("", overallProgress(svc))
	progressGroup.GET("/states", stateProgress(svc))
}

// overallProgress returns the completion ratio across all regions
func overallProgress(svc *region.RegionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"overall": progress.Overall(svc.Snapshot()),
		})
	}
}

// stateProgress returns completion ratios grouped by state code
func stateProgress(svc *region.RegionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"states": progress.ByState(svc.Snapshot()),
		})
	}
}
