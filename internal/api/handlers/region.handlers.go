package routes

import (
	"log"

	"github.com/gin-gonic/gin"

	"regioncover/internal/service/region"
)

type visitRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type locationRequest struct {
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	RadiusM   float64  `json:"radius_m"`
	Timestamp int64    `json:"timestamp"`
}

// SetupRegionHandlers registers the region and location-feed endpoints
func SetupRegionHandlers(router *gin.RouterGroup, svc *region.RegionService) {
	regionGroup := router.Group("/regions")

	regionGroup.GET("", listRegions(svc))
	regionGroup.GET("/:id", getRegion(svc))
	regionGroup.POST("/:id/visit", markVisited(svc))

	router.POST("/location", applyLocation(svc))
}

// listRegions returns per-region progress counters
func listRegions(svc *region.RegionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"regions": svc.Snapshot(),
		})
	}
}

// getRegion returns one region's full cell grid with visited flags
func getRegion(svc *region.RegionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, ok := svc.Detail(c.Param("id"))
		if !ok {
			c.JSON(404, gin.H{
				"status":  "error",
				"message": "region not found",
			})
			return
		}
		c.JSON(200, detail)
	}
}

// markVisited handles a selection-driven visit of a single cell
func markVisited(svc *region.RegionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req visitRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Lat == nil || req.Lng == nil {
			c.JSON(400, gin.H{
				"status":  "error",
				"message": "lat and lng are required",
			})
			return
		}

		marked := svc.MarkVisited(c.Param("id"), *req.Lat, *req.Lng)
		c.JSON(200, gin.H{
			"status": "success",
			"marked": marked,
		})
	}
}

// applyLocation handles one event from the live-location feed
func applyLocation(svc *region.RegionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req locationRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Lat == nil || req.Lng == nil {
			c.JSON(400, gin.H{
				"status":  "error",
				"message": "lat and lng are required",
			})
			return
		}

		marked := svc.ApplyLocationUpdate(*req.Lat, *req.Lng, req.RadiusM)
		if marked > 0 {
			log.Printf("Location update marked %d cells visited", marked)
		}
		c.JSON(200, gin.H{
			"status": "success",
			"marked": marked,
		})
	}
}
