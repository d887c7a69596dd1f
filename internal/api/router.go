package api

import (
	"github.com/gin-gonic/gin"

	routes "regioncover/internal/api/handlers"
	"regioncover/internal/service/region"
)

// SetupRouter initializes all application routes
func SetupRouter(r *gin.Engine, svc *region.RegionService) {
	// API group
	api := r.Group("/api")

	// Setup main handlers
	routes.SetupMainHandlers(r.Group(""), svc)

	// Setup region and progress handlers
	routes.SetupRegionHandlers(api, svc)
	routes.SetupProgressHandlers(api, svc)
}
