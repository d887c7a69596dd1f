package worker

import (
	"log"

	"regioncover/internal/service/region"
)

// StartAllWorkers initializes and starts all background workers
func StartAllWorkers(svc *region.RegionService) {
	log.Println("Starting all workers...")

	StartVisitFlushWorker(svc)

	log.Println("All workers started")
}
