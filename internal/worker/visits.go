package worker

import (
	"context"
	"log"
	"time"

	"regioncover/internal/config"
	"regioncover/internal/service/region"
)

// StartVisitFlushWorker starts the worker that persists dirty visited-cell
// state to the visit store
func StartVisitFlushWorker(svc *region.RegionService) {
	ticker := time.NewTicker(config.VisitFlushInterval)
	go func() {
		for range ticker.C {
			if err := svc.FlushVisits(context.Background()); err != nil {
				log.Printf("Error flushing visited cells: %v", err)
			}
		}
	}()

	log.Println("Visit flush worker started with interval:", config.VisitFlushInterval)
}
