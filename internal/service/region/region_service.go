package region

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"regioncover/internal/geo"
	"regioncover/internal/model"
	pg "regioncover/internal/postgres"
	"regioncover/internal/service/progress"
	"regioncover/internal/service/storage"
	"regioncover/internal/store"
	"regioncover/internal/util"
)

// Options controls grid resolution and the default proximity radius.
type Options struct {
	GridSize     int
	VisitRadiusM float64
}

// VisitEvent is delivered to subscribers whenever a grid cell transitions to
// visited.
type VisitEvent struct {
	RegionID     string      `json:"region_id"`
	Key          geo.CellKey `json:"-"`
	CellKey      string      `json:"cell_key"`
	VisitedCells int         `json:"visited_cells"`
	TotalCells   int         `json:"total_cells"`
}

// regionSpatial carries a region's bounding box into the R-tree index.
type regionSpatial struct {
	id   string
	rect rtreego.Rect
}

// Bounds implements the rtreego.Spatial interface
func (r *regionSpatial) Bounds() rtreego.Rect {
	return r.rect
}

func newRegionSpatial(id string, bound *orb.Bound) (*regionSpatial, error) {
	width := bound.Max[0] - bound.Min[0]
	height := bound.Max[1] - bound.Min[1]
	// rtreego rejects zero-length edges; a degenerate bound still gets an
	// index entry, just an epsilon-sized one.
	if width <= 0 {
		width = 1e-9
	}
	if height <= 0 {
		height = 1e-9
	}

	rect, err := rtreego.NewRect(
		rtreego.Point{bound.Min[0], bound.Min[1]},
		[]float64{width, height},
	)
	if err != nil {
		return nil, err
	}
	return &regionSpatial{id: id, rect: rect}, nil
}

// RegionService is the progress store: it owns every Region, answers
// selection-driven and proximity-driven visit requests, and persists the
// visited-key sets through a VisitStore. All mutations are serialized by one
// mutex; the location feed and user selections may arrive from different
// goroutines.
type RegionService struct {
	storage storage.Storage[string, *model.Region]
	visits  store.VisitStore
	opts    Options

	mu           sync.Mutex
	spatialIndex *rtreego.Rtree
	spatials     map[string]*regionSpatial
	persisted    map[string][]geo.CellKey
	subscribers  map[string]func(VisitEvent)
}

// NewRegionService creates a service persisting through the given store.
// The service is handed to callers explicitly; there is no package-level
// instance.
func NewRegionService(visits store.VisitStore, opts Options) *RegionService {
	if opts.GridSize <= 0 {
		opts.GridSize = geo.DefaultGridSize
	}
	if opts.VisitRadiusM <= 0 {
		opts.VisitRadiusM = 100
	}

	return &RegionService{
		storage:      storage.NewMemoryStorage[string, *model.Region](),
		visits:       visits,
		opts:         opts,
		spatialIndex: rtreego.NewTree(2, 25, 50),
		spatials:     make(map[string]*regionSpatial),
		persisted:    make(map[string][]geo.CellKey),
		subscribers:  make(map[string]func(VisitEvent)),
	}
}

// InitService restores persisted visited keys and then loads every region
// boundary from PostgreSQL. The persisted mapping is loaded first so that
// each region can be reconciled as it is initialized.
func (s *RegionService) InitService(ctx context.Context) error {
	log.Println("Initializing RegionService...")
	startTime := time.Now()

	if err := s.LoadPersistedVisits(ctx); err != nil {
		// Fail-soft: progress restarts from empty rather than failing init.
		log.Printf("Could not restore visited cells, starting empty: %v", err)
	}

	db := pg.GetDB()
	if db == nil {
		log.Println("No database configured, skipping boundary load")
		return nil
	}

	var rows []*model.RegionPG
	if result := db.Find(&rows); result.Error != nil {
		return fmt.Errorf("failed to load region boundaries: %w", result.Error)
	}

	loaded := 0
	for _, row := range rows {
		if row.ID == "" || row.Name == "" {
			log.Printf("Skipping malformed region row (id=%q name=%q)", row.ID, row.Name)
			continue
		}
		boundary, err := row.Boundary()
		if err != nil {
			log.Printf("Skipping region %s: %v", row.ID, err)
			continue
		}
		s.InitializeRegion(row.ID, row.Name, row.StateCode, boundary)
		loaded++
	}

	log.Printf("Initialization complete: %d of %d regions loaded in %v",
		loaded, len(rows), time.Since(startTime))
	return nil
}

// LoadPersistedVisits loads the visited-key mapping from the visit store.
// Must run before regions are initialized for reconciliation to take effect.
func (s *RegionService) LoadPersistedVisits(ctx context.Context) error {
	visits, err := s.visits.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.persisted = make(map[string][]geo.CellKey, len(visits))
	for regionID, rawKeys := range visits {
		keys := make([]geo.CellKey, 0, len(rawKeys))
		for _, raw := range rawKeys {
			key, err := geo.ParseCellKey(raw)
			if err != nil {
				log.Printf("Dropping malformed visited key for region %s: %v", regionID, err)
				continue
			}
			keys = append(keys, key)
		}
		s.persisted[regionID] = keys
	}
	return nil
}

// InitializeRegion rasterizes the boundary, reconciles the grid with any
// persisted visited keys for the id, and registers the region. Re-running
// with the same boundary reproduces the same grid and visited flags. Records
// without an id or name are skipped.
func (s *RegionService) InitializeRegion(id, name, stateCode string, boundary orb.Geometry) *model.Region {
	if id == "" || name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Seed from the restored mapping, plus anything already visited in
	// memory so re-initialization never loses progress.
	seed := s.persisted[id]
	if existing, ok := s.storage.Get(id); ok {
		seed = append(append([]geo.CellKey{}, seed...), existing.VisitedKeys()...)
	}

	cells := geo.RasterizeGeometry(boundary, s.opts.GridSize)
	region := model.NewRegion(id, name, stateCode, boundary, cells, seed)
	s.storage.Set(id, region)
	s.indexRegion(region)

	return region
}

// indexRegion replaces the region's R-tree entry. Caller holds s.mu.
func (s *RegionService) indexRegion(region *model.Region) {
	if old, ok := s.spatials[region.ID]; ok {
		s.spatialIndex.Delete(old)
		delete(s.spatials, region.ID)
	}
	if region.Bound == nil {
		return
	}

	spatial, err := newRegionSpatial(region.ID, region.Bound)
	if err != nil {
		log.Printf("Could not index region %s: %v", region.ID, err)
		return
	}
	s.spatials[region.ID] = spatial
	s.spatialIndex.Insert(spatial)
}

// MarkVisited records a selection-driven visit. Unknown regions and
// coordinates outside the region's grid are silent no-ops.
func (s *RegionService) MarkVisited(regionID string, lat, lng float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	region, ok := s.storage.Get(regionID)
	if !ok {
		return false
	}

	key, marked := region.MarkVisited(lat, lng)
	if !marked {
		return false
	}

	s.storage.Set(regionID, region)
	s.notify(region, key)
	return true
}

// ApplyLocationUpdate marks every unvisited cell within radiusMeters of the
// location, across all regions whose bounding boxes come near it. Returns
// the number of newly visited cells. The R-tree narrows the search to
// candidate regions and the per-region lattice buckets narrow it to the
// local cell neighborhood.
func (s *RegionService) ApplyLocationUpdate(lat, lng, radiusMeters float64) int {
	if radiusMeters <= 0 {
		radiusMeters = s.opts.VisitRadiusM
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	latPad, lngPad := geo.DegreePadding(lat, radiusMeters)
	searchRect, err := rtreego.NewRect(
		rtreego.Point{lng - lngPad, lat - latPad},
		[]float64{2 * lngPad, 2 * latPad},
	)
	if err != nil {
		log.Printf("invalid search rect: %v", err)
		return 0
	}

	marked := 0
	for _, item := range s.spatialIndex.SearchIntersect(searchRect) {
		spatial := item.(*regionSpatial)
		region, ok := s.storage.Get(spatial.id)
		if !ok {
			continue
		}

		dirty := false
		for _, idx := range region.CellsNear(lat, lng, latPad, lngPad) {
			cell := &region.Cells[idx]
			if cell.Visited {
				continue
			}
			// Inclusive comparison: a cell exactly radiusMeters away counts.
			if geo.DistanceMeters(lat, lng, cell.Lat, cell.Lng) > radiusMeters {
				continue
			}
			if region.MarkVisitedKey(cell.Key()) {
				marked++
				dirty = true
				s.notify(region, cell.Key())
			}
		}
		if dirty {
			s.storage.Set(region.ID, region)
		}
	}

	return marked
}

// IsVisited reports whether the coordinate is a visited cell of the region.
func (s *RegionService) IsVisited(regionID string, lat, lng float64) bool {
	region, ok := s.storage.Get(regionID)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return region.IsVisited(lat, lng)
}

// Subscribe registers a visit-event callback and returns a token for
// Unsubscribe. Callbacks run synchronously on the mutating goroutine and
// must not call back into the service.
func (s *RegionService) Subscribe(fn func(VisitEvent)) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := util.ShortUUID()
	s.subscribers[token] = fn
	return token
}

// Unsubscribe removes a previously registered callback.
func (s *RegionService) Unsubscribe(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, token)
}

// notify delivers a visit event to all subscribers. Caller holds s.mu.
func (s *RegionService) notify(region *model.Region, key geo.CellKey) {
	if len(s.subscribers) == 0 {
		return
	}
	event := VisitEvent{
		RegionID:     region.ID,
		Key:          key,
		CellKey:      key.String(),
		VisitedCells: region.VisitedCount(),
		TotalCells:   region.TotalCells(),
	}
	for _, fn := range s.subscribers {
		fn(event)
	}
}

// FlushVisits persists the visited-key mapping if any region changed since
// the last flush. Called periodically by the flush worker.
func (s *RegionService) FlushVisits(ctx context.Context) error {
	dirty := s.storage.GetDirty()
	if len(dirty) == 0 {
		return nil
	}

	if err := s.saveAll(ctx); err != nil {
		return err
	}

	keys := make([]string, 0, len(dirty))
	for id := range dirty {
		keys = append(keys, id)
	}
	s.storage.ClearDirty(keys)

	log.Printf("Saved visited cells (%d regions changed)", len(dirty))
	return nil
}

// Flush persists unconditionally. Called on shutdown so the last recorded
// visits are never lost.
func (s *RegionService) Flush(ctx context.Context) error {
	if err := s.saveAll(ctx); err != nil {
		return err
	}

	dirty := s.storage.GetDirty()
	keys := make([]string, 0, len(dirty))
	for id := range dirty {
		keys = append(keys, id)
	}
	s.storage.ClearDirty(keys)
	return nil
}

// saveAll serializes the complete mapping. The persisted form holds only
// canonical key strings, never grid geometry.
func (s *RegionService) saveAll(ctx context.Context) error {
	s.mu.Lock()
	visits := make(map[string][]string, s.storage.Count())
	s.storage.ForEach(func(id string, region *model.Region) bool {
		keys := region.VisitedKeys()
		rawKeys := make([]string, len(keys))
		for i, key := range keys {
			rawKeys[i] = key.String()
		}
		visits[id] = rawKeys
		return true
	})
	s.mu.Unlock()

	return s.visits.Save(ctx, visits)
}

// GetRegion returns the region registered under the id.
func (s *RegionService) GetRegion(id string) (*model.Region, bool) {
	return s.storage.Get(id)
}

// Count returns the number of registered regions.
func (s *RegionService) Count() int {
	return s.storage.Count()
}

// RegionDetail is a point-in-time copy of one region's display state.
type RegionDetail struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	StateCode    string           `json:"state_code"`
	VisitedCells int              `json:"visited_cells"`
	TotalCells   int              `json:"total_cells"`
	Ratio        float64          `json:"ratio"`
	Cells        []model.GridCell `json:"cells"`
}

// Detail returns a copy of the region's cells and counters, safe to hand to
// the presentation layer while updates continue.
func (s *RegionService) Detail(id string) (RegionDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	region, ok := s.storage.Get(id)
	if !ok {
		return RegionDetail{}, false
	}

	cells := make([]model.GridCell, len(region.Cells))
	copy(cells, region.Cells)

	return RegionDetail{
		ID:           region.ID,
		Name:         region.Name,
		StateCode:    region.StateCode,
		VisitedCells: region.VisitedCount(),
		TotalCells:   region.TotalCells(),
		Ratio:        region.Ratio(),
		Cells:        cells,
	}, true
}

// Snapshot returns per-region counters for aggregation, sorted by region id.
func (s *RegionService) Snapshot() []progress.RegionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshots := make([]progress.RegionSnapshot, 0, s.storage.Count())
	s.storage.ForEach(func(id string, region *model.Region) bool {
		snapshots = append(snapshots, progress.RegionSnapshot{
			ID:           region.ID,
			Name:         region.Name,
			StateCode:    region.StateCode,
			VisitedCells: region.VisitedCount(),
			TotalCells:   region.TotalCells(),
		})
		return true
	})

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ID < snapshots[j].ID
	})
	return snapshots
}
