// boundary-importer loads a GeoJSON FeatureCollection of region boundaries
// (census-style county features with GEOID/NAME/STATEFP properties) into the
// regions table, where the server picks them up at startup.
package main

import (
	"flag"
	"log"
	"os"

	"gorm.io/gorm"

	"regioncover/internal/config"
	"regioncover/internal/loader"
	"regioncover/internal/postgres"
)

func main() {
	var file string
	flag.StringVar(&file, "file", "", "path to a GeoJSON FeatureCollection of region boundaries")
	flag.Parse()

	if file == "" {
		log.Fatal("usage: boundary-importer -file boundaries.geojson")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", file, err)
	}

	features, err := loader.ParseFeatureCollection(data)
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", file, err)
	}
	log.Printf("Parsed %d boundary features from %s", len(features), file)

	db := postgres.Init(cfg.DBUrl)

	imported := 0
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, feature := range features {
			row, err := feature.ToPG()
			if err != nil {
				log.Printf("Skipping %s: %v", feature.ID, err)
				continue
			}
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Imported %d of %d boundary features", imported, len(features))
}
