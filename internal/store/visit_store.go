// Package store persists the visited-cell state: a single JSON document
// mapping region id to its visited canonical coordinate keys. Only keys are
// stored, never grid geometry; grids are regenerated deterministically from
// the boundary at load time.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

// VisitedCellsKey is the fixed name of the single persisted entry.
const VisitedCellsKey = "VisitedCells"

// VisitStore reads and writes the {regionID -> ["lat,lng", ...]} mapping.
// Load never fails hard on missing or corrupt data: the worst outcome of a
// bad payload is starting over with an empty mapping.
type VisitStore interface {
	Load(ctx context.Context) (map[string][]string, error)
	Save(ctx context.Context, visits map[string][]string) error
}

// RedisVisitStore keeps the mapping as a JSON string under VisitedCellsKey.
type RedisVisitStore struct {
	client *redis.Client
}

// NewRedisVisitStore creates a store backed by the given Redis client.
func NewRedisVisitStore(client *redis.Client) *RedisVisitStore {
	return &RedisVisitStore{client: client}
}

func (s *RedisVisitStore) Load(ctx context.Context) (map[string][]string, error) {
	payload, err := s.client.Get(ctx, VisitedCellsKey).Result()
	if errors.Is(err, redis.Nil) {
		return map[string][]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s from Redis: %w", VisitedCellsKey, err)
	}
	return decodeVisits([]byte(payload)), nil
}

func (s *RedisVisitStore) Save(ctx context.Context, visits map[string][]string) error {
	payload, err := json.Marshal(visits)
	if err != nil {
		return fmt.Errorf("failed to marshal visited cells: %w", err)
	}
	if err := s.client.Set(ctx, VisitedCellsKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s to Redis: %w", VisitedCellsKey, err)
	}
	return nil
}

// FileVisitStore keeps the mapping as a JSON file. Used when no Redis URL is
// configured.
type FileVisitStore struct {
	path string
}

// NewFileVisitStore creates a store writing to the given file path.
func NewFileVisitStore(path string) *FileVisitStore {
	return &FileVisitStore{path: path}
}

func (s *FileVisitStore) Load(ctx context.Context) (map[string][]string, error) {
	payload, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string][]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return decodeVisits(payload), nil
}

func (s *FileVisitStore) Save(ctx context.Context, visits map[string][]string) error {
	payload, err := json.Marshal(visits)
	if err != nil {
		return fmt.Errorf("failed to marshal visited cells: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// decodeVisits treats corrupt payloads as empty rather than fatal.
func decodeVisits(payload []byte) map[string][]string {
	visits := make(map[string][]string)
	if err := json.Unmarshal(payload, &visits); err != nil {
		log.Printf("Corrupt visited-cells payload, starting with empty state: %v", err)
		return map[string][]string{}
	}
	return visits
}
