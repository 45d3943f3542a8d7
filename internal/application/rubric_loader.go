package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-ballot/internal/domain"
)

// RubricLoader parses, validates and caches scoring rubrics. A rubric
// document overlays the built-in rubric: scalars and lists replace the
// defaults and maps are merged key by key, so a file only needs to name
// what it changes.
type RubricLoader struct {
	validator *validator.Validate
	// cache stores validated rubrics indexed by the SHA256 of their
	// normalized YAML.
	// WARNING: Cached rubrics share their maps with every caller and MUST
	// NOT be mutated.
	cache   map[string]domain.Rubric
	cacheMu sync.RWMutex
	// sf prevents validating the same rubric twice when several goroutines
	// load it at once.
	sf singleflight.Group
}

// NewRubricLoader creates a loader with the rubric validators registered.
func NewRubricLoader() (*RubricLoader, error) {
	v := validator.New()
	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	return &RubricLoader{
		validator: v,
		cache:     make(map[string]domain.Rubric),
	}, nil
}

// LoadFromFile loads a rubric from a YAML file.
func (rl *RubricLoader) LoadFromFile(ctx context.Context, path string) (domain.Rubric, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return domain.Rubric{}, fmt.Errorf("failed to read file: %w", err)
	}
	return rl.load(ctx, data)
}

// LoadFromReader loads a rubric from r.
func (rl *RubricLoader) LoadFromReader(ctx context.Context, r io.Reader) (domain.Rubric, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Rubric{}, fmt.Errorf("failed to read data: %w", err)
	}
	return rl.load(ctx, data)
}

// Validate runs the struct-tag and cross-field checks on rubric without
// caching it.
func (rl *RubricLoader) Validate(rubric domain.Rubric) error {
	if err := rl.validator.Struct(rubric); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRubric, err)
	}
	if err := rubric.Check(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRubric, err)
	}
	return nil
}

// load parses data, then validates it at most once per distinct rubric.
func (rl *RubricLoader) load(ctx context.Context, data []byte) (domain.Rubric, error) {
	if err := ctx.Err(); err != nil {
		return domain.Rubric{}, err
	}

	rubric, err := rl.parseYAML(data)
	if err != nil {
		return domain.Rubric{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Hash the normalized rubric, not the raw bytes, so formatting and
	// comments do not defeat the cache.
	hash, err := calculateRubricHash(rubric)
	if err != nil {
		return domain.Rubric{}, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := rl.sf.Do(hash, func() (any, error) {
		if cached, ok := rl.getCached(hash); ok {
			return cached, nil
		}
		if err := rl.Validate(rubric); err != nil {
			return nil, err
		}
		rl.setCached(hash, rubric)
		return rubric, nil
	})
	if err != nil {
		return domain.Rubric{}, err
	}
	return v.(domain.Rubric), nil
}

// parseYAML decodes data over DefaultRubric. Unknown keys are rejected.
func (rl *RubricLoader) parseYAML(data []byte) (domain.Rubric, error) {
	rubric := domain.DefaultRubric()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rubric); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Rubric{}, fmt.Errorf("empty rubric document")
		}
		return domain.Rubric{}, err
	}
	return rubric, nil
}

// calculateRubricHash returns the hex SHA256 of the rubric re-encoded as
// YAML. yaml.v3 sorts map keys, so equal rubrics hash equally.
func calculateRubricHash(rubric domain.Rubric) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(rubric); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

func (rl *RubricLoader) getCached(hash string) (domain.Rubric, bool) {
	rl.cacheMu.RLock()
	defer rl.cacheMu.RUnlock()
	r, ok := rl.cache[hash]
	return r, ok
}

func (rl *RubricLoader) setCached(hash string, rubric domain.Rubric) {
	rl.cacheMu.Lock()
	defer rl.cacheMu.Unlock()
	rl.cache[hash] = rubric
}

// CacheSize returns the number of cached rubrics.
func (rl *RubricLoader) CacheSize() int {
	rl.cacheMu.RLock()
	defer rl.cacheMu.RUnlock()
	return len(rl.cache)
}

// ClearCache removes every cached rubric.
func (rl *RubricLoader) ClearCache() {
	rl.cacheMu.Lock()
	defer rl.cacheMu.Unlock()
	rl.cache = make(map[string]domain.Rubric)
}
