package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"slices"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"github.com/ovaphlow/pitchfork/service-ats/internal/catalog/entity"
	"github.com/ovaphlow/pitchfork/service-ats/internal/catalog/repo"
)

//go:embed defaults.yaml
var defaultSeed []byte

// Service exposes the read-mostly lookup catalogs.
type Service struct {
	repo *repo.Repo
}

func NewService(db *sqlx.DB) *Service {
	return &Service{repo: repo.NewRepo(db)}
}

// List returns the entries of one catalog.
func (s *Service) List(ctx context.Context, kind entity.Kind) ([]entity.Type, error) {
	return s.repo.List(ctx, kind)
}

// MissingIDs returns the ids (deduplicated, in first-seen order) that do not
// exist in the catalog.
func (s *Service) MissingIDs(ctx context.Context, kind entity.Kind, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var uniq []int64
	for _, id := range ids {
		if !slices.Contains(uniq, id) {
			uniq = append(uniq, id)
		}
	}
	found, err := s.repo.ExistingIDs(ctx, kind, uniq)
	if err != nil {
		return nil, err
	}
	var missing []int64
	for _, id := range uniq {
		if !slices.Contains(found, id) {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// Seed inserts the names of every catalog in seed, skipping existing ones.
// It returns how many rows were added.
func (s *Service) Seed(ctx context.Context, seed entity.Seed) (int, error) {
	added := 0
	for _, kind := range entity.Kinds {
		for _, name := range seed[kind] {
			ok, err := s.repo.Insert(ctx, kind, name)
			if err != nil {
				return added, fmt.Errorf("seed %s %q: %w", kind, name, err)
			}
			if ok {
				added++
			}
		}
	}
	return added, nil
}

// LoadSeed parses a YAML document keyed by catalog table name.
func LoadSeed(r io.Reader) (entity.Seed, error) {
	seed := entity.Seed{}
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for kind := range seed {
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown catalog %q", kind)
		}
	}
	return seed, nil
}

// DefaultSeed returns the built-in catalogs.
func DefaultSeed() entity.Seed {
	var seed entity.Seed
	if err := yaml.Unmarshal(defaultSeed, &seed); err != nil {
		panic(fmt.Sprintf("embedded catalog seed: %v", err))
	}
	return seed
}
