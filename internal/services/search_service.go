package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/collectorsden/shelftrack/internal/database"
	"github.com/collectorsden/shelftrack/internal/database/repositories"
)

type SearchKind string

const (
	SearchKindItem      SearchKind = "item"
	SearchKindCharacter SearchKind = "character"
)

const (
	searchIndexTTL     = time.Minute
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// SearchResult is one ranked suggestion.
type SearchResult struct {
	Kind  SearchKind `json:"kind"`
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Score int        `json:"score"`
}

type searchEntry struct {
	kind       SearchKind
	id         int64
	name       string
	normalized string
}

// searchIndex implements fuzzy.Source over item and character names.
type searchIndex []searchEntry

func (s searchIndex) Len() int            { return len(s) }
func (s searchIndex) String(i int) string { return s[i].normalized }

// SearchService serves fuzzy name suggestions from an in-memory index
// of item and character names. The index is rebuilt on demand once it
// goes stale.
type SearchService struct {
	db *database.DB

	mu      sync.RWMutex
	index   searchIndex
	builtAt time.Time
}

func NewSearchService(db *database.DB) *SearchService {
	return &SearchService{db: db}
}

// Search returns up to limit ranked matches for the query. An empty
// query yields no results.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = normalizeSearchTerm(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	index, err := s.currentIndex(ctx)
	if err != nil {
		return nil, err
	}
	return searchFrom(index, query, limit), nil
}

// Refresh rebuilds the index immediately, regardless of age.
func (s *SearchService) Refresh(ctx context.Context) error {
	index, err := s.buildIndex(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.index = index
	s.builtAt = time.Now()
	s.mu.Unlock()
	return nil
}

func (s *SearchService) currentIndex(ctx context.Context) (searchIndex, error) {
	s.mu.RLock()
	index, builtAt := s.index, s.builtAt
	s.mu.RUnlock()

	if index != nil && time.Since(builtAt) < searchIndexTTL {
		return index, nil
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index, nil
}

func (s *SearchService) buildIndex(ctx context.Context) (searchIndex, error) {
	idb := s.db.BunDB()

	items, err := repositories.NewItemRepository(idb).ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load item names: %w", err)
	}
	chars, err := repositories.NewCharacterRepository(idb).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load character names: %w", err)
	}

	index := make(searchIndex, 0, len(items)+len(chars))
	for _, item := range items {
		index = append(index, searchEntry{
			kind:       SearchKindItem,
			id:         item.ID,
			name:       item.Name,
			normalized: normalizeSearchTerm(item.Name),
		})
	}
	for _, character := range chars {
		index = append(index, searchEntry{
			kind:       SearchKindCharacter,
			id:         character.ID,
			name:       character.Name,
			normalized: normalizeSearchTerm(character.Name),
		})
	}
	return index, nil
}

// searchFrom runs the fuzzy match over the index. Results come back in
// relevance order, best first.
func searchFrom(index searchIndex, query string, limit int) []SearchResult {
	matches := fuzzy.FindFrom(query, index)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]SearchResult, 0, len(matches))
	for _, match := range matches {
		entry := index[match.Index]
		results = append(results, SearchResult{
			Kind:  entry.kind,
			ID:    entry.id,
			Name:  entry.name,
			Score: match.Score,
		})
	}
	return results
}

// normalizeSearchTerm lowercases, maps underscores and hyphens to
// spaces, and collapses runs of whitespace.
func normalizeSearchTerm(term string) string {
	normalized := strings.ReplaceAll(term, "_", " ")
	normalized = strings.ReplaceAll(normalized, "-", " ")
	normalized = strings.ToLower(normalized)
	return strings.Join(strings.Fields(normalized), " ")
}
