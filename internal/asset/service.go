// Package asset builds the paginated catalog view of an owner's stored
// objects from the raw, unordered bucket listing.
package asset

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonfjz/filestore/internal/storage"
)

// Item is one catalog entry, derived from a storage key of the form
// <ownerId>/<entryId>/<millis>-<filename>.
type Item struct {
	AssetID      string    `json:"assetId"`
	EntryID      string    `json:"entryId"`
	Filename     string    `json:"filename"`
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// Page is one window of the catalog, recomputed from a fresh listing on every
// request. Nothing is cached, so pages can shift between calls if the
// underlying set changes.
type Page struct {
	Items      []Item `json:"items"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
}

// Service lists and paginates an owner's namespace.
type Service struct {
	store storage.Storage
	log   zerolog.Logger
}

// NewService creates an asset Service.
func NewService(store storage.Storage, logger zerolog.Logger) *Service {
	return &Service{store: store, log: logger.With().Str("component", "asset").Logger()}
}

// List drains the owner's full listing into memory, orders it newest-first
// (ties broken by key so the order is reproducible), and returns the requested
// window. A page past the end yields empty items with the totals intact.
// Draining before sorting is a known scaling limit, acceptable for the
// per-owner namespace sizes this service is built for.
func (s *Service) List(ctx context.Context, ownerID string, page, pageSize int) (*Page, error) {
	prefix := ownerID + "/"

	var items []Item
	for entry := range s.store.List(ctx, prefix) {
		if entry.Err != nil {
			return nil, fmt.Errorf("list assets for %q: %w", ownerID, entry.Err)
		}
		item, ok := parseKey(entry)
		if !ok {
			s.log.Warn().Str("key", entry.Key).Msg("skipping object with unparseable key")
			continue
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].LastModified.Equal(items[j].LastModified) {
			return items[i].LastModified.After(items[j].LastModified)
		}
		return items[i].Key < items[j].Key
	})

	total := len(items)
	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	window := items[start:end]
	if window == nil {
		window = []Item{}
	}

	return &Page{
		Items:      window,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// parseKey splits <ownerId>/<entryId>/<millis>-<filename> into catalog fields.
// The filename is the last segment with its timestamp prefix stripped.
func parseKey(entry storage.ObjectEntry) (Item, bool) {
	parts := strings.SplitN(entry.Key, "/", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return Item{}, false
	}

	filename := parts[2]
	if i := strings.Index(filename, "-"); i >= 0 {
		filename = filename[i+1:]
	}

	return Item{
		AssetID:      entry.Key,
		EntryID:      parts[1],
		Filename:     filename,
		Key:          entry.Key,
		Size:         entry.Size,
		LastModified: entry.LastModified,
	}, true
}
