package file

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonfjz/filestore/internal/event"
	"github.com/jonfjz/filestore/internal/storage"
)

// Notifier is the side channel the pipeline reports writes to. Publishing
// cannot fail the upload: the method has no error to return.
type Notifier interface {
	Publish(ev event.UploadEvent) event.PublishStatus
}

// UploadResult is returned to the client after a successful write.
type UploadResult struct {
	EntryID string `json:"entryId"`
	AssetID string `json:"assetId"`
	Key     string `json:"key"`
	URL     string `json:"url"`
}

// Service orchestrates one upload: derive key, write durably, emit the event,
// assemble the response. It also opens stored objects for the read paths.
type Service struct {
	store          storage.Storage
	notifier       Notifier
	publicEndpoint string
	bucket         string
	log            zerolog.Logger
}

// NewService creates a file Service.
func NewService(store storage.Storage, notifier Notifier, publicEndpoint, bucket string, logger zerolog.Logger) *Service {
	return &Service{
		store:          store,
		notifier:       notifier,
		publicEndpoint: strings.TrimRight(publicEndpoint, "/"),
		bucket:         bucket,
		log:            logger.With().Str("component", "file").Logger(),
	}
}

// Upload writes the payload and notifies subscribers. The storage write is the
// only step that can fail the request; it always completes before the publish
// attempt, and the publish outcome never reaches the caller.
func (s *Service) Upload(ctx context.Context, ownerID, entryID, filename, contentType string, r io.Reader, size int64) (*UploadResult, error) {
	key := DeriveKey(ownerID, entryID, filename, time.Now())

	if err := s.store.Put(ctx, key, r, size, contentType); err != nil {
		return nil, fmt.Errorf("upload %q: %w", key, err)
	}

	publicURL := s.publicURL(key)

	status := s.notifier.Publish(event.UploadEvent{
		EventID:      uuid.NewString(),
		EntryID:      entryID,
		AssetID:      key,
		Key:          key,
		OriginalName: filename,
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
		URL:          publicURL,
	})
	s.log.Info().Str("key", key).Int64("size", size).Stringer("event", status).Msg("stored object")

	return &UploadResult{
		EntryID: entryID,
		AssetID: key,
		Key:     key,
		URL:     publicURL,
	}, nil
}

// Open returns the byte stream for a stored object.
func (s *Service) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.store.Get(ctx, key)
}

// publicURL joins the public endpoint, bucket, and key into the anonymous-read
// URL. Each key segment is escaped independently so the path separators that
// structure the key survive as separators.
func (s *Service) publicURL(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.publicEndpoint + "/" + s.bucket + "/" + strings.Join(segments, "/")
}
