// Package photos stores uploaded item and claim photos and serves them
// through an in-memory read cache.
package photos

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/erazemk/findersfee/internal/apperr"
	"github.com/erazemk/findersfee/internal/imaging"
	"github.com/erazemk/findersfee/internal/metrics"
	"github.com/erazemk/findersfee/internal/model"
	"github.com/erazemk/findersfee/internal/store"
)

// RefPrefix is prepended to photo IDs to form the reference stored on items and claims.
const RefPrefix = "/api/photos/"

// Photo is a stored image.
type Photo struct {
	ID   int64
	Data []byte
	MIME string
}

// Store persists photos in the database.
type Store struct {
	DB      *sql.DB
	Imaging imaging.Options
	Logger  *slog.Logger

	cache *expirable.LRU[int64, *Photo]
}

// New returns a photo store caching up to cacheSize photos for ttl.
func New(db *sql.DB, cacheSize int, ttl time.Duration, logger *slog.Logger) *Store {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	return &Store{
		DB:     db,
		Logger: logger,
		cache:  expirable.NewLRU[int64, *Photo](cacheSize, nil, ttl),
	}
}

// Ref returns the reference for a photo ID.
func Ref(id int64) string {
	return RefPrefix + strconv.FormatInt(id, 10)
}

// ParseRef extracts the photo ID from a reference produced by Ref.
func ParseRef(ref string) (int64, bool) {
	s, ok := strings.CutPrefix(ref, RefPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Upload normalizes and stores an image, returning its reference.
func (s *Store) Upload(ctx context.Context, r io.Reader, uploader *model.Identity) (string, error) {
	if uploader == nil {
		return "", apperr.Unauthorized("sign in to upload photos")
	}

	p, err := imaging.Normalize(r, s.Imaging)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupported) || errors.Is(err, imaging.ErrTooLarge) {
			return "", apperr.Validation(err.Error())
		}
		return "", apperr.Validation("could not read image, upload a JPEG or PNG file")
	}

	id, err := store.CreatePhoto(ctx, s.DB, p.Data, p.MIME, uploader.UserID)
	if err != nil {
		return "", apperr.External("storing photo", err)
	}
	s.cache.Add(id, &Photo{ID: id, Data: p.Data, MIME: p.MIME})

	s.Logger.Info("photo uploaded", "photo_id", id, "by", uploader.UserID, "bytes", len(p.Data), "width", p.Width, "height", p.Height)
	return Ref(id), nil
}

// Get returns a photo by ID, from cache when possible.
func (s *Store) Get(ctx context.Context, id int64) (*Photo, error) {
	if p, ok := s.cache.Get(id); ok {
		metrics.PhotoCache.WithLabelValues("hit").Inc()
		return p, nil
	}
	metrics.PhotoCache.WithLabelValues("miss").Inc()

	data, mime, err := store.GetPhoto(ctx, s.DB, id)
	if err != nil {
		return nil, apperr.External("loading photo", err)
	}
	if data == nil {
		return nil, apperr.NotFound("photo not found")
	}
	p := &Photo{ID: id, Data: data, MIME: mime}
	s.cache.Add(id, p)
	return p, nil
}
