package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Store is the unified two-tier content store. All reads prefer the remote
// tier when one is configured; an object found only locally is promoted to
// the remote tier in the background so both sides converge. Writes are
// best-effort on each tier and never fail the business operation that
// triggered them.
type Store struct {
	local  *Local
	remote Remote
	log    zerolog.Logger
}

// New builds a Store. The remote tier may be nil, in which case the store
// degrades to local-only operation.
func New(local *Local, remote Remote, log zerolog.Logger) *Store {
	return &Store{local: local, remote: remote, log: log.With().Str("component", "storage").Logger()}
}

// Local exposes the filesystem tier for callers that need direct paths,
// such as scratch-file handling during ingestion.
func (s *Store) Local() *Local { return s.local }

// RemoteAvailable reports whether a remote tier is configured.
func (s *Store) RemoteAvailable() bool { return s.remote != nil }

// Exists reports presence in either tier, remote first.
func (s *Store) Exists(ctx context.Context, key string) bool {
	if s.remote != nil {
		ok, err := s.remote.Exists(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("remote existence probe failed")
		} else if ok {
			return true
		}
	}
	return s.local.Exists(key)
}

// Read fetches an object, preferring the remote tier. When the object is
// found only locally and a remote tier is configured, the bytes are
// promoted asynchronously. Returns nil when absent from both tiers.
func (s *Store) Read(ctx context.Context, key string) []byte {
	if s.remote != nil {
		data, err := s.remote.Get(ctx, key)
		if err == nil && len(data) > 0 {
			return data
		}
		if err != nil && !errors.Is(err, ErrRemoteNotFound) {
			s.log.Warn().Err(err).Str("key", key).Msg("remote read failed")
		}
	}
	data, err := s.local.Read(key)
	if err != nil || len(data) == 0 {
		return nil
	}
	s.Promote(key, data, contentTypeFor(key))
	return data
}

// ReadAny behaves like Read but also probes legacy local key layouts.
// Candidates are tried in order against the local tier; only the canonical
// key (the first candidate) is consulted remotely and used for promotion.
func (s *Store) ReadAny(ctx context.Context, candidates ...string) []byte {
	if len(candidates) == 0 {
		return nil
	}
	canonical := candidates[0]
	if s.remote != nil {
		data, err := s.remote.Get(ctx, canonical)
		if err == nil && len(data) > 0 {
			return data
		}
		if err != nil && !errors.Is(err, ErrRemoteNotFound) {
			s.log.Warn().Err(err).Str("key", canonical).Msg("remote read failed")
		}
	}
	if _, data, ok := s.local.FindFirst(candidates...); ok {
		s.Promote(canonical, data, contentTypeFor(canonical))
		return data
	}
	return nil
}

// Write stores the object in both tiers. Tier failures are logged and the
// first one is returned so callers may decide whether to surface it; most
// treat artifact writes as best-effort.
func (s *Store) Write(ctx context.Context, key string, data []byte, contentType string) error {
	var first error
	if err := s.local.Write(key, data); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("local write failed")
		first = err
	}
	if s.remote != nil {
		if err := s.remote.Put(ctx, key, data, contentType); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("remote write failed")
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// WriteRemote stores the object in the remote tier only. Used for catalog
// replication, where the local file already is the source of truth.
func (s *Store) WriteRemote(ctx context.Context, key string, data []byte, contentType string) error {
	if s.remote == nil {
		return nil
	}
	return s.remote.Put(ctx, key, data, contentType)
}

// ReadRemote fetches from the remote tier only. Returns nil when the tier
// is unconfigured or the object is absent.
func (s *Store) ReadRemote(ctx context.Context, key string) []byte {
	if s.remote == nil {
		return nil
	}
	data, err := s.remote.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrRemoteNotFound) {
			s.log.Warn().Err(err).Str("key", key).Msg("remote read failed")
		}
		return nil
	}
	return data
}

// ReadURL returns a pre-signed remote URL for the key, or "" when no remote
// tier is configured or the object is absent there.
func (s *Store) ReadURL(ctx context.Context, key string, ttl time.Duration) string {
	if s.remote == nil {
		return ""
	}
	ok, err := s.remote.Exists(ctx, key)
	if err != nil || !ok {
		return ""
	}
	url, err := s.remote.PresignGet(ctx, key, ttl)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("presign failed")
		return ""
	}
	return url
}

// List enumerates remote keys under a prefix. Returns nil when the remote
// tier is unconfigured or listing fails.
func (s *Store) List(ctx context.Context, prefix string) []string {
	if s.remote == nil {
		return nil
	}
	keys, err := s.remote.List(ctx, prefix)
	if err != nil {
		s.log.Warn().Err(err).Str("prefix", prefix).Msg("remote list failed")
		return nil
	}
	return keys
}

// Promote copies bytes to the remote tier in the background. Failures only
// log; the caller already holds the data and is never blocked.
func (s *Store) Promote(key string, data []byte, contentType string) {
	if s.remote == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		ok, err := s.remote.Exists(ctx, key)
		if err != nil || ok {
			return
		}
		if err := s.remote.Put(ctx, key, data, contentType); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("tier promotion failed")
			return
		}
		s.log.Info().Str("key", key).Msg("promoted object to remote tier")
	}()
}

func contentTypeFor(key string) string {
	switch {
	case strings.HasSuffix(key, ".jpg"), strings.HasSuffix(key, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(key, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(key, ".md"):
		return "text/markdown"
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	case strings.HasSuffix(key, ".pdf"):
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
