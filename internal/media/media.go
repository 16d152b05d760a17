// Package media stores project images and videos in object storage and
// removes them once no project refers to them.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lensfolio/api-gateway/internal/timeout"
)

// ErrUnsupportedType is returned for uploads that are neither images nor videos.
var ErrUnsupportedType = errors.New("media: only image and video uploads are accepted")

// objectDir is where uploaded project media lives inside the bucket.
const objectDir = "projects"

// Bucket is the object storage the Store writes to.
type Bucket interface {
	Put(objectPath string, body io.Reader, contentType string) error
	Remove(objectPaths []string) error
	PublicURL(objectPath string) string
}

// Store uploads media and maps public URLs back to bucket objects.
type Store struct {
	bucket  Bucket
	prefix  string
	timeout time.Duration
	log     *logrus.Logger
}

// NewStore returns a Store over bucket. publicPrefix is the URL prefix of
// public objects in that bucket and decides which URLs the Store owns.
func NewStore(bucket Bucket, publicPrefix string, d time.Duration, log *logrus.Logger) *Store {
	if d <= 0 {
		d = timeout.Default
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if publicPrefix != "" && !strings.HasSuffix(publicPrefix, "/") {
		publicPrefix += "/"
	}
	return &Store{bucket: bucket, prefix: publicPrefix, timeout: d, log: log}
}

// Upload stores body under a fresh object name and returns its public URL.
func (s *Store) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !(strings.HasPrefix(mediaType, "image/") || strings.HasPrefix(mediaType, "video/")) {
		return "", fmt.Errorf("%w: got %q", ErrUnsupportedType, contentType)
	}

	objectPath := path.Join(objectDir, uuid.NewString()+strings.ToLower(path.Ext(filename)))
	_, err = timeout.Do(ctx, "uploadMedia", s.timeout, func() (struct{}, error) {
		return struct{}{}, s.bucket.Put(objectPath, body, mediaType)
	})
	if err != nil {
		s.log.WithField("op", "uploadMedia").Errorf("Error uploading %s: %v", objectPath, err)
		return "", err
	}
	s.log.WithField("object", objectPath).Info("Media uploaded")
	return s.bucket.PublicURL(objectPath), nil
}

// OwnedPath returns the object path behind a public URL of this bucket.
// URLs pointing anywhere else are not owned.
func (s *Store) OwnedPath(url string) (string, bool) {
	if s.prefix == "" || !strings.HasPrefix(url, s.prefix) {
		return "", false
	}
	p := strings.TrimPrefix(url, s.prefix)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "", false
	}
	return p, true
}

// Remove deletes the objects behind urls. URLs the Store does not own are skipped.
func (s *Store) Remove(ctx context.Context, urls []string) error {
	var paths []string
	for _, u := range urls {
		if p, ok := s.OwnedPath(u); ok {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil
	}
	_, err := timeout.Do(ctx, "removeMedia", s.timeout, func() (struct{}, error) {
		return struct{}{}, s.bucket.Remove(paths)
	})
	if err != nil {
		return fmt.Errorf("removing %d media objects: %w", len(paths), err)
	}
	s.log.WithField("objects", paths).Info("Media removed")
	return nil
}

// Unreferenced returns the URLs of before that are absent from after,
// without duplicates.
func Unreferenced(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, u := range after {
		keep[u] = struct{}{}
	}
	var out []string
	for _, u := range before {
		if _, ok := keep[u]; ok {
			continue
		}
		keep[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
