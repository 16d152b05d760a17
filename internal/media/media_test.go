package media

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"lensfolio/api-gateway/config"
)

const prefix = "https://example.supabase.co/storage/v1/object/public/portfolio-media/"

type memBucket struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
	removed [][]string
	err     error
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string]string{}, types: map[string]string{}}
}

func (b *memBucket) Put(p string, body io.Reader, contentType string) error {
	if b.err != nil {
		return b.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[p] = string(data)
	b.types[p] = contentType
	return nil
}

func (b *memBucket) Remove(paths []string) error {
	if b.err != nil {
		return b.err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range paths {
		delete(b.objects, p)
	}
	b.removed = append(b.removed, paths)
	return nil
}

func (b *memBucket) PublicURL(p string) string { return prefix + p }

func newStore(b Bucket) *Store {
	return NewStore(b, prefix, time.Second, config.NewDiscardLogger())
}

func TestUploadStoresUnderProjectsAndReturnsPublicURL(t *testing.T) {
	b := newMemBucket()
	s := newStore(b)

	url, err := s.Upload(context.Background(), "Cover.JPG", "image/jpeg", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	p, ok := s.OwnedPath(url)
	if !ok {
		t.Fatalf("uploaded url %q should be owned", url)
	}
	if !strings.HasPrefix(p, "projects/") || !strings.HasSuffix(p, ".jpg") {
		t.Fatalf("unexpected object path %q", p)
	}
	if b.objects[p] != "jpeg-bytes" || b.types[p] != "image/jpeg" {
		t.Fatalf("object not stored as expected: %q %q", b.objects[p], b.types[p])
	}
}

func TestUploadRejectsOtherTypes(t *testing.T) {
	s := newStore(newMemBucket())
	for _, ct := range []string{"application/pdf", "", "text/html; charset=utf-8"} {
		if _, err := s.Upload(context.Background(), "x", ct, strings.NewReader("")); !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("%q: expected ErrUnsupportedType, got %v", ct, err)
		}
	}
}

func TestUploadPropagatesBucketFailure(t *testing.T) {
	b := newMemBucket()
	b.err = errors.New("bucket not found")
	s := newStore(b)

	if _, err := s.Upload(context.Background(), "a.mp4", "video/mp4", strings.NewReader("")); err == nil {
		t.Fatalf("expected bucket failure to surface")
	}
}

func TestOwnedPath(t *testing.T) {
	s := newStore(newMemBucket())
	cases := map[string]string{
		prefix + "projects/a.jpg":        "projects/a.jpg",
		prefix + "projects/a.jpg?t=1":    "projects/a.jpg",
		"https://cdn.example.com/a.jpg":  "",
		prefix:                           "",
		"/images/placeholder-cover.webp": "",
	}
	for url, want := range cases {
		got, ok := s.OwnedPath(url)
		if got != want || ok != (want != "") {
			t.Fatalf("OwnedPath(%q) = %q, %v; want %q", url, got, ok, want)
		}
	}
}

func TestCleanupJobRemovesOnlyOwnedObjects(t *testing.T) {
	b := newMemBucket()
	s := newStore(b)
	job := CleanupJob{Store: s, Project: "p1", URLs: []string{
		prefix + "projects/a.jpg",
		"https://youtube.com/watch?v=x",
		prefix + "projects/b.mp4",
	}}

	if err := job.Execute(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := [][]string{{"projects/a.jpg", "projects/b.mp4"}}
	if !reflect.DeepEqual(b.removed, want) {
		t.Fatalf("removed %v want %v", b.removed, want)
	}

	b.removed = nil
	empty := CleanupJob{Store: s, Project: "p2", URLs: []string{"https://cdn.example.com/x.png"}}
	if err := empty.Execute(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(b.removed) != 0 {
		t.Fatalf("bucket must not be called for foreign urls")
	}
}

type refs struct {
	used []string
	err  error
}

func (r refs) ReferencedMedia(_ context.Context, urls []string) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []string
	for _, u := range urls {
		for _, k := range r.used {
			if u == k {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func TestCleanupJobKeepsMediaStillReferenced(t *testing.T) {
	b := newMemBucket()
	s := newStore(b)
	shared := prefix + "projects/shared.jpg"
	job := CleanupJob{Store: s, Refs: refs{used: []string{shared}}, Project: "p1", URLs: []string{
		shared,
		prefix + "projects/only-mine.jpg",
	}}

	if err := job.Execute(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := [][]string{{"projects/only-mine.jpg"}}
	if !reflect.DeepEqual(b.removed, want) {
		t.Fatalf("removed %v want %v", b.removed, want)
	}
}

func TestCleanupJobRemovesNothingWhenLookupFails(t *testing.T) {
	b := newMemBucket()
	job := CleanupJob{Store: newStore(b), Refs: refs{err: errors.New("store down")}, Project: "p1", URLs: []string{
		prefix + "projects/a.jpg",
	}}

	if err := job.Execute(context.Background()); err == nil {
		t.Fatalf("expected lookup failure to be reported")
	}
	if len(b.removed) != 0 {
		t.Fatalf("nothing may be removed when references are unknown, removed %v", b.removed)
	}
}

func TestUnreferenced(t *testing.T) {
	got := Unreferenced([]string{"a", "b", "c", "b"}, []string{"c", "d"})
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("got %v", got)
	}
	if got := Unreferenced(nil, []string{"a"}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
