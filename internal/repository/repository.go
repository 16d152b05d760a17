// Package repository reads and writes the site's content in the remote store:
// projects with their ordered images and videos, and the hero and footer
// singletons. Every call goes through the timeout wrapper and every failure
// is logged and returned, never swallowed.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	postgrest "github.com/supabase-community/postgrest-go"

	"lensfolio/api-gateway/internal/timeout"
)

// Repository is stateless apart from its connection settings and is safe for
// concurrent use.
type Repository struct {
	client  *postgrest.Client
	timeout time.Duration
	log     *logrus.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithTimeout sets the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Repository) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger failures are reported to.
func WithLogger(l *logrus.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.log = l
		}
	}
}

// New builds a repository on top of a PostgREST client.
func New(client *postgrest.Client, opts ...Option) *Repository {
	r := &Repository{
		client:  client,
		timeout: timeout.Default,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithClient returns a copy of r that talks to the store through client,
// typically one authenticated as the signed-in admin.
func (r *Repository) WithClient(client *postgrest.Client) *Repository {
	cp := *r
	cp.client = client
	return &cp
}

// Ping performs the cheapest read the store allows.
func (r *Repository) Ping(ctx context.Context) error {
	var rows []map[string]any
	err := r.fetch(ctx, "ping", &rows, func() *postgrest.FilterBuilder {
		return r.client.From(projectsTable).Select("id", "", false).Limit(1, "")
	})
	if err != nil {
		return r.fail("ping", "reaching the store", err)
	}
	return nil
}

// exec runs one store call under the deadline and classifies its error.
func (r *Repository) exec(ctx context.Context, op string, build func() *postgrest.FilterBuilder) ([]byte, error) {
	body, err := timeout.Do(ctx, op, r.timeout, func() ([]byte, error) {
		b, _, err := build().Execute()
		return b, err
	})
	if err != nil {
		return nil, asStoreError(op, err)
	}
	return body, nil
}

// fetch is exec followed by decoding the JSON reply into out.
func (r *Repository) fetch(ctx context.Context, op string, out any, build func() *postgrest.FilterBuilder) error {
	body, err := r.exec(ctx, op, build)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &StoreError{Op: op, Message: "decoding response: " + err.Error(), Err: err}
	}
	return nil
}

func (r *Repository) fail(op, what string, err error) error {
	r.log.WithField("op", op).Errorf("Error %s: %v", what, err)
	return err
}
