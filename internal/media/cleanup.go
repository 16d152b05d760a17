package media

import (
	"context"
	"fmt"
	"strings"
)

// Referencer reports which of urls are still used by some project.
type Referencer interface {
	ReferencedMedia(ctx context.Context, urls []string) ([]string, error)
}

// CleanupJob removes media that a project no longer references. It runs on
// the background dispatcher. With Refs set, URLs that another project still
// uses are kept; if that lookup fails nothing is removed.
type CleanupJob struct {
	Store   *Store
	Refs    Referencer
	Project string
	URLs    []string
}

func (j CleanupJob) ID() string {
	return "media-cleanup:" + j.Project + ":" + strings.Join(j.URLs, ",")
}

func (j CleanupJob) Execute(ctx context.Context) error {
	urls := j.URLs
	if j.Refs != nil {
		used, err := j.Refs.ReferencedMedia(ctx, urls)
		if err != nil {
			return fmt.Errorf("checking media references: %w", err)
		}
		urls = Unreferenced(urls, used)
	}
	return j.Store.Remove(ctx, urls)
}
