package repository

import (
	"context"

	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"
	"golang.org/x/sync/errgroup"

	"lensfolio/api-gateway/internal/rowmap"
	"lensfolio/api-gateway/models"
)

const (
	projectsTable = "projects"
	imagesTable   = "project_images"
	videosTable   = "project_videos"
)

// children describes one of the ordered child tables of projects.
type children struct {
	table     string
	urlColumn string
	rows      func(projectID string, urls []string) any
}

var (
	imageChildren = children{
		table:     imagesTable,
		urlColumn: "image_url",
		rows:      func(id string, urls []string) any { return rowmap.ImageRows(id, urls) },
	}
	videoChildren = children{
		table:     videosTable,
		urlColumn: "video_url",
		rows:      func(id string, urls []string) any { return rowmap.VideoRows(id, urls) },
	}
)

var newestFirst = &postgrest.OrderOpts{Ascending: false}
var displayOrder = &postgrest.OrderOpts{Ascending: true}

// ListProjectSummaries returns every project, newest first, without images or
// videos. It is the cheap variant for grids that only show covers.
func (r *Repository) ListProjectSummaries(ctx context.Context) ([]models.Project, error) {
	const op = "listProjectSummaries"

	rows, err := r.projectRows(ctx, op)
	if err != nil {
		return nil, r.fail(op, "fetching projects", err)
	}
	projects := make([]models.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, rowmap.RowToProject(row, nil, nil))
	}
	return projects, nil
}

// ListProjectsFull returns every project, newest first, with images and
// videos. Any failed fetch fails the whole call.
func (r *Repository) ListProjectsFull(ctx context.Context) ([]models.Project, error) {
	const op = "listProjectsFull"

	rows, err := r.projectRows(ctx, op)
	if err != nil {
		return nil, r.fail(op, "fetching projects", err)
	}

	var images []models.ProjectImageRow
	err = r.fetch(ctx, op, &images, func() *postgrest.FilterBuilder {
		return r.client.From(imagesTable).
			Select("project_id,image_url,display_order", "", false).
			Order("display_order", displayOrder)
	})
	if err != nil {
		return nil, r.fail(op, "fetching project images", err)
	}

	var videos []models.ProjectVideoRow
	err = r.fetch(ctx, op, &videos, func() *postgrest.FilterBuilder {
		return r.client.From(videosTable).
			Select("project_id,video_url,display_order", "", false).
			Order("display_order", displayOrder)
	})
	if err != nil {
		return nil, r.fail(op, "fetching project videos", err)
	}

	imagesByProject := rowmap.GroupImages(images)
	videosByProject := rowmap.GroupVideos(videos)

	projects := make([]models.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, rowmap.RowToProject(row, imagesByProject[row.ID], videosByProject[row.ID]))
	}
	return projects, nil
}

// GetProject returns the project with its children, or nil when no project
// has that id. Store failures are errors, never nil results. Project ids are
// uuids, so anything else is answered without asking the store.
func (r *Repository) GetProject(ctx context.Context, id string) (*models.Project, error) {
	const op = "getProject"

	if !validID(id) {
		return nil, nil
	}
	row, err := r.projectRow(ctx, op, id)
	if err != nil {
		return nil, r.fail(op, "fetching project "+id, err)
	}
	if row == nil {
		return nil, nil
	}

	var images, videos []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		images, err = r.childURLs(gctx, op, imageChildren, id)
		return err
	})
	g.Go(func() error {
		var err error
		videos, err = r.childURLs(gctx, op, videoChildren, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, r.fail(op, "fetching media of project "+id, err)
	}

	p := rowmap.RowToProject(*row, images, videos)
	return &p, nil
}

// CreateProject inserts the project and its images and videos, in that order.
// When a child insert fails the new project row is deleted again, so callers
// see either the whole project or nothing.
func (r *Repository) CreateProject(ctx context.Context, in models.NewProject) (*models.Project, error) {
	const op = "createProject"

	var inserted []models.ProjectRow
	err := r.fetch(ctx, op, &inserted, func() *postgrest.FilterBuilder {
		return r.client.From(projectsTable).Insert(rowmap.NewProjectRow(in), false, "", "representation", "")
	})
	if err == nil && len(inserted) == 0 {
		err = &StoreError{Op: op, Message: "insert returned no project row"}
	}
	if err != nil {
		return nil, r.fail(op, "inserting project", err)
	}
	row := inserted[0]

	if err := r.insertChildren(ctx, op, imageChildren, row.ID, in.Images); err != nil {
		r.rollbackProject(op, row.ID)
		return nil, r.fail(op, "inserting images of project "+row.ID, err)
	}
	if err := r.insertChildren(ctx, op, videoChildren, row.ID, in.Videos); err != nil {
		r.rollbackProject(op, row.ID)
		return nil, r.fail(op, "inserting videos of project "+row.ID, err)
	}

	p := rowmap.RowToProject(row, append([]string(nil), in.Images...), append([]string(nil), in.Videos...))
	return &p, nil
}

// UpdateProject changes the scalar fields present in u and, when u carries
// them, replaces the image and video collections wholesale. It returns the
// project as stored afterwards, or nil when no project has that id.
func (r *Repository) UpdateProject(ctx context.Context, id string, u models.ProjectUpdate) (*models.Project, error) {
	const op = "updateProject"

	if !validID(id) {
		return nil, nil
	}
	payload := rowmap.ProjectToRow(u)
	if len(payload) > 0 {
		var updated []models.ProjectRow
		err := r.fetch(ctx, op, &updated, func() *postgrest.FilterBuilder {
			return r.client.From(projectsTable).Update(payload, "representation", "").Eq("id", id)
		})
		if err != nil {
			return nil, r.fail(op, "updating project "+id, err)
		}
		if len(updated) == 0 {
			return nil, nil
		}
	} else {
		row, err := r.projectRow(ctx, op, id)
		if err != nil {
			return nil, r.fail(op, "fetching project "+id, err)
		}
		if row == nil {
			return nil, nil
		}
	}

	if u.Images != nil {
		if err := r.replaceChildren(ctx, op, imageChildren, id, *u.Images); err != nil {
			return nil, r.fail(op, "replacing images of project "+id, err)
		}
	}
	if u.Videos != nil {
		if err := r.replaceChildren(ctx, op, videoChildren, id, *u.Videos); err != nil {
			return nil, r.fail(op, "replacing videos of project "+id, err)
		}
	}

	return r.GetProject(ctx, id)
}

// DeleteProject removes the project; the store cascades to its children.
// It reports whether a row was removed.
func (r *Repository) DeleteProject(ctx context.Context, id string) (bool, error) {
	const op = "deleteProject"

	if !validID(id) {
		return false, nil
	}
	var deleted []models.ProjectRow
	err := r.fetch(ctx, op, &deleted, func() *postgrest.FilterBuilder {
		return r.client.From(projectsTable).Delete("representation", "").Eq("id", id)
	})
	if err != nil {
		return false, r.fail(op, "deleting project "+id, err)
	}
	return len(deleted) > 0, nil
}

// ReferencedMedia returns the members of urls that some project still uses,
// as cover image, image or video.
func (r *Repository) ReferencedMedia(ctx context.Context, urls []string) ([]string, error) {
	const op = "referencedMedia"
	if len(urls) == 0 {
		return nil, nil
	}

	sources := []struct{ table, column string }{
		{projectsTable, "cover_image"},
		{imageChildren.table, imageChildren.urlColumn},
		{videoChildren.table, videoChildren.urlColumn},
	}
	found := make([][]map[string]string, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			return r.fetch(gctx, op, &found[i], func() *postgrest.FilterBuilder {
				return r.client.From(src.table).Select(src.column, "", false).In(src.column, urls)
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, r.fail(op, "looking up media references", err)
	}

	seen := make(map[string]struct{})
	var used []string
	for i, rows := range found {
		for _, row := range rows {
			u := row[sources[i].column]
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			used = append(used, u)
		}
	}
	return used, nil
}

// validID reports whether id can name a project at all.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *Repository) projectRows(ctx context.Context, op string) ([]models.ProjectRow, error) {
	var rows []models.ProjectRow
	err := r.fetch(ctx, op, &rows, func() *postgrest.FilterBuilder {
		return r.client.From(projectsTable).Select("*", "", false).Order("created_at", newestFirst)
	})
	return rows, err
}

func (r *Repository) projectRow(ctx context.Context, op, id string) (*models.ProjectRow, error) {
	var rows []models.ProjectRow
	err := r.fetch(ctx, op, &rows, func() *postgrest.FilterBuilder {
		return r.client.From(projectsTable).Select("*", "", false).Eq("id", id).Limit(1, "")
	})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (r *Repository) childURLs(ctx context.Context, op string, c children, projectID string) ([]string, error) {
	var rows []map[string]string
	err := r.fetch(ctx, op, &rows, func() *postgrest.FilterBuilder {
		return r.client.From(c.table).
			Select(c.urlColumn, "", false).
			Eq("project_id", projectID).
			Order("display_order", displayOrder)
	})
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(rows))
	for _, row := range rows {
		urls = append(urls, row[c.urlColumn])
	}
	return urls, nil
}

func (r *Repository) insertChildren(ctx context.Context, op string, c children, projectID string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	_, err := r.exec(ctx, op, func() *postgrest.FilterBuilder {
		return r.client.From(c.table).Insert(c.rows(projectID, urls), false, "", "minimal", "")
	})
	return err
}

// replaceChildren deletes every child row of the project and inserts urls
// with fresh display orders. If the insert fails the previous rows are put
// back.
func (r *Repository) replaceChildren(ctx context.Context, op string, c children, projectID string, urls []string) error {
	previous, err := r.childURLs(ctx, op, c, projectID)
	if err != nil {
		return err
	}

	_, err = r.exec(ctx, op, func() *postgrest.FilterBuilder {
		return r.client.From(c.table).Delete("minimal", "").Eq("project_id", projectID)
	})
	if err != nil {
		return err
	}

	if err := r.insertChildren(ctx, op, c, projectID, urls); err != nil {
		restoreCtx := context.WithoutCancel(ctx)
		if rerr := r.insertChildren(restoreCtx, op, c, projectID, previous); rerr != nil {
			r.log.WithField("op", op).Errorf("Error restoring %s of project %s: %v", c.table, projectID, rerr)
		}
		return err
	}
	return nil
}

// rollbackProject deletes a half-written project. It runs even when the
// caller's context is already cancelled.
func (r *Repository) rollbackProject(op, id string) {
	_, err := r.exec(context.Background(), op, func() *postgrest.FilterBuilder {
		return r.client.From(projectsTable).Delete("minimal", "").Eq("id", id)
	})
	if err != nil {
		r.log.WithField("op", op).Errorf("Error rolling back project %s: %v", id, err)
	}
}
