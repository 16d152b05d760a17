package repository

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"sort"
	"testing"
	"time"

	"lensfolio/api-gateway/config"
	"lensfolio/api-gateway/internal/postgresttest"
	"lensfolio/api-gateway/models"
)

const (
	p1        = "5b0c6f1e-3d6a-4c41-9a0e-6a1f7f2b9c01"
	missing   = "9d4b2a77-0c1e-4f3a-8b6d-2e5f1c7a4b02"
	unknownID = "e1f2a3b4-c5d6-47e8-9f00-112233445566"
)

func newTestRepository(t *testing.T, opts ...Option) (*Repository, *postgresttest.Server) {
	t.Helper()
	store := postgresttest.NewPortfolio(t)
	opts = append([]Option{WithLogger(config.NewDiscardLogger()), WithTimeout(2 * time.Second)}, opts...)
	return New(store.Client(), opts...), store
}

func newProject(title string, images ...string) models.NewProject {
	return models.NewProject{Title: title, TitleEn: title, Tag: "t", TagEn: "t", Images: images}
}

func mustCreate(t *testing.T, repo *Repository, in models.NewProject) *models.Project {
	t.Helper()
	p, err := repo.CreateProject(context.Background(), in)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected store-assigned id")
	}
	return p
}

func TestCreateThenGetKeepsMediaOrder(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	in := newProject("A", "u1", "u2", "u3")
	in.Videos = []string{"v1", "v2"}
	in.CoverImage = "https://cdn/cover.jpg"
	in.SpanCols = 2
	created := mustCreate(t, repo, in)

	if !reflect.DeepEqual(created.Images, in.Images) || !reflect.DeepEqual(created.Videos, in.Videos) {
		t.Fatalf("create returned %v / %v", created.Images, created.Videos)
	}

	got, err := repo.GetProject(ctx, created.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if got == nil {
		t.Fatalf("expected project %s", created.ID)
	}
	if !reflect.DeepEqual(got.Images, []string{"u1", "u2", "u3"}) {
		t.Fatalf("images out of order: %v", got.Images)
	}
	if !reflect.DeepEqual(got.Videos, []string{"v1", "v2"}) {
		t.Fatalf("videos out of order: %v", got.Videos)
	}
	if got.CoverImage != "https://cdn/cover.jpg" || got.SpanCols != 2 || got.SpanRows != 1 {
		t.Fatalf("unexpected scalar fields: %+v", got)
	}
}

func TestGetProjectReadsDisplayOrderNotInsertOrder(t *testing.T) {
	repo, store := newTestRepository(t)
	store.Seed("projects", postgresttest.Row{"id": p1, "title": "A", "title_en": "A", "tag": "t", "tag_en": "t"})
	store.Seed("project_images",
		postgresttest.Row{"project_id": p1, "image_url": "third", "display_order": 2},
		postgresttest.Row{"project_id": p1, "image_url": "first", "display_order": 0},
		postgresttest.Row{"project_id": p1, "image_url": "second", "display_order": 1},
	)

	got, err := repo.GetProject(context.Background(), p1)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if !reflect.DeepEqual(got.Images, []string{"first", "second", "third"}) {
		t.Fatalf("expected display order, got %v", got.Images)
	}
	if got.Videos != nil {
		t.Fatalf("expected no video section, got %v", got.Videos)
	}
}

func TestUpdateReplacesImagesWholesale(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()
	created := mustCreate(t, repo, newProject("A", "old1", "old2", "old3"))

	replacement := []string{"new2", "new1"}
	updated, err := repo.UpdateProject(ctx, created.ID, models.ProjectUpdate{Images: &replacement})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !reflect.DeepEqual(updated.Images, replacement) {
		t.Fatalf("expected exactly %v, got %v", replacement, updated.Images)
	}

	rows := store.Rows("project_images")
	if len(rows) != 2 {
		t.Fatalf("expected 2 image rows, got %d", len(rows))
	}
	for _, row := range rows {
		want := map[string]float64{"new2": 0, "new1": 1}[row["image_url"].(string)]
		if row["display_order"] != want {
			t.Fatalf("row %v: expected display order %v", row, want)
		}
	}
}

func TestUpdateWithEmptyImagesClearsThemAndLeavesVideos(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	in := newProject("A", "u1")
	in.Videos = []string{"v1"}
	created := mustCreate(t, repo, in)

	empty := []string{}
	updated, err := repo.UpdateProject(ctx, created.ID, models.ProjectUpdate{Images: &empty})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Images) != 0 {
		t.Fatalf("expected images cleared, got %v", updated.Images)
	}
	if !reflect.DeepEqual(updated.Videos, []string{"v1"}) {
		t.Fatalf("expected videos untouched, got %v", updated.Videos)
	}
}

func TestUpdateScalarFieldsIsSparse(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()
	in := newProject("قديم", "u1")
	in.SpanRows = 2
	in.Description = "وصف"
	created := mustCreate(t, repo, in)

	title := "جديد"
	updated, err := repo.UpdateProject(ctx, created.ID, models.ProjectUpdate{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "جديد" || updated.SpanRows != 2 || updated.Description != "وصف" {
		t.Fatalf("expected only title to change, got %+v", updated)
	}
	if !reflect.DeepEqual(updated.Images, []string{"u1"}) {
		t.Fatalf("images must be untouched, got %v", updated.Images)
	}
	if n := store.CountRequests(http.MethodDelete, "project_images"); n != 0 {
		t.Fatalf("expected no image deletes, got %d", n)
	}
}

func TestUpdateUnknownProjectReturnsNil(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()

	title := "x"
	images := []string{"u1"}
	got, err := repo.UpdateProject(ctx, missing, models.ProjectUpdate{Title: &title, Images: &images})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown project, got %+v", got)
	}
	if n := store.CountRequests("", "project_images"); n != 0 {
		t.Fatalf("children must not be touched, saw %d requests", n)
	}

	got, err = repo.UpdateProject(ctx, missing, models.ProjectUpdate{Images: &images})
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for media-only update of unknown project, got %v, %v", got, err)
	}
}

func TestSummariesOmitMediaFullListIncludesIt(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	first := mustCreate(t, repo, newProject("first", "a1", "a2"))
	second := newProject("second", "b1")
	second.Videos = []string{"bv"}
	secondCreated := mustCreate(t, repo, second)

	summaries, err := repo.ListProjectSummaries(ctx)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].ID != secondCreated.ID || summaries[1].ID != first.ID {
		t.Fatalf("expected newest first, got %s then %s", summaries[0].ID, summaries[1].ID)
	}
	for _, p := range summaries {
		if len(p.Images) != 0 || p.Videos != nil {
			t.Fatalf("summary %s carries media: %v %v", p.ID, p.Images, p.Videos)
		}
	}

	full, err := repo.ListProjectsFull(ctx)
	if err != nil {
		t.Fatalf("full list: %v", err)
	}
	if !reflect.DeepEqual(full[0].Images, []string{"b1"}) || !reflect.DeepEqual(full[0].Videos, []string{"bv"}) {
		t.Fatalf("unexpected media for newest project: %v %v", full[0].Images, full[0].Videos)
	}
	if !reflect.DeepEqual(full[1].Images, []string{"a1", "a2"}) || full[1].Videos != nil {
		t.Fatalf("unexpected media for oldest project: %v %v", full[1].Images, full[1].Videos)
	}
}

func TestListProjectsFullFailsWhenAnyFetchFails(t *testing.T) {
	repo, store := newTestRepository(t)
	mustCreate(t, repo, newProject("A", "u1"))
	store.Fail(http.MethodGet, "project_videos", http.StatusInternalServerError, "XX000", "disk full")

	got, err := repo.ListProjectsFull(context.Background())
	if err == nil {
		t.Fatalf("expected failure, got %d projects", len(got))
	}
	var se *StoreError
	if !errors.As(err, &se) || se.Code != "XX000" {
		t.Fatalf("expected StoreError XX000, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no partial result")
	}
}

func TestGetProjectDistinguishesAbsentFromFailure(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()

	got, err := repo.GetProject(ctx, unknownID)
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for unknown id, got %v, %v", got, err)
	}
	if n := store.CountRequests("", "project_images"); n != 0 {
		t.Fatalf("absent project must not query children, saw %d", n)
	}

	store.Fail(http.MethodGet, "projects", http.StatusServiceUnavailable, "PGRST000", "could not connect to database")
	got, err = repo.GetProject(ctx, unknownID)
	if err == nil {
		t.Fatalf("expected error on store failure, got %v", got)
	}
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %T", err)
	}
}

func TestMalformedProjectIDIsAbsent(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()
	title := "x"

	for _, id := range []string{"foo", "", "123", "5b0c6f1e-3d6a-4c41-9a0e"} {
		got, err := repo.GetProject(ctx, id)
		if err != nil || got != nil {
			t.Fatalf("get %q: expected nil, nil, got %v, %v", id, got, err)
		}
		updated, err := repo.UpdateProject(ctx, id, models.ProjectUpdate{Title: &title})
		if err != nil || updated != nil {
			t.Fatalf("update %q: expected nil, nil, got %v, %v", id, updated, err)
		}
		removed, err := repo.DeleteProject(ctx, id)
		if err != nil || removed {
			t.Fatalf("delete %q: expected false, nil, got %v, %v", id, removed, err)
		}
	}
	if n := len(store.Requests()); n != 0 {
		t.Fatalf("malformed ids must not reach the store, saw %d requests", n)
	}
}

func TestGetProjectFailsWhenAChildFetchFails(t *testing.T) {
	repo, store := newTestRepository(t)
	created := mustCreate(t, repo, newProject("A", "u1"))
	store.Fail(http.MethodGet, "project_images", http.StatusInternalServerError, "XX000", "boom")

	if _, err := repo.GetProject(context.Background(), created.ID); err == nil {
		t.Fatalf("expected child fetch failure to fail the call")
	}
}

func TestTimeoutIsReportedDistinctly(t *testing.T) {
	repo, store := newTestRepository(t, WithTimeout(30*time.Millisecond))
	ctx := context.Background()

	store.Fail(http.MethodGet, "projects", http.StatusBadGateway, "PGRST000", "network unreachable")
	_, netErr := repo.ListProjectSummaries(ctx)
	if netErr == nil || IsTimeout(netErr) {
		t.Fatalf("expected a non-timeout store error, got %v", netErr)
	}

	store.Delay("projects", 300*time.Millisecond)
	_, timeoutErr := repo.ListProjectSummaries(ctx)
	if !IsTimeout(timeoutErr) {
		t.Fatalf("expected timeout, got %v", timeoutErr)
	}
	if timeoutErr.Error() == netErr.Error() {
		t.Fatalf("timeout and network errors must read differently")
	}
}

func TestDeleteCascadesToChildren(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()
	created := mustCreate(t, repo, models.NewProject{
		Title: "A", TitleEn: "A", Tag: "t", TagEn: "t", CoverImage: "", Images: []string{"u1", "u2"},
	})

	removed, err := repo.DeleteProject(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !removed {
		t.Fatalf("expected a row to be removed")
	}

	got, err := repo.GetProject(ctx, created.ID)
	if err != nil || got != nil {
		t.Fatalf("expected deleted project to be absent, got %v, %v", got, err)
	}
	if rows := store.Rows("project_images"); len(rows) != 0 {
		t.Fatalf("expected images to cascade, %d left", len(rows))
	}

	removed, err = repo.DeleteProject(ctx, created.ID)
	if err != nil || removed {
		t.Fatalf("second delete: removed=%v err=%v", removed, err)
	}
}

func TestCreateRollsBackWhenChildInsertFails(t *testing.T) {
	repo, store := newTestRepository(t)
	in := newProject("A", "u1")
	in.Videos = []string{"v1"}
	store.Fail(http.MethodPost, "project_videos", http.StatusBadRequest, "23514", "check constraint violated")

	if _, err := repo.CreateProject(context.Background(), in); err == nil {
		t.Fatalf("expected create to fail")
	}
	if rows := store.Rows("projects"); len(rows) != 0 {
		t.Fatalf("expected parent rolled back, %d projects left", len(rows))
	}
	if rows := store.Rows("project_images"); len(rows) != 0 {
		t.Fatalf("expected images removed with parent, %d left", len(rows))
	}
}

func TestReplaceRestoresPreviousChildrenOnFailure(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()
	created := mustCreate(t, repo, newProject("A", "keep1", "keep2"))

	// The first insert after the delete is the replacement, the restore follows.
	store.Before(http.MethodDelete, "project_images", func() {
		store.Fail(http.MethodPost, "project_images", http.StatusInternalServerError, "XX000", "boom")
	})
	replacement := []string{"lost"}
	if _, err := repo.UpdateProject(ctx, created.ID, models.ProjectUpdate{Images: &replacement}); err == nil {
		t.Fatalf("expected update to fail")
	}

	got, err := repo.GetProject(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got.Images, []string{"keep1", "keep2"}) {
		t.Fatalf("expected previous images restored, got %v", got.Images)
	}
}

func TestReferencedMediaLooksAtEveryColumn(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()

	a := newProject("A", "img-a")
	a.CoverImage = "cover-shared"
	a.Videos = []string{"vid-a"}
	mustCreate(t, repo, a)

	got, err := repo.ReferencedMedia(ctx, []string{"cover-shared", "img-a", "vid-a", "gone"})
	if err != nil {
		t.Fatalf("referenced media: %v", err)
	}
	sort.Strings(got)
	if want := []string{"cover-shared", "img-a", "vid-a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}

	if got, err := repo.ReferencedMedia(ctx, nil); err != nil || got != nil {
		t.Fatalf("expected nil, nil for no urls, got %v, %v", got, err)
	}

	store.Fail(http.MethodGet, "project_videos", http.StatusServiceUnavailable, "PGRST000", "could not connect to database")
	if _, err := repo.ReferencedMedia(ctx, []string{"vid-a"}); err == nil {
		t.Fatalf("expected lookup failure to be reported")
	}
}

func TestWithClientSwitchesStore(t *testing.T) {
	repo, _ := newTestRepository(t)
	other := postgresttest.NewPortfolio(t)
	other.Seed("projects", postgresttest.Row{"id": "elsewhere", "title": "B", "title_en": "B", "tag": "t", "tag_en": "t"})

	got, err := repo.WithClient(other.Client()).ListProjectSummaries(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "elsewhere" {
		t.Fatalf("expected the other store's project, got %+v", got)
	}

	mine, err := repo.ListProjectSummaries(context.Background())
	if err != nil || len(mine) != 0 {
		t.Fatalf("original repository must be unchanged, got %v, %v", mine, err)
	}
}

func TestPing(t *testing.T) {
	repo, store := newTestRepository(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	store.Fail(http.MethodGet, "projects", http.StatusUnauthorized, "PGRST301", "JWT expired")
	if err := repo.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping to fail")
	}
}
