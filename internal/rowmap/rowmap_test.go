package rowmap

import (
	"reflect"
	"testing"

	"lensfolio/api-gateway/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int        { return &i }

func TestRowToProjectDefaults(t *testing.T) {
	row := models.ProjectRow{ID: "p1", Title: "أضواء المدينة", TitleEn: "City Lights", Tag: "فوتوغراف", TagEn: "Photography"}

	p := RowToProject(row, nil, []string{})
	if p.CoverImage != "" {
		t.Fatalf("expected empty cover image, got %q", p.CoverImage)
	}
	if p.SpanCols != 1 || p.SpanRows != 1 {
		t.Fatalf("expected spans to default to 1, got %d x %d", p.SpanCols, p.SpanRows)
	}
	if p.Images == nil || len(p.Images) != 0 {
		t.Fatalf("expected empty non-nil images, got %#v", p.Images)
	}
	if p.Videos != nil {
		t.Fatalf("expected absent videos, got %#v", p.Videos)
	}
	if p.Description != "" || p.Icon != "" {
		t.Fatalf("expected optional fields empty, got %+v", p)
	}
}

func TestRowToProjectCarriesValues(t *testing.T) {
	row := models.ProjectRow{
		ID:         "p2",
		Title:      "t",
		TitleEn:    "t",
		Tag:        "g",
		TagEn:      "g",
		CoverImage: strPtr("https://cdn/cover.jpg"),
		Icon:       strPtr("👁️"),
		SpanCols:   intPtr(2),
		SpanRows:   intPtr(2),
	}
	p := RowToProject(row, []string{"a", "b"}, []string{"v"})
	if p.CoverImage != "https://cdn/cover.jpg" || p.Icon != "👁️" {
		t.Fatalf("unexpected mapped fields: %+v", p)
	}
	if p.SpanCols != 2 || p.SpanRows != 2 {
		t.Fatalf("expected 2x2 spans, got %dx%d", p.SpanCols, p.SpanRows)
	}
	if !reflect.DeepEqual(p.Images, []string{"a", "b"}) || !reflect.DeepEqual(p.Videos, []string{"v"}) {
		t.Fatalf("unexpected children: %v %v", p.Images, p.Videos)
	}
}

func TestNewProjectRowNullsEmptyOptionals(t *testing.T) {
	row := NewProjectRow(models.NewProject{Title: "A", TitleEn: "A", Tag: "t", TagEn: "t", Images: []string{"u1"}})

	for _, col := range []string{"description", "description_en", "cover_image", "icon"} {
		v, ok := row[col]
		if !ok || v != nil {
			t.Fatalf("expected %s to be NULL, got %v (present=%v)", col, v, ok)
		}
	}
	if row["span_cols"] != 1 || row["span_rows"] != 1 {
		t.Fatalf("expected spans default 1, got %v %v", row["span_cols"], row["span_rows"])
	}
	if _, ok := row["images"]; ok {
		t.Fatalf("images must not be embedded in the parent row")
	}
}

func TestProjectToRowIsSparse(t *testing.T) {
	images := []string{"x"}
	row := ProjectToRow(models.ProjectUpdate{
		TitleEn:    strPtr("New"),
		CoverImage: strPtr(""),
		SpanRows:   intPtr(2),
		Images:     &images,
	})

	want := map[string]any{"title_en": "New", "cover_image": nil, "span_rows": 2}
	if !reflect.DeepEqual(row, want) {
		t.Fatalf("got %#v want %#v", row, want)
	}
}

func TestChildRowsUseIndexAsDisplayOrder(t *testing.T) {
	rows := ImageRows("p1", []string{"u1", "u2", "u3"})
	for i, r := range rows {
		if r.DisplayOrder != i || r.ProjectID != "p1" {
			t.Fatalf("row %d: %+v", i, r)
		}
	}
	vids := VideoRows("p1", []string{"v1"})
	if len(vids) != 1 || vids[0].VideoURL != "v1" || vids[0].DisplayOrder != 0 {
		t.Fatalf("unexpected video rows: %+v", vids)
	}
}

func TestGroupImagesKeepsOrderPerProject(t *testing.T) {
	grouped := GroupImages([]models.ProjectImageRow{
		{ProjectID: "a", ImageURL: "a0"},
		{ProjectID: "b", ImageURL: "b0"},
		{ProjectID: "a", ImageURL: "a1"},
	})
	if !reflect.DeepEqual(grouped["a"], []string{"a0", "a1"}) || !reflect.DeepEqual(grouped["b"], []string{"b0"}) {
		t.Fatalf("unexpected grouping: %v", grouped)
	}
}

func TestHeroUpdateToRowKeepsEmptyStrings(t *testing.T) {
	row := HeroUpdateToRow(models.HeroContentUpdate{Badge: strPtr(""), CtaPrimaryEn: strPtr("Explore")})
	want := map[string]any{"badge": "", "cta_primary_en": "Explore"}
	if !reflect.DeepEqual(row, want) {
		t.Fatalf("got %#v want %#v", row, want)
	}
}

func TestFooterUpdateToRowOmitsUnset(t *testing.T) {
	if row := FooterUpdateToRow(models.FooterContentUpdate{}); len(row) != 0 {
		t.Fatalf("expected empty payload, got %v", row)
	}
}
