// Package rowmap converts between store rows and the site's view models.
package rowmap

import "lensfolio/api-gateway/models"

// RowToProject builds the view model from a projects row and its already
// ordered image and video URLs. Null columns become their defaults, an empty
// video list becomes nil.
func RowToProject(row models.ProjectRow, images, videos []string) models.Project {
	if images == nil {
		images = []string{}
	}
	if len(videos) == 0 {
		videos = nil
	}
	return models.Project{
		ID:            row.ID,
		Title:         row.Title,
		TitleEn:       row.TitleEn,
		Tag:           row.Tag,
		TagEn:         row.TagEn,
		Description:   deref(row.Description),
		DescriptionEn: deref(row.DescriptionEn),
		CoverImage:    deref(row.CoverImage),
		Images:        images,
		Videos:        videos,
		SpanCols:      span(row.SpanCols),
		SpanRows:      span(row.SpanRows),
		Icon:          deref(row.Icon),
	}
}

// NewProjectRow is the insert payload for a new project.
// Images and videos are never part of it.
func NewProjectRow(p models.NewProject) map[string]any {
	return map[string]any{
		"title":          p.Title,
		"title_en":       p.TitleEn,
		"tag":            p.Tag,
		"tag_en":         p.TagEn,
		"description":    nullable(p.Description),
		"description_en": nullable(p.DescriptionEn),
		"cover_image":    nullable(p.CoverImage),
		"icon":           nullable(p.Icon),
		"span_cols":      spanValue(p.SpanCols),
		"span_rows":      spanValue(p.SpanRows),
	}
}

// ProjectToRow is the sparse update payload for the scalar fields present in u.
// Clearing an optional text field stores NULL.
func ProjectToRow(u models.ProjectUpdate) map[string]any {
	row := make(map[string]any)
	setString(row, "title", u.Title)
	setString(row, "title_en", u.TitleEn)
	setString(row, "tag", u.Tag)
	setString(row, "tag_en", u.TagEn)
	setNullable(row, "description", u.Description)
	setNullable(row, "description_en", u.DescriptionEn)
	setNullable(row, "cover_image", u.CoverImage)
	setNullable(row, "icon", u.Icon)
	if u.SpanCols != nil {
		row["span_cols"] = spanValue(*u.SpanCols)
	}
	if u.SpanRows != nil {
		row["span_rows"] = spanValue(*u.SpanRows)
	}
	return row
}

// ImageRows tags urls with the project id, using the index as display order.
func ImageRows(projectID string, urls []string) []models.ProjectImageRow {
	rows := make([]models.ProjectImageRow, len(urls))
	for i, u := range urls {
		rows[i] = models.ProjectImageRow{ProjectID: projectID, ImageURL: u, DisplayOrder: i}
	}
	return rows
}

// VideoRows tags urls with the project id, using the index as display order.
func VideoRows(projectID string, urls []string) []models.ProjectVideoRow {
	rows := make([]models.ProjectVideoRow, len(urls))
	for i, u := range urls {
		rows[i] = models.ProjectVideoRow{ProjectID: projectID, VideoURL: u, DisplayOrder: i}
	}
	return rows
}

// GroupImages collects image URLs per project, keeping the input order.
func GroupImages(rows []models.ProjectImageRow) map[string][]string {
	out := make(map[string][]string)
	for _, r := range rows {
		out[r.ProjectID] = append(out[r.ProjectID], r.ImageURL)
	}
	return out
}

// GroupVideos collects video URLs per project, keeping the input order.
func GroupVideos(rows []models.ProjectVideoRow) map[string][]string {
	out := make(map[string][]string)
	for _, r := range rows {
		out[r.ProjectID] = append(out[r.ProjectID], r.VideoURL)
	}
	return out
}

// HeroRowToContent maps the hero_content row.
func HeroRowToContent(r models.HeroContentRow) models.HeroContent {
	return models.HeroContent{
		Badge:          r.Badge,
		BadgeEn:        r.BadgeEn,
		Title:          r.Title,
		TitleEn:        r.TitleEn,
		TitleBreak:     r.TitleBreak,
		TitleBreakEn:   r.TitleBreakEn,
		Description:    r.Description,
		DescriptionEn:  r.DescriptionEn,
		CtaPrimary:     r.CtaPrimary,
		CtaPrimaryEn:   r.CtaPrimaryEn,
		CtaSecondary:   r.CtaSecondary,
		CtaSecondaryEn: r.CtaSecondaryEn,
	}
}

// HeroUpdateToRow is the sparse payload for the hero fields present in u.
// Unlike projects, an empty string is stored as is.
func HeroUpdateToRow(u models.HeroContentUpdate) map[string]any {
	row := make(map[string]any)
	setString(row, "badge", u.Badge)
	setString(row, "badge_en", u.BadgeEn)
	setString(row, "title", u.Title)
	setString(row, "title_en", u.TitleEn)
	setString(row, "title_break", u.TitleBreak)
	setString(row, "title_break_en", u.TitleBreakEn)
	setString(row, "description", u.Description)
	setString(row, "description_en", u.DescriptionEn)
	setString(row, "cta_primary", u.CtaPrimary)
	setString(row, "cta_primary_en", u.CtaPrimaryEn)
	setString(row, "cta_secondary", u.CtaSecondary)
	setString(row, "cta_secondary_en", u.CtaSecondaryEn)
	return row
}

// FooterRowToContent maps the footer_content row.
func FooterRowToContent(r models.FooterContentRow) models.FooterContent {
	return models.FooterContent{
		Title:         r.Title,
		TitleEn:       r.TitleEn,
		Description:   r.Description,
		DescriptionEn: r.DescriptionEn,
		Cta:           r.Cta,
		CtaEn:         r.CtaEn,
	}
}

// FooterUpdateToRow is the sparse payload for the footer fields present in u.
func FooterUpdateToRow(u models.FooterContentUpdate) map[string]any {
	row := make(map[string]any)
	setString(row, "title", u.Title)
	setString(row, "title_en", u.TitleEn)
	setString(row, "description", u.Description)
	setString(row, "description_en", u.DescriptionEn)
	setString(row, "cta", u.Cta)
	setString(row, "cta_en", u.CtaEn)
	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func span(v *int) int {
	if v == nil || *v < 1 {
		return 1
	}
	return *v
}

func spanValue(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func setString(row map[string]any, col string, v *string) {
	if v != nil {
		row[col] = *v
	}
}

func setNullable(row map[string]any, col string, v *string) {
	if v != nil {
		row[col] = nullable(*v)
	}
}
