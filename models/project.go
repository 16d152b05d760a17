package models

import "time"

// Project is the view model of a portfolio project as the site renders it.
// Videos is nil when the project has no video section.
type Project struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	TitleEn       string   `json:"titleEn"`
	Tag           string   `json:"tag"`
	TagEn         string   `json:"tagEn"`
	Description   string   `json:"description,omitempty"`
	DescriptionEn string   `json:"descriptionEn,omitempty"`
	CoverImage    string   `json:"coverImage"`
	Images        []string `json:"images"`
	Videos        []string `json:"videos,omitempty"`
	SpanCols      int      `json:"spanCols"`
	SpanRows      int      `json:"spanRows"`
	Icon          string   `json:"icon,omitempty"`
}

// NewProject is the input for creating a project.
type NewProject struct {
	Title         string   `json:"title" validate:"required"`
	TitleEn       string   `json:"titleEn" validate:"required"`
	Tag           string   `json:"tag" validate:"required"`
	TagEn         string   `json:"tagEn" validate:"required"`
	Description   string   `json:"description,omitempty"`
	DescriptionEn string   `json:"descriptionEn,omitempty"`
	CoverImage    string   `json:"coverImage,omitempty"`
	Images        []string `json:"images" validate:"dive,required"`
	Videos        []string `json:"videos,omitempty" validate:"dive,required"`
	SpanCols      int      `json:"spanCols,omitempty" validate:"omitempty,oneof=1 2"`
	SpanRows      int      `json:"spanRows,omitempty" validate:"omitempty,oneof=1 2"`
	Icon          string   `json:"icon,omitempty"`
}

// ProjectUpdate is a partial update. A nil field is left unchanged.
// A non-nil Images or Videos replaces the whole collection, an empty slice
// clears it.
type ProjectUpdate struct {
	Title         *string   `json:"title,omitempty" validate:"omitnil,min=1"`
	TitleEn       *string   `json:"titleEn,omitempty" validate:"omitnil,min=1"`
	Tag           *string   `json:"tag,omitempty" validate:"omitnil,min=1"`
	TagEn         *string   `json:"tagEn,omitempty" validate:"omitnil,min=1"`
	Description   *string   `json:"description,omitempty"`
	DescriptionEn *string   `json:"descriptionEn,omitempty"`
	CoverImage    *string   `json:"coverImage,omitempty"`
	Images        *[]string `json:"images,omitempty" validate:"omitnil,dive,required"`
	Videos        *[]string `json:"videos,omitempty" validate:"omitnil,dive,required"`
	SpanCols      *int      `json:"spanCols,omitempty" validate:"omitempty,oneof=1 2"`
	SpanRows      *int      `json:"spanRows,omitempty" validate:"omitempty,oneof=1 2"`
	Icon          *string   `json:"icon,omitempty"`
}

// ProjectRow is a row of the projects table. Pointers are nullable columns.
type ProjectRow struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	TitleEn       string     `json:"title_en"`
	Tag           string     `json:"tag"`
	TagEn         string     `json:"tag_en"`
	Description   *string    `json:"description"`
	DescriptionEn *string    `json:"description_en"`
	CoverImage    *string    `json:"cover_image"`
	Icon          *string    `json:"icon"`
	SpanCols      *int       `json:"span_cols"`
	SpanRows      *int       `json:"span_rows"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// ProjectImageRow is a row of project_images.
type ProjectImageRow struct {
	ProjectID    string `json:"project_id"`
	ImageURL     string `json:"image_url"`
	DisplayOrder int    `json:"display_order"`
}

// ProjectVideoRow is a row of project_videos.
type ProjectVideoRow struct {
	ProjectID    string `json:"project_id"`
	VideoURL     string `json:"video_url"`
	DisplayOrder int    `json:"display_order"`
}
