package models

// HeroContent is the copy of the landing page hero section.
type HeroContent struct {
	Badge          string `json:"badge"`
	BadgeEn        string `json:"badgeEn"`
	Title          string `json:"title"`
	TitleEn        string `json:"titleEn"`
	TitleBreak     string `json:"titleBreak"`
	TitleBreakEn   string `json:"titleBreakEn"`
	Description    string `json:"description"`
	DescriptionEn  string `json:"descriptionEn"`
	CtaPrimary     string `json:"ctaPrimary"`
	CtaPrimaryEn   string `json:"ctaPrimaryEn"`
	CtaSecondary   string `json:"ctaSecondary"`
	CtaSecondaryEn string `json:"ctaSecondaryEn"`
}

// HeroContentUpdate carries only the hero fields to change.
type HeroContentUpdate struct {
	Badge          *string `json:"badge,omitempty"`
	BadgeEn        *string `json:"badgeEn,omitempty"`
	Title          *string `json:"title,omitempty"`
	TitleEn        *string `json:"titleEn,omitempty"`
	TitleBreak     *string `json:"titleBreak,omitempty"`
	TitleBreakEn   *string `json:"titleBreakEn,omitempty"`
	Description    *string `json:"description,omitempty"`
	DescriptionEn  *string `json:"descriptionEn,omitempty"`
	CtaPrimary     *string `json:"ctaPrimary,omitempty"`
	CtaPrimaryEn   *string `json:"ctaPrimaryEn,omitempty"`
	CtaSecondary   *string `json:"ctaSecondary,omitempty"`
	CtaSecondaryEn *string `json:"ctaSecondaryEn,omitempty"`
}

// HeroContentRow is the single row of hero_content.
type HeroContentRow struct {
	Badge          string `json:"badge"`
	BadgeEn        string `json:"badge_en"`
	Title          string `json:"title"`
	TitleEn        string `json:"title_en"`
	TitleBreak     string `json:"title_break"`
	TitleBreakEn   string `json:"title_break_en"`
	Description    string `json:"description"`
	DescriptionEn  string `json:"description_en"`
	CtaPrimary     string `json:"cta_primary"`
	CtaPrimaryEn   string `json:"cta_primary_en"`
	CtaSecondary   string `json:"cta_secondary"`
	CtaSecondaryEn string `json:"cta_secondary_en"`
}

// FooterContent is the copy of the closing call-to-action section.
type FooterContent struct {
	Title         string `json:"title"`
	TitleEn       string `json:"titleEn"`
	Description   string `json:"description"`
	DescriptionEn string `json:"descriptionEn"`
	Cta           string `json:"cta"`
	CtaEn         string `json:"ctaEn"`
}

// FooterContentUpdate carries only the footer fields to change.
type FooterContentUpdate struct {
	Title         *string `json:"title,omitempty"`
	TitleEn       *string `json:"titleEn,omitempty"`
	Description   *string `json:"description,omitempty"`
	DescriptionEn *string `json:"descriptionEn,omitempty"`
	Cta           *string `json:"cta,omitempty"`
	CtaEn         *string `json:"ctaEn,omitempty"`
}

// FooterContentRow is the single row of footer_content.
type FooterContentRow struct {
	Title         string `json:"title"`
	TitleEn       string `json:"title_en"`
	Description   string `json:"description"`
	DescriptionEn string `json:"description_en"`
	Cta           string `json:"cta"`
	CtaEn         string `json:"cta_en"`
}
