package repository

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"lensfolio/api-gateway/internal/postgresttest"
	"lensfolio/api-gateway/models"
)

func str(s string) *string { return &s }

func TestHeroContentMissingIsNotFound(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.GetHeroContent(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = repo.GetFooterContent(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for footer, got %v", err)
	}
}

func TestHeroContentMapsRow(t *testing.T) {
	repo, store := newTestRepository(t)
	store.Seed("hero_content", postgresttest.Row{
		"id":               1,
		"badge":            "مرحباً",
		"badge_en":         "Hello",
		"title":            "نروي القصص",
		"title_en":         "We Tell Stories",
		"title_break":      "من خلال العدسة",
		"title_break_en":   "Through the Lens",
		"description":      "d",
		"description_en":   "d-en",
		"cta_primary":      "استكشف",
		"cta_primary_en":   "Explore",
		"cta_secondary":    "تواصل",
		"cta_secondary_en": "Contact",
	})

	hero, err := repo.GetHeroContent(context.Background())
	if err != nil {
		t.Fatalf("get hero: %v", err)
	}
	want := models.HeroContent{
		Badge: "مرحباً", BadgeEn: "Hello",
		Title: "نروي القصص", TitleEn: "We Tell Stories",
		TitleBreak: "من خلال العدسة", TitleBreakEn: "Through the Lens",
		Description: "d", DescriptionEn: "d-en",
		CtaPrimary: "استكشف", CtaPrimaryEn: "Explore",
		CtaSecondary: "تواصل", CtaSecondaryEn: "Contact",
	}
	if *hero != want {
		t.Fatalf("got %+v want %+v", *hero, want)
	}
}

func TestUpdateHeroContentInsertsWhenEmpty(t *testing.T) {
	repo, store := newTestRepository(t)

	hero, err := repo.UpdateHeroContent(context.Background(), models.HeroContentUpdate{TitleEn: str("We Tell Stories")})
	if err != nil {
		t.Fatalf("update hero: %v", err)
	}
	if hero.TitleEn != "We Tell Stories" {
		t.Fatalf("unexpected hero: %+v", hero)
	}
	rows := store.Rows("hero_content")
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	if _, ok := rows[0]["badge"]; ok {
		t.Fatalf("unset fields must not be sent, row: %v", rows[0])
	}
}

func TestUpdateHeroContentUpdatesInPlace(t *testing.T) {
	repo, store := newTestRepository(t)
	store.Seed("hero_content", postgresttest.Row{"id": 7, "badge": "old", "title": "keep"})

	hero, err := repo.UpdateHeroContent(context.Background(), models.HeroContentUpdate{Badge: str("")})
	if err != nil {
		t.Fatalf("update hero: %v", err)
	}
	if hero.Badge != "" || hero.Title != "keep" {
		t.Fatalf("expected badge cleared and title kept, got %+v", hero)
	}
	if n := len(store.Rows("hero_content")); n != 1 {
		t.Fatalf("expected the single row to be updated, have %d rows", n)
	}
	if n := store.CountRequests(http.MethodPost, "hero_content"); n != 0 {
		t.Fatalf("expected no insert, saw %d", n)
	}
}

func TestEmptyUpdateOfEmptyTableCreatesDefaultRow(t *testing.T) {
	repo, store := newTestRepository(t)

	footer, err := repo.UpdateFooterContent(context.Background(), models.FooterContentUpdate{})
	if err != nil {
		t.Fatalf("update footer: %v", err)
	}
	if footer == nil || footer.Title != "" {
		t.Fatalf("expected a default footer, got %+v", footer)
	}
	if n := len(store.Rows("footer_content")); n != 1 {
		t.Fatalf("expected one footer row, got %d", n)
	}
	if n := store.CountRequests(http.MethodPatch, "footer_content"); n != 0 {
		t.Fatalf("nothing to patch, saw %d PATCH requests", n)
	}
}

func TestUpdateHeroContentWithNoFieldsOnlyReads(t *testing.T) {
	repo, store := newTestRepository(t)
	store.Seed("hero_content", postgresttest.Row{"id": 1, "badge": "b"})

	hero, err := repo.UpdateHeroContent(context.Background(), models.HeroContentUpdate{})
	if err != nil {
		t.Fatalf("update hero: %v", err)
	}
	if hero.Badge != "b" {
		t.Fatalf("unexpected hero: %+v", hero)
	}
	if n := store.CountRequests(http.MethodPatch, "hero_content"); n != 0 {
		t.Fatalf("expected no write, saw %d patches", n)
	}
}

func TestUpdateFooterContentLosingInsertRaceUpdatesWinner(t *testing.T) {
	repo, store := newTestRepository(t)
	store.Before(http.MethodPost, "footer_content", func() {
		store.Seed("footer_content", postgresttest.Row{"id": "winner", "title": "theirs", "cta": "Let's Talk"})
	})

	footer, err := repo.UpdateFooterContent(context.Background(), models.FooterContentUpdate{Title: str("mine")})
	if err != nil {
		t.Fatalf("update footer: %v", err)
	}
	if footer.Title != "mine" || footer.Cta != "Let's Talk" {
		t.Fatalf("expected write applied to the existing row, got %+v", footer)
	}
	if n := len(store.Rows("footer_content")); n != 1 {
		t.Fatalf("singleton violated: %d rows", n)
	}
}

func TestDuplicatedSingletonIsAStoreError(t *testing.T) {
	repo, store := newTestRepository(t)
	store.Seed("footer_content", postgresttest.Row{"id": 1, "title": "a"}, postgresttest.Row{"id": 2, "title": "b"})

	_, err := repo.GetFooterContent(context.Background())
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("duplicates must not read as not found")
	}
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
}

func TestUpdateFooterContentPropagatesStoreFailure(t *testing.T) {
	repo, store := newTestRepository(t)
	store.Seed("footer_content", postgresttest.Row{"id": 1, "title": "a"})
	store.Fail(http.MethodPatch, "footer_content", http.StatusForbidden, "42501", "permission denied for table footer_content")

	_, err := repo.UpdateFooterContent(context.Background(), models.FooterContentUpdate{Cta: str("x")})
	var se *StoreError
	if !errors.As(err, &se) || se.Code != "42501" {
		t.Fatalf("expected StoreError 42501, got %v", err)
	}
}
