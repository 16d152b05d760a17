package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	postgrest "github.com/supabase-community/postgrest-go"

	"lensfolio/api-gateway/internal/rowmap"
	"lensfolio/api-gateway/models"
)

const (
	heroTable   = "hero_content"
	footerTable = "footer_content"
)

// GetHeroContent returns the hero copy, or ErrNotFound when the table is empty.
func (r *Repository) GetHeroContent(ctx context.Context) (*models.HeroContent, error) {
	const op = "getHeroContent"

	var row models.HeroContentRow
	if err := r.singleton(ctx, op, heroTable, &row); err != nil {
		return nil, r.fail(op, "fetching hero content", err)
	}
	c := rowmap.HeroRowToContent(row)
	return &c, nil
}

// UpdateHeroContent writes the fields present in u, creating the row if the
// table is empty, and returns the stored copy.
func (r *Repository) UpdateHeroContent(ctx context.Context, u models.HeroContentUpdate) (*models.HeroContent, error) {
	const op = "updateHeroContent"

	if err := r.writeSingleton(ctx, op, heroTable, rowmap.HeroUpdateToRow(u)); err != nil {
		return nil, r.fail(op, "updating hero content", err)
	}
	return r.GetHeroContent(ctx)
}

// GetFooterContent returns the footer copy, or ErrNotFound when the table is
// empty.
func (r *Repository) GetFooterContent(ctx context.Context) (*models.FooterContent, error) {
	const op = "getFooterContent"

	var row models.FooterContentRow
	if err := r.singleton(ctx, op, footerTable, &row); err != nil {
		return nil, r.fail(op, "fetching footer content", err)
	}
	c := rowmap.FooterRowToContent(row)
	return &c, nil
}

// UpdateFooterContent writes the fields present in u, creating the row if the
// table is empty, and returns the stored copy.
func (r *Repository) UpdateFooterContent(ctx context.Context, u models.FooterContentUpdate) (*models.FooterContent, error) {
	const op = "updateFooterContent"

	if err := r.writeSingleton(ctx, op, footerTable, rowmap.FooterUpdateToRow(u)); err != nil {
		return nil, r.fail(op, "updating footer content", err)
	}
	return r.GetFooterContent(ctx)
}

// singleton decodes the only row of table into out. Zero rows is ErrNotFound;
// more than one is a store error, since the table is meant to hold one row.
func (r *Repository) singleton(ctx context.Context, op, table string, out any) error {
	var rows []json.RawMessage
	err := r.fetch(ctx, op, &rows, func() *postgrest.FilterBuilder {
		return r.client.From(table).Select("*", "", false).Limit(2, "")
	})
	if err != nil {
		return err
	}
	switch len(rows) {
	case 0:
		return fmt.Errorf("%s: %s row %w", op, table, ErrNotFound)
	case 1:
		if err := json.Unmarshal(rows[0], out); err != nil {
			return &StoreError{Op: op, Message: "decoding response: " + err.Error(), Err: err}
		}
		return nil
	default:
		return &StoreError{Op: op, Message: fmt.Sprintf("expected one %s row, found several", table)}
	}
}

// writeSingleton updates the row of table in place or inserts it when the
// table is empty; with no fields the inserted row takes the column defaults.
// If another writer inserted first, the write is applied to that row instead.
func (r *Repository) writeSingleton(ctx context.Context, op, table string, fields map[string]any) error {
	id, found, err := r.singletonID(ctx, op, table)
	if err != nil {
		return err
	}
	if found && len(fields) == 0 {
		return nil
	}
	if !found {
		if fields == nil {
			fields = map[string]any{}
		}
		_, err = r.exec(ctx, op, func() *postgrest.FilterBuilder {
			return r.client.From(table).Insert(fields, false, "", "minimal", "")
		})
		if err == nil || !hasCode(err, codeUniqueViolation) {
			return err
		}
		r.log.WithField("op", op).Warnf("Concurrent insert into %s, updating the existing row", table)
		if len(fields) == 0 {
			return nil
		}
		if id, found, err = r.singletonID(ctx, op, table); err != nil {
			return err
		}
		if !found {
			return &StoreError{Op: op, Code: codeUniqueViolation, Message: table + " row vanished after a conflicting insert"}
		}
	}

	_, err = r.exec(ctx, op, func() *postgrest.FilterBuilder {
		return r.client.From(table).Update(fields, "minimal", "").Eq("id", id)
	})
	return err
}

func (r *Repository) singletonID(ctx context.Context, op, table string) (string, bool, error) {
	var rows []map[string]any
	err := r.fetch(ctx, op, &rows, func() *postgrest.FilterBuilder {
		return r.client.From(table).Select("id", "", false).Limit(1, "")
	})
	if err != nil || len(rows) == 0 {
		return "", false, err
	}
	switch id := rows[0]["id"].(type) {
	case string:
		return id, true, nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true, nil
	default:
		return "", false, &StoreError{Op: op, Message: fmt.Sprintf("%s row has no usable id", table)}
	}
}
