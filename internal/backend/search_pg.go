/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SearchResult is one published page matched by a search query.
type SearchResult struct {
	ID        int64     `json:"id"`
	StableID  string    `json:"stable_id"`
	Name      string    `json:"name"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchPages searches published pages via the tsvector maintained at publish
// time (page name plus node names and text props). An empty query lists all
// pages newest first.
func SearchPages(ctx context.Context, db *sql.DB, query string, limit, offset int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	var (
		b    strings.Builder
		args []any
	)
	useFTS := strings.TrimSpace(query) != ""
	b.WriteString("SELECT p.id, p.stable_id, p.name, p.version, p.updated_at FROM pages p ")
	if useFTS {
		b.WriteString("WHERE p.search_vector @@ plainto_tsquery('simple', $1) ")
		args = append(args, query)
	}
	place := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	b.WriteString("ORDER BY p.updated_at DESC, p.id ")
	b.WriteString("LIMIT " + place(limit) + " OFFSET " + place(offset))

	rows, err := db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search pages query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.StableID, &r.Name, &r.Version, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
