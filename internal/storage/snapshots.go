/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// language=SQL
// dialect=SQLite
const insertAutosaveSQL = `INSERT INTO autosaves(doc_name, ts, blob) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestAutosaveSQL = `SELECT ts, blob FROM autosaves WHERE doc_name = ? ORDER BY ts DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listAutosavesSQL = `SELECT ts, blob FROM autosaves WHERE doc_name = ? ORDER BY ts DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldAutosavesSQL = `DELETE FROM autosaves WHERE doc_name = ? AND id NOT IN (
	SELECT id FROM autosaves WHERE doc_name = ? ORDER BY ts DESC LIMIT ?
)`

// Autosave is one persisted document snapshot blob.
type Autosave struct {
	TS   time.Time
	Blob []byte
}

// SaveAutosave persists a full document snapshot blob with a timestamp.
// It opens the document's embedded database if needed and inserts the record.
func SaveAutosave(ctx context.Context, dh *DocumentHandle, blob []byte, ts time.Time) error {
	if dh == nil {
		return errors.New("nil DocumentHandle")
	}
	db, err := InitOrOpenIndex(dh.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, insertAutosaveSQL, dh.Document.Name, ts.UTC().Format(time.RFC3339Nano), blob)
	return err
}

// GetLatestAutosave returns the latest autosave blob for the document or nil if none.
func GetLatestAutosave(ctx context.Context, dh *DocumentHandle) ([]byte, time.Time, error) {
	if dh == nil {
		return nil, time.Time{}, errors.New("nil DocumentHandle")
	}
	db, err := InitOrOpenIndex(dh.Root)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer func() { _ = db.Close() }()
	var tsStr string
	var blob []byte
	err = db.QueryRowContext(ctx, selectLatestAutosaveSQL, dh.Document.Name).Scan(&tsStr, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, tsStr)
	if err != nil {
		return blob, time.Time{}, nil // return blob even if ts parse fails
	}
	return blob, ts, nil
}

// ListAutosaves returns up to limit most recent autosaves for the document.
func ListAutosaves(ctx context.Context, dh *DocumentHandle, limit int) ([]Autosave, error) {
	if dh == nil {
		return nil, errors.New("nil DocumentHandle")
	}
	if limit <= 0 {
		limit = 50
	}
	db, err := InitOrOpenIndex(dh.Root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	rows, err := db.QueryContext(ctx, listAutosavesSQL, dh.Document.Name, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Autosave
	for rows.Next() {
		var tsStr string
		var blob []byte
		if err := rows.Scan(&tsStr, &blob); err != nil {
			return nil, err
		}
		ts, _ := time.Parse(time.RFC3339Nano, tsStr)
		out = append(out, Autosave{TS: ts, Blob: blob})
	}
	return out, rows.Err()
}

// PruneOldAutosaves keeps at most keepLast autosaves for the document and deletes older ones.
func PruneOldAutosaves(ctx context.Context, dh *DocumentHandle, keepLast int) (int64, error) {
	if dh == nil {
		return 0, errors.New("nil DocumentHandle")
	}
	if keepLast <= 0 {
		return 0, nil
	}
	db, err := InitOrOpenIndex(dh.Root)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	res, err := db.ExecContext(ctx, pruneOldAutosavesSQL, dh.Document.Name, dh.Document.Name, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
