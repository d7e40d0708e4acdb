package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driven"
)

// Ensure fatwaStore implements the interface.
var _ driven.FatwaStore = (*fatwaStore)(nil)

const fatwaColumns = `id, title_primary, question_primary, answer_primary,
	title_secondary, question_secondary, answer_secondary,
	category, tags, created_at, updated_at, is_active, is_embedded`

// fatwaStore wraps Store to implement driven.FatwaStore.
type fatwaStore struct {
	store *Store
}

func (f *fatwaStore) Insert(ctx context.Context, fatwa *domain.Fatwa) error {
	tags, err := encodeTags(fatwa.Tags)
	if err != nil {
		return err
	}

	result, err := f.store.db.ExecContext(ctx, `
		INSERT INTO fatwas (`+fatwaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		fatwa.ID, fatwa.TitlePrimary, fatwa.QuestionPrimary, fatwa.AnswerPrimary,
		nullString(fatwa.TitleSecondary), nullString(fatwa.QuestionSecondary), nullString(fatwa.AnswerSecondary),
		fatwa.Category, tags, toNanos(fatwa.CreatedAt), toNanos(fatwa.UpdatedAt),
		boolToInt(fatwa.IsActive), boolToInt(fatwa.IsEmbedded),
	)
	if err != nil {
		return fmt.Errorf("inserting fatwa: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("fatwa %d: %w", fatwa.ID, domain.ErrAlreadyExists)
	}
	return nil
}

func (f *fatwaStore) Replace(ctx context.Context, fatwa *domain.Fatwa) error {
	tags, err := encodeTags(fatwa.Tags)
	if err != nil {
		return err
	}

	result, err := f.store.db.ExecContext(ctx, `
		UPDATE fatwas SET
			title_primary = ?, question_primary = ?, answer_primary = ?,
			title_secondary = ?, question_secondary = ?, answer_secondary = ?,
			category = ?, tags = ?, created_at = ?, updated_at = ?,
			is_active = ?, is_embedded = ?
		WHERE id = ?
	`,
		fatwa.TitlePrimary, fatwa.QuestionPrimary, fatwa.AnswerPrimary,
		nullString(fatwa.TitleSecondary), nullString(fatwa.QuestionSecondary), nullString(fatwa.AnswerSecondary),
		fatwa.Category, tags, toNanos(fatwa.CreatedAt), toNanos(fatwa.UpdatedAt),
		boolToInt(fatwa.IsActive), boolToInt(fatwa.IsEmbedded),
		fatwa.ID,
	)
	if err != nil {
		return fmt.Errorf("replacing fatwa: %w", err)
	}
	return requireRow(result, "fatwa", fatwa.ID)
}

func (f *fatwaStore) Get(ctx context.Context, id int64) (*domain.Fatwa, error) {
	row := f.store.db.QueryRowContext(ctx, `SELECT `+fatwaColumns+` FROM fatwas WHERE id = ?`, id)
	fatwa, err := scanFatwa(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fatwa %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying fatwa: %w", err)
	}
	return fatwa, nil
}

func (f *fatwaStore) Delete(ctx context.Context, id int64) error {
	result, err := f.store.db.ExecContext(ctx, "DELETE FROM fatwas WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting fatwa: %w", err)
	}
	return requireRow(result, "fatwa", id)
}

func (f *fatwaStore) Find(ctx context.Context, filter driven.FatwaFilter) ([]domain.Fatwa, error) {
	where, args := buildWhere(filter)
	query := `SELECT ` + fatwaColumns + ` FROM fatwas` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, sqlLimit(filter.Limit), max(filter.Offset, 0))

	rows, err := f.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying fatwas: %w", err)
	}
	defer rows.Close()

	var fatwas []domain.Fatwa //nolint:prealloc
	for rows.Next() {
		fatwa, err := scanFatwa(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning fatwa: %w", err)
		}
		fatwas = append(fatwas, *fatwa)
	}
	return fatwas, rows.Err()
}

func (f *fatwaStore) FindIDs(ctx context.Context, filter driven.FatwaFilter) ([]int64, error) {
	where, args := buildWhere(filter)
	query := `SELECT id FROM fatwas` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, sqlLimit(filter.Limit), max(filter.Offset, 0))
	return f.queryIDs(ctx, query, args...)
}

func (f *fatwaStore) Count(ctx context.Context, filter driven.FatwaFilter) (int, error) {
	where, args := buildWhere(filter)
	var n int
	if err := f.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fatwas`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting fatwas: %w", err)
	}
	return n, nil
}

// TextMatch runs an FTS5 query where every term must match, ranked by bm25.
func (f *fatwaStore) TextMatch(ctx context.Context, query string, limit int) ([]int64, error) {
	match := ftsQuery(query)
	if match == "" {
		return []int64{}, nil
	}

	ids, err := f.queryIDs(ctx, `
		SELECT f.id FROM fatwas_fts
		JOIN fatwas f ON f.id = fatwas_fts.rowid
		WHERE fatwas_fts MATCH ? AND f.is_active = 1
		ORDER BY bm25(fatwas_fts), f.id
		LIMIT ?
	`, match, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTextIndexUnavailable, err)
	}
	return ids, nil
}

// PatternMatch runs a LIKE substring scan over the searchable columns.
func (f *fatwaStore) PatternMatch(ctx context.Context, query string, limit int) ([]int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []int64{}, nil
	}
	pattern := "%" + escapeLike(foldCase(query)) + "%"

	columns := []string{
		"title_primary", "question_primary", "answer_primary",
		"title_secondary", "question_secondary", "answer_secondary",
	}
	conds := make([]string, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, col := range columns {
		conds[i] = fmt.Sprintf(`%s(COALESCE(%s, '')) LIKE ? ESCAPE '\'`, foldFunc, col)
		args = append(args, pattern)
	}
	args = append(args, sqlLimit(limit))

	sqlQuery := `SELECT id FROM fatwas WHERE is_active = 1 AND (` + strings.Join(conds, " OR ") +
		`) ORDER BY created_at DESC, id DESC LIMIT ?`
	ids, err := f.queryIDs(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("pattern matching fatwas: %w", err)
	}
	return ids, nil
}

func (f *fatwaStore) SetEmbedded(ctx context.Context, id int64, embedded bool) error {
	result, err := f.store.db.ExecContext(ctx,
		"UPDATE fatwas SET is_embedded = ? WHERE id = ?", boolToInt(embedded), id)
	if err != nil {
		return fmt.Errorf("updating embedded flag: %w", err)
	}
	return requireRow(result, "fatwa", id)
}

func (f *fatwaStore) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := f.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// buildWhere renders the filter as a WHERE clause. Offset and Limit are not included.
func buildWhere(filter driven.FatwaFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.IDs != nil {
		if len(filter.IDs) == 0 {
			conds = append(conds, "1 = 0")
		} else {
			conds = append(conds, "id IN ("+placeholders(len(filter.IDs))+")")
			args = append(args, int64Args(filter.IDs)...)
		}
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.ActiveOnly {
		conds = append(conds, "is_active = 1")
	}
	if filter.PendingIndex {
		conds = append(conds, "is_embedded = 0")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ftsQuery quotes each whitespace-separated term so FTS5 syntax in user
// input is matched literally. Terms are implicitly ANDed.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanFatwa(s scanner) (*domain.Fatwa, error) {
	var (
		f                                domain.Fatwa
		titleSec, questionSec, answerSec sql.NullString
		tags                             string
		createdAt, updatedAt             int64
		isActive, isEmbedded             int
	)
	err := s.Scan(
		&f.ID, &f.TitlePrimary, &f.QuestionPrimary, &f.AnswerPrimary,
		&titleSec, &questionSec, &answerSec,
		&f.Category, &tags, &createdAt, &updatedAt, &isActive, &isEmbedded,
	)
	if err != nil {
		return nil, err
	}

	f.TitleSecondary = stringPtr(titleSec)
	f.QuestionSecondary = stringPtr(questionSec)
	f.AnswerSecondary = stringPtr(answerSec)
	f.CreatedAt = fromNanos(createdAt)
	f.UpdatedAt = fromNanos(updatedAt)
	f.IsActive = isActive != 0
	f.IsEmbedded = isEmbedded != 0

	if err := json.Unmarshal([]byte(tags), &f.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if len(f.Tags) == 0 {
		f.Tags = nil
	}
	return &f, nil
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(data), nil
}

func requireRow(result sql.Result, kind string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
