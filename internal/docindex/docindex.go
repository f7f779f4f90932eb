// Package docindex maintains a full-text index of corpus pages and
// answers "how many papers mention X" questions against it.
package docindex

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/i2i-labs/tobi-backend/internal/config"
	"github.com/i2i-labs/tobi-backend/internal/db"
)

// ErrNotConfigured is returned when the keyword index is disabled or
// its table and column names are not set.
var ErrNotConfigured = errors.New("docindex: keyword index not configured")

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Index wraps the FTS table holding one row per corpus page.
type Index struct {
	db  *db.DB
	cfg config.IndexConfig
}

// New validates the index configuration, creates the FTS table if
// missing, and returns the index. Returns ErrNotConfigured when the
// index is disabled or incompletely configured.
func New(database *db.DB, cfg config.IndexConfig) (*Index, error) {
	if !cfg.Enabled {
		return nil, ErrNotConfigured
	}
	for _, name := range []string{cfg.Table, cfg.TextColumn, cfg.DocColumn, cfg.PageColumn} {
		if !identRe.MatchString(name) {
			return nil, ErrNotConfigured
		}
	}

	ix := &Index{db: database, cfg: cfg}
	if err := ix.migrate(); err != nil {
		return nil, fmt.Errorf("creating index table: %w", err)
	}
	return ix, nil
}

// migrate creates the FTS5 virtual table. Only the text column is
// indexed; doc and page ride along unindexed.
func (ix *Index) migrate() error {
	stmt := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS %q USING fts5(%q, %q UNINDEXED, %q UNINDEXED)`,
		ix.cfg.Table, ix.cfg.TextColumn, ix.cfg.DocColumn, ix.cfg.PageColumn,
	)
	_, err := ix.db.Exec(stmt)
	return err
}

// AddPage stores the text of one page of a document.
func (ix *Index) AddPage(ctx context.Context, docKey string, page int, text string) error {
	stmt := fmt.Sprintf(`INSERT INTO %q (%q, %q, %q) VALUES (?, ?, ?)`,
		ix.cfg.Table, ix.cfg.TextColumn, ix.cfg.DocColumn, ix.cfg.PageColumn)
	_, err := ix.db.ExecContext(ctx, stmt, text, docKey, page)
	if err != nil {
		return fmt.Errorf("indexing page %d of %s: %w", page, docKey, err)
	}
	return nil
}

// DeleteDoc removes all pages of a document, for re-ingestion.
func (ix *Index) DeleteDoc(ctx context.Context, docKey string) error {
	stmt := fmt.Sprintf(`DELETE FROM %q WHERE %q = ?`, ix.cfg.Table, ix.cfg.DocColumn)
	_, err := ix.db.ExecContext(ctx, stmt, docKey)
	if err != nil {
		return fmt.Errorf("deleting pages of %s: %w", docKey, err)
	}
	return nil
}

// DocCount lists the pages of one document that matched.
type DocCount struct {
	Doc   string
	Pages []int
}

// CountResult is the answer to a keyword-count question.
type CountResult struct {
	Keyword   string
	Matched   []DocCount
	TotalDocs int
}

// CountKeyword reports which documents mention the keyword, on which
// pages, and how many documents the corpus holds in total. The keyword
// is matched as a phrase.
func (ix *Index) CountKeyword(ctx context.Context, keyword string) (*CountResult, error) {
	res := &CountResult{Keyword: keyword}

	totalStmt := fmt.Sprintf(`SELECT COUNT(DISTINCT %q) FROM %q`, ix.cfg.DocColumn, ix.cfg.Table)
	if err := ix.db.QueryRowContext(ctx, totalStmt).Scan(&res.TotalDocs); err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	matchStmt := fmt.Sprintf(`SELECT %q, %q FROM %q WHERE %q MATCH ? ORDER BY %q, %q`,
		ix.cfg.DocColumn, ix.cfg.PageColumn, ix.cfg.Table,
		ix.cfg.Table, ix.cfg.DocColumn, ix.cfg.PageColumn)
	rows, err := ix.db.QueryContext(ctx, matchStmt, phraseQuery(keyword))
	if err != nil {
		return nil, fmt.Errorf("matching %q: %w", keyword, err)
	}
	defer rows.Close()

	for rows.Next() {
		var doc string
		var page int
		if err := rows.Scan(&doc, &page); err != nil {
			return nil, err
		}
		if n := len(res.Matched); n > 0 && res.Matched[n-1].Doc == doc {
			res.Matched[n-1].Pages = append(res.Matched[n-1].Pages, page)
		} else {
			res.Matched = append(res.Matched, DocCount{Doc: doc, Pages: []int{page}})
		}
	}
	return res, rows.Err()
}

// phraseQuery wraps the keyword as an FTS5 phrase so punctuation and
// multi-word keywords don't hit the query syntax.
func phraseQuery(keyword string) string {
	return `"` + strings.ReplaceAll(keyword, `"`, `""`) + `"`
}
