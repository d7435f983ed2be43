// Package store persists completed text translations in SQLite so repeated
// phrases are answered without calling a backend.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

type CachedTranslation struct {
	TranslatedText string
	Service        string
	HitCount       int
}

type CacheStats struct {
	Entries   int
	TotalHits int
	Pairs     int
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; the server shares the store across requests.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translation_cache (
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		service TEXT NOT NULL DEFAULT '',
		hit_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (source_text, source_lang, target_lang)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// GetCachedTranslation looks up an exact (normalized) match and bumps its
// hit counter.
func (s *Store) GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (*CachedTranslation, bool, error) {
	key := normalizeText(sourceText)
	var entry CachedTranslation

	err := s.db.QueryRowContext(ctx,
		`SELECT translated_text, service, hit_count FROM translation_cache WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		key, sourceLang, targetLang).Scan(&entry.TranslatedText, &entry.Service, &entry.HitCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE translation_cache SET hit_count = hit_count + 1, last_used = ? WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		time.Now().UTC(), key, sourceLang, targetLang)
	if err != nil {
		return nil, false, err
	}
	entry.HitCount++

	return &entry, true, nil
}

// SaveTranslation inserts or replaces the cached translation for a text and
// language pair. Blank texts are ignored.
func (s *Store) SaveTranslation(ctx context.Context, sourceText, sourceLang, targetLang, translatedText, service string) error {
	key := normalizeText(sourceText)
	if key == "" || strings.TrimSpace(translatedText) == "" {
		return nil
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translation_cache (source_text, source_lang, target_lang, translated_text, service, hit_count, created_at, last_used)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(source_text, source_lang, target_lang) DO UPDATE SET
			translated_text = excluded.translated_text,
			service = excluded.service,
			last_used = excluded.last_used`,
		key, sourceLang, targetLang, translatedText, service, now, now)
	return err
}

func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(hit_count), 0),
			COUNT(DISTINCT source_lang || '|' || target_lang)
		FROM translation_cache`).Scan(
		&stats.Entries,
		&stats.TotalHits,
		&stats.Pairs,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Clear removes every cached entry and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_cache`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText makes visually identical input share a cache key: Devanagari
// can arrive composed or decomposed depending on the keyboard.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
