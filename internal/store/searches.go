package store

import (
	"fmt"
	"strings"
	"time"
)

// maxRecentSearches bounds the saved search history.
const maxRecentSearches = 10

// AddRecentSearch records a search string, deduplicating
// case-insensitively and trimming the list to the newest ten.
func (s *Store) AddRecentSearch(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("add recent search: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM recent_searches WHERE lower(query) = lower(?)`, query); err != nil {
		return fmt.Errorf("dedup recent search: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO recent_searches (query, searched_at) VALUES (?, ?)`,
		query, time.Now().UnixMicro()); err != nil {
		return fmt.Errorf("insert recent search: %w", err)
	}
	const trim = `
DELETE FROM recent_searches WHERE query NOT IN (
	SELECT query FROM recent_searches ORDER BY searched_at DESC LIMIT ?
)`
	if _, err := tx.Exec(trim, maxRecentSearches); err != nil {
		return fmt.Errorf("trim recent searches: %w", err)
	}
	return tx.Commit()
}

// RecentSearches returns the saved searches, newest first.
func (s *Store) RecentSearches() ([]string, error) {
	rows, err := s.db.Query(`SELECT query FROM recent_searches ORDER BY searched_at DESC LIMIT ?`,
		maxRecentSearches)
	if err != nil {
		return nil, fmt.Errorf("list recent searches: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan recent search: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) ClearRecentSearches() error {
	if _, err := s.db.Exec(`DELETE FROM recent_searches`); err != nil {
		return fmt.Errorf("clear recent searches: %w", err)
	}
	return nil
}
