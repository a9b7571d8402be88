// internal/taxonomy/sqlite.go
package taxonomy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore reads an ete3-style taxonomy database:
//
//	species(taxid INT PRIMARY KEY, parent INT, spname TEXT, rank TEXT, track TEXT)
//
// track lists the ids from the taxon up to the root, comma separated. The
// handle is opened read-only and is safe for concurrent readers.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens path read-only and checks that the species table exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	var n int
	if err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='species'`).Scan(&n); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if n == 0 {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: no species table", path)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Node implements Store.
func (s *SQLiteStore) Node(ctx context.Context, id TaxID) (Node, error) {
	var (
		n          Node
		name, rank sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT taxid, parent, spname, rank FROM species WHERE taxid = ?`, int64(id),
	).Scan(&n.ID, &n.Parent, &name, &rank)
	if errors.Is(err, sql.ErrNoRows) {
		return Node{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return Node{}, fmt.Errorf("taxon %d: %w", id, err)
	}
	n.Name = name.String
	n.Rank = rankOf(rank.String)
	return n, nil
}

// Lineage implements LineageStore using the track column.
func (s *SQLiteStore) Lineage(ctx context.Context, id TaxID) ([]Node, error) {
	var track sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT track FROM species WHERE taxid = ?`, int64(id)).Scan(&track)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("taxon %d: %w", id, err)
	}
	ids, err := parseTrack(track.String)
	if err != nil || len(ids) == 0 {
		// Track missing or damaged: walk parents instead.
		return walk(ctx, s, id)
	}
	if len(ids) > maxDepth {
		return nil, fmt.Errorf("%w: taxon %d", ErrCycle, id)
	}

	args := make([]any, len(ids))
	for i, v := range ids {
		args[i] = int64(v)
	}
	q := `SELECT taxid, parent, spname, rank FROM species WHERE taxid IN (?` +
		strings.Repeat(",?", len(ids)-1) + `)`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("taxon %d lineage: %w", id, err)
	}
	defer rows.Close()

	byID := make(map[TaxID]Node, len(ids))
	for rows.Next() {
		var (
			n          Node
			name, rank sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.Parent, &name, &rank); err != nil {
			return nil, fmt.Errorf("taxon %d lineage: %w", id, err)
		}
		n.Name = name.String
		n.Rank = rankOf(rank.String)
		byID[n.ID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("taxon %d lineage: %w", id, err)
	}

	out := make([]Node, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		n, ok := byID[ids[i]]
		if !ok {
			return nil, fmt.Errorf("%w: %d (ancestor of %d)", ErrNotFound, ids[i], id)
		}
		out = append(out, n)
	}
	return out, nil
}

// walk is Path without the LineageStore fast path.
func walk(ctx context.Context, s Store, id TaxID) ([]Node, error) {
	return Path(ctx, nodeOnly{s}, id)
}

type nodeOnly struct{ Store }

func parseTrack(track string) ([]TaxID, error) {
	track = strings.TrimSpace(track)
	if track == "" {
		return nil, nil
	}
	parts := strings.Split(track, ",")
	out := make([]TaxID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, TaxID(v))
	}
	return out, nil
}
