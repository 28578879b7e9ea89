// Package postgres implements the catalog store on PostgreSQL.
//
// Expected schema (managed by compose migrations, not by this package):
//
//	venues(id uuid pk, slug text unique, name text, address text,
//	    lat double precision, lon double precision, categories jsonb,
//	    is_featured boolean, cover_photo_url text, external_place_id text,
//	    created_at timestamptz default now(), updated_at timestamptz default now())
//	vibe_reports(id uuid pk, venue_id uuid references venues on delete cascade,
//	    submitted_at timestamptz default now(), vibe_level int,
//	    queue_length text, cover_charge double precision, music_genre text,
//	    notes text, image_url text, user_id text, anon_id text,
//	    flagged boolean default false)
//
// A unique index on venues.external_place_id would close the accepted
// double-materialization race; the code does not rely on one.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vibecheck/vibecheck/internal/model"
	"github.com/vibecheck/vibecheck/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Venues() store.Venues   { return &venues{db: s.db} }
func (s *pgStore) Reports() store.Reports { return &reports{db: s.db} }

// HealthPing implements store.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Bootstrap performs a connectivity check to ensure Postgres is reachable.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil
	}
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return db.PingContext(ctx)
}

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", model.ErrConflict, pgErr.ConstraintName)
	}
	return err
}

// --- Venues ---

type venues struct{ db *sql.DB }

const venueCols = `id, slug, name, address, lat, lon, categories, is_featured, cover_photo_url, external_place_id, created_at, updated_at`

func (v *venues) Create(ctx context.Context, m *model.Venue) (*model.Venue, error) {
	id := m.ID
	if id == "" {
		id = uuid.New().String()
	}
	cats, err := json.Marshal(m.Categories)
	if err != nil {
		return nil, err
	}
	var created, updated time.Time
	row := v.db.QueryRowContext(ctx, `
        INSERT INTO venues (id, slug, name, address, lat, lon, categories, is_featured, cover_photo_url, external_place_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING created_at, updated_at
    `, id, m.Slug, m.Name, m.Address, m.Lat, m.Lon, cats, m.IsFeatured, m.CoverPhotoURL, m.ExternalPlaceID)
	if err := row.Scan(&created, &updated); err != nil {
		return nil, mapErr(err)
	}
	out := *m
	out.ID = id
	out.CreatedAt = created
	out.UpdatedAt = updated
	return &out, nil
}

func scanVenue(row interface{ Scan(...interface{}) error }) (*model.Venue, error) {
	var out model.Venue
	var cats []byte
	if err := row.Scan(&out.ID, &out.Slug, &out.Name, &out.Address, &out.Lat, &out.Lon,
		&cats, &out.IsFeatured, &out.CoverPhotoURL, &out.ExternalPlaceID,
		&out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	if len(cats) > 0 {
		if err := json.Unmarshal(cats, &out.Categories); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

func (v *venues) GetByID(ctx context.Context, id string) (*model.Venue, error) {
	return scanVenue(v.db.QueryRowContext(ctx,
		`SELECT `+venueCols+` FROM venues WHERE id=$1`, id))
}

func (v *venues) GetBySlug(ctx context.Context, slug string) (*model.Venue, error) {
	return scanVenue(v.db.QueryRowContext(ctx,
		`SELECT `+venueCols+` FROM venues WHERE slug=$1`, slug))
}

func (v *venues) List(ctx context.Context) ([]*model.Venue, error) {
	rows, err := v.db.QueryContext(ctx,
		`SELECT `+venueCols+` FROM venues ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Venue
	for rows.Next() {
		m, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (v *venues) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := v.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM venues WHERE slug=$1)`, slug).Scan(&exists)
	return exists, err
}

func (v *venues) GetByExternalID(ctx context.Context, placeID string) (*model.Venue, error) {
	return scanVenue(v.db.QueryRowContext(ctx,
		`SELECT `+venueCols+` FROM venues WHERE external_place_id=$1 ORDER BY created_at LIMIT 1`, placeID))
}

// --- Reports ---

type reports struct{ db *sql.DB }

const reportCols = `id, venue_id, submitted_at, vibe_level, queue_length, cover_charge, music_genre, notes, image_url, user_id, anon_id, flagged`

func (r *reports) Create(ctx context.Context, m *model.VibeReport) (*model.VibeReport, error) {
	id := m.ID
	if id == "" {
		id = uuid.New().String()
	}
	var queue *string
	if m.QueueLength != nil {
		q := string(*m.QueueLength)
		queue = &q
	}
	var submitted time.Time
	row := r.db.QueryRowContext(ctx, `
        INSERT INTO vibe_reports (id, venue_id, vibe_level, queue_length, cover_charge, music_genre, notes, image_url, user_id, anon_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING submitted_at
    `, id, m.VenueID, m.VibeLevel, queue, m.CoverCharge, m.MusicGenre, m.Notes, m.ImageURL, m.UserID, m.AnonID)
	if err := row.Scan(&submitted); err != nil {
		return nil, mapErr(err)
	}
	out := *m
	out.ID = id
	out.SubmittedAt = submitted
	return &out, nil
}

func scanReport(row interface{ Scan(...interface{}) error }) (*model.VibeReport, error) {
	var out model.VibeReport
	var queue *string
	if err := row.Scan(&out.ID, &out.VenueID, &out.SubmittedAt, &out.VibeLevel,
		&queue, &out.CoverCharge, &out.MusicGenre, &out.Notes, &out.ImageURL,
		&out.UserID, &out.AnonID, &out.Flagged); err != nil {
		return nil, mapErr(err)
	}
	if queue != nil {
		q := model.QueueLength(*queue)
		out.QueueLength = &q
	}
	return &out, nil
}

func (r *reports) ListByVenue(ctx context.Context, venueID string) ([]*model.VibeReport, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+reportCols+` FROM vibe_reports
        WHERE venue_id=$1 AND flagged=false
        ORDER BY submitted_at DESC
    `, venueID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.VibeReport
	for rows.Next() {
		m, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *reports) List(ctx context.Context, req model.ListReportsRequest) ([]*model.VibeReport, int, error) {
	where := ``
	args := []interface{}{}
	if req.Flagged != nil {
		where = `WHERE flagged=$1`
		args = append(args, *req.Flagged)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vibe_reports `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`
        SELECT `+reportCols+` FROM vibe_reports %s
        ORDER BY submitted_at DESC
        LIMIT $%d OFFSET $%d
    `, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.VibeReport
	for rows.Next() {
		m, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (r *reports) SetFlagged(ctx context.Context, reportID string, flagged bool) (*model.VibeReport, error) {
	return scanReport(r.db.QueryRowContext(ctx, `
        UPDATE vibe_reports SET flagged=$1 WHERE id=$2
        RETURNING `+reportCols+`
    `, flagged, reportID))
}
