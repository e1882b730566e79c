package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cypheruni/learn/internal/models"
)

// PostgresStore persists the catalog in Postgres via pgx
type PostgresStore struct {
	db   *pgxpool.Pool
	opts Options
}

// NewPostgresStore creates a catalog store backed by the given pool
func NewPostgresStore(db *pgxpool.Pool, opts Options) *PostgresStore {
	return &PostgresStore{db: db, opts: opts}
}

const seriesColumns = `id, name, description, "thumbnailUrl", "totalDuration", level, "videoCount"`

func scanSeries(row pgx.Row) (*models.Series, error) {
	var sr models.Series
	err := row.Scan(
		&sr.ID,
		&sr.Name,
		&sr.Description,
		&sr.ThumbnailURL,
		&sr.TotalDuration,
		&sr.Level,
		&sr.VideoCount,
	)
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

func (s *PostgresStore) ListSeries(ctx context.Context) ([]models.Series, error) {
	rows, err := s.db.Query(ctx, `SELECT `+seriesColumns+` FROM series`)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	defer rows.Close()

	out := make([]models.Series, 0)
	for rows.Next() {
		sr, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan series: %w", err)
		}
		out = append(out, *sr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating series: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetSeries(ctx context.Context, id string) (*models.Series, error) {
	sr, err := scanSeries(s.db.QueryRow(ctx, `SELECT `+seriesColumns+` FROM series WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get series: %w", err)
	}
	return sr, nil
}

func (s *PostgresStore) CreateSeries(ctx context.Context, in models.CreateSeriesInput) (*models.Series, error) {
	query := `
		INSERT INTO series (id, name, description, "thumbnailUrl", "totalDuration", level, "videoCount")
		VALUES ($1, $2, $3, $4, $5, $6, 0)
		RETURNING ` + seriesColumns

	sr, err := scanSeries(s.db.QueryRow(ctx, query,
		uuid.NewString(),
		in.Name,
		in.Description,
		in.ThumbnailURL,
		in.TotalDuration,
		in.Level,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create series: %w", err)
	}
	return sr, nil
}

func (s *PostgresStore) UpdateSeries(ctx context.Context, id string, in models.UpdateSeriesInput) (*models.Series, error) {
	// Build dynamic update query; "videoCount" is never settable here
	query := `UPDATE series SET id = id`
	args := []interface{}{}
	argCount := 0

	set := func(column string, value interface{}) {
		argCount++
		query += fmt.Sprintf(`, %s = $%d`, column, argCount)
		args = append(args, value)
	}
	if in.Name != nil {
		set("name", *in.Name)
	}
	if in.Description != nil {
		set("description", *in.Description)
	}
	if in.ThumbnailURL != nil {
		set(`"thumbnailUrl"`, *in.ThumbnailURL)
	}
	if in.TotalDuration != nil {
		set(`"totalDuration"`, *in.TotalDuration)
	}
	if in.Level != nil {
		set("level", *in.Level)
	}

	argCount++
	query += fmt.Sprintf(` WHERE id = $%d RETURNING `, argCount) + seriesColumns
	args = append(args, id)

	sr, err := scanSeries(s.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update series: %w", err)
	}
	return sr, nil
}

func (s *PostgresStore) DeleteSeries(ctx context.Context, id string) error {
	// Videos go first, in the same transaction as the series row
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM videos WHERE "seriesId" = $1`, id); err != nil {
		return fmt.Errorf("failed to cascade delete videos: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM series WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete series: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

const videoColumns = `id, "seriesId", title, description, "videoUrl", "bannerUrl", duration, level, tags`

func scanVideo(row pgx.Row) (*models.Video, error) {
	var v models.Video
	err := row.Scan(
		&v.ID,
		&v.SeriesID,
		&v.Title,
		&v.Description,
		&v.VideoURL,
		&v.BannerURL,
		&v.Duration,
		&v.Level,
		&v.Tags,
	)
	if err != nil {
		return nil, err
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	return &v, nil
}

func (s *PostgresStore) ListVideos(ctx context.Context) ([]models.Video, error) {
	return s.queryVideos(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY "createdAt" ASC`)
}

func (s *PostgresStore) ListVideosBySeries(ctx context.Context, seriesID string) ([]models.Video, error) {
	return s.queryVideos(ctx, `SELECT `+videoColumns+` FROM videos WHERE "seriesId" = $1 ORDER BY "createdAt" ASC`, seriesID)
}

func (s *PostgresStore) queryVideos(ctx context.Context, query string, args ...interface{}) ([]models.Video, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	out := make([]models.Video, 0)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		out = append(out, *v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating videos: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	v, err := scanVideo(s.db.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) CreateVideo(ctx context.Context, in models.CreateVideoInput) (*models.Video, error) {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM series WHERE id = $1)`, in.SeriesID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check series: %w", err)
	}
	if !exists {
		return nil, ErrInvalidReference
	}

	query := `
		INSERT INTO videos (id, "seriesId", title, description, "videoUrl", "bannerUrl", duration, level, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + videoColumns

	v, err := scanVideo(tx.QueryRow(ctx, query,
		uuid.NewString(),
		in.SeriesID,
		in.Title,
		in.Description,
		in.VideoURL,
		in.BannerURL,
		in.Duration,
		in.Level,
		tags,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE series SET "videoCount" = "videoCount" + 1 WHERE id = $1`, in.SeriesID); err != nil {
		return nil, fmt.Errorf("failed to update video count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) UpdateVideo(ctx context.Context, id string, in models.UpdateVideoInput) (*models.Video, error) {
	query := `UPDATE videos SET id = id`
	args := []interface{}{}
	argCount := 0

	set := func(column string, value interface{}) {
		argCount++
		query += fmt.Sprintf(`, %s = $%d`, column, argCount)
		args = append(args, value)
	}
	if in.Title != nil {
		set("title", *in.Title)
	}
	if in.Description != nil {
		set("description", *in.Description)
	}
	if in.VideoURL != nil {
		set(`"videoUrl"`, *in.VideoURL)
	}
	if in.BannerURL != nil {
		set(`"bannerUrl"`, *in.BannerURL)
	}
	if in.Duration != nil {
		set("duration", *in.Duration)
	}
	if in.Level != nil {
		set("level", *in.Level)
	}
	if in.Tags != nil {
		set("tags", in.Tags)
	}

	argCount++
	query += fmt.Sprintf(` WHERE id = $%d RETURNING `, argCount) + videoColumns
	args = append(args, id)

	v, err := scanVideo(s.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update video: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) DeleteVideo(ctx context.Context, id string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var seriesID string
	err = tx.QueryRow(ctx, `DELETE FROM videos WHERE id = $1 RETURNING "seriesId"`, id).Scan(&seriesID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	// Recompute from the live count rather than decrementing
	query := `
		UPDATE series
		SET "videoCount" = (SELECT COUNT(*) FROM videos WHERE "seriesId" = $1)
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, query, seriesID); err != nil {
		return fmt.Errorf("failed to recompute video count: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) ListFeedbackByVideo(ctx context.Context, videoID string) ([]models.Feedback, error) {
	query := `
		SELECT id, "videoId", "cHandle", message, rating, timestamp
		FROM feedback
		WHERE "videoId" = $1
		ORDER BY timestamp DESC, id ASC
	`
	rows, err := s.db.Query(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	out := make([]models.Feedback, 0)
	for rows.Next() {
		var f models.Feedback
		err := rows.Scan(&f.ID, &f.VideoID, &f.CHandle, &f.Message, &f.Rating, &f.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		out = append(out, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateFeedback(ctx context.Context, in models.CreateFeedbackInput) (*models.Feedback, error) {
	if s.opts.StrictFeedback {
		var exists bool
		if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM videos WHERE id = $1)`, in.VideoID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check video: %w", err)
		}
		if !exists {
			return nil, ErrInvalidReference
		}
	}

	query := `
		INSERT INTO feedback (id, "videoId", "cHandle", message, rating, timestamp)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, "videoId", "cHandle", message, rating, timestamp
	`
	var f models.Feedback
	err := s.db.QueryRow(ctx, query,
		uuid.NewString(),
		in.VideoID,
		in.CHandle,
		in.Message,
		in.Rating,
	).Scan(&f.ID, &f.VideoID, &f.CHandle, &f.Message, &f.Rating, &f.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return &f, nil
}

func (s *PostgresStore) DeleteFeedback(ctx context.Context, id string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Reset(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `TRUNCATE feedback, videos, series`)
	if err != nil {
		return fmt.Errorf("failed to reset catalog: %w", err)
	}
	return nil
}

// Close is a no-op; the pool is owned and closed by the caller
func (s *PostgresStore) Close() error {
	return nil
}
