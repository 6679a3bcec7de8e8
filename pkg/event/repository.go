package event

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// Repository reads events from the external event store.
type Repository interface {
	GetEvents(ctx context.Context, userId int) ([]Event, error)
}

type querier interface {
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

type RepositoryImpl struct {
	db querier
}

// NewRepository accepts a *pgxpool.Pool, *pgx.Conn or pgx.Tx.
func NewRepository(db querier) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

// GetEvents returns every event of the user ordered by id, which is the
// order they were logged in.
func (r *RepositoryImpl) GetEvents(ctx context.Context, userId int) ([]Event, error) {
	query := `SELECT id,
       				 title,
       				 date,
       				 range_start,
       				 range_end,
       				 start_time,
       				 end_time,
       				 address,
       				 details,
       				 photo
			  FROM event
			  WHERE user_id = $1
			  ORDER BY id`

	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 16)
	for rows.Next() {
		var id int
		var e Event
		var rangeStart, rangeEnd, startTime, endTime, address, details, photo *string
		if err := rows.Scan(&id, &e.Title, &e.Date, &rangeStart, &rangeEnd, &startTime, &endTime, &address, &details, &photo); err != nil {
			err := fmt.Errorf("could not scan event row: %w", err)
			log.Error(err)
			return nil, err
		}
		e.Id = strconv.Itoa(id)
		e.RangeStart = deref(rangeStart)
		e.RangeEnd = deref(rangeEnd)
		e.StartTime = deref(startTime)
		e.EndTime = deref(endTime)
		e.Address = deref(address)
		e.Details = deref(details)
		e.Photo = deref(photo)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate event rows: %w", err)
	}
	return events, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PostgresSource exposes one user's events from the store as a Source.
type PostgresSource struct {
	repo   Repository
	userId int
}

func NewPostgresSource(repo Repository, userId int) *PostgresSource {
	return &PostgresSource{repo: repo, userId: userId}
}

func (s *PostgresSource) FetchEvents(ctx context.Context) ([]Event, error) {
	return s.repo.GetEvents(ctx, s.userId)
}
