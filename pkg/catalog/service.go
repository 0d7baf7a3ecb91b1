package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sokol111/streamflix-reliability/pkg/core/logger"
	"github.com/Sokol111/streamflix-reliability/pkg/outbox"
	"github.com/Sokol111/streamflix-reliability/pkg/persistence"
	"github.com/Sokol111/streamflix-reliability/pkg/security/token"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

const (
	EventMovieAdded   = "movie_added"
	aggregateMovie    = "movie"
	targetAllNonAdmin = "all-non-admin"
)

// ErrTitleRequired is returned when a movie is created without a title.
var ErrTitleRequired = errors.New("Title is required") //nolint:staticcheck // user-facing message

type Service interface {
	// CreateMovie upserts a movie for an admin caller. A new movie gets a
	// movie_added outbox record in the same transaction.
	CreateMovie(ctx context.Context, in MovieInput) (*Movie, bool, error)
}

type service struct {
	repo     Repository
	tx       persistence.TxManager
	producer outbox.Producer
}

func newService(repo Repository, tx persistence.TxManager, producer outbox.Producer) Service {
	return &service{repo: repo, tx: tx, producer: producer}
}

type createResult struct {
	movie   *Movie
	created bool
}

func (s *service) CreateMovie(ctx context.Context, in MovieInput) (*Movie, bool, error) {
	if _, err := token.RequireAdmin(ctx); err != nil {
		return nil, false, err
	}
	if in.Title == "" {
		return nil, false, ErrTitleRequired
	}

	res, err := s.tx.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		movie, created, err := s.repo.Upsert(txCtx, in)
		if err != nil {
			return nil, err
		}
		if created {
			if _, err := s.producer.Enqueue(txCtx, movieAddedEvent(movie)); err != nil {
				return nil, err
			}
		}
		return createResult{movie: movie, created: created}, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create movie: %w", err)
	}

	r := res.(createResult)
	logger.Get(ctx).Info("movie saved",
		zap.String("movie_id", r.movie.ID.Hex()),
		zap.String("title", r.movie.Title),
		zap.Bool("created", r.created))
	return r.movie, r.created, nil
}

func movieAddedEvent(m *Movie) outbox.Event {
	payload := bson.M{
		"movieId":   m.ID.Hex(),
		"title":     m.Title,
		"mediaType": string(m.MediaType),
		"target":    targetAllNonAdmin,
	}
	if m.TmdbID != nil {
		payload["tmdbId"] = *m.TmdbID
	}
	return outbox.Event{
		AggregateType: aggregateMovie,
		AggregateID:   m.ID.Hex(),
		EventType:     EventMovieAdded,
		Payload:       payload,
	}
}
