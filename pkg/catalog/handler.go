package catalog

import (
	"context"
	"fmt"

	"github.com/Sokol111/streamflix-reliability/pkg/core/logger"
	"github.com/Sokol111/streamflix-reliability/pkg/notification"
	"github.com/Sokol111/streamflix-reliability/pkg/outbox"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

type movieAddedHandler struct {
	fanOut notification.FanOut
}

func newMovieAddedHandler(fanOut notification.FanOut) outbox.NamedHandler {
	return outbox.NamedHandler{
		EventType: EventMovieAdded,
		Handler:   &movieAddedHandler{fanOut: fanOut},
	}
}

// Handle tells every non-admin user about the new movie. Records without
// movieId or title are ignored.
func (h *movieAddedHandler) Handle(ctx context.Context, rec *outbox.Record) error {
	movieID, _ := rec.Payload["movieId"].(string)
	title, _ := rec.Payload["title"].(string)
	if movieID == "" || title == "" {
		logger.Get(ctx).Warn("movie_added payload without movieId or title, skipping")
		return nil
	}

	mediaType, _ := rec.Payload["mediaType"].(string)
	if mediaType == "" {
		mediaType = string(MediaMovie)
	}

	metadata := bson.M{"movieId": movieID, "mediaType": mediaType}
	if tmdbID, ok := rec.Payload["tmdbId"]; ok && tmdbID != nil {
		metadata["tmdbId"] = tmdbID
	}

	n, err := h.fanOut.NotifyAllNonAdmins(ctx, notification.Message{
		Type:     notification.TypeMovieUpdated,
		Title:    "New movie available",
		Message:  fmt.Sprintf(`We just added "%s". Check it out!`, title),
		Metadata: metadata,
	})
	if err != nil {
		return err
	}

	logger.Get(ctx).Info("new movie announced", zap.String("movie_id", movieID), zap.Int("recipients", n))
	return nil
}
