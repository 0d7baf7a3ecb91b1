package mongo

import (
	"errors"

	"github.com/Sokol111/streamflix-reliability/pkg/persistence"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
)

// TranslateError maps driver errors onto persistence sentinels.
func TranslateError(err error) error {
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return persistence.ErrEntityNotFound
	}
	return err
}
