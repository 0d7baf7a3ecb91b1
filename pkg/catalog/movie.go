package catalog

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

type Genre struct {
	ID   int    `bson:"id"`
	Name string `bson:"name"`
}

type Movie struct {
	ID           bson.ObjectID `bson:"_id"`
	TmdbID       *int          `bson:"tmdbId,omitempty"`
	Title        string        `bson:"title"`
	Overview     string        `bson:"overview,omitempty"`
	PosterPath   string        `bson:"posterPath,omitempty"`
	BackdropPath string        `bson:"backdropPath,omitempty"`
	MediaType    MediaType     `bson:"mediaType"`
	ReleaseDate  string        `bson:"releaseDate,omitempty"`
	Genres       []Genre       `bson:"genres,omitempty"`
	VoteAverage  float64       `bson:"voteAverage,omitempty"`
	VoteCount    int           `bson:"voteCount,omitempty"`
	Runtime      int           `bson:"runtime,omitempty"`
	CreatedAt    time.Time     `bson:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt"`
}

// MovieInput is the writable part of a Movie.
type MovieInput struct {
	TmdbID       *int
	Title        string
	Overview     string
	PosterPath   string
	BackdropPath string
	MediaType    MediaType
	ReleaseDate  string
	Genres       []Genre
	VoteAverage  float64
	VoteCount    int
	Runtime      int
}

func (in MovieInput) mediaType() MediaType {
	if in.MediaType == "" {
		return MediaMovie
	}
	return in.MediaType
}

// identity is the upsert key: tmdbId when known, title otherwise.
func (in MovieInput) identity() bson.M {
	if in.TmdbID != nil {
		return bson.M{"tmdbId": *in.TmdbID}
	}
	return bson.M{"title": in.Title}
}

func (in MovieInput) setDocument(now time.Time) bson.M {
	set := bson.M{
		"title":     in.Title,
		"mediaType": in.mediaType(),
		"updatedAt": now,
	}
	if in.TmdbID != nil {
		set["tmdbId"] = *in.TmdbID
	}
	if in.Overview != "" {
		set["overview"] = in.Overview
	}
	if in.PosterPath != "" {
		set["posterPath"] = in.PosterPath
	}
	if in.BackdropPath != "" {
		set["backdropPath"] = in.BackdropPath
	}
	if in.ReleaseDate != "" {
		set["releaseDate"] = in.ReleaseDate
	}
	if len(in.Genres) > 0 {
		set["genres"] = in.Genres
	}
	if in.VoteAverage != 0 {
		set["voteAverage"] = in.VoteAverage
	}
	if in.VoteCount != 0 {
		set["voteCount"] = in.VoteCount
	}
	if in.Runtime != 0 {
		set["runtime"] = in.Runtime
	}
	return set
}

func (in MovieInput) newMovie(now time.Time) *Movie {
	return &Movie{
		ID:           bson.NewObjectID(),
		TmdbID:       in.TmdbID,
		Title:        in.Title,
		Overview:     in.Overview,
		PosterPath:   in.PosterPath,
		BackdropPath: in.BackdropPath,
		MediaType:    in.mediaType(),
		ReleaseDate:  in.ReleaseDate,
		Genres:       in.Genres,
		VoteAverage:  in.VoteAverage,
		VoteCount:    in.VoteCount,
		Runtime:      in.Runtime,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
