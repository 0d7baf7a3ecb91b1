package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/Sokol111/streamflix-reliability/pkg/catalog"
	"github.com/Sokol111/streamflix-reliability/pkg/security/token"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

type movieFlags struct {
	credential  string
	tmdbID      int
	title       string
	overview    string
	mediaType   string
	releaseDate string
	format      string
}

func newMovieCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movie",
		Short: "Manage the movie catalog",
	}
	cmd.AddCommand(newMovieCreateCmd(flags))
	return cmd
}

func newMovieCreateCmd(flags *globalFlags) *cobra.Command {
	mf := &movieFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add or update a movie",
		Long: `Add or update a movie as an admin.

A new movie enqueues a movie_added record; a running worker then notifies
every non-admin user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(mf.format); err != nil {
				return err
			}
			in := catalog.MovieInput{
				Title:       mf.title,
				Overview:    mf.overview,
				MediaType:   catalog.MediaType(mf.mediaType),
				ReleaseDate: mf.releaseDate,
			}
			if cmd.Flags().Changed("tmdb-id") {
				in.TmdbID = &mf.tmdbID
			}

			var (
				auth *token.Authenticator
				svc  catalog.Service
			)
			app := fx.New(domainModules(flags, false), fx.Populate(&auth, &svc))
			return runOnce(cmd.Context(), app, func(ctx context.Context) error {
				return runCreateMovie(ctx, auth, svc, mf.credential, in, mf.format, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&mf.credential, "token", "t", "", "Admin access token (required)")
	cmd.Flags().StringVar(&mf.title, "title", "", "Movie title (required)")
	cmd.Flags().IntVar(&mf.tmdbID, "tmdb-id", 0, "TMDB id, used as the upsert key when set")
	cmd.Flags().StringVar(&mf.overview, "overview", "", "Short description")
	cmd.Flags().StringVar(&mf.mediaType, "media-type", string(catalog.MediaMovie), "movie or tv")
	cmd.Flags().StringVar(&mf.releaseDate, "release-date", "", "Release date, YYYY-MM-DD")
	cmd.Flags().StringVarP(&mf.format, "format", "f", formatText, "Output format: text or json")

	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func runCreateMovie(ctx context.Context, auth authenticator, svc catalog.Service, credential string, in catalog.MovieInput, format string, w io.Writer) error {
	ctx, _, err := auth.Authenticate(ctx, credential)
	if err != nil {
		return err
	}

	movie, created, err := svc.CreateMovie(ctx, in)
	if err != nil {
		return err
	}

	if format == formatJSON {
		return writeJSON(w, struct {
			ID      string `json:"id"`
			Title   string `json:"title"`
			Created bool   `json:"created"`
		}{movie.ID.Hex(), movie.Title, created})
	}

	verb := "updated"
	if created {
		verb = "created"
	}
	_, err = fmt.Fprintf(w, "movie %s: %s (%s)\n", verb, movie.Title, movie.ID.Hex())
	return err
}
