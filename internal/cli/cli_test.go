package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Sokol111/streamflix-reliability/pkg/catalog"
	"github.com/Sokol111/streamflix-reliability/pkg/saga"
	"github.com/Sokol111/streamflix-reliability/pkg/security/token"
	"github.com/Sokol111/streamflix-reliability/pkg/subscription"
	"github.com/Sokol111/streamflix-reliability/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/fx"
)

type fakeAuthenticator struct {
	principal *token.Principal
	err       error
	got       string
}

func (a *fakeAuthenticator) Authenticate(ctx context.Context, credential string) (context.Context, *token.Principal, error) {
	a.got = credential
	if a.err != nil {
		return ctx, nil, a.err
	}
	return token.ContextWithPrincipal(ctx, a.principal), a.principal, nil
}

type fakeCatalog struct {
	movie   *catalog.Movie
	created bool
	err     error
	in      catalog.MovieInput
	caller  *token.Principal
}

func (c *fakeCatalog) CreateMovie(ctx context.Context, in catalog.MovieInput) (*catalog.Movie, bool, error) {
	c.in = in
	c.caller = token.PrincipalFromContext(ctx)
	return c.movie, c.created, c.err
}

type fakeSubscriptions struct {
	saga   *saga.Saga
	user   *user.User
	err    error
	plan   string
	action subscription.Action
}

func (s *fakeSubscriptions) RequestActivation(_ context.Context, planID string) (*saga.Saga, error) {
	s.plan = planID
	return s.saga, s.err
}

func (s *fakeSubscriptions) Review(_ context.Context, _ bson.ObjectID, action subscription.Action) (*user.User, error) {
	s.action = action
	return s.user, s.err
}

var admin = &token.Principal{UserID: "admin-1", Role: token.RoleAdmin, Type: "access"}

func TestRunCreateMovie(t *testing.T) {
	movie := &catalog.Movie{ID: bson.NewObjectID(), Title: "Dune"}

	t.Run("text output", func(t *testing.T) {
		auth := &fakeAuthenticator{principal: admin}
		svc := &fakeCatalog{movie: movie, created: true}
		var out bytes.Buffer

		err := runCreateMovie(context.Background(), auth, svc, "Bearer tok", catalog.MovieInput{Title: "Dune"}, formatText, &out)

		require.NoError(t, err)
		assert.Equal(t, "Bearer tok", auth.got)
		assert.Equal(t, admin, svc.caller)
		assert.Equal(t, "Dune", svc.in.Title)
		assert.Equal(t, "movie created: Dune ("+movie.ID.Hex()+")\n", out.String())
	})

	t.Run("json output for an existing movie", func(t *testing.T) {
		var out bytes.Buffer

		err := runCreateMovie(context.Background(), &fakeAuthenticator{principal: admin}, &fakeCatalog{movie: movie}, "tok", catalog.MovieInput{Title: "Dune"}, formatJSON, &out)

		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, map[string]any{"id": movie.ID.Hex(), "title": "Dune", "created": false}, got)
	})

	t.Run("authentication failure stops before the service", func(t *testing.T) {
		svc := &fakeCatalog{}

		err := runCreateMovie(context.Background(), &fakeAuthenticator{err: token.ErrInvalidToken}, svc, "tok", catalog.MovieInput{Title: "Dune"}, formatText, &bytes.Buffer{})

		assert.ErrorIs(t, err, token.ErrInvalidToken)
		assert.Empty(t, svc.in.Title)
	})

	t.Run("service error is returned", func(t *testing.T) {
		err := runCreateMovie(context.Background(), &fakeAuthenticator{principal: admin}, &fakeCatalog{err: catalog.ErrTitleRequired}, "tok", catalog.MovieInput{}, formatText, &bytes.Buffer{})

		assert.ErrorIs(t, err, catalog.ErrTitleRequired)
	})
}

func TestRunRequestActivation(t *testing.T) {
	s := &saga.Saga{ID: bson.NewObjectID(), Status: saga.StatusPending}
	svc := &fakeSubscriptions{saga: s}
	var out bytes.Buffer

	err := runRequestActivation(context.Background(), &fakeAuthenticator{principal: &token.Principal{UserID: "u1", Type: "access"}}, svc, "tok", "Premium", formatText, &out)

	require.NoError(t, err)
	assert.Equal(t, "Premium", svc.plan)
	assert.Equal(t, "activation accepted: saga "+s.ID.Hex()+" is PENDING\n", out.String())
}

func TestRunReview(t *testing.T) {
	u := &user.User{ID: bson.NewObjectID(), SubscriptionPlan: "Basic", SubscriptionStatus: user.SubscriptionActive, PaymentStatus: user.PaymentConfirmed}

	t.Run("json output", func(t *testing.T) {
		svc := &fakeSubscriptions{user: u}
		var out bytes.Buffer

		err := runReview(context.Background(), &fakeAuthenticator{principal: admin}, svc, "tok", u.ID, subscription.ActionApprove, formatJSON, &out)

		require.NoError(t, err)
		assert.Equal(t, subscription.ActionApprove, svc.action)
		assert.JSONEq(t, `{"userId":"`+u.ID.Hex()+`","subscriptionPlan":"Basic","subscriptionStatus":"active","paymentStatus":"confirmed"}`, out.String())
	})

	t.Run("service error is returned", func(t *testing.T) {
		err := runReview(context.Background(), &fakeAuthenticator{principal: admin}, &fakeSubscriptions{err: subscription.ErrInvalidAction}, "tok", u.ID, "refund", formatText, &bytes.Buffer{})

		assert.ErrorIs(t, err, subscription.ErrInvalidAction)
	})
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat(formatText))
	assert.NoError(t, validateFormat(formatJSON))
	assert.Error(t, validateFormat("yaml"))
}

func TestRootCmd(t *testing.T) {
	root := NewRootCmd("test")

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"worker", "migrate", "movie", "subscription"}, names)

	t.Run("review rejects a malformed user id before connecting", func(t *testing.T) {
		root := NewRootCmd("test")
		root.SetArgs([]string{"subscription", "review", "--token", "t", "--user", "nope", "--action", "approve"})
		root.SetOut(&bytes.Buffer{})

		err := root.Execute()

		assert.ErrorContains(t, err, `invalid user id "nope"`)
	})

	t.Run("unknown format is rejected", func(t *testing.T) {
		root := NewRootCmd("test")
		root.SetArgs([]string{"movie", "create", "--token", "t", "--title", "Dune", "--format", "xml"})

		err := root.Execute()

		assert.ErrorContains(t, err, "invalid format")
	})
}

func TestModuleGraphs(t *testing.T) {
	flags := &globalFlags{}

	t.Run("worker", func(t *testing.T) {
		assert.NoError(t, fx.ValidateApp(workerModules(flags)))
	})

	t.Run("one-shot", func(t *testing.T) {
		var (
			auth *token.Authenticator
			svc  subscription.Service
			cat  catalog.Service
		)
		assert.NoError(t, fx.ValidateApp(domainModules(flags, false), fx.Populate(&auth, &svc, &cat)))
	})
}

func TestRunOnce_AppError(t *testing.T) {
	app := fx.New(fx.NopLogger, fx.Invoke(func() error { return errors.New("boom") }))

	called := false
	err := runOnce(context.Background(), app, func(context.Context) error {
		called = true
		return nil
	})

	assert.ErrorContains(t, err, "boom")
	assert.False(t, called)
}
