package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/Sokol111/streamflix-reliability/pkg/security/token"
	"github.com/Sokol111/streamflix-reliability/pkg/subscription"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/fx"
)

func newSubscriptionCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Request and review subscriptions",
	}
	cmd.AddCommand(
		newSubscriptionRequestCmd(flags),
		newSubscriptionReviewCmd(flags),
	)
	return cmd
}

// withSubscriptionService runs fn against a started app.
func withSubscriptionService(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, auth authenticator, svc subscription.Service) error) error {
	var (
		auth *token.Authenticator
		svc  subscription.Service
	)
	app := fx.New(domainModules(flags, false), fx.Populate(&auth, &svc))
	return runOnce(cmd.Context(), app, func(ctx context.Context) error {
		return fn(ctx, auth, svc)
	})
}

func newSubscriptionRequestCmd(flags *globalFlags) *cobra.Command {
	var credential, plan, format string

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Submit a payment for a plan",
		Long: `Submit a payment for a plan as the token's user.

This starts a subscription_activation saga; a running worker marks the
subscription pending and notifies the admins.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			return withSubscriptionService(cmd, flags, func(ctx context.Context, auth authenticator, svc subscription.Service) error {
				return runRequestActivation(ctx, auth, svc, credential, plan, format, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&credential, "token", "t", "", "User access token (required)")
	cmd.Flags().StringVarP(&plan, "plan", "p", "", "Mobile, Basic, Standard or Premium (required)")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text or json")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}

func newSubscriptionReviewCmd(flags *globalFlags) *cobra.Command {
	var credential, userID, action, format string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Approve, reject or cancel a user's subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			id, err := bson.ObjectIDFromHex(userID)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", userID, err)
			}
			return withSubscriptionService(cmd, flags, func(ctx context.Context, auth authenticator, svc subscription.Service) error {
				return runReview(ctx, auth, svc, credential, id, subscription.Action(action), format, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&credential, "token", "t", "", "Admin access token (required)")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id (required)")
	cmd.Flags().StringVarP(&action, "action", "a", "", "approve, reject or cancel (required)")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text or json")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("action")

	return cmd
}

func runRequestActivation(ctx context.Context, auth authenticator, svc subscription.Service, credential, plan, format string, w io.Writer) error {
	ctx, _, err := auth.Authenticate(ctx, credential)
	if err != nil {
		return err
	}

	s, err := svc.RequestActivation(ctx, plan)
	if err != nil {
		return err
	}

	if format == formatJSON {
		return writeJSON(w, struct {
			SagaID string `json:"sagaId"`
			Status string `json:"status"`
		}{s.ID.Hex(), string(s.Status)})
	}
	_, err = fmt.Fprintf(w, "activation accepted: saga %s is %s\n", s.ID.Hex(), s.Status)
	return err
}

func runReview(ctx context.Context, auth authenticator, svc subscription.Service, credential string, userID bson.ObjectID, action subscription.Action, format string, w io.Writer) error {
	ctx, _, err := auth.Authenticate(ctx, credential)
	if err != nil {
		return err
	}

	u, err := svc.Review(ctx, userID, action)
	if err != nil {
		return err
	}

	if format == formatJSON {
		return writeJSON(w, struct {
			UserID             string `json:"userId"`
			SubscriptionPlan   string `json:"subscriptionPlan"`
			SubscriptionStatus string `json:"subscriptionStatus"`
			PaymentStatus      string `json:"paymentStatus"`
		}{u.ID.Hex(), u.SubscriptionPlan, string(u.SubscriptionStatus), string(u.PaymentStatus)})
	}
	_, err = fmt.Fprintf(w, "user %s: subscription %s, payment %s\n", u.ID.Hex(), u.SubscriptionStatus, u.PaymentStatus)
	return err
}
