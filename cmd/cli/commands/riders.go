package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/daycentre-transport/pkg/core/allocator"
	"github.com/jakechorley/daycentre-transport/pkg/core/services"
)

func printMatches(out io.Writer, result *services.MatchResult, caps allocator.Capacities) {
	if result.Outcome == allocator.OutcomeNoRoute {
		fmt.Fprintf(out, "%s✗ %s for %s%s\n", colorYellow, allocator.NoMatchMessage, result.Rider.Name, colorReset)
		return
	}

	fmt.Fprintf(out, "\n%d matching routes for %s:\n\n", len(result.Matches), result.Rider.Name)
	for _, route := range result.Matches {
		printRoute(out, route, caps)
	}
}

// MatchCmd creates the match command
func MatchCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "match <rider_id>",
		Short: "Find routes that can take a rider on their arrival days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			result, err := services.FindRoutesForRider(app.Ctx, app.Store, app.Logger, app.Options, args[0])
			if err != nil {
				return explain(out, err)
			}

			printMatches(out, result, app.Options.Capacities)
			return nil
		},
	}
}

// AssignCmd creates the assign command
func AssignCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <route_id> <rider_id>",
		Short: "Add a rider to a route's regular roster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			opts := app.Options
			if overbook, _ := cmd.Flags().GetBool("allow-overbooking"); overbook {
				opts.AllowOverbooking = true
			}

			route, err := services.AssignRider(app.Ctx, app.Store, app.Logger, opts, args[0], args[1])
			if err != nil {
				return explain(out, err)
			}

			fmt.Fprintf(out, "\n✓ Rider %s assigned!\n\n", args[1])
			printRoute(out, *route, app.Options.Capacities)
			return nil
		},
	}
	cmd.Flags().Bool("allow-overbooking", false, "Assign even if the route has no free seat")
	return cmd
}

// AutoAssignCmd creates the autoAssign command
func AutoAssignCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "autoAssign <rider_id>",
		Short: "Assign a rider when exactly one route matches, otherwise list the options",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			result, err := services.AutoAssignRider(app.Ctx, app.Store, app.Logger, app.Options, args[0])
			if err != nil {
				return explain(out, err)
			}

			if result.Assigned == nil {
				printMatches(out, result.Match, app.Options.Capacities)
				return nil
			}

			fmt.Fprintf(out, "\n✓ %s assigned to route %s\n\n", result.Match.Rider.Name, result.Assigned.ID)
			printRoute(out, *result.Assigned, app.Options.Capacities)
			return nil
		},
	}
}

// UnassignCmd creates the unassign command
func UnassignCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <route_id> <rider_id>",
		Short: "Remove a rider from a route's regular roster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			route, err := services.UnassignRider(app.Ctx, app.Store, app.Logger, app.Options, args[0], args[1])
			if err != nil {
				return explain(out, err)
			}

			fmt.Fprintf(out, "\n✓ Rider %s unassigned\n\n", args[1])
			printRoute(out, *route, app.Options.Capacities)
			return nil
		},
	}
}

// RemoveRiderCmd creates the removeRider command
func RemoveRiderCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "removeRider <rider_id>",
		Short: "Remove a rider from every route (run before deleting their profile)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			removed, err := services.RemoveRiderFromAllRoutes(app.Ctx, app.Store, app.Logger, app.Options, args[0])
			if err != nil {
				return explain(out, err)
			}

			if len(removed) == 0 {
				fmt.Fprintf(out, "Rider %s is not on any route\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "✓ Rider %s removed from %d routes: %v\n", args[0], len(removed), removed)
			return nil
		},
	}
}

// SyncRiderCmd creates the syncRider command
func SyncRiderCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "syncRider <rider_id>",
		Short: "Copy a rider's current profile onto every route they ride",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			app.Logger.Debug("syncRider command", zap.String("rider_id", args[0]))

			result, err := services.SyncRiderProfile(app.Ctx, app.Store, app.Logger, app.Options, args[0])
			if err != nil {
				return explain(out, err)
			}

			fmt.Fprintf(out, "✓ Rider %s synced: %d routes updated, %d routes left\n",
				args[0], len(result.Updated), len(result.Removed))
			return nil
		},
	}
}
