package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
	"github.com/jakechorley/daycentre-transport/pkg/core/services"
)

// RoutesCmd creates the routes command
func RoutesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List all routes with their free seats per day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			routes, err := services.ListRoutes(app.Ctx, app.Store, app.Logger, app.Options)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\nFound %d routes:\n\n", len(routes))
			for _, route := range routes {
				printRoute(out, route, app.Options.Capacities)
			}
			return nil
		},
	}
}

// routeInputFromFlags reads --type, --days and --cities
func routeInputFromFlags(cmd *cobra.Command) (services.RouteInput, error) {
	routeType, _ := cmd.Flags().GetString("type")
	daysFlag, _ := cmd.Flags().GetString("days")
	citiesFlag, _ := cmd.Flags().GetString("cities")

	days, err := parseDays(daysFlag)
	if err != nil {
		return services.RouteInput{}, err
	}

	return services.RouteInput{
		Type:   model.RouteType(routeType),
		Days:   days,
		Cities: parseList(citiesFlag),
	}, nil
}

func addRouteFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", "", "Route type (Taxi, Minibus, or a configured type)")
	cmd.Flags().String("days", "", "Comma separated operating days, e.g. Sunday,Tuesday")
	cmd.Flags().String("cities", "", "Comma separated cities served")
}

// CreateRouteCmd creates the createRoute command
func CreateRouteCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createRoute --type <type> --days <days> --cities <cities>",
		Short: "Create a new empty route",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			input, err := routeInputFromFlags(cmd)
			if err != nil {
				return err
			}

			route, err := services.CreateRoute(app.Ctx, app.Store, app.Logger, app.Options, input)
			if err != nil {
				return explain(out, err)
			}

			fmt.Fprintf(out, "\n✓ Route created!\n\n")
			printRoute(out, *route, app.Options.Capacities)
			return nil
		},
	}
	addRouteFlags(cmd)
	return cmd
}

// UpdateRouteCmd creates the updateRoute command
func UpdateRouteCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "updateRoute <route_id> --type <type> --days <days> --cities <cities>",
		Short: "Change a route's type, days and cities, keeping its passengers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			input, err := routeInputFromFlags(cmd)
			if err != nil {
				return err
			}

			route, err := services.UpdateRouteSchedule(app.Ctx, app.Store, app.Logger, app.Options, args[0], input)
			if err != nil {
				return explain(out, err)
			}

			fmt.Fprintf(out, "\n✓ Route updated!\n\n")
			printRoute(out, *route, app.Options.Capacities)
			return nil
		},
	}
	addRouteFlags(cmd)
	return cmd
}

// DeleteRouteCmd creates the deleteRoute command
func DeleteRouteCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteRoute <route_id>",
		Short: "Delete a route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			app.Logger.Debug("deleteRoute command", zap.String("route_id", args[0]))

			if err := services.DeleteRoute(app.Ctx, app.Store, app.Logger, args[0]); err != nil {
				return explain(out, err)
			}

			fmt.Fprintf(out, "✓ Route %s deleted\n", args[0])
			return nil
		},
	}
}
