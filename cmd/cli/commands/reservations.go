package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jakechorley/daycentre-transport/pkg/core/model"
	"github.com/jakechorley/daycentre-transport/pkg/core/services"
)

// ReserveCmd creates the reserve command
func ReserveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reserve <route_id> <date> <rider_id> <addition|removal>",
		Short: "Add or remove a rider on a route for a single date",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			routeID, date, riderID := args[0], args[1], args[2]

			result, err := services.ReserveTemporary(app.Ctx, app.Store, app.Logger, app.Options,
				routeID, date, riderID, model.OverlayType(args[3]))
			if err != nil {
				return explain(out, err)
			}

			fmt.Fprintf(out, "✓ Rider %s on route %s for %s: %s\n", riderID, routeID, date, result.Status)
			return nil
		},
	}
}

func printRouteDay(out io.Writer, day services.RouteDay) {
	if !day.Operating {
		fmt.Fprintf(out, "Route %s doesn't run on %s\n", day.RouteID, day.Date)
		return
	}

	fmt.Fprintf(out, "Route %s (%s) on %s: %d passengers, %d seats used, %d free\n",
		day.RouteID, day.Type, day.Date, len(day.Passengers), day.SeatsUsed, day.SeatsAvailable)
	for _, p := range day.Passengers {
		printPassenger(out, p)
	}
}

// PassengersCmd creates the passengers command
func PassengersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "passengers <route_id> <date>",
		Short: "Show who rides a route on a date after temporary changes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			day, err := services.EffectivePassengers(app.Ctx, app.Store, app.Logger, app.Options, args[0], args[1])
			if err != nil {
				return explain(out, err)
			}

			printRouteDay(out, *day)
			return nil
		},
	}
}

// ManifestCmd creates the manifest command
func ManifestCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <date>",
		Short: "Show every route running on a date with its passengers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			manifest, err := services.DailyManifest(app.Ctx, app.Store, app.Logger, app.Options, args[0])
			if err != nil {
				return explain(out, err)
			}

			if len(manifest) == 0 {
				fmt.Fprintf(out, "No routes run on %s\n", args[0])
				return nil
			}

			fmt.Fprintf(out, "\nManifest for %s\n\n", args[0])
			for _, day := range manifest {
				printRouteDay(out, day)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

// ServiceDatesCmd creates the serviceDates command
func ServiceDatesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serviceDates <route_id> <from> <to>",
		Short: "List the dates a route runs between two dates, skipping closures",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			from, err := model.ParseDate(args[1])
			if err != nil {
				return err
			}
			to, err := model.ParseDate(args[2])
			if err != nil {
				return err
			}

			dates, err := services.ServiceDates(app.Ctx, app.Store, app.Logger, app.Options, args[0], from, to)
			if err != nil {
				return explain(out, err)
			}

			fmt.Fprintf(out, "\nRoute %s runs on %d dates:\n", args[0], len(dates))
			for i, d := range dates {
				fmt.Fprintf(out, "  %2d. %s\n", i+1, d.Format("2006-01-02 (Monday)"))
			}
			return nil
		},
	}
}
