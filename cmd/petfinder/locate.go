// cmd/petfinder/locate.go
package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	commonhttp "petfinder/internal/common/http"
	"petfinder/internal/common/records"
	"petfinder/internal/models"
	acquirelocation "petfinder/internal/workers/location/acquire-location"
	reversegeocode "petfinder/internal/workers/location/reverse-geocode"
	submitlostreport "petfinder/internal/workers/report/submit-lost-report"
)

func createLocateAtCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "locate-at [lat] [lng]",
		Short: "Resolve a map-tapped coordinate to a last-seen fix",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := parseCoordinate(args[0], args[1])
			if err != nil {
				return err
			}

			fix := a.newAcquirer().AcquireAt(cmd.Context(), coord)
			if a.jsonOutput {
				return printJSON(fix)
			}
			fmt.Printf("%s\n  %s (%s)\n", fix.Address, fix.Coordinate.Format(), fix.Source)
			return nil
		},
	}
}

func createReportCmd(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "report [pet-id] [lat] [lng]",
		Short: "Post a lost-pet report for a map-tapped location",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := parseCoordinate(args[1], args[2])
			if err != nil {
				return err
			}
			fix := a.newAcquirer().AcquireAt(cmd.Context(), coord)

			repo := records.NewRepository(records.ConfigFrom(a.cfg.Records), nil, a.log)
			handler := submitlostreport.NewHandler(
				submitlostreport.ConfigFrom(a.cfg),
				repo,
				records.NewNotifier(repo),
				a.recorder(),
				a.log,
			)
			defer handler.Wait()

			out, err := handler.Execute(cmd.Context(), &submitlostreport.Input{
				PetID:       args[0],
				Description: description,
				Fix:         &fix,
			})
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(out)
			}
			fmt.Printf("Report %s posted: last seen near %s\n", out.Report.ID, out.Report.Address)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "what the pet looks like")
	return cmd
}

// newAcquirer builds a geocoding-only acquirer. The CLI has no position
// provider, so only AcquireAt is meaningful.
func (a *app) newAcquirer() *acquirelocation.Acquirer {
	geoCfg := reversegeocode.ConfigFrom(a.cfg.Geocoding)
	client := commonhttp.NewClient(geoCfg.Timeout)
	geocoder := reversegeocode.NewGeocoder(geoCfg, client, a.recorder(), a.log)

	return acquirelocation.NewAcquirer(nil, acquirelocation.Dependencies{
		Geocoder: geocoder,
		Recorder: a.recorder(),
	}, a.log)
}

func parseCoordinate(latArg, lngArg string) (models.Coordinate, error) {
	lat, err := strconv.ParseFloat(latArg, 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("invalid latitude %q: %w", latArg, err)
	}
	lng, err := strconv.ParseFloat(lngArg, 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("invalid longitude %q: %w", lngArg, err)
	}
	coord := models.Coordinate{Latitude: lat, Longitude: lng}
	if !coord.Valid() {
		return models.Coordinate{}, fmt.Errorf("coordinate out of range: %s", coord.Format())
	}
	return coord, nil
}
