// cmd/petfinder/components.go
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apperrors "petfinder/internal/common/errors"
	acquirelocation "petfinder/internal/workers/location/acquire-location"
	lastseenlocation "petfinder/internal/workers/location/last-seen-location"
	permissiongate "petfinder/internal/workers/location/permission-gate"
	reversegeocode "petfinder/internal/workers/location/reverse-geocode"
	classifyconfidence "petfinder/internal/workers/matching/classify-confidence"
	comparephoto "petfinder/internal/workers/matching/compare-photo"
	rankmatches "petfinder/internal/workers/matching/rank-matches"
	submitphotomatch "petfinder/internal/workers/matching/submit-photo-match"
	submitlostreport "petfinder/internal/workers/report/submit-lost-report"
	"petfinder/pkg/registry"
)

func codes(cs ...apperrors.ErrorCode) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

func builtinCatalog() *registry.Catalog {
	return &registry.Catalog{
		Version: "1",
		Components: []registry.Component{
			{TaskType: classifyconfidence.TaskType, DisplayName: "Confidence classifier", Category: "matching",
				Description: "Maps a similarity score to a tier and a color"},
			{TaskType: rankmatches.TaskType, DisplayName: "Match ranker", Category: "matching",
				Description: "Orders candidates for display and tags each with a tier"},
			{TaskType: comparephoto.TaskType, DisplayName: "Photo comparison client", Category: "matching",
				Description: "Uploads a photo to the comparison service",
				ErrorCodes:  codes(apperrors.ErrCodeNetwork, apperrors.ErrCodeServer, apperrors.ErrCodeComparisonRejected, apperrors.ErrCodeInvalidResponse)},
			{TaskType: submitphotomatch.TaskType, DisplayName: "Match submission workflow", Category: "matching",
				Description: "Drives capture, submission and result display"},
			{TaskType: permissiongate.TaskType, DisplayName: "Permission gate", Category: "location",
				Description: "Checks and requests runtime capabilities",
				ErrorCodes:  codes(apperrors.ErrCodePermissionDenied)},
			{TaskType: acquirelocation.TaskType, DisplayName: "Location acquisition", Category: "location",
				Description: "Runs the permission, cached, fresh and geocode chain",
				ErrorCodes: codes(apperrors.ErrCodePermissionDenied, apperrors.ErrCodeServiceDisabled,
					apperrors.ErrCodeLocationUnavailable, apperrors.ErrCodeNetwork, apperrors.ErrCodeUnknown)},
			{TaskType: reversegeocode.TaskType, DisplayName: "Reverse geocoder", Category: "location",
				Description: "Turns a coordinate into a short address"},
			{TaskType: lastseenlocation.TaskType, DisplayName: "Last seen location controller", Category: "location",
				Description: "Owns the chosen fix and the editable address text"},
			{TaskType: submitlostreport.TaskType, DisplayName: "Lost report submitter", Category: "report",
				Description: "Posts a lost-pet report and confirms it to the reporter",
				ErrorCodes:  codes(apperrors.ErrCodeInvalidInput, apperrors.ErrCodeRecordCreateFailed)},
		},
	}
}

func createComponentsCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "components",
		Short: "List the components in this build",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := builtinCatalog()
			if file != "" {
				loaded, err := registry.Load(file)
				if err != nil {
					return err
				}
				catalog = loaded
			}
			if err := catalog.Validate(); err != nil {
				return err
			}

			if a.jsonOutput {
				return printJSON(catalog)
			}
			groups := catalog.ByCategory()
			for _, category := range catalog.Categories() {
				fmt.Printf("%s\n", category)
				for _, comp := range groups[category] {
					fmt.Printf("  %-22s %s\n", comp.TaskType, comp.Description)
					if len(comp.ErrorCodes) > 0 {
						fmt.Printf("  %-22s errors: %s\n", "", strings.Join(comp.ErrorCodes, ", "))
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "read the catalog from a JSON file instead")
	return cmd
}
