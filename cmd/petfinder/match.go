// cmd/petfinder/match.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	commonhttp "petfinder/internal/common/http"
	"petfinder/internal/common/records"
	"petfinder/internal/models"
	classifyconfidence "petfinder/internal/workers/matching/classify-confidence"
	comparephoto "petfinder/internal/workers/matching/compare-photo"
	rankmatches "petfinder/internal/workers/matching/rank-matches"
	submitphotomatch "petfinder/internal/workers/matching/submit-photo-match"
)

func createMatchCmd(a *app) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "match [image]",
		Short: "Submit a pet photo and print ranked candidates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := readImage(args[0])
			if err != nil {
				return err
			}

			workflow := a.newMatchWorkflow()
			defer workflow.Close()

			settled := make(chan submitphotomatch.Snapshot, 1)
			unsubscribe := workflow.Subscribe(func(s submitphotomatch.Snapshot) {
				if s.State.Terminal() {
					select {
					case settled <- s:
					default:
					}
				}
			})
			defer unsubscribe()

			if err := workflow.SelectImage(img); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), wait)
			defer cancel()

			select {
			case snap := <-settled:
				return a.printMatch(snap)
			case <-ctx.Done():
				return fmt.Errorf("no result after %s", wait)
			}
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 2*time.Minute, "how long to wait for the comparison")
	return cmd
}

func (a *app) newMatchWorkflow() *submitphotomatch.Workflow {
	compareCfg := comparephoto.ConfigFrom(a.cfg.Comparison)
	compare := comparephoto.NewHandler(compareCfg, commonhttp.NewClient(compareCfg.Timeout), a.recorder(), a.log)

	classifier := classifyconfidence.NewHandler(nil, a.log)
	ranker := rankmatches.NewHandler(nil, classifier, a.log)

	deps := submitphotomatch.Dependencies{
		Service:  compare,
		Ranker:   ranker,
		Recorder: a.recorder(),
	}
	if a.cfg.Records.BaseURL != "" {
		repo := records.NewRepository(records.ConfigFrom(a.cfg.Records), nil, a.log)
		deps.Notifier = records.NewNotifier(repo)
	}

	return submitphotomatch.NewWorkflow(submitphotomatch.ConfigFrom(a.cfg), deps, a.log)
}

func readImage(path string) (models.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Image{}, fmt.Errorf("read image: %w", err)
	}
	return models.Image{
		Name:        filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

func (a *app) printMatch(snap submitphotomatch.Snapshot) error {
	if a.jsonOutput {
		return printJSON(snap)
	}

	switch snap.State {
	case submitphotomatch.StateFailed:
		return fmt.Errorf("%s (%s)", snap.Message, snap.ErrorCode)
	case submitphotomatch.StateNoMatch:
		fmt.Println(snap.Message)
		return nil
	}

	fmt.Printf("Overall confidence: %s %s\n", snap.Overall.Tier, snap.Overall.Percent())
	for _, r := range snap.Ranked {
		fmt.Printf("%2d. %-20s %-10s %-6s %4s  %s\n",
			r.Rank,
			r.Match.DisplayName(),
			r.Match.DisplaySpecies(),
			r.Confidence.Tier,
			r.Confidence.Percent(),
			r.Match.DisplayLocation(),
		)
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
