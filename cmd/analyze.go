/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/audio"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/history"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/pipeline"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/report"
)

var (
	analyzeLineup       string
	analyzeName         string
	analyzeVenue        string
	analyzeCapacity     int
	analyzeStageVolume  string
	analyzeConsole      string
	analyzePA           string
	analyzeNotes        string
	analyzeDryRun       bool
	analyzeStageTimeout time.Duration
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <audio file>",
	Short: "Analyzes a 2-mix recording and prints recommendations",
	Long: `Decodes the recording, approximates the stems named in --lineup, and
prints mixing recommendations. The session is saved for later comparison
unless --dry-run is given.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		result, err := runAnalysis(cmd.Context(), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := report.Session(os.Stdout, result); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addAnalysisFlags(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeDryRun, "dry-run", false, "Analyze without saving the session")
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&analyzeLineup, "lineup", "l", "", "Instrument lineup, comma separated (Japanese or English)")
	cmd.Flags().StringVar(&analyzeName, "name", "", "Session name")
	cmd.Flags().StringVar(&analyzeVenue, "venue", "", "Venue name")
	cmd.Flags().IntVar(&analyzeCapacity, "capacity", 0, "Venue capacity")
	cmd.Flags().StringVar(&analyzeStageVolume, "stage-volume", "medium", "Stage volume: low, medium, or high")
	cmd.Flags().StringVar(&analyzeConsole, "console", "", "Console model, e.g. \"Yamaha CL5\"")
	cmd.Flags().StringVar(&analyzePA, "pa", "", "PA system, e.g. \"d&b Y-Series\"")
	cmd.Flags().StringVar(&analyzeNotes, "notes", "", "Free-form session notes")
	cmd.Flags().DurationVar(&analyzeStageTimeout, "stage-timeout", 0, "Per-stage timeout, e.g. 90s (0 disables)")
}

func analysisMetadata() history.Metadata {
	return history.Metadata{
		VenueName:     analyzeVenue,
		VenueCapacity: analyzeCapacity,
		StageVolume:   analyzeStageVolume,
		ConsoleName:   analyzeConsole,
		PASystemName:  analyzePA,
		Notes:         analyzeNotes,
	}
}

func runAnalysis(ctx context.Context, audioPath string) (*pipeline.Result, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	provider, err := newEquipmentProvider()
	if err != nil {
		return nil, err
	}

	p := &pipeline.Pipeline{
		Decoder:   audio.FFmpegDecoder{},
		Store:     store,
		Equipment: provider,
	}
	req := pipeline.Request{
		AudioPath:    audioPath,
		Lineup:       analyzeLineup,
		SessionName:  analyzeName,
		Meta:         analysisMetadata(),
		StageTimeout: analyzeStageTimeout,
		SkipHistory:  analyzeDryRun,
	}
	return p.Run(ctx, req)
}
