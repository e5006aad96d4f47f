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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/history"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/report"
)

var (
	similarVenue    string
	similarCapacity int
	similarConsole  string
	similarPA       string
	similarLimit    int
)

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Finds past sessions with comparable venue and equipment",
	Run: func(cmd *cobra.Command, args []string) {
		if err := printSimilar(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(similarCmd)
	similarCmd.Flags().StringVar(&similarVenue, "venue", "", "Venue name")
	similarCmd.Flags().IntVar(&similarCapacity, "capacity", 0, "Venue capacity")
	similarCmd.Flags().StringVar(&similarConsole, "console", "", "Console model")
	similarCmd.Flags().StringVar(&similarPA, "pa", "", "PA system")
	similarCmd.Flags().IntVarP(&similarLimit, "number", "n", 5, "How many matches to list")
}

func printSimilar() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	meta := history.Metadata{
		VenueName:     similarVenue,
		VenueCapacity: similarCapacity,
		ConsoleName:   similarConsole,
		PASystemName:  similarPA,
	}
	entries, err := store.Similar(meta, similarLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No comparable sessions found.")
		return nil
	}
	return report.Sessions(os.Stdout, entries)
}
