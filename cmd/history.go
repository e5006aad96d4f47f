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

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/report"
)

var historyNumber int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Lists recent analysis sessions",
	Run: func(cmd *cobra.Command, args []string) {
		if err := printHistory(historyNumber); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyNumber, "number", "n", 10, "How many sessions to list")
}

func printHistory(n int) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(n)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No sessions recorded yet.")
		return nil
	}
	return report.Sessions(os.Stdout, entries)
}
