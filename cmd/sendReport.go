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

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/report"
)

var sendReportCmd = &cobra.Command{
	Use:   "send-report <audio file> <email>",
	Short: "Analyzes a recording and emails the report",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := sendReport(cmd, args[0], args[1]); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendReportCmd)
	addAnalysisFlags(sendReportCmd)

	var from string
	sendReportCmd.Flags().StringVar(&from, "from", "", "From email address")
	sendReportCmd.MarkFlagRequired("from")
	viper.BindPFlag("from", sendReportCmd.Flags().Lookup("from"))
}

func sendReport(cmd *cobra.Command, audioPath string, toAddress string) error {
	result, err := runAnalysis(cmd.Context(), audioPath)
	if err != nil {
		return err
	}

	subject := "Mix report"
	if analyzeVenue != "" {
		subject = fmt.Sprintf("Mix report: %s", analyzeVenue)
	}
	from := mail.NewEmail("foh-analysis", viper.GetString("from"))
	to := mail.NewEmail(toAddress, toAddress)
	bodyText := report.EmailBody(result)
	message := mail.NewSingleEmail(from, subject, to, bodyText, bodyText)
	client := sendgrid.NewSendClient(viper.GetString("sendgrid_api_key"))
	if _, err := client.Send(message); err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}

	fmt.Printf("Sent report to %s\n", toAddress)
	return nil
}
