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

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/equipment"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/history"
)

var cfgFile string
var databasePath string
var profilesPath string
var profileEndpoint string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "foh-analysis",
	Short: "Analyzes live 2-mix recordings and suggests console moves",
	Long: `Decodes a board or room recording of a live mix, approximates the
instrument stems named in the lineup, and reports equipment-aware mixing
recommendations plus trends against past sessions at comparable venues.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.foh-analysis.yaml)")

	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./sessions.db", "Path to the SQLite session database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	rootCmd.PersistentFlags().StringVar(
		&profilesPath, "profiles", "", "YAML file with extra console and PA profiles")
	viper.BindPFlag("profiles", rootCmd.PersistentFlags().Lookup("profiles"))

	rootCmd.PersistentFlags().StringVar(
		&profileEndpoint, "profile_endpoint", "", "Base URL of an equipment spec service")
	viper.BindPFlag("profile_endpoint", rootCmd.PersistentFlags().Lookup("profile_endpoint"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".foh-analysis")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

func openStore() (*history.Store, error) {
	store, err := history.New(viper.GetString("database"))
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}
	return store, nil
}

// newEquipmentProvider builds the lookup chain: static profiles, optionally
// extended by a YAML overlay, optionally backed by a remote spec service,
// with results cached for the run.
func newEquipmentProvider() (equipment.Provider, error) {
	overlay, err := equipment.LoadOverlay(viper.GetString("profiles"))
	if err != nil {
		return nil, fmt.Errorf("loading equipment profiles: %w", err)
	}
	static := equipment.NewStaticProviderWithOverlay(overlay)

	var provider equipment.Provider = static
	if endpoint := viper.GetString("profile_endpoint"); endpoint != "" {
		provider = equipment.NewRemoteProvider(endpoint, static)
	}
	return equipment.NewCachingProvider(provider), nil
}
