package cmd

import (
	"fmt"
	"github.com/spf13/cobra"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/config"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/driver"
	"log"
	"os"
)

var cfgFile string
var romFile string
var headless bool
var edges uint64

var rootCmd = &cobra.Command{
	Use:   "mcs8",
	Short: "mcs8 is a cycle-accurate 8008 machine monitor",
	RunE: func(cmd *cobra.Command, args []string) error {

		if config.CLIConfig.RomFile == "" {
			fmt.Printf("No rom specified.  Use -r/--rom <file> to specify")
			os.Exit(1)
		}

		if headless {
			d, err := driver.HeadlessNew()
			if err != nil {
				return err
			}
			return d.RunHeadless(edges)
		}

		d, err := driver.New()
		if err != nil {
			return err
		}
		d.Run()
		return nil
	},
}

// Execute bootstraps the viper
func Execute() error {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "configuration file for mcs8")
	rootCmd.PersistentFlags().StringVarP(&romFile, "rom", "r", "", "rom image to load at address zero")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", false, "run without the terminal monitor")
	rootCmd.PersistentFlags().Uint64Var(&edges, "edges", 1_000_000, "clock edge budget for headless runs")
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {

	if err := initConfigE(); err != nil {
		log.Fatalf("Failed to load configuration: %s", err)
		return
	}
}

func initConfigE() error {
	defer func() {
		if romFile != "" {
			config.CLIConfig.RomFile = romFile
		}
	}()
	return config.NewConfig(cfgFile)
}
