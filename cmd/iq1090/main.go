package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"iq1090/internal/app"
)

func newRootCmd() *cobra.Command {
	config := app.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "iq1090 <input.bin> <format>",
		Short: "ADS-B decoder for raw IQ captures",
		Long: `Decodes Mode S / ADS-B DF17 airborne position messages from a raw
IQ capture (interleaved unsigned 8-bit I/Q at 2 Msps, 1090 MHz) and
writes the resolved positions as CSV, JSON or KML.

Example usage:
  iq1090 captures/iq_20251019_1808.bin .csv
  iq1090 captures/iq_20251019_1808.bin .kml --threshold 4 --workers 4`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ShowVersion {
				app.ShowVersion()
				return nil
			}

			if len(args) != 2 {
				return fmt.Errorf("expected <input.bin> <format> arguments")
			}
			config.InputPath = args[0]
			config.Format = args[1]

			if err := config.ApplySources(cmd.Flags().Changed); err != nil {
				return err
			}

			application := app.NewApplication(config)
			return application.Run()
		},
		SilenceUsage: true,
		// main prints the single error line itself
		SilenceErrors: true,
	}

	rootCmd.Flags().Float64VarP(&config.ThresholdRatio, "threshold", "t", app.DefaultThresholdRatio, "Preamble threshold ratio over the noise floor")
	rootCmd.Flags().BoolVar(&config.EnforceCRC, "crc", true, "Enforce the Mode S CRC on decoded frames")
	rootCmd.Flags().StringVar(&config.Q0Policy, "q0-policy", app.Q0PolicySkip, "Q=0 altitude policy (skip or gillham)")
	rootCmd.Flags().Uint64Var(&config.StalenessSamples, "staleness", app.DefaultStalenessSamples, "Max even/odd pair age difference in samples")
	rootCmd.Flags().IntVarP(&config.Workers, "workers", "w", app.DefaultWorkers, "Preamble scan workers (1 = sequential)")
	rootCmd.Flags().StringVarP(&config.OutputPath, "output", "o", "", "Output file path (default: output/YYYYMMDD/outputHHMM.<ext>)")
	rootCmd.Flags().StringVar(&config.FramesDir, "frames-dir", "", "Directory for the raw frame log (disabled when empty)")
	rootCmd.Flags().StringVarP(&config.ConfigFile, "config", "c", "", "YAML config file")
	rootCmd.Flags().BoolVarP(&config.Verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.Flags().BoolVar(&config.ShowVersion, "version", false, "Show version information")

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
