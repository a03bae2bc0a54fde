package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	appVersion     = "0.1.0"
	cfgFile        string
	envFile        string
	recipient      string
	qualityPercent int
	outputDir      string
	conflictPolicy string
	vipsPath       string
	logFile        string
	logJSON        bool
	dryRun         bool
	verifyOutputs  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "heicpipe",
	Short: "Convert HEIC photos to JPEG and prepare an email draft",
	Long: `HeicPipe converts HEIC/HEIF photos to JPEG at a chosen quality, passes
existing JPEGs through untouched, and prints a mailto: link whose subject is
taken from the capture date of the first photo.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert [files or directories...]",
	Short: "Convert a batch of photos",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConvert,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appVersion)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(versionCmd)

	convertCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	convertCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file with HEICPIPE_* variables")
	convertCmd.Flags().StringVarP(&recipient, "to", "t", "", "recipient email address")
	convertCmd.Flags().IntVarP(&qualityPercent, "quality", "q", 0, "JPEG quality 1-100 (0=config default)")
	convertCmd.Flags().StringVarP(&outputDir, "out", "o", "", "output directory")
	convertCmd.Flags().StringVar(&conflictPolicy, "conflict", "", "conflict policy: skip, rename, overwrite")
	convertCmd.Flags().StringVar(&vipsPath, "vips", "", "path to the vips binary")
	convertCmd.Flags().StringVar(&logFile, "log-file", "", "log file path")
	convertCmd.Flags().BoolVar(&logJSON, "log-json", false, "output JSON logs")
	convertCmd.Flags().BoolVar(&dryRun, "dry-run", false, "convert but do not write files")
	convertCmd.Flags().BoolVar(&verifyOutputs, "verify", false, "verify written files with SHA-256")
}
