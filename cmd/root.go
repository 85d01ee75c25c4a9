// Package cmd is for command line interactions with the mtg10x application
package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use: "mtg10x",
	Short: `Fill the gaps of a draft genome assembly using linked read data.
Evidence reads are gathered per gap through their barcodes and assembled
with MindTheGap in breakpoint mode`,
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

// newLogger builds the run-wide logger: console output on stderr so
// warnings stay readable next to the progress bar
func newLogger(verbose int) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.OutputPaths = []string{"stderr"}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose > 0 {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
