package cmd

import (
	"github.com/spf13/cobra"

	"github.com/anne-gcd/MTG10X/internal/bx"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a barcoded FASTQ file for gap-filling",
	Long: `Index a BX-tagged FASTQ file by barcode.

The index maps every barcode to the file offsets of the reads carrying it,
so the fill command can materialize per-gap union read sets without
rescanning the whole FASTQ file`,
	Run: runIndex,
}

// set flags
func init() {
	RootCmd.AddCommand(indexCmd)

	indexCmd.Flags().String("fastq", "", "File of BX-tagged reads (format: xxx.fastq | xxx.fq)")
	indexCmd.Flags().StringP("out", "o", "", "Output index file (format: xxx.bxi)")

	indexCmd.MarkFlagRequired("fastq")
	indexCmd.MarkFlagRequired("out")
}

// runIndex builds and persists the barcode index
func runIndex(cmd *cobra.Command, args []string) {
	fastq, _ := cmd.Flags().GetString("fastq")
	out, _ := cmd.Flags().GetString("out")

	index, err := bx.Build(fastq)
	if err != nil {
		stderr.Fatalf("%v", err)
	}
	if err := index.Write(out); err != nil {
		stderr.Fatalf("%v", err)
	}

	stderr.Printf("indexed %d barcodes into %s", len(index), out)
}
