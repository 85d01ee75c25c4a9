package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anne-gcd/MTG10X/config"
	"github.com/anne-gcd/MTG10X/internal/gapfill"
)

// stderr is for logging to Stderr (without an annoying timestamp)
var stderr = log.New(os.Stderr, "", 0)

// fillCmd represents the fill command
var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill the gaps of a GFA 2.0 assembly graph with linked reads",
	Long: `Fill the gaps of a GFA 2.0 assembly graph using MindTheGap in breakpoint mode.

For each gap, the barcodes observed over a chunk of both flanking scaffolds
are merged into a union read set, and MindTheGap assembles candidate fills
between k-mer anchors for decreasing k-mer sizes and abundance thresholds.
Candidates are graded by aligning them against a per-gap reference sequence
(-refDir) or against the flanking sequences, and the accepted fills replace
the gap line in the output graph`,
	Run: runFill,
}

// set flags
func init() {
	RootCmd.AddCommand(fillCmd)

	fillCmd.Flags().String("gfa", "", "Input GFA file (GFA 2.0) (format: xxx.gfa)")
	fillCmd.Flags().IntP("chunk", "c", 0, "Chunk size (bp)")
	fillCmd.Flags().String("bam", "", "BAM file of linked reads mapped on the current assembly (format: xxx.bam)")
	fillCmd.Flags().String("fastq", "", "File of indexed reads (format: xxx.fastq | xxx.fq)")
	fillCmd.Flags().String("index", "", "Barcode index file built with 'mtg10x index'")
	fillCmd.Flags().IntP("freq", "f", 2, "Minimal frequence of barcodes extracted in the chunk of size '-c'")
	fillCmd.Flags().String("out", "./mtglink_results", "Output directory")
	fillCmd.Flags().String("refDir", "", "Directory containing the reference sequences, if any")
	fillCmd.Flags().Int("line", 0, "Line of the GFA file input from which to start the analysis")
	fillCmd.Flags().String("rbxu", "", "File containing the reads of the union, if already extracted")
	fillCmd.Flags().IntSliceP("kmer", "k", []int{51, 41, 31, 21}, "k-mer size(s) used for gap-filling")
	fillCmd.Flags().Bool("force", false, "Force search on all '-k' values provided")
	fillCmd.Flags().IntSliceP("abundance", "a", []int{3, 2}, "Minimal abundance threshold(s) for solid k-mers")
	fillCmd.Flags().Int("ext", 500, "Extension size of the gap on both sides (bp); determines start/end of gap-filling")
	fillCmd.Flags().Int("max-nodes", 1000, "Maximum number of nodes in the contig graph")
	fillCmd.Flags().Int("max-length", config.DefaultMaxLength, "Maximum length of gap-filling (bp)")
	fillCmd.Flags().Int("nb-cores", 1, "Number of cores for MindTheGap")
	fillCmd.Flags().Int("max-memory", 0, "Max memory for graph building (in MBytes)")
	fillCmd.Flags().Int("verbose", 0, "Verbosity level")

	fillCmd.MarkFlagRequired("gfa")
	fillCmd.MarkFlagRequired("chunk")
	fillCmd.MarkFlagRequired("bam")
	fillCmd.MarkFlagRequired("fastq")
	fillCmd.MarkFlagRequired("index")

	viper.BindPFlags(fillCmd.Flags())
}

// runFill validates the inputs and runs the gap-filling pipeline over
// every gap of the input graph
func runFill(cmd *cobra.Command, args []string) {
	c, err := config.New()
	if err != nil {
		stderr.Fatalf("%v", err)
	}
	if err := c.Validate(); err != nil {
		stderr.Fatalf("%v", err)
	}

	logger, err := newLogger(c.Verbose)
	if err != nil {
		stderr.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	pipeline, err := gapfill.NewPipeline(c, logger.Sugar())
	if err != nil {
		stderr.Fatalf("%v", err)
	}
	if err := pipeline.Run(); err != nil {
		logger.Sync()
		stderr.Fatalf("%v", err)
	}
}
