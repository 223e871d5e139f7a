package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	cfgFile       string
	outDir        string
	chunkSizeFlag int
	workersFlag   int
	titleFlag     string
	logLevel      string
	foldAccents   bool
)

// parseLogLevel converts a string log level to slog.Level. Supports:
// debug, info, warn, error (case-insensitive).
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be debug, info, warn, or error", level)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docchunk",
	Short: "Structural chunker for .docx documents",
	Long: `docchunk reconstructs the heading/list/table outline of a .docx
document and re-segments it into retrieval-sized chunks under a soft
word budget, emitting one JSON array of chunks per input document.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./docchunk.yaml)")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "", "output directory for chunk JSON files")
	rootCmd.PersistentFlags().IntVar(&chunkSizeFlag, "chunk-size", 0, "soft per-chunk word budget")
	rootCmd.PersistentFlags().IntVar(&workersFlag, "workers", 0, "number of documents to process concurrently")
	rootCmd.PersistentFlags().StringVar(&titleFlag, "title", "", "document title override")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&foldAccents, "fold-accents", false, "fold Vietnamese diacritics to base Latin letters in chunk text")

	rootCmd.AddCommand(runCmd)
}

func newLogger() *slog.Logger {
	lvl, err := parseLogLevel(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using info\n", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
