package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/tsawler/docchunk/chunk"
	"github.com/tsawler/docchunk/docx"
	"github.com/tsawler/docchunk/internal/accent"
	"github.com/tsawler/docchunk/internal/config"
	"github.com/tsawler/docchunk/outline"
)

var runCmd = &cobra.Command{
	Use:   "run [input-dir]",
	Short: "Chunk every .docx file in input-dir",
	Args:  cobra.ExactArgs(1),
	RunE:  runE,
}

func runE(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := mgr.Get()
	if outDir != "" {
		cfg.OutDir = outDir
	}
	if chunkSizeFlag > 0 {
		cfg.ChunkSize = chunkSizeFlag
	}
	if workersFlag > 0 {
		cfg.Workers = workersFlag
	}
	if titleFlag != "" {
		cfg.DocumentTitle = titleFlag
	}
	if foldAccents {
		cfg.FoldAccents = true
	}

	inputDir := args[0]
	paths, err := findDocxFiles(inputDir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", inputDir, err)
	}
	if len(paths) == 0 {
		logger.Warn("no .docx files found", "dir", inputDir)
		return nil
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating out dir: %w", err)
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Chunking documents"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("docs/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	ctx := cmd.Context()
	jobs := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failures []string

	worker := func() {
		defer wg.Done()
		for path := range jobs {
			if err := processOne(path, cfg, logger); err != nil {
				logger.Error("failed to process document", "path", path, "error", err)
				mu.Lock()
				failures = append(failures, path)
				mu.Unlock()
			}
			_ = bar.Add(1)
		}
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}
dispatch:
	for _, p := range paths {
		select {
		case jobs <- p:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d documents failed to process", len(failures), len(paths))
	}
	return nil
}

func findDocxFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".docx") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}

func processOne(path string, cfg config.Config, logger *slog.Logger) error {
	logger.Debug("processing document", "path", path)
	reader, err := docx.Open(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	title := cfg.DocumentTitle
	if title == "" {
		title = reader.DocumentTitle()
	}

	builder := outline.New(reader.NumberingIndex(), cfg.ChunkSize, title, func() string {
		return uuid.New().String()
	})
	result := builder.Run(reader.Iterate())

	emitter := chunk.New(cfg.ChunkSize, func() string {
		return uuid.New().String()
	})
	records := emitter.Build(result.Headings, result.Title)

	if cfg.FoldAccents {
		for i := range records {
			records[i].Title = accent.Fold(records[i].Title)
			records[i].Text = accent.Fold(records[i].Text)
		}
	}

	outPath := filepath.Join(cfg.OutDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".json")
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling chunks: %w", err)
	}
	return os.WriteFile(outPath, data, 0o644)
}
