package processing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"libretto/internal/audio/decode"
	"libretto/internal/audio/wavout"
	"libretto/internal/logging"
)

// FileResult is the outcome of processing one input path. Err is nil on
// success; OutputPath is set only when the batch writes WAV output.
type FileResult struct {
	Path       string
	Output     *Output
	OutputPath string
	Err        error
}

// BatchProgressFunc receives completion counts as files finish.
type BatchProgressFunc func(done, total int, path string)

// BatchProcessor runs the processing pipeline over many files with bounded
// parallelism. Each file succeeds or fails on its own.
type BatchProcessor struct {
	pipeline *Pipeline
	logger   *slog.Logger

	// Workers caps concurrent file processing; zero means NumCPU.
	Workers int
	// OutputDir, when set, receives one processed WAV per input file.
	OutputDir string
	// Progress, when set, is called after each file completes.
	Progress BatchProgressFunc
}

// NewBatchProcessor validates cfg and returns a batch processor.
func NewBatchProcessor(cfg Config, logger *slog.Logger) (*BatchProcessor, error) {
	pipeline, err := NewPipeline(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{
		pipeline: pipeline,
		logger:   logger.With(logging.String("component", "batch")),
	}, nil
}

// ProcessPaths decodes and processes every path. The returned slice has one
// entry per input, index-aligned with paths regardless of completion order.
// Cancelling ctx stops dispatching new files; entries not yet started carry
// the context error.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results
	}

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	var (
		wg   sync.WaitGroup
		done sync.Mutex
		n    int
	)
	jobs := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = b.processOne(paths[idx])
				if b.Progress != nil {
					done.Lock()
					n++
					count := n
					done.Unlock()
					b.Progress(count, len(paths), paths[idx])
				}
			}
		}()
	}

dispatch:
	for i := range paths {
		select {
		case <-ctx.Done():
			for j := i; j < len(paths); j++ {
				results[j] = FileResult{Path: paths[j], Err: ctx.Err()}
			}
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

func (b *BatchProcessor) processOne(path string) FileResult {
	res := FileResult{Path: path}

	buf, err := decode.Decode(path)
	if err != nil {
		b.logger.Warn("decode failed", logging.String("file", path), logging.Error(err))
		res.Err = fmt.Errorf("decode %s: %w", path, err)
		return res
	}

	out, err := b.pipeline.Process(buf)
	if err != nil {
		b.logger.Warn("processing failed", logging.String("file", path), logging.Error(err))
		res.Err = err
		return res
	}
	res.Output = out

	if b.OutputDir != "" {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".wav"
		target := filepath.Join(b.OutputDir, name)
		if err := wavout.Write(target, out.Buffer); err != nil {
			res.Err = err
			return res
		}
		res.OutputPath = target
	}
	return res
}
