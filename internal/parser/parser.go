// Package parser reduces a decoded replay document to frame-ordered telemetry.
package parser

import (
	"compress/bzip2"
	"compress/gzip"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/pable/go-rl-metrics/internal/model"
	"github.com/pable/go-rl-metrics/internal/replay"
)

// ParseReplay hashes, decodes and reduces the replay document at path.
// Compressed inputs (.gz, .bz2, .zst) are decompressed on the fly.
func ParseReplay(path string, opts ...Option) (*model.RawMatch, error) {
	o := buildOptions(opts)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	// Hash file for idempotency key.
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash replay: %w", err)
	}
	replayHash := fmt.Sprintf("%x", h.Sum(nil))

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek replay: %w", err)
	}

	src, err := decompress(f, path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	start := time.Now()
	doc, err := replay.Decode(src)
	if err != nil {
		var se *replay.StructuralError
		if errors.As(err, &se) {
			o.metrics.RecordError("structural")
			o.logger.Error("replay rejected", "path", path, "section", se.Section, "err", err)
		}
		return nil, err
	}
	o.metrics.ObserveStage("decode", start)

	raw, err := Reduce(doc, opts...)
	if err != nil {
		return nil, err
	}
	raw.ReplayHash = replayHash
	return raw, nil
}

// Reduce applies every frame of doc in order. Each frame's mutations go
// through the Ingestor and are extracted before the next frame is applied.
func Reduce(doc *replay.Document, opts ...Option) (*model.RawMatch, error) {
	o := buildOptions(opts)
	start := time.Now()

	raw := &model.RawMatch{
		Metadata:    doc.MetadataPassthrough(),
		MetaPlayers: doc.PlayerStats(),
		Goals:       doc.GoalEvents(),
		NumFrames:   doc.NumFrames(),
	}
	in := NewIngestor(o.logger)
	x := NewExtractor(in, raw, o.logger, o.metrics)

	for i, f := range doc.Frames {
		d := in.Apply(i, f)
		if err := x.Observe(d); err != nil {
			o.metrics.RecordError("integrity")
			o.logger.Error("replay aborted", "frame", i, "err", err)
			return nil, fmt.Errorf("reduce frame %d: %w", i, err)
		}
		o.metrics.RecordFrame(in.Store().Len())
	}

	raw = x.Finish()
	o.metrics.ObserveStage("reduce", start)
	o.logger.Info("replay reduced",
		"frames", len(doc.Frames),
		"players", len(raw.Players),
		"positions", len(raw.Positions),
		"clock", len(raw.Clock),
		"warnings", len(raw.Warnings))
	return raw, nil
}

// decompress wraps r according to the file extension.
func decompress(r io.Reader, path string) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(path, ".bz2"):
		return io.NopCloser(bzip2.NewReader(r)), nil
	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return dec.IOReadCloser(), nil
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return gz, nil
	default:
		return io.NopCloser(r), nil
	}
}
