// Command barcode-index builds the bloom index the gateway uses to rule
// out unknown barcode scans without a shop API round trip. It streams
// one or more gzipped barcode export files (one barcode per line) and
// writes the finished index to disk.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/hbadiar77-commits/satina-mama/internal/barcode"
)

const (
	progressEvery = 1_000_000
	minCodeLen    = 6
	maxCodeLen    = 32
)

func main() {
	var (
		out      string
		capacity uint
		fpr      float64
	)

	flag.StringVar(&out, "out", "barcodes.bloom", "output path for the index")
	flag.UintVar(&capacity, "capacity", 10_000_000, "expected number of barcodes")
	flag.Float64Var(&fpr, "fpr", 0.001, "target false positive rate")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: barcode-index [flags] barcodes1.gz [barcodes2.gz ...]")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, files, out, capacity, fpr); err != nil {
		slog.Error("barcode index build failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("barcode index written", slog.String("path", out))
}

func run(ctx context.Context, files []string, out string, capacity uint, fpr float64) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	idx := barcode.New(capacity, fpr)
	codes := make(chan string, 4096)

	// Producers decompress concurrently; a single consumer owns the
	// index, which is not safe for concurrent writes.
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(streamGzFile(gctx, f, codes))
	}

	consumed := make(chan struct{})
	var total uint64
	go func() {
		defer close(consumed)
		for code := range codes {
			idx.Add(code)
			total++
			if total%progressEvery == 0 {
				slog.Info("progress", slog.Uint64("barcodes", total))
			}
		}
	}()

	err := g.Wait()
	close(codes)
	<-consumed
	if err != nil {
		return err
	}

	slog.Info("all files read", slog.Uint64("barcodes", total), slog.Int("files", len(files)))
	return idx.Save(out)
}

// streamGzFile reads a gzip-compressed file line by line and sends each
// plausible barcode to out.
func streamGzFile(ctx context.Context, path string, out chan<- string) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		scanner := bufio.NewScanner(gz)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}
			code := strings.TrimSpace(scanner.Text())
			if len(code) < minCodeLen || len(code) > maxCodeLen {
				continue
			}
			select {
			case out <- code:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}
		return nil
	}
}
