// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package download fetches OpenSanctions dataset snapshots to local disk.
package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"crosspair/internal/observability"
	"crosspair/internal/resilience"

	"github.com/go-resty/resty/v2"
)

// Options controls a dataset download.
type Options struct {
	URL        string
	DestPath   string
	Timeout    time.Duration          // per-attempt timeout; zero means no limit
	Retry      resilience.RetryConfig // zero value means DownloadRetryConfig
	OnProgress func(written int64)    // optional, called roughly every 8 MiB
	Observer   *observability.StandardObserver
}

// progressInterval is how many bytes pass between OnProgress callbacks.
const progressInterval = 8 << 20

// Fetch downloads opts.URL to opts.DestPath. The body streams to a temp
// file in the destination directory and is renamed into place only on
// success, so a partial download never masquerades as a snapshot.
func Fetch(ctx context.Context, opts Options) error {
	if opts.URL == "" {
		return fmt.Errorf("download: url is required")
	}
	if opts.DestPath == "" {
		return fmt.Errorf("download: destination path is required")
	}

	retryCfg := opts.Retry
	if retryCfg.MaxRetries == 0 && retryCfg.InitialInterval == 0 {
		retryCfg = resilience.DownloadRetryConfig()
	}
	if opts.Observer != nil {
		retryCfg.OnRetry = func(attempt int, err error) {
			opts.Observer.LogOperation(observability.StandardObservabilityData{
				Component: "download",
				Operation: "retry",
				Target:    opts.URL,
				Success:   false,
				Error:     err.Error(),
				Metadata:  map[string]interface{}{"attempt": attempt},
			})
		}
	}

	if err := os.MkdirAll(filepath.Dir(opts.DestPath), 0o750); err != nil {
		return fmt.Errorf("download: creating destination directory: %w", err)
	}

	client := resty.New().SetTimeout(opts.Timeout)

	var finish func(bool, map[string]interface{})
	if opts.Observer != nil {
		finish = opts.Observer.StartTiming("download", "fetch", opts.URL)
	}

	err := resilience.RetryWithBackoff(ctx, retryCfg, func(ctx context.Context) error {
		return fetchOnce(ctx, client, opts)
	})

	if finish != nil {
		finish(err == nil, map[string]interface{}{"url": opts.URL, "dest": opts.DestPath})
	}
	return err
}

func fetchOnce(ctx context.Context, client *resty.Client, opts Options) error {
	resp, err := client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(opts.URL)
	if err != nil {
		return resilience.NewTransientError(fmt.Sprintf("download: request failed: %v", err), err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != 200 {
		return resilience.FromHTTPStatus(resp.StatusCode(), opts.URL)
	}

	tmp, err := os.CreateTemp(filepath.Dir(opts.DestPath), ".download-*")
	if err != nil {
		return resilience.NewPermanentError(fmt.Sprintf("download: creating temp file: %v", err), err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := copyWithProgress(tmp, body, opts.OnProgress); err != nil {
		tmp.Close()
		return resilience.NewTransientError(fmt.Sprintf("download: streaming body: %v", err), err)
	}
	if err := tmp.Close(); err != nil {
		return resilience.NewPermanentError(fmt.Sprintf("download: closing temp file: %v", err), err)
	}

	if err := os.Rename(tmpPath, opts.DestPath); err != nil {
		return resilience.NewPermanentError(fmt.Sprintf("download: renaming into place: %v", err), err)
	}
	return nil
}

func copyWithProgress(dst io.Writer, src io.Reader, onProgress func(int64)) error {
	buf := make([]byte, 256<<10)
	var written, lastReport int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
			written += int64(n)
			if onProgress != nil && written-lastReport >= progressInterval {
				onProgress(written)
				lastReport = written
			}
		}
		if err == io.EOF {
			if onProgress != nil && written > lastReport {
				onProgress(written)
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}
