package middleware

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/verdancy/bramble/pkg/ports"
)

type compressionMiddleware struct {
	next  ports.Cache
	level int
}

// NewCompression creates a middleware that gzips values on their way into the
// underlying cache. Encoded paths are long runs of near-identical floats and
// compress well, so networked backends move far fewer bytes per entry.
func NewCompression() Middleware {
	return NewCompressionLevel(gzip.DefaultCompression)
}

// NewCompressionLevel is NewCompression with an explicit gzip level. Levels
// outside the valid range fall back to the default.
func NewCompressionLevel(level int) Middleware {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	return func(next ports.Cache) ports.Cache {
		return &compressionMiddleware{next: next, level: level}
	}
}

func (m *compressionMiddleware) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := m.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	// Entries written before compression was enabled pass through untouched.
	if !isGzip(value) {
		return value, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(value))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress cache entry: %w", err)
	}
	defer zr.Close()

	plain, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress cache entry: %w", err)
	}
	return plain, nil
}

func (m *compressionMiddleware) Set(ctx context.Context, key string, value []byte) error {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, m.level)
	if err != nil {
		return fmt.Errorf("failed to compress cache entry: %w", err)
	}
	if _, err := zw.Write(value); err != nil {
		return fmt.Errorf("failed to compress cache entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to compress cache entry: %w", err)
	}
	return m.next.Set(ctx, key, buf.Bytes())
}

func (m *compressionMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *compressionMiddleware) Close() error {
	return m.next.Close()
}

func isGzip(b []byte) bool {
	return len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b
}
