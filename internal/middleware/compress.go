package middleware

import (
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// compressedTypes are the response content types worth compressing
var compressedTypes = []string{
	"text/html",
	"text/css",
	"text/plain",
	"text/javascript",
	"application/javascript",
	"application/json",
	"image/svg+xml",
}

// CompressMiddleware compresses responses with brotli, gzip or deflate as the client accepts
func CompressMiddleware(level int) func(http.Handler) http.Handler {
	c := chimw.NewCompressor(level, compressedTypes...)
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return c.Handler
}
