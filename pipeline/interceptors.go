package pipeline

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/danielgtaylor/huma/v2"
	"github.com/klauspost/compress/gzip"
)

const (
	EncodingGzip     = "gzip"
	EncodingBrotli   = "br"
	EncodingIdentity = "identity" // bound endpoints answer uncompressed
)

// DefaultBlacklist pairs each unacceptable last name with its replacement.
var DefaultBlacklist = []string{ //nolint: gochecknoglobals
	"Asshole", "A***e",
	"Shitface", "S***e",
}

// Blacklist rewrites the raw request body before it is parsed, replacing each
// old string of oldnew by the new string following it, case-sensitively and once.
func Blacklist(oldnew ...string) Stage {
	replacer := strings.NewReplacer(oldnew...)
	return Stage{
		Name:    "blacklist",
		Binding: BindBlacklist,
		Kind:    RequestInterceptor,
		Middleware: func(api huma.API) func(huma.Context, func(huma.Context)) {
			return func(ctx huma.Context, next func(huma.Context)) {
				body, err := io.ReadAll(ctx.BodyReader())
				if err != nil {
					_ = huma.WriteErr(api, ctx, http.StatusBadRequest, "unable to read request body", err)
					return
				}
				next(&bodyContext{humaContext: ctx, body: strings.NewReader(replacer.Replace(string(body)))})
			}
		},
	}
}

// Compress encodes response bodies with encoding, [EncodingGzip], [EncodingBrotli]
// or [EncodingIdentity].
func Compress(encoding string) (Stage, error) {
	switch encoding {
	case EncodingGzip, EncodingBrotli, EncodingIdentity:
	default:
		return Stage{}, fmt.Errorf("pipeline: unsupported encoding %q", encoding)
	}
	return Stage{
		Name:    "compress-" + encoding,
		Binding: BindCompress,
		Kind:    ResponseInterceptor,
		Middleware: func(huma.API) func(huma.Context, func(huma.Context)) {
			return func(ctx huma.Context, next func(huma.Context)) {
				if encoding == EncodingIdentity {
					next(ctx)
					return
				}
				cctx := &compressContext{humaContext: ctx, encoding: encoding}
				defer cctx.close()
				next(cctx)
			}
		},
	}, nil
}

type compressContext struct {
	humaContext
	encoding string
	w        io.WriteCloser
}

func (c *compressContext) SetStatus(status int) {
	if status != http.StatusNoContent && status != http.StatusNotModified {
		c.humaContext.SetHeader("Content-Encoding", c.encoding)
		c.humaContext.AppendHeader("Vary", "Accept-Encoding")
	}
	c.humaContext.SetStatus(status)
}

func (c *compressContext) BodyWriter() io.Writer {
	if c.w == nil {
		c.w = newEncoder(c.encoding, c.humaContext.BodyWriter())
	}
	return c.w
}

func (c *compressContext) Unwrap() huma.Context { return c.humaContext }

func (c *compressContext) close() {
	if c.w != nil {
		_ = c.w.Close()
	}
}

func newEncoder(encoding string, w io.Writer) io.WriteCloser {
	if encoding == EncodingBrotli {
		return brotli.NewWriter(w)
	}
	return gzip.NewWriter(w)
}

// Decompress undoes [Compress] for clients. Unknown encodings are returned as is.
func Decompress(encoding string, r io.Reader) (io.ReadCloser, error) {
	switch encoding {
	case EncodingGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case EncodingBrotli:
		return io.NopCloser(brotli.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}
