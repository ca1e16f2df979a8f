package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/valyala/fasthttp"
)

// Source streams the object named by a URL into w and returns the byte count
type Source interface {
	Download(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

// HTTPSource downloads http and https URLs with a streaming fasthttp client
type HTTPSource struct {
	Client *fasthttp.Client
	// Dial opens the raw connection; nil dials TCP with Timeout
	Dial         func(addr string) (net.Conn, error)
	Timeout      time.Duration
	MaxRedirects int
	ChunkSize    int
}

// NewHTTPSource builds a client where every single read or write on the
// connection times out after cfg.TimeoutMs. A slow but steady body never
// hits the deadline; a stalled one does.
func NewHTTPSource(cfg *Config) *HTTPSource {
	s := &HTTPSource{
		Timeout:      time.Duration(cfg.TimeoutMs) * time.Millisecond,
		MaxRedirects: int(cfg.MaxRedirects),
		ChunkSize:    int(cfg.ChunkSize),
	}
	s.Client = &fasthttp.Client{
		Name:               "glogfetch",
		Dial:               s.dial,
		StreamResponseBody: true,
	}
	return s
}

func (s *HTTPSource) dial(addr string) (net.Conn, error) {
	var (
		conn net.Conn
		err  error
	)
	if s.Dial != nil {
		conn, err = s.Dial(addr)
	} else {
		conn, err = fasthttp.DialTimeout(addr, s.Timeout)
	}
	if err != nil {
		return nil, err
	}
	if s.Timeout <= 0 {
		return conn, nil
	}
	return &deadlineConn{Conn: conn, timeout: s.Timeout}, nil
}

// deadlineConn pushes the connection deadline forward before each I/O call
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}

// Download issues a GET and streams a 2xx body into w
func (s *HTTPSource) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rawURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	var err error
	if s.MaxRedirects > 0 {
		err = s.Client.DoRedirects(req, resp, s.MaxRedirects)
	} else {
		err = s.Client.Do(req, resp)
	}
	if err != nil {
		return 0, &NetworkError{URL: rawURL, Err: err}
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return 0, &NetworkError{URL: rawURL, StatusCode: code}
	}

	stream := resp.BodyStream()
	if stream == nil {
		// Body was read in full with the headers
		n, err := w.Write(resp.Body())
		if err != nil {
			return int64(n), err
		}
		return int64(n), nil
	}

	n, err := copyChunks(ctx, w, stream, s.ChunkSize)
	if err != nil && !errors.Is(err, errSinkFailed) && ctx.Err() == nil {
		return n, &NetworkError{URL: rawURL, Err: err}
	}
	return n, unwrapSink(err)
}

// ObjectGetter is the subset of the S3 client used by S3Source
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source downloads s3://bucket/key URLs
type S3Source struct {
	Client    ObjectGetter
	ChunkSize int
}

// NewS3Source wraps an S3 client
func NewS3Source(client ObjectGetter, cfg *Config) *S3Source {
	return &S3Source{Client: client, ChunkSize: int(cfg.ChunkSize)}
}

// LoadS3Source builds an S3Source from the shared AWS configuration chain
func LoadS3Source(ctx context.Context, cfg *Config) (*S3Source, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.S3Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmtErrorf("loading AWS configuration: %w", err)
	}
	return NewS3Source(s3.NewFromConfig(awsCfg), cfg), nil
}

// Download fetches the object and streams its body into w
func (s *S3Source) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	bucket, key, err := parseS3URL(rawURL)
	if err != nil {
		return 0, err
	}

	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		netErr := &NetworkError{URL: rawURL, Err: err}
		var respErr *awshttp.ResponseError
		if errors.As(err, &respErr) {
			netErr.StatusCode = respErr.HTTPStatusCode()
		}
		return 0, netErr
	}
	defer out.Body.Close()

	n, err := copyChunks(ctx, w, out.Body, s.ChunkSize)
	if err != nil && !errors.Is(err, errSinkFailed) && ctx.Err() == nil {
		return n, &NetworkError{URL: rawURL, Err: err}
	}
	return n, unwrapSink(err)
}

func parseS3URL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmtErrorf("parsing %s: %w", rawURL, err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || bucket == "" || key == "" {
		return "", "", fmtErrorf("invalid S3 URL %q, expected s3://bucket/key", rawURL)
	}
	return bucket, key, nil
}

// errSinkFailed marks write-side failures so they are not reported as network errors
var errSinkFailed = errors.New("sink write failed")

type sinkError struct {
	err error
}

func (e *sinkError) Error() string { return e.err.Error() }

func (e *sinkError) Is(target error) bool { return target == errSinkFailed }

func (e *sinkError) Unwrap() error { return e.err }

func unwrapSink(err error) error {
	var se *sinkError
	if errors.As(err, &se) {
		return se.err
	}
	return err
}

// copyChunks streams src into dst in reads of chunkSize, checking ctx between reads
func copyChunks(ctx context.Context, dst io.Writer, src io.Reader, chunkSize int) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, &sinkError{err: werr}
			}
			if nw != nr {
				return written, &sinkError{err: io.ErrShortWrite}
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
