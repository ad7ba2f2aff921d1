// Package fetch reads a Parameter Store hierarchy page by page and flattens
// it into a single key/value map.
package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	dserrors "github.com/systmms/ssmconfig/internal/errors"
	"github.com/systmms/ssmconfig/internal/logging"
	"github.com/systmms/ssmconfig/internal/metrics"
)

var (
	// ErrNilRequest is returned when a RequestBuilder produces no request.
	ErrNilRequest = errors.New("request builder returned a nil request")

	// ErrNilBuilder is returned by Fetch when the Fetcher has no RequestBuilder.
	ErrNilBuilder = errors.New("fetcher has no request builder")
)

// ParametersByPathAPI is the subset of *ssm.Client the fetcher needs.
type ParametersByPathAPI interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// Fetcher runs the pagination loop. It keeps no state between Fetch calls
// and is safe for sequential reuse.
type Fetcher struct {
	client  ParametersByPathAPI
	build   RequestBuilder
	mapper  KeyMapper
	logger  *logging.Logger
	metrics *metrics.FetchMetrics
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithKeyMapper replaces the default identity mapper.
func WithKeyMapper(m KeyMapper) Option {
	return func(f *Fetcher) {
		f.mapper = m
	}
}

// WithLogger sets the logger used for per-page debug output.
func WithLogger(l *logging.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// WithMetrics records calls, pages and failures on m.
func WithMetrics(m *metrics.FetchMetrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// New creates a Fetcher. The key mapper defaults to Identity, including when
// WithKeyMapper(nil) is given. A nil build makes every Fetch fail with
// ErrNilBuilder.
func New(client ParametersByPathAPI, build RequestBuilder, opts ...Option) *Fetcher {
	f := &Fetcher{
		client: client,
		build:  build,
		mapper: Identity(),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.mapper == nil {
		f.mapper = Identity()
	}
	if f.logger == nil {
		f.logger = logging.Discard()
	}
	return f
}

// ForOptions creates a Fetcher whose request builder and key mapper come
// from o. Later opts override them.
func ForOptions(client ParametersByPathAPI, o Options, opts ...Option) *Fetcher {
	opts = append([]Option{WithKeyMapper(MapperFor(o))}, opts...)
	return New(client, RequestBuilderFor(o), opts...)
}

// Fetch is shorthand for ForOptions(client, o).Fetch(ctx).
func Fetch(ctx context.Context, client ParametersByPathAPI, o Options) (map[string]string, error) {
	return ForOptions(client, o).Fetch(ctx)
}

// Fetch requests pages until the service stops returning a continuation
// token, merges every page into one map and applies the key mapper. The
// first failed call aborts the whole fetch and no partial map is returned.
func (f *Fetcher) Fetch(ctx context.Context) (map[string]string, error) {
	if f.build == nil {
		return nil, ErrNilBuilder
	}

	start := time.Now()
	params := make(map[string]string)

	var (
		token *string
		path  string
	)
	for page := 1; ; page++ {
		input := f.build(token)
		if input == nil {
			return nil, ErrNilRequest
		}
		path = aws.ToString(input.Path)

		f.metrics.RecordCall(path)
		out, err := f.client.GetParametersByPath(ctx, input)
		if err != nil {
			rerr := &dserrors.RemoteCallError{Path: path, Page: page, Err: err}
			f.metrics.RecordFetch(path, rerr, time.Since(start))
			return nil, rerr
		}
		if out == nil {
			break
		}

		for _, p := range out.Parameters {
			if p.Name == nil {
				continue
			}
			params[*p.Name] = aws.ToString(p.Value)
		}
		f.metrics.RecordPage(path, len(out.Parameters))
		f.logger.Debug("Fetched page %d of %s: %d parameters", page, path, len(out.Parameters))
		if f.logger.DebugEnabled() {
			for _, p := range out.Parameters {
				if p.Name != nil {
					f.logger.Debug("  %s = %s", *p.Name, logging.Secret(aws.ToString(p.Value)))
				}
			}
		}

		if !hasToken(out.NextToken) {
			break
		}
		token = out.NextToken
	}

	result := f.mapper.Map(params)
	f.metrics.RecordFetch(path, nil, time.Since(start))
	return result, nil
}
