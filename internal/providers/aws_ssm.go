package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	dserrors "github.com/systmms/ssmconfig/internal/errors"
	"github.com/systmms/ssmconfig/internal/fetch"
	"github.com/systmms/ssmconfig/internal/logging"
	"github.com/systmms/ssmconfig/internal/metrics"
	"github.com/systmms/ssmconfig/pkg/configstore"
)

// SSMStoreType is the store type name for AWS SSM Parameter Store
const SSMStoreType = "aws-ssm"

// SSMClientAPI defines the interface for AWS SSM Parameter Store operations
// This allows for mocking in tests
type SSMClientAPI = fetch.ParametersByPathAPI

// AWSSSMStore implements configstore.Store for AWS Systems Manager Parameter Store
type AWSSSMStore struct {
	name    string
	options fetch.Options
	config  SSMConfig
	logger  *logging.Logger
	metrics *metrics.FetchMetrics

	builder fetch.RequestBuilder
	mapper  fetch.KeyMapper

	mu     sync.Mutex
	client SSMClientAPI
	closed bool
}

// SSMConfig holds AWS client settings
type SSMConfig struct {
	Region   string
	Profile  string
	Endpoint string
}

// SSMStoreOption is a functional option for configuring SSM stores
type SSMStoreOption func(*AWSSSMStore)

// WithSSMClient sets a custom SSM client (for testing)
func WithSSMClient(client SSMClientAPI) SSMStoreOption {
	return func(s *AWSSSMStore) {
		s.client = client
	}
}

// WithLogger sets the store's logger
func WithLogger(logger *logging.Logger) SSMStoreOption {
	return func(s *AWSSSMStore) {
		s.logger = logger
	}
}

// WithMetrics records fetch activity on m
func WithMetrics(m *metrics.FetchMetrics) SSMStoreOption {
	return func(s *AWSSSMStore) {
		s.metrics = m
	}
}

// WithRequestBuilder overrides the request built from the store options.
// A nil builder keeps the default.
func WithRequestBuilder(b fetch.RequestBuilder) SSMStoreOption {
	return func(s *AWSSSMStore) {
		s.builder = b
	}
}

// WithKeyMapper overrides the key mapper chosen by parsePath. A nil mapper
// keeps the default.
func WithKeyMapper(m fetch.KeyMapper) SSMStoreOption {
	return func(s *AWSSSMStore) {
		s.mapper = m
	}
}

// NewAWSSSMStore creates a new AWS SSM Parameter Store config store.
// Options are validated before any client is created.
func NewAWSSSMStore(name string, configMap map[string]interface{}, opts ...SSMStoreOption) (*AWSSSMStore, error) {
	options, err := fetch.ParseOptions(name, configMap)
	if err != nil {
		return nil, err
	}

	config := SSMConfig{}
	for key, dst := range map[string]*string{
		"region":   &config.Region,
		"profile":  &config.Profile,
		"endpoint": &config.Endpoint,
	} {
		v, ok := configMap[key]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, dserrors.ConfigError{
				Store:   name,
				Field:   key,
				Value:   v,
				Message: fmt.Sprintf("must be a string, got %T", v),
			}
		}
		*dst = s
	}

	s := &AWSSSMStore{
		name:    name,
		options: options,
		config:  config,
		logger:  logging.Discard(),
		builder: fetch.RequestBuilderFor(options),
		mapper:  fetch.MapperFor(options),
	}

	// Apply options (allows mock client injection)
	for _, opt := range opts {
		opt(s)
	}
	if s.builder == nil {
		s.builder = fetch.RequestBuilderFor(options)
	}
	if s.mapper == nil {
		s.mapper = fetch.MapperFor(options)
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}

	// If no client was provided via options, create real client
	if s.client == nil {
		client, err := createSSMClient(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create SSM client: %w", err)
		}
		s.client = client
	}

	return s, nil
}

// createSSMClient creates an AWS SSM client with the given configuration
func createSSMClient(config SSMConfig) (*ssm.Client, error) {
	ctx := context.Background()

	var configOpts []func(*awsconfig.LoadOptions) error

	if config.Region != "" {
		configOpts = append(configOpts, awsconfig.WithRegion(config.Region))
	}

	if config.Profile != "" {
		configOpts = append(configOpts, awsconfig.WithSharedConfigProfile(config.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return ssm.NewFromConfig(cfg, func(o *ssm.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
	}), nil
}

// Name returns the store name
func (s *AWSSSMStore) Name() string {
	return s.name
}

// Options returns the parsed fetch options
func (s *AWSSSMStore) Options() fetch.Options {
	return s.options
}

// Get fetches every parameter under the configured path and returns them
// as a flat JSON object.
func (s *AWSSSMStore) Get(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	client, closed := s.client, s.closed
	s.mu.Unlock()

	if closed {
		return nil, dserrors.UserError{
			Message:    fmt.Sprintf("Store '%s' is closed", s.name),
			Suggestion: "Create a new store after Close",
		}
	}

	s.logger.Debug("Fetching parameters for store %s (%s)", s.name, s.options)

	fetcher := fetch.New(client, s.builder,
		fetch.WithKeyMapper(s.mapper),
		fetch.WithLogger(s.logger),
		fetch.WithMetrics(s.metrics),
	)
	params, err := fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Store %s resolved %d parameters", s.name, len(params))
	return encodeParameters(params)
}

// Close drops the client handle. The v2 SDK client holds no resources that
// need an explicit shutdown.
func (s *AWSSSMStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.client = nil
	s.closed = true
	return nil
}

// encodeParameters serializes params as a JSON object; nil becomes {}.
func encodeParameters(params map[string]string) ([]byte, error) {
	if params == nil {
		params = map[string]string{}
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode parameters: %w", err)
	}
	return data, nil
}

// AWSSSMStoreFactory creates AWSSSMStore instances. Options given to the
// factory are applied to every store it creates.
type AWSSSMStoreFactory struct {
	typeName string
	opts     []SSMStoreOption
}

// NewAWSSSMStoreFactory creates an AWS SSM store factory
func NewAWSSSMStoreFactory(opts ...SSMStoreOption) *AWSSSMStoreFactory {
	return &AWSSSMStoreFactory{typeName: SSMStoreType, opts: opts}
}

// Name returns the store type
func (f *AWSSSMStoreFactory) Name() string {
	return f.typeName
}

// Create builds a store from raw configuration
func (f *AWSSSMStoreFactory) Create(name string, config map[string]interface{}) (configstore.Store, error) {
	return NewAWSSSMStore(name, config, f.opts...)
}
