package fakes

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// SSMAPI matches the subset of *ssm.Client used by the fetcher
type SSMAPI interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// FakeSSMClient is an in-memory Parameter Store.
//
// Two modes are supported. When Pages is set, responses are scripted by the
// request's continuation token ("" for the first request). Otherwise the
// client serves Parameters, paged by PageSize (or the request's MaxResults),
// the way the real service does.
type FakeSSMClient struct {
	// Parameters maps parameter names to their data
	Parameters map[string]*ParameterData
	// PageSize is the default page size in served mode. Defaults to 10.
	PageSize int
	// Pages scripts responses by continuation token
	Pages map[string]*ssm.GetParametersByPathOutput
	// Errors maps continuation tokens ("" for the first request) to errors to return
	Errors map[string]error
	// GetParametersByPathFunc allows custom behavior for GetParametersByPath
	GetParametersByPathFunc func(ctx context.Context, params *ssm.GetParametersByPathInput) (*ssm.GetParametersByPathOutput, error)

	mu    sync.Mutex
	calls []ssm.GetParametersByPathInput
}

// ParameterData holds the data for a fake SSM parameter
type ParameterData struct {
	Name             *string
	Type             ssmtypes.ParameterType
	Value            *string
	Version          int64
	LastModifiedDate *time.Time
	ARN              *string
}

// NewFakeSSMClient creates a new fake SSM client
func NewFakeSSMClient() *FakeSSMClient {
	return &FakeSSMClient{
		Parameters: make(map[string]*ParameterData),
		Errors:     make(map[string]error),
	}
}

// AddStringParameter adds a String parameter
func (f *FakeSSMClient) AddStringParameter(name, value string) {
	f.addParameter(name, value, ssmtypes.ParameterTypeString)
}

// AddSecureStringParameter adds a SecureString parameter. Its value is only
// returned in clear text when the request asks for decryption.
func (f *FakeSSMClient) AddSecureStringParameter(name, value string) {
	f.addParameter(name, value, ssmtypes.ParameterTypeSecureString)
}

func (f *FakeSSMClient) addParameter(name, value string, typ ssmtypes.ParameterType) {
	now := time.Now()
	f.Parameters[name] = &ParameterData{
		Name:             aws.String(name),
		Type:             typ,
		Value:            aws.String(value),
		Version:          1,
		LastModifiedDate: &now,
		ARN:              aws.String(fmt.Sprintf("arn:aws:ssm:us-east-1:123456789012:parameter%s", name)),
	}
}

// AddPage scripts the response returned for token. nextToken may be nil.
func (f *FakeSSMClient) AddPage(token string, nextToken *string, params map[string]string) {
	if f.Pages == nil {
		f.Pages = make(map[string]*ssm.GetParametersByPathOutput)
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	out := &ssm.GetParametersByPathOutput{NextToken: nextToken}
	for _, name := range names {
		out.Parameters = append(out.Parameters, ssmtypes.Parameter{
			Name:  aws.String(name),
			Type:  ssmtypes.ParameterTypeString,
			Value: aws.String(params[name]),
		})
	}
	f.Pages[token] = out
}

// AddError makes the request carrying token fail with err
func (f *FakeSSMClient) AddError(token string, err error) {
	f.Errors[token] = err
}

// Calls returns a copy of every request received, in order
func (f *FakeSSMClient) Calls() []ssm.GetParametersByPathInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ssm.GetParametersByPathInput(nil), f.calls...)
}

// CallCount returns the number of requests received
func (f *FakeSSMClient) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// GetParametersByPath fakes the GetParametersByPath operation
func (f *FakeSSMClient) GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	f.mu.Lock()
	f.calls = append(f.calls, *params)
	f.mu.Unlock()

	if f.GetParametersByPathFunc != nil {
		return f.GetParametersByPathFunc(ctx, params)
	}

	token := aws.ToString(params.NextToken)
	if err, exists := f.Errors[token]; exists {
		return nil, err
	}

	if f.Pages != nil {
		out, exists := f.Pages[token]
		if !exists {
			return nil, &ssmtypes.InvalidNextToken{
				Message: aws.String(fmt.Sprintf("unknown token %q", token)),
			}
		}
		return out, nil
	}

	return f.serve(params)
}

func (f *FakeSSMClient) serve(params *ssm.GetParametersByPathInput) (*ssm.GetParametersByPathOutput, error) {
	path := aws.ToString(params.Path)
	prefix := path
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	recursive := aws.ToBool(params.Recursive)

	var names []string
	for name := range f.Parameters {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok || rest == "" {
			continue
		}
		if !recursive && strings.Contains(rest, "/") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	offset := 0
	if token := aws.ToString(params.NextToken); token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 || n > len(names) {
			return nil, &ssmtypes.InvalidNextToken{Message: aws.String("invalid token")}
		}
		offset = n
	}

	size := f.PageSize
	if params.MaxResults != nil {
		size = int(*params.MaxResults)
	}
	if size <= 0 {
		size = 10
	}

	end := offset + size
	if end > len(names) {
		end = len(names)
	}

	out := &ssm.GetParametersByPathOutput{}
	for _, name := range names[offset:end] {
		data := f.Parameters[name]
		value := aws.ToString(data.Value)
		if data.Type == ssmtypes.ParameterTypeSecureString && !aws.ToBool(params.WithDecryption) {
			value = "ciphertext:" + value
		}
		out.Parameters = append(out.Parameters, ssmtypes.Parameter{
			Name:             data.Name,
			Type:             data.Type,
			Value:            aws.String(value),
			Version:          data.Version,
			LastModifiedDate: data.LastModifiedDate,
			ARN:              data.ARN,
		})
	}
	if end < len(names) {
		out.NextToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}
