package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/ssmconfig/internal/errors"
)

// TestUserErrorFormatting verifies UserError displays properly
func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.UserError{
		Message:    "Operation failed",
		Details:    "Connection timeout",
		Suggestion: "Check network connectivity",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Operation failed")
	assert.Contains(t, errMsg, "Connection timeout")
	assert.Contains(t, errMsg, "Check network connectivity")
}

func TestUserErrorFallsBackToWrapped(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("boom")
	err := errors.UserError{Err: cause}

	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, cause)
}

// TestConfigErrorFormatting verifies ConfigError displays with context
func TestConfigErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.ConfigError{
		Store:      "app",
		Field:      "path",
		Value:      "",
		Message:    "path must not be empty",
		Suggestion: "Set 'path' to a parameter hierarchy such as /myapp/prod",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "store 'app'")
	assert.Contains(t, errMsg, "field 'path'")
	assert.Contains(t, errMsg, "path must not be empty")
	assert.Contains(t, errMsg, "/myapp/prod")
}

func TestRemoteCallErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("AccessDeniedException: not authorized")
	var err error = &errors.RemoteCallError{Path: "/local/", Page: 2, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `"/local/"`)
	assert.Contains(t, err.Error(), "page 2")
	assert.Contains(t, err.Error(), "ssm:GetParametersByPath")

	var remote *errors.RemoteCallError
	require.True(t, stderrors.As(err, &remote))
	assert.Equal(t, 2, remote.Page)
}

func TestSSMSuggestion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"access denied", fmt.Errorf("AccessDeniedException"), "IAM permissions"},
		{"kms", fmt.Errorf("InvalidKeyId: key missing"), "KMS key"},
		{"throttled", fmt.Errorf("ThrottlingException: Rate exceeded"), "throttled"},
		{"validation", fmt.Errorf("ValidationException: bad path"), "must start with '/'"},
		{"network", fmt.Errorf("dial tcp: connection refused"), "Unable to connect"},
		{"unknown", fmt.Errorf("something else"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.SSMSuggestion(tt.err)
			if tt.contains == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.contains)
		})
	}
}

func TestSimplifyError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.SimplifyError(nil))

	userErr := errors.UserError{Message: "kept"}
	assert.Equal(t, userErr, errors.SimplifyError(userErr))

	yamlErr := errors.SimplifyError(fmt.Errorf("yaml: line 3: mapping values are not allowed"))
	var cfgErr errors.ConfigError
	require.True(t, stderrors.As(yamlErr, &cfgErr))
	assert.Equal(t, "Invalid YAML format", cfgErr.Message)

	plain := fmt.Errorf("plain")
	assert.Equal(t, plain, errors.SimplifyError(plain))
}
