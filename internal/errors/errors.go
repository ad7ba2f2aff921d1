package errors

import (
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a store configuration error. It is always raised
// before any request reaches Parameter Store.
type ConfigError struct {
	Store      string
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Store != "" {
		msg += fmt.Sprintf(" for store '%s'", e.Store)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// RemoteCallError reports a failed GetParametersByPath call. The cause is
// kept verbatim so callers can match SDK error types with errors.As.
type RemoteCallError struct {
	Path string
	Page int
	Err  error
}

func (e *RemoteCallError) Error() string {
	msg := fmt.Sprintf("get parameters by path %q failed on page %d: %v", e.Path, e.Page, e.Err)
	if s := SSMSuggestion(e.Err); s != "" {
		msg += "\n  💡 " + s
	}
	return msg
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// SSMSuggestion provides helpful suggestions based on SSM errors
func SSMSuggestion(err error) string {
	if err == nil {
		return ""
	}
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "accessdenied"):
		return "Check IAM permissions: ssm:GetParametersByPath and kms:Decrypt (for SecureString)"
	case strings.Contains(errStr, "invalidkeyid"):
		return "The KMS key for a SecureString parameter may not exist or you lack kms:Decrypt permission"
	case strings.Contains(errStr, "invalidfilter"), strings.Contains(errStr, "validationexception"):
		return "Parameter paths must start with '/' and use at most 15 levels"
	case strings.Contains(errStr, "throttl"):
		return "Request was throttled. Retry later or lower the request rate"
	case strings.Contains(errStr, "region"):
		return "Check that you're using the correct AWS region where the parameters are stored"
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"):
		return "The request timed out. Check your network connection and try again"
	case strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "no such host"):
		return "Unable to connect. Check the endpoint and network configuration"
	default:
		return ""
	}
}

// SimplifyError simplifies YAML and JSON decoding failures into ConfigErrors
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	switch err.(type) {
	case UserError, ConfigError, *RemoteCallError:
		return err
	}

	errStr := err.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	return err
}
