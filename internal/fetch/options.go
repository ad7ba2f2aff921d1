package fetch

import (
	"fmt"
	"strings"

	dserrors "github.com/systmms/ssmconfig/internal/errors"
)

// Separator is the Parameter Store hierarchy separator.
const Separator = "/"

// Options describes one GetParametersByPath namespace. Build it with
// NewOptions or ParseOptions; the zero value is not usable.
type Options struct {
	path         string
	decrypt      bool
	recursive    bool
	parsePath    bool
	strictPrefix bool
	maxResults   int32
}

// Setting adjusts Options during NewOptions.
type Setting func(*Options)

// Decrypt sets WithDecryption for SecureString parameters. Default true.
func Decrypt(v bool) Setting { return func(o *Options) { o.decrypt = v } }

// Recursive includes parameters nested below the path. Default true.
func Recursive(v bool) Setting { return func(o *Options) { o.recursive = v } }

// ParsePath strips the normalized path from every returned key. Default false.
func ParsePath(v bool) Setting { return func(o *Options) { o.parsePath = v } }

// StrictPrefix makes ParsePath leave keys that do not start with the path untouched.
func StrictPrefix(v bool) Setting { return func(o *Options) { o.strictPrefix = v } }

// MaxResults sets the page size (1-10). Zero leaves the service default.
func MaxResults(n int32) Setting { return func(o *Options) { o.maxResults = n } }

// NewOptions validates path, appends a trailing separator when missing, and
// applies settings over the defaults.
func NewOptions(path string, settings ...Setting) (Options, error) {
	if strings.TrimSpace(path) == "" {
		return Options{}, dserrors.ConfigError{
			Field:      "path",
			Value:      path,
			Message:    "the path must be set",
			Suggestion: "Set 'path' to a parameter hierarchy such as /myapp/prod",
		}
	}

	o := Options{
		path:      NormalizePath(path),
		decrypt:   true,
		recursive: true,
	}
	for _, s := range settings {
		s(&o)
	}

	if o.maxResults < 0 || o.maxResults > 10 {
		return Options{}, dserrors.ConfigError{
			Field:      "maxResults",
			Value:      o.maxResults,
			Message:    "page size must be between 1 and 10",
			Suggestion: "Remove 'maxResults' to use the service default",
		}
	}

	return o, nil
}

// NormalizePath appends Separator unless path already ends with it.
func NormalizePath(path string) string {
	if strings.HasSuffix(path, Separator) {
		return path
	}
	return path + Separator
}

// ParseOptions builds Options from a raw store configuration map.
// Recognized keys: path, decrypt, recursive, parsePath, strictPrefix, maxResults.
func ParseOptions(store string, raw map[string]interface{}) (Options, error) {
	var settings []Setting

	path, err := stringField(raw, "path")
	if err != nil {
		return Options{}, withStore(store, err)
	}

	for _, b := range []struct {
		key string
		set func(bool) Setting
	}{
		{"decrypt", Decrypt},
		{"recursive", Recursive},
		{"parsePath", ParsePath},
		{"strictPrefix", StrictPrefix},
	} {
		v, ok, err := boolField(raw, b.key)
		if err != nil {
			return Options{}, withStore(store, err)
		}
		if ok {
			settings = append(settings, b.set(v))
		}
	}

	if n, ok, err := intField(raw, "maxResults"); err != nil {
		return Options{}, withStore(store, err)
	} else if ok {
		// Omit the key for the service default; an explicit 0 is rejected
		// like in the config schema.
		if n < 1 || n > 10 {
			return Options{}, withStore(store, dserrors.ConfigError{
				Field:   "maxResults",
				Value:   n,
				Message: "page size must be between 1 and 10",
			})
		}
		settings = append(settings, MaxResults(int32(n)))
	}

	o, err := NewOptions(path, settings...)
	if err != nil {
		return Options{}, withStore(store, err)
	}
	return o, nil
}

// Path returns the normalized path, always ending in Separator.
func (o Options) Path() string { return o.path }

// Decrypt reports whether SecureString values are requested decrypted.
func (o Options) Decrypt() bool { return o.decrypt }

// Recursive reports whether nested paths are included.
func (o Options) Recursive() bool { return o.recursive }

// ParsePath reports whether keys are stripped of the path.
func (o Options) ParsePath() bool { return o.parsePath }

// StrictPrefix reports whether stripping only applies to matching keys.
func (o Options) StrictPrefix() bool { return o.strictPrefix }

// MaxResults returns the page size, zero when unset.
func (o Options) MaxResults() int32 { return o.maxResults }

func (o Options) String() string {
	return fmt.Sprintf("path=%s decrypt=%t recursive=%t parsePath=%t", o.path, o.decrypt, o.recursive, o.parsePath)
}

func withStore(store string, err error) error {
	if cfgErr, ok := err.(dserrors.ConfigError); ok && cfgErr.Store == "" {
		cfgErr.Store = store
		return cfgErr
	}
	return err
}

func stringField(raw map[string]interface{}, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", typeError(key, v, "a string")
	}
	return s, nil
}

func boolField(raw map[string]interface{}, key string) (bool, bool, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return false, false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, false, typeError(key, v, "true or false")
	}
	return b, true, nil
}

func intField(raw map[string]interface{}, key string) (int, bool, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return n, true, nil
	case int32:
		return int(n), true, nil
	case int64:
		return int(n), true, nil
	case float64:
		if n == float64(int(n)) {
			return int(n), true, nil
		}
	}
	return 0, false, typeError(key, v, "an integer")
}

func typeError(key string, v interface{}, want string) error {
	return dserrors.ConfigError{
		Field:   key,
		Value:   v,
		Message: fmt.Sprintf("must be %s, got %T", want, v),
	}
}
