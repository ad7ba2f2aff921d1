package fetch

import "strings"

// KeyMapper rewrites the merged parameter map once per fetch.
type KeyMapper interface {
	Map(params map[string]string) map[string]string
}

// KeyMapperFunc adapts a function to KeyMapper.
type KeyMapperFunc func(params map[string]string) map[string]string

// Map calls f(params).
func (f KeyMapperFunc) Map(params map[string]string) map[string]string {
	return f(params)
}

// Identity returns params unchanged.
func Identity() KeyMapper {
	return KeyMapperFunc(func(params map[string]string) map[string]string {
		return params
	})
}

// StripPrefix removes the first n bytes of every key without checking what
// they are. Keys shorter than n are kept as is.
func StripPrefix(n int) KeyMapper {
	return KeyMapperFunc(func(params map[string]string) map[string]string {
		out := make(map[string]string, len(params))
		for k, v := range params {
			if len(k) >= n {
				k = k[n:]
			}
			out[k] = v
		}
		return out
	})
}

// StrictStripPrefix removes prefix from keys that start with it and leaves
// every other key untouched.
func StrictStripPrefix(prefix string) KeyMapper {
	return KeyMapperFunc(func(params map[string]string) map[string]string {
		out := make(map[string]string, len(params))
		for k, v := range params {
			if rest, ok := strings.CutPrefix(k, prefix); ok {
				k = rest
			}
			out[k] = v
		}
		return out
	})
}

// Chain applies mappers left to right.
func Chain(mappers ...KeyMapper) KeyMapper {
	return KeyMapperFunc(func(params map[string]string) map[string]string {
		for _, m := range mappers {
			params = m.Map(params)
		}
		return params
	})
}

// MapperFor picks the key mapper configured by o.
func MapperFor(o Options) KeyMapper {
	switch {
	case !o.parsePath:
		return Identity()
	case o.strictPrefix:
		return StrictStripPrefix(o.path)
	default:
		return StripPrefix(len(o.path))
	}
}
