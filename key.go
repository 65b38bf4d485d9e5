package hubcache

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ParamConverter turns one raw key argument into its key-safe form.
type ParamConverter func(v any) (any, error)

// CacheKey is a key template (or a key prepared from one) plus the prefixes
// that group it for bulk removal.
//
// CacheTime == 0 means the store default applies.
type CacheKey struct {
	Key       string
	Prefixes  []string
	CacheTime time.Duration
}

// NewCacheKey builds a template. Empty prefixes are dropped.
func NewCacheKey(key string, prefixes ...string) CacheKey {
	ps := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p != "" {
			ps = append(ps, p)
		}
	}
	return CacheKey{Key: key, Prefixes: ps}
}

// Create returns a new key with each {i} in Key replaced by conv(params[i]).
// Prefixes and CacheTime are carried over as they are; a prefix that still holds
// placeholders has to be prepared separately (see KeyService.PreparePrefix).
func (k CacheKey) Create(conv ParamConverter, params ...any) (CacheKey, error) {
	args := make([]any, len(params))
	for i, p := range params {
		if conv == nil {
			args[i] = p
			continue
		}
		v, err := conv(p)
		if err != nil {
			return CacheKey{}, err
		}
		args[i] = v
	}
	s, err := FormatTemplate(k.Key, args...)
	if err != nil {
		return CacheKey{}, err
	}
	out := CacheKey{Key: s, CacheTime: k.CacheTime}
	if len(k.Prefixes) > 0 {
		out.Prefixes = append([]string(nil), k.Prefixes...)
	}
	return out, nil
}

// HasPrefix reports whether prefix is a string prefix of the key.
func (k CacheKey) HasPrefix(prefix string) bool { return strings.HasPrefix(k.Key, prefix) }

func (k CacheKey) String() string { return k.Key }

// FormatTemplate substitutes positional {0}, {1}, ... placeholders with args
// formatted by %v. "{{" and "}}" produce literal braces.
func FormatTemplate(tmpl string, args ...any) (string, error) {
	if strings.IndexByte(tmpl, '{') < 0 && strings.IndexByte(tmpl, '}') < 0 {
		return tmpl, nil
	}
	var b strings.Builder
	b.Grow(len(tmpl) + 8*len(args))
	for i := 0; i < len(tmpl); i++ {
		ch := tmpl[i]
		switch ch {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			start := i
			j := i + 1
			idx := 0
			for j < len(tmpl) && tmpl[j] >= '0' && tmpl[j] <= '9' {
				d := int(tmpl[j] - '0')
				if idx > (math.MaxInt-d)/10 {
					return "", &KeyFormatError{Template: tmpl, Pos: start, Index: -1, Args: len(args)}
				}
				idx = idx*10 + d
				j++
			}
			if j == i+1 || j >= len(tmpl) || tmpl[j] != '}' {
				return "", &KeyFormatError{Template: tmpl, Pos: start, Index: -1, Args: len(args)}
			}
			if idx < 0 || idx >= len(args) {
				return "", &KeyFormatError{Template: tmpl, Pos: start, Index: idx, Args: len(args)}
			}
			fmt.Fprintf(&b, "%v", args[idx])
			i = j
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", &KeyFormatError{Template: tmpl, Pos: i, Index: -1, Args: len(args)}
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), nil
}
