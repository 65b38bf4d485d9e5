package hubcache

import (
	"reflect"
	"time"

	"github.com/unkn0wn-root/hubcache/internal/util"
)

const (
	DefaultCacheTime   = 60 * time.Minute
	ShortTermCacheTime = 3 * time.Minute

	// HashAlgorithm is the digest used for ids and filter fragments.
	HashAlgorithm = util.HashAlgorithm
)

// KeyOptions configure a KeyService. Zero values take the package defaults.
type KeyOptions struct {
	DefaultCacheTime   time.Duration
	ShortTermCacheTime time.Duration

	// Converters are consulted before the built-in table, by exact type.
	Converters map[reflect.Type]ParamConverter
}

// KeyService prepares concrete keys from templates. It is the only place that
// decides how a non-primitive argument becomes part of a key.
// It holds no mutable state and is safe for concurrent use.
type KeyService struct {
	defaultTime   time.Duration
	shortTermTime time.Duration
	converters    map[reflect.Type]ParamConverter
}

func NewKeyService(opts KeyOptions) *KeyService {
	s := &KeyService{
		defaultTime:   coalesce[time.Duration](opts.DefaultCacheTime, DefaultCacheTime),
		shortTermTime: coalesce[time.Duration](opts.ShortTermCacheTime, ShortTermCacheTime),
	}
	if len(opts.Converters) > 0 {
		s.converters = make(map[reflect.Type]ParamConverter, len(opts.Converters))
		for t, fn := range opts.Converters {
			s.converters[t] = fn
		}
	}
	return s
}

func (s *KeyService) DefaultCacheTime() time.Duration   { return s.defaultTime }
func (s *KeyService) ShortTermCacheTime() time.Duration { return s.shortTermTime }

// PrepareKey formats tmpl with args; CacheTime stays whatever tmpl carries.
func (s *KeyService) PrepareKey(tmpl CacheKey, args ...any) (CacheKey, error) {
	return tmpl.Create(s.CreateCacheKeyParameters, args...)
}

// PrepareKeyForDefaultCache is PrepareKey with CacheTime set to the default duration.
func (s *KeyService) PrepareKeyForDefaultCache(tmpl CacheKey, args ...any) (CacheKey, error) {
	k, err := s.PrepareKey(tmpl, args...)
	if err != nil {
		return CacheKey{}, err
	}
	k.CacheTime = s.defaultTime
	return k, nil
}

// PrepareKeyForShortTermCache is PrepareKey with CacheTime set to the short-term duration.
func (s *KeyService) PrepareKeyForShortTermCache(tmpl CacheKey, args ...any) (CacheKey, error) {
	k, err := s.PrepareKey(tmpl, args...)
	if err != nil {
		return CacheKey{}, err
	}
	k.CacheTime = s.shortTermTime
	return k, nil
}

// PreparePrefix formats a prefix template. Without args the prefix is returned as is.
func (s *KeyService) PreparePrefix(prefix string, args ...any) (string, error) {
	if len(args) == 0 {
		return prefix, nil
	}
	conv := make([]any, len(args))
	for i, a := range args {
		v, err := s.CreateCacheKeyParameters(a)
		if err != nil {
			return "", err
		}
		conv[i] = v
	}
	return FormatTemplate(prefix, conv...)
}

// CreateCacheKeyParameters converts one key argument:
//
//	nil                    -> "null"
//	Entity                 -> its id
//	[]integer, []Entity    -> CreateIDsHash of the ids
//	float32/float64        -> invariant decimal text
//	time.Time              -> UTC RFC 3339
//	Filter                 -> SHA-1 of its canonical encoding
//	anything else          -> unchanged
func (s *KeyService) CreateCacheKeyParameters(v any) (any, error) {
	return convertParam(s.converters, v)
}

// CreateIDsHash returns "" for no ids, otherwise the hash of the sorted ids.
func (s *KeyService) CreateIDsHash(ids []int64) string { return CreateIDsHash(ids) }

func CreateIDsHash(ids []int64) string { return util.IDsHash(ids) }
