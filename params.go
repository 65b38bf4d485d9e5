package hubcache

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	c "github.com/unkn0wn-root/hubcache/codec"
	"github.com/unkn0wn-root/hubcache/internal/util"
)

// NullParam is what a nil key argument becomes.
const NullParam = "null"

var (
	entityType = reflect.TypeOf((*Entity)(nil)).Elem()
	filterType = reflect.TypeOf((*Filter)(nil)).Elem()

	// canonical filter encoding; equal values give equal bytes.
	filterCodec = c.MustCBOR[any](true)
)

// builtinConverters maps exact argument types to their key form.
// Anything not listed falls through to the interface rules in convertParam.
var builtinConverters = map[reflect.Type]ParamConverter{
	reflect.TypeOf(float64(0)): func(v any) (any, error) {
		return strconv.FormatFloat(v.(float64), 'f', -1, 64), nil
	},
	reflect.TypeOf(float32(0)): func(v any) (any, error) {
		return strconv.FormatFloat(float64(v.(float32)), 'f', -1, 32), nil
	},
	reflect.TypeOf(time.Time{}): func(v any) (any, error) {
		return v.(time.Time).UTC().Format(time.RFC3339Nano), nil
	},
	reflect.TypeOf([]int64(nil)): func(v any) (any, error) {
		return util.IDsHash(v.([]int64)), nil
	},
	reflect.TypeOf([]int(nil)):    convertIDs,
	reflect.TypeOf([]int32(nil)):  convertIDs,
	reflect.TypeOf([]uint(nil)):   convertIDs,
	reflect.TypeOf([]uint32(nil)): convertIDs,
	reflect.TypeOf([]uint64(nil)): convertIDs,
}

func convertParam(custom map[reflect.Type]ParamConverter, v any) (any, error) {
	if v == nil {
		return NullParam, nil
	}
	rv := reflect.ValueOf(v)
	t := rv.Type()
	if t.Kind() == reflect.Pointer && rv.IsNil() {
		return NullParam, nil
	}
	if fn, ok := custom[t]; ok {
		return fn(v)
	}
	if fn, ok := builtinConverters[t]; ok {
		return fn(v)
	}

	switch {
	case t.Implements(filterType):
		return convertFilter(v)
	case t.Implements(entityType):
		return v.(Entity).EntityID(), nil
	case isSeq(t) && t.Elem().Implements(entityType):
		return convertEntities(rv), nil
	case isSeq(t) && isIntegerKind(t.Elem().Kind()):
		return convertIDs(v)
	}
	return v, nil
}

func convertFilter(v any) (any, error) {
	b, err := filterCodec.Encode(v)
	if err != nil {
		return nil, &ParameterConversionError{Type: fmt.Sprintf("%T", v), Err: err}
	}
	return util.HashHex(b), nil
}

func convertEntities(rv reflect.Value) string {
	ids := make([]int64, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		el := rv.Index(i)
		if (el.Kind() == reflect.Pointer || el.Kind() == reflect.Interface) && el.IsNil() {
			continue
		}
		ids = append(ids, el.Interface().(Entity).EntityID())
	}
	return util.IDsHash(ids)
}

// convertIDs handles any slice or array of integers.
func convertIDs(v any) (any, error) {
	rv := reflect.ValueOf(v)
	ids := make([]int64, rv.Len())
	for i := range ids {
		el := rv.Index(i)
		if el.CanInt() {
			ids[i] = el.Int()
			continue
		}
		u := el.Uint()
		if u > math.MaxInt64 {
			return nil, &ParameterConversionError{Type: fmt.Sprintf("%T", v), Err: fmt.Errorf("id %d overflows int64", u)}
		}
		ids[i] = int64(u)
	}
	return util.IDsHash(ids), nil
}

func isSeq(t reflect.Type) bool {
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}

// uint8 is left out so []byte passes through untouched.
func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
