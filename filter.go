package hubcache

// Filter marks query objects whose cache identity is their serialized content.
type Filter interface {
	CacheFilter()
}

// DynamicFilter is the paging/sorting/predicate object list screens pass to
// by-dynamic-filter lookups. Fields values must be serializable (no funcs or chans).
type DynamicFilter struct {
	PageIndex  int            `cbor:"page_index" json:"page_index"`
	PageSize   int            `cbor:"page_size" json:"page_size"`
	OrderBy    string         `cbor:"order_by,omitempty" json:"order_by,omitempty"`
	Descending bool           `cbor:"desc,omitempty" json:"desc,omitempty"`
	Fields     map[string]any `cbor:"fields,omitempty" json:"fields,omitempty"`
}

func (DynamicFilter) CacheFilter() {}
