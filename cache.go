package sumcodec

import (
	"reflect"

	lru "github.com/hashicorp/golang-lru"
)

// rootCache, sized by defaultCacheSize, bounds the number of distinct root types whose analyzed
// Type Tree and built codec.Engine are kept warm across ForRoot calls, so
// a long-lived process that calls ForRoot on many transient types (e.g.
// one per request in a generic gateway) cannot grow this cache without
// bound, the same shape of concern the teacher library addresses with an
// LRU cache for its own client connection pool.
const defaultCacheSize = 256

var rootCache, _ = lru.New(defaultCacheSize)

type cachedEngine struct {
	engine *codecEngineHandle
}

func cacheGet(rt reflect.Type) (*codecEngineHandle, bool) {
	v, ok := rootCache.Get(rt)
	if !ok {
		return nil, false
	}
	return v.(*cachedEngine).engine, true
}

func cachePut(rt reflect.Type, h *codecEngineHandle) {
	rootCache.Add(rt, &cachedEngine{engine: h})
}
