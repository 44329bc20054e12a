package flow

import (
	"fmt"
	"hash/fnv"
)

// Fingerprint combines dependency values into an order-sensitive hash using a
// 31x rolling combination seeded with 1. Values are hashed by type and their
// %+v rendering, so dependencies should be plain values; pointers hash by
// address.
func Fingerprint(deps ...any) int64 {
	var h int64 = 1
	for _, d := range deps {
		h = 31*h + hashValue(d)
	}
	return h
}

func hashValue(v any) int64 {
	if v == nil {
		return 0
	}
	f := fnv.New64a()
	fmt.Fprintf(f, "%T:%+v", v, v)
	return int64(f.Sum64())
}
