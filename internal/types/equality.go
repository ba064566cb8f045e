package types

import "fmt"

// EqualityCache memoizes Equals results within a single inference or
// refinement pass, keyed by a stable canonical encoding of the type pair
// (spec §4.1/§9). It must be cleared between refinement passes: a cached
// "false" from before a weak slot was resolved would otherwise survive and
// report a stale mismatch.
type EqualityCache struct {
	cache map[string]bool
}

// NewEqualityCache creates an empty cache.
func NewEqualityCache() *EqualityCache {
	return &EqualityCache{cache: make(map[string]bool)}
}

// Clear empties the cache; call between refinement passes.
func (c *EqualityCache) Clear() {
	c.cache = make(map[string]bool)
}

func pairKey(a, b Type) string {
	return fmt.Sprintf("%s\x00%s\x00%p\x00%p", encode(a), encode(b), a, b)
}

// encode produces a structural (not pointer-identity) encoding so two
// distinct-but-equal type trees hash the same; the pointer suffix in
// pairKey still distinguishes distinct *TWeak cells with identical
// unresolved rendering ("weak#N" already disambiguates those, but the
// pointer suffix keeps the key collision-free in every case).
func encode(t Type) string {
	return t.String()
}

// Equals checks the subtype-like equality relation from spec §3:
//   - an unresolved weak, poly, or dynamic type matches anything (wildcard);
//     a resolved weak defers to its resolved type.
//   - union on the LHS requires every arm to be Equals to the RHS.
//   - union on the RHS requires at least one arm to be Equals to the LHS.
//   - intersection is the dual: LHS requires at least one arm, RHS requires
//     every arm (this is what lets `inf`, typed intersection(int,float),
//     satisfy either an int or a float context).
//   - otherwise, arms must share a constructor and their components must be
//     pairwise Equals.
func Equals(a, b Type) bool {
	return equalsCached(a, b, nil)
}

// EqualsMemo is Equals backed by a shared cache for use inside a hot loop
// (inference/refinement passes over a whole program).
func EqualsMemo(a, b Type, cache *EqualityCache) bool {
	return equalsCached(a, b, cache)
}

func equalsCached(a, b Type, cache *EqualityCache) bool {
	if cache != nil {
		key := pairKey(a, b)
		if v, ok := cache.cache[key]; ok {
			return v
		}
		result := equalsUncached(a, b, cache)
		cache.cache[key] = result
		return result
	}
	return equalsUncached(a, b, cache)
}

func equalsUncached(a, b Type, cache *EqualityCache) bool {
	a = derefShallow(a)
	b = derefShallow(b)

	if isWildcard(a) || isWildcard(b) {
		return true
	}

	if au, ok := a.(*TUnion); ok {
		for _, arm := range au.Types {
			if !equalsCached(arm, b, cache) {
				return false
			}
		}
		return true
	}
	if bu, ok := b.(*TUnion); ok {
		for _, arm := range bu.Types {
			if equalsCached(a, arm, cache) {
				return true
			}
		}
		return false
	}
	if ai, ok := a.(*TIntersection); ok {
		for _, arm := range ai.Types {
			if equalsCached(arm, b, cache) {
				return true
			}
		}
		return false
	}
	if bi, ok := b.(*TIntersection); ok {
		for _, arm := range bi.Types {
			if !equalsCached(a, arm, cache) {
				return false
			}
		}
		return true
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case *TCon:
		bv := b.(*TCon)
		return av.Name == bv.Name
	case *TRangeType, *TPredicateType, *TPoly, *TDynamic:
		return true
	case *TArray:
		return equalsCached(av.Elem, b.(*TArray).Elem, cache)
	case *TMap:
		bv := b.(*TMap)
		return equalsCached(av.Key, bv.Key, cache) && equalsCached(av.Value, bv.Value, cache)
	case *TSet:
		return equalsCached(av.Elem, b.(*TSet).Elem, cache)
	case *THeap:
		bv := b.(*THeap)
		return av.Min == bv.Min && equalsCached(av.Elem, bv.Elem, cache)
	case *THeapMap:
		bv := b.(*THeapMap)
		return av.Min == bv.Min && equalsCached(av.Key, bv.Key, cache) && equalsCached(av.Value, bv.Value, cache)
	case *TBinaryTree:
		return equalsCached(av.Elem, b.(*TBinaryTree).Elem, cache)
	case *TAVLTree:
		return equalsCached(av.Elem, b.(*TAVLTree).Elem, cache)
	case *TGraph:
		return equalsCached(av.Node, b.(*TGraph).Node, cache)
	case *TTuple:
		bv := b.(*TTuple)
		if len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !equalsCached(av.Elems[i], bv.Elems[i], cache) {
				return false
			}
		}
		return true
	case *TRecord:
		bv := b.(*TRecord)
		if len(av.Fields) != len(bv.Fields) {
			return false
		}
		for _, f := range av.Fields {
			other := bv.Lookup(f.Name)
			if other == nil || !equalsCached(f.Type, other, cache) {
				return false
			}
		}
		return true
	case *TFunction:
		bv := b.(*TFunction)
		if len(av.Params) != len(bv.Params) || av.Variadic != bv.Variadic {
			return false
		}
		for i := range av.Params {
			if !equalsCached(av.Params[i], bv.Params[i], cache) {
				return false
			}
		}
		return equalsCached(av.Return, bv.Return, cache)
	default:
		return false
	}
}

func derefShallow(t Type) Type {
	if w, ok := t.(*TWeak); ok && w.Resolved != nil {
		return derefShallow(w.Resolved)
	}
	return t
}

func isWildcard(t Type) bool {
	switch t.(type) {
	case *TWeak, *TPoly, *TDynamic:
		return true
	}
	return false
}
