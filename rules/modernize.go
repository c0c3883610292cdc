//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// WaitGroupModernize detects the Add/Done goroutine pattern that wg.Go replaces.
//
// Old pattern:
//
//	wg.Add(1)
//	go func() {
//	    defer wg.Done()
//	    doSomething()
//	}()
//
// New pattern (Go 1.25+):
//
//	wg.Go(func() {
//	    doSomething()
//	})
func WaitGroupModernize(m dsl.Matcher) {
	m.Match(`go func() { defer $wg.Done(); $*_ }()`).
		Where(m["wg"].Type.Is("*sync.WaitGroup")).
		Report("Use $wg.Go(func() { ... }) instead of go func() { defer $wg.Done(); ... }() (Go 1.25+)").
		Suggest("$wg.Go(func() { $*_ })")

	m.Match(`$wg.Add(1)`).
		Where(m["wg"].Type.Is("*sync.WaitGroup")).
		Report("Consider using $wg.Go() which calls Add(1) automatically (Go 1.25+)")
}

// MathRandV2 flags the v1 math/rand package. The name shuffle is seeded
// through math/rand/v2 PCG sources.
func MathRandV2(m dsl.Matcher) {
	m.Import("math/rand")

	m.Match(`rand.Seed($*_)`, `rand.NewSource($*_)`).
		Report("use math/rand/v2 with rand.New(rand.NewPCG(seed1, seed2))")
}

// StringsSplitIteration suggests strings.SplitSeq when the split slice is
// only ranged over.
func StringsSplitIteration(m dsl.Matcher) {
	m.Match(`for $_, $part := range strings.Split($s, $sep) { $*body }`).
		Report("use for $part := range strings.SplitSeq($s, $sep) when only iterating (Go 1.24+)")
}
