package tokenizer

import (
	"strings"
	"sync"
	"testing"
)

var (
	benchCoreOnce sync.Once
	benchCore     *coreBPE
	benchCoreErr  error
)

func loadBenchCore(b *testing.B) *coreBPE {
	benchCoreOnce.Do(func() {
		benchCore, benchCoreErr = newCoreBPE(testRanks(defaultExtra()...), testSpecials(), testPattern)
	})
	if benchCoreErr != nil {
		b.Fatalf("build core: %v", benchCoreErr)
	}
	return benchCore
}

func BenchmarkBytePairEncode_Short(b *testing.B) {
	core := loadBenchCore(b)
	var out []Rank
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out = out[:0]
		if n := core.bytePairEncodeInto("hello", &out); n == 0 {
			b.Fatal("expected tokens")
		}
	}
}

func BenchmarkBytePairMerge(b *testing.B) {
	core := loadBenchCore(b)
	piece := strings.Repeat("hello wor", 6)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		parts, release := core.bytePairMerge(piece)
		if len(parts) == 0 {
			b.Fatal("expected parts")
		}
		release()
	}
}

func BenchmarkEncodeOrdinary(b *testing.B) {
	core := loadBenchCore(b)
	text := strings.Repeat("hello world, it's 1234 degrees! ", 8)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if toks := core.EncodeOrdinary(text); len(toks) == 0 {
			b.Fatal("expected tokens")
		}
	}
}

func BenchmarkEncodeWithSpecials(b *testing.B) {
	core := loadBenchCore(b)
	allowed := map[string]struct{}{"<|endoftext|>": {}}
	text := strings.Repeat("hello world<|endoftext|>", 8)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if toks, _ := core.Encode(text, allowed); len(toks) == 0 {
			b.Fatal("expected tokens")
		}
	}
}
