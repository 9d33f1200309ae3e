package scanner

import (
	"image"
	"log/slog"
	"time"
)

// Engine runs the preprocessing cascade against one image and decodes every
// variant. It holds no per-image state and is safe for concurrent use as
// long as its Decoder is.
type Engine struct {
	generators []Generator
	decoder    Decoder
}

// NewEngine creates an engine over the default variant cascade.
func NewEngine(decoder Decoder) *Engine {
	return NewEngineWithGenerators(decoder, DefaultGenerators())
}

// NewEngineWithGenerators creates an engine over a custom ordered cascade.
func NewEngineWithGenerators(decoder Decoder, generators []Generator) *Engine {
	return &Engine{
		generators: generators,
		decoder:    decoder,
	}
}

// Extract decodes all variants of the image and merges the results into a
// deduplicated payload sequence. Variants are decoded concurrently; the
// merge happens in variant order, so the output is deterministic and each
// payload is credited to the earliest variant that produced it.
func (e *Engine) Extract(img image.Image) []Payload {
	start := time.Now()

	variants := GenerateVariants(img, e.generators)
	perVariant := make([][]Payload, len(variants))

	ParallelFor(len(variants), 0, func(i int) {
		perVariant[i] = e.decoder.Decode(variants[i])
	})

	payloads := AggregatePayloads(perVariant)

	slog.Debug("image decode complete",
		"variant_count", len(variants),
		"payload_count", len(payloads),
		"duration_ms", time.Since(start).Milliseconds())
	return payloads
}
