package scanner

import (
	"testing"
)

// variantSelectiveDecoder returns payloads only for configured variant
// methods, which makes variant attribution observable.
type variantSelectiveDecoder struct {
	textsByMethod map[string][]string
}

func (d *variantSelectiveDecoder) Decode(variant Variant) []Payload {
	texts := d.textsByMethod[variant.Method]
	payloads := make([]Payload, 0, len(texts))
	for _, text := range texts {
		payloads = append(payloads, Payload{Text: text, SourceVariant: variant.Method})
	}
	return payloads
}

func TestExtract_CreditsEarliestVariant(t *testing.T) {
	decoder := &variantSelectiveDecoder{textsByMethod: map[string][]string{
		VariantGrayscale:        {"shared"},
		VariantEnhancedContrast: {"shared"},
	}}
	engine := NewEngine(decoder)

	payloads := engine.Extract(makeQRImage(t, "ignored", 128))

	if len(payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(payloads))
	}
	if payloads[0].SourceVariant != VariantGrayscale {
		t.Errorf("expected credit to %q, got %q", VariantGrayscale, payloads[0].SourceVariant)
	}
}

func TestExtract_PayloadOnlyFromDerivedVariant(t *testing.T) {
	// A symbol that only becomes readable after contrast enhancement must
	// still surface, attributed to that variant.
	decoder := &variantSelectiveDecoder{textsByMethod: map[string][]string{
		VariantEnhancedContrast: {"https://example.com/faint"},
	}}
	engine := NewEngine(decoder)

	payloads := engine.Extract(makeQRImage(t, "ignored", 128))

	if len(payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(payloads))
	}
	if payloads[0].Text != "https://example.com/faint" {
		t.Errorf("unexpected text %q", payloads[0].Text)
	}
	if payloads[0].SourceVariant != VariantEnhancedContrast {
		t.Errorf("expected source %q, got %q", VariantEnhancedContrast, payloads[0].SourceVariant)
	}
}

func TestExtract_NoDecodableSymbol(t *testing.T) {
	engine := NewEngine(&variantSelectiveDecoder{})

	payloads := engine.Extract(makeQRImage(t, "ignored", 128))

	if len(payloads) != 0 {
		t.Errorf("expected no payloads, got %d", len(payloads))
	}
}

func TestExtract_CleanImageEndToEnd(t *testing.T) {
	engine := NewEngine(NewQRDecoder())

	payloads := engine.Extract(makeQRImage(t, "WIFI:S:lab;T:WPA;P:secret;;", 256))

	if len(payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(payloads))
	}
	if payloads[0].Text != "WIFI:S:lab;T:WPA;P:secret;;" {
		t.Errorf("unexpected text %q", payloads[0].Text)
	}
	if payloads[0].SourceVariant != VariantIdentity {
		t.Errorf("clean symbol should decode from the unmodified image, got %q", payloads[0].SourceVariant)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	decoder := &variantSelectiveDecoder{textsByMethod: map[string][]string{
		VariantIdentity:      {"one", "two"},
		VariantGrayscale:     {"two", "three"},
		VariantThresholdOtsu: {"three"},
	}}
	engine := NewEngine(decoder)
	img := makeQRImage(t, "ignored", 128)

	first := engine.Extract(img)
	for i := 0; i < 10; i++ {
		again := engine.Extract(img)
		if len(again) != len(first) {
			t.Fatalf("run %d: expected %d payloads, got %d", i, len(first), len(again))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: payload %d differs: %+v vs %+v", i, j, first[j], again[j])
			}
		}
	}
}
