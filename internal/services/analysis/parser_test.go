package analysis

import (
	"testing"

	"github.com/ternarybob/consilio/internal/models"
)

func TestParseResponse_FullResponse(t *testing.T) {
	response := `RECOMMENDATION: BUY
CONFIDENCE: 0.82
RISK_LEVEL: MEDIUM
TARGET_PRICE: $210.00
STOP_LOSS: $168.50
REASONING: P/E of 12.4 sits well below the sector median of 18 while
the price held a 2.3% gain on 1.8x average volume.
SIMPLE_EXPLANATION: The company earns a lot compared to its share price,
so the stock looks like a bargain.
CURRENCY_IMPACT: USD earnings convert favorably for a EUR investor.`

	rec, err := ParseResponse("NASDAQ:AAPL", "claude-haiku-3-5-20241022", response)
	if err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}

	if rec.Action != models.ActionBuy {
		t.Errorf("Action = %q, want BUY", rec.Action)
	}
	if rec.Confidence != 0.82 {
		t.Errorf("Confidence = %v, want 0.82", rec.Confidence)
	}
	if rec.RiskLevel != models.RiskMedium {
		t.Errorf("RiskLevel = %q, want MEDIUM", rec.RiskLevel)
	}
	if rec.TargetPrice == nil || *rec.TargetPrice != 210.0 {
		t.Errorf("TargetPrice = %v, want 210.0", rec.TargetPrice)
	}
	if rec.StopLoss == nil || *rec.StopLoss != 168.5 {
		t.Errorf("StopLoss = %v, want 168.5", rec.StopLoss)
	}

	// Multi-line sections accumulate until the next label
	wantReasoning := "P/E of 12.4 sits well below the sector median of 18 while the price held a 2.3% gain on 1.8x average volume."
	if rec.Reasoning != wantReasoning {
		t.Errorf("Reasoning = %q, want %q", rec.Reasoning, wantReasoning)
	}
	if rec.SimpleExplanation == "" {
		t.Error("SimpleExplanation should not be empty")
	}
	if rec.CurrencyImpact == "" {
		t.Error("CurrencyImpact should not be empty")
	}
	if rec.Source != "ai" {
		t.Errorf("Source = %q, want ai", rec.Source)
	}
}

func TestParseResponse_CodeFenced(t *testing.T) {
	response := "Here is my analysis:\n```text\nRECOMMENDATION: SELL\nCONFIDENCE: 0.6\nRISK_LEVEL: HIGH\nREASONING: Price fell 7.2% with P/E at 31.\n```"

	rec, err := ParseResponse("NYSE:XYZ", "gemini-3-flash-preview", response)
	if err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}
	if rec.Action != models.ActionSell {
		t.Errorf("Action = %q, want SELL", rec.Action)
	}
	if rec.RiskLevel != models.RiskHigh {
		t.Errorf("RiskLevel = %q, want HIGH", rec.RiskLevel)
	}
}

func TestParseResponse_Defaults(t *testing.T) {
	// Only a recommendation label; everything else defaults conservatively
	rec, err := ParseResponse("NYSE:XYZ", "test", "RECOMMENDATION: garbage-value")
	if err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}

	if rec.Action != models.ActionHold {
		t.Errorf("Action = %q, want HOLD for unrecognized value", rec.Action)
	}
	if rec.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want default 0.5", rec.Confidence)
	}
	if rec.RiskLevel != models.RiskMedium {
		t.Errorf("RiskLevel = %q, want default MEDIUM", rec.RiskLevel)
	}
	if rec.TargetPrice != nil {
		t.Errorf("TargetPrice = %v, want nil", rec.TargetPrice)
	}
}

func TestParseResponse_NoLabels(t *testing.T) {
	if _, err := ParseResponse("NYSE:XYZ", "test", "I cannot analyze this stock."); err == nil {
		t.Error("expected error for response without labels")
	}
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"0.75", 0.75},
		{"1.0", 1.0},
		{"0", 0},
		{"-0.5", 0},   // clamped low
		{"1.7", 1.0},  // clamped high
		{"high", 0.5}, // unparseable defaults
		{"", 0.5},     // empty defaults
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseConfidence(tt.input); got != tt.want {
				t.Errorf("parseConfidence(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input string
		want  *float64
	}{
		{"$150.00", floatPtr(150.0)},
		{"150", floatPtr(150.0)},
		{"1,250.50", floatPtr(1250.5)},
		{"$95.20 (12 month)", floatPtr(95.2)},
		{"N/A", nil},
		{"n/a", nil},
		{"None", nil},
		{"", nil},
		{"-10", nil},
		{"soon", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parsePrice(tt.input)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("parsePrice(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("parsePrice(%q) = %v, want %v", tt.input, *got, *tt.want)
			}
		})
	}
}

func floatPtr(v float64) *float64 { return &v }
