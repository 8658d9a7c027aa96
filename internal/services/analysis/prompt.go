package analysis

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// BuildPrompt creates the recommendation prompt for the LLM.
// The market data is serialized as YAML between the rules and the output
// template so the model sees exactly the metrics that were available.
func BuildPrompt(c *Context) string {
	var sb strings.Builder

	sb.WriteString(`You are an expert equity analyst producing a single stock recommendation.

CRITICAL RULES:
1. Base the recommendation ONLY on the market data provided below
2. NEVER use generic phrases: "solid fundamentals", "well-positioned", "strong outlook"
3. Reasoning must reference specific numbers from the data
4. Confidence reflects data quality: thin data means lower confidence
5. Target price and stop loss must be specific values in the stock's trading currency
6. The simple explanation must be understandable by a non-financial reader

`)

	sb.WriteString(fmt.Sprintf("---\nSTOCK: %s\n", c.Snapshot.Ticker))
	dataYAML, _ := yaml.Marshal(c.promptData())
	sb.Write(dataYAML)

	sb.WriteString(`
---
OUTPUT FORMAT (exactly these labeled lines, no markdown):
RECOMMENDATION: BUY|SELL|HOLD
CONFIDENCE: 0.0-1.0
RISK_LEVEL: LOW|MEDIUM|HIGH
TARGET_PRICE: price or N/A
STOP_LOSS: price or N/A
REASONING: detailed rationale referencing the data above
SIMPLE_EXPLANATION: one or two plain-language sentences
`)

	if c.Currency != nil {
		sb.WriteString("CURRENCY_IMPACT: how currency exposure affects the investor\n")
	}

	return sb.String()
}
