package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/consilio/internal/common"
	"github.com/ternarybob/consilio/internal/models"
)

// section labels emitted by the model, in the prompt's output format.
var sectionLabels = []string{
	"RECOMMENDATION:",
	"CONFIDENCE:",
	"RISK_LEVEL:",
	"TARGET_PRICE:",
	"STOP_LOSS:",
	"REASONING:",
	"SIMPLE_EXPLANATION:",
	"CURRENCY_IMPACT:",
}

// ParseResponse parses a free-form model response into a structured
// recommendation. Missing fields fall back to conservative defaults
// (HOLD, confidence 0.5, MEDIUM risk). Returns an error only when the
// response contains no recognizable labels at all.
func ParseResponse(ticker, model, response string) (*models.Recommendation, error) {
	text := stripCodeFences(response)

	rec := &models.Recommendation{
		ID:          common.NewAnalysisID(),
		Ticker:      ticker,
		Action:      models.ActionHold,
		Confidence:  0.5,
		RiskLevel:   models.RiskMedium,
		Source:      "ai",
		Model:       model,
		GeneratedAt: time.Now().UTC(),
	}

	labelsFound := 0
	currentSection := ""
	var reasoning, explanation, currencyImpact strings.Builder

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		label, value := splitLabel(trimmed)
		if label != "" {
			labelsFound++
			currentSection = label
		}

		switch label {
		case "RECOMMENDATION:":
			rec.Action = models.ParseAction(value)
		case "CONFIDENCE:":
			rec.Confidence = parseConfidence(value)
		case "RISK_LEVEL:":
			rec.RiskLevel = models.ParseRiskLevel(value)
		case "TARGET_PRICE:":
			rec.TargetPrice = parsePrice(value)
		case "STOP_LOSS:":
			rec.StopLoss = parsePrice(value)
		case "REASONING:":
			appendLine(&reasoning, value)
		case "SIMPLE_EXPLANATION:":
			appendLine(&explanation, value)
		case "CURRENCY_IMPACT:":
			appendLine(&currencyImpact, value)
		case "":
			// Continuation of a multi-line section
			switch currentSection {
			case "REASONING:":
				appendLine(&reasoning, trimmed)
			case "SIMPLE_EXPLANATION:":
				appendLine(&explanation, trimmed)
			case "CURRENCY_IMPACT:":
				appendLine(&currencyImpact, trimmed)
			}
		}
	}

	if labelsFound == 0 {
		return nil, fmt.Errorf("no recognizable sections in model response")
	}

	rec.Reasoning = reasoning.String()
	rec.SimpleExplanation = explanation.String()
	rec.CurrencyImpact = currencyImpact.String()

	return rec, nil
}

// stripCodeFences removes markdown code fence wrapping from a response.
func stripCodeFences(response string) string {
	for _, fence := range []string{"```text", "```yaml", "```"} {
		if strings.Contains(response, fence) {
			start := strings.Index(response, fence) + len(fence)
			end := strings.LastIndex(response, "```")
			if end > start {
				return response[start:end]
			}
		}
	}
	return response
}

// splitLabel returns the matched section label and the remainder of the line.
// Returns an empty label when the line starts no new section.
func splitLabel(line string) (string, string) {
	upper := strings.ToUpper(line)
	for _, label := range sectionLabels {
		if strings.HasPrefix(upper, label) {
			return label, strings.TrimSpace(line[len(label):])
		}
	}
	return "", line
}

// parseConfidence parses a confidence value and clamps it to [0, 1].
// Unparseable values return the conservative default 0.5.
func parseConfidence(value string) float64 {
	value = strings.TrimSuffix(strings.TrimSpace(value), "%")
	conf, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0.5
	}
	if conf < 0 {
		return 0
	}
	if conf > 1 {
		return 1
	}
	return conf
}

// parsePrice extracts a positive price from a value like "$150.00" or
// "150". Returns nil for "N/A" and anything unparseable.
func parsePrice(value string) *float64 {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" || strings.EqualFold(cleaned, "N/A") || strings.EqualFold(cleaned, "None") {
		return nil
	}

	// Take the first token so "150.00 (12 month)" still parses
	if idx := strings.IndexAny(cleaned, " \t"); idx > 0 {
		cleaned = cleaned[:idx]
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price <= 0 {
		return nil
	}
	return &price
}

func appendLine(sb *strings.Builder, line string) {
	if line == "" {
		return
	}
	if sb.Len() > 0 {
		sb.WriteString(" ")
	}
	sb.WriteString(line)
}
