package analysis

import (
	"regexp"
	"strings"

	"github.com/ternarybob/consilio/internal/models"
)

// ValidationResult holds the outcome of recommendation quality checks.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// RecommendationValidator validates AI-generated recommendations before
// they are returned to callers. Invalid recommendations are replaced by
// the rule-based fallback.
type RecommendationValidator struct {
	genericPhrases []string
	numberRegex    *regexp.Regexp
}

// NewRecommendationValidator creates a new recommendation validator
func NewRecommendationValidator() *RecommendationValidator {
	return &RecommendationValidator{
		genericPhrases: []string{
			"solid fundamentals",
			"well-positioned",
			"strong outlook",
			"good management",
			"attractive valuation",
			"quality company",
			"solid growth",
			"strong growth",
			"solid performance",
			"strong performance",
		},
		numberRegex: regexp.MustCompile(`\d+\.?\d*`),
	}
}

// Validate checks if a recommendation meets quality requirements.
func (v *RecommendationValidator) Validate(rec *models.Recommendation, snapshot *models.StockSnapshot) ValidationResult {
	result := ValidationResult{Valid: true}

	// Structural checks via validator tags
	if err := rec.Validate(); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, "structural validation failed: "+err.Error())
		return result
	}

	// Reasoning must reference actual data
	if rec.Reasoning == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "reasoning is empty")
	} else if !v.numberRegex.MatchString(rec.Reasoning) {
		result.Valid = false
		result.Errors = append(result.Errors, "reasoning lacks quantification")
	}

	lowerReasoning := strings.ToLower(rec.Reasoning)
	for _, phrase := range v.genericPhrases {
		if strings.Contains(lowerReasoning, phrase) {
			result.Valid = false
			result.Errors = append(result.Errors, "generic phrase in reasoning: '"+phrase+"'")
		}
	}

	// Trade level consistency against the current price
	if snapshot != nil && snapshot.CurrentPrice > 0 {
		if rec.TargetPrice != nil {
			switch rec.Action {
			case models.ActionBuy:
				if *rec.TargetPrice <= snapshot.CurrentPrice {
					result.Warnings = append(result.Warnings, "BUY target price at or below current price")
				}
			case models.ActionSell:
				if *rec.TargetPrice >= snapshot.CurrentPrice {
					result.Warnings = append(result.Warnings, "SELL target price at or above current price")
				}
			}
		}
		if rec.StopLoss != nil && rec.Action == models.ActionBuy && *rec.StopLoss >= snapshot.CurrentPrice {
			result.Warnings = append(result.Warnings, "BUY stop loss at or above current price")
		}
	}

	// Perfect confidence from thin data is suspect
	if rec.Confidence >= 0.99 {
		result.Warnings = append(result.Warnings, "confidence suspiciously high")
	}

	return result
}
