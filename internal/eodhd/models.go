package eodhd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// EODData represents a single day's end-of-day price data.
type EODData struct {
	Date          time.Time `json:"-"`
	DateStr       string    `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	AdjustedClose float64   `json:"adjusted_close"`
	Volume        int64     `json:"volume"`
}

// EODResponse is a slice of EODData.
type EODResponse []EODData

// RealTimeQuote represents a delayed/real-time quote from the /real-time endpoint.
type RealTimeQuote struct {
	Code          string  `json:"code"`
	Timestamp     int64   `json:"timestamp"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	PreviousClose float64 `json:"previousClose"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_p"`
	Volume        int64   `json:"volume"`
}

// naFloat unmarshals EODHD numeric fields that may arrive as "NA" or
// quoted numbers outside trading hours. Missing data decodes to zero.
type naFloat float64

func (f *naFloat) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `"NA"` || s == `""` {
		*f = 0
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = naFloat(v)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("failed to unmarshal numeric field %s", s)
	}
	parsed, err := strconv.ParseFloat(str, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = naFloat(parsed)
	return nil
}

// UnmarshalJSON implements custom JSON unmarshaling for RealTimeQuote.
// EODHD returns "NA" for numeric fields when data is unavailable.
func (q *RealTimeQuote) UnmarshalJSON(data []byte) error {
	type alias struct {
		Code          string  `json:"code"`
		Timestamp     int64   `json:"timestamp"`
		Open          naFloat `json:"open"`
		High          naFloat `json:"high"`
		Low           naFloat `json:"low"`
		Close         naFloat `json:"close"`
		PreviousClose naFloat `json:"previousClose"`
		Change        naFloat `json:"change"`
		ChangePercent naFloat `json:"change_p"`
		Volume        naFloat `json:"volume"`
	}

	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	q.Code = a.Code
	q.Timestamp = a.Timestamp
	q.Open = float64(a.Open)
	q.High = float64(a.High)
	q.Low = float64(a.Low)
	q.Close = float64(a.Close)
	q.PreviousClose = float64(a.PreviousClose)
	q.Change = float64(a.Change)
	q.ChangePercent = float64(a.ChangePercent)
	q.Volume = int64(a.Volume)
	return nil
}

// FundamentalsResponse represents fundamentals data for a symbol.
// Only the sections the analysis pipeline consumes are modeled; the
// EODHD payload carries many more.
type FundamentalsResponse struct {
	General         *GeneralInfo     `json:"General"`
	Highlights      *Highlights      `json:"Highlights"`
	Valuation       *Valuation       `json:"Valuation"`
	Technicals      *Technicals      `json:"Technicals"`
	SplitsDividends *SplitsDividends `json:"SplitsDividends"`
	AnalystRatings  *AnalystRatings  `json:"AnalystRatings"`
}

// GeneralInfo contains general company information.
type GeneralInfo struct {
	Code           string `json:"Code"`
	Type           string `json:"Type"`
	Name           string `json:"Name"`
	Exchange       string `json:"Exchange"`
	CurrencyCode   string `json:"CurrencyCode"`
	CurrencyName   string `json:"CurrencyName"`
	CurrencySymbol string `json:"CurrencySymbol"`
	CountryName    string `json:"CountryName"`
	CountryISO     string `json:"CountryISO"`
	Sector         string `json:"Sector"`
	Industry       string `json:"Industry"`
	GicSector      string `json:"GicSector"`
	GicIndustry    string `json:"GicIndustry"`
	IsDelisted     bool   `json:"IsDelisted"`
	Description    string `json:"Description"`
	WebURL         string `json:"WebURL"`
	UpdatedAt      string `json:"UpdatedAt"`
}

// Highlights contains key financial highlights.
type Highlights struct {
	MarketCapitalization       float64 `json:"MarketCapitalization"`
	MarketCapitalizationMln    float64 `json:"MarketCapitalizationMln"`
	EBITDA                     float64 `json:"EBITDA"`
	PERatio                    float64 `json:"PERatio"`
	PEGRatio                   float64 `json:"PEGRatio"`
	WallStreetTargetPrice      float64 `json:"WallStreetTargetPrice"`
	BookValue                  float64 `json:"BookValue"`
	DividendShare              float64 `json:"DividendShare"`
	DividendYield              float64 `json:"DividendYield"`
	EarningsShare              float64 `json:"EarningsShare"`
	ProfitMargin               float64 `json:"ProfitMargin"`
	OperatingMarginTTM         float64 `json:"OperatingMarginTTM"`
	ReturnOnAssetsTTM          float64 `json:"ReturnOnAssetsTTM"`
	ReturnOnEquityTTM          float64 `json:"ReturnOnEquityTTM"`
	RevenueTTM                 float64 `json:"RevenueTTM"`
	RevenuePerShareTTM         float64 `json:"RevenuePerShareTTM"`
	QuarterlyRevenueGrowthYOY  float64 `json:"QuarterlyRevenueGrowthYOY"`
	GrossProfitTTM             float64 `json:"GrossProfitTTM"`
	DilutedEpsTTM              float64 `json:"DilutedEpsTTM"`
	QuarterlyEarningsGrowthYOY float64 `json:"QuarterlyEarningsGrowthYOY"`
}

// Valuation contains valuation metrics.
type Valuation struct {
	TrailingPE             float64 `json:"TrailingPE"`
	ForwardPE              float64 `json:"ForwardPE"`
	PriceSalesTTM          float64 `json:"PriceSalesTTM"`
	PriceBookMRQ           float64 `json:"PriceBookMRQ"`
	EnterpriseValue        float64 `json:"EnterpriseValue"`
	EnterpriseValueRevenue float64 `json:"EnterpriseValueRevenue"`
	EnterpriseValueEbitda  float64 `json:"EnterpriseValueEbitda"`
}

// Technicals contains technical analysis data.
type Technicals struct {
	Beta             float64 `json:"Beta"`
	FiftyTwoWeekHigh float64 `json:"52WeekHigh"`
	FiftyTwoWeekLow  float64 `json:"52WeekLow"`
	FiftyDayMA       float64 `json:"50DayMA"`
	TwoHundredDayMA  float64 `json:"200DayMA"`
	ShortRatio       float64 `json:"ShortRatio"`
	ShortPercent     float64 `json:"ShortPercent"`
}

// SplitsDividends contains splits and dividend information.
type SplitsDividends struct {
	ForwardAnnualDividendRate  float64 `json:"ForwardAnnualDividendRate"`
	ForwardAnnualDividendYield float64 `json:"ForwardAnnualDividendYield"`
	PayoutRatio                float64 `json:"PayoutRatio"`
	DividendDate               string  `json:"DividendDate"`
	ExDividendDate             string  `json:"ExDividendDate"`
}

// AnalystRatings contains analyst ratings data.
type AnalystRatings struct {
	Rating      float64 `json:"Rating"`
	TargetPrice float64 `json:"TargetPrice"`
	StrongBuy   int     `json:"StrongBuy"`
	Buy         int     `json:"Buy"`
	Hold        int     `json:"Hold"`
	Sell        int     `json:"Sell"`
	StrongSell  int     `json:"StrongSell"`
}
