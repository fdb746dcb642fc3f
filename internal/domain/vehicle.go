// Package domain holds the canonical types shared by every layer of the
// vehicle inventory backend. Untyped spreadsheet rows never leak past the
// sheet package; everything else speaks Vehicle.
package domain

import (
	"math"
	"strings"
)

// Display-form category names, as exposed by the API and rendered by the
// dashboard. The spreadsheet stores the singular forms (see the sheet
// package for the bidirectional mapping).
const (
	CategoryCars        = "Cars"
	CategoryMotorcycles = "Motorcycles"
	CategoryTukTuk      = "Tuk Tuk"
)

// Vehicle is the canonical record exposed by the API and consumed by the
// dashboard. Nullable numerics are pointers so "absent in the sheet" is
// distinguishable from zero. JSON field names match the legacy dashboard
// payloads, which used the spreadsheet's PascalCase headers.
type Vehicle struct {
	VehicleID string   `json:"VehicleId"`
	Category  string   `json:"Category"`
	Brand     string   `json:"Brand"`
	Model     string   `json:"Model"`
	Year      *int     `json:"Year"`
	Plate     string   `json:"Plate"`
	PriceNew  *float64 `json:"PriceNew"`
	Price40   *float64 `json:"Price40"`
	Price70   *float64 `json:"Price70"`
	TaxType   string   `json:"TaxType"`
	Condition string   `json:"Condition"`
	BodyType  string   `json:"BodyType"`
	Color     string   `json:"Color"`
	Image     string   `json:"Image"`
	Time      string   `json:"Time"`
	Fast      bool     `json:"Fast"`

	// Market-price research fields, populated by an out-of-band process.
	// Stripped from "lite" list responses.
	MarketPriceLow        *float64 `json:"MarketPriceLow,omitempty"`
	MarketPriceMedian     *float64 `json:"MarketPriceMedian,omitempty"`
	MarketPriceHigh       *float64 `json:"MarketPriceHigh,omitempty"`
	MarketPriceSource     string   `json:"MarketPriceSource,omitempty"`
	MarketPriceSamples    *int     `json:"MarketPriceSamples,omitempty"`
	MarketPriceConfidence string   `json:"MarketPriceConfidence,omitempty"`
	MarketPriceUpdatedAt  string   `json:"MarketPriceUpdatedAt,omitempty"`

	// Deleted marks a record removed optimistically on the client while
	// the network call is still in flight. Never persisted upstream.
	Deleted bool `json:"_deleted,omitempty"`
}

// StripMarket returns a copy of v with the market-price research fields
// cleared. Used by the "lite" list projection.
func (v Vehicle) StripMarket() Vehicle {
	v.MarketPriceLow = nil
	v.MarketPriceMedian = nil
	v.MarketPriceHigh = nil
	v.MarketPriceSource = ""
	v.MarketPriceSamples = nil
	v.MarketPriceConfidence = ""
	v.MarketPriceUpdatedAt = ""
	return v
}

// CategoryCounts breaks the dataset down by the three known categories.
type CategoryCounts struct {
	Cars        int `json:"cars"`
	Motorcycles int `json:"motorcycles"`
	TukTuks     int `json:"tukTuks"`
}

// ConditionCounts breaks the dataset down by vehicle condition.
type ConditionCounts struct {
	New  int `json:"new"`
	Used int `json:"used"`
}

// VehicleMeta is the aggregate computed over the full current dataset,
// never over a sliced or paginated subset.
type VehicleMeta struct {
	// Total is the number of valid rows. It must equal len(data) of the
	// unsliced list, not a max ID and not a raw row index.
	Total             int             `json:"total"`
	CountsByCategory  CategoryCounts  `json:"countsByCategory"`
	AvgPrice          float64         `json:"avgPrice"`
	NoImageCount      int             `json:"noImageCount"`
	CountsByCondition ConditionCounts `json:"countsByCondition"`
}

// ComputeMeta derives the dashboard aggregates from the complete vehicle
// list. Pass the full normalized set: computing this from a projected or
// capped response reintroduces the historical "total means max row index"
// bug this function exists to prevent.
func ComputeMeta(vehicles []Vehicle) VehicleMeta {
	meta := VehicleMeta{Total: len(vehicles)}

	var priceSum float64
	var priceCount int
	for _, v := range vehicles {
		switch v.Category {
		case CategoryCars:
			meta.CountsByCategory.Cars++
		case CategoryMotorcycles:
			meta.CountsByCategory.Motorcycles++
		case CategoryTukTuk:
			meta.CountsByCategory.TukTuks++
		}

		if v.PriceNew != nil {
			priceSum += *v.PriceNew
			priceCount++
		}

		if !hasDriveImage(v.Image) {
			meta.NoImageCount++
		}

		switch strings.ToLower(strings.TrimSpace(v.Condition)) {
		case "new":
			meta.CountsByCondition.New++
		case "used", "second hand", "secondhand":
			meta.CountsByCondition.Used++
		}
	}

	if priceCount > 0 {
		meta.AvgPrice = math.Round(priceSum/float64(priceCount)*100) / 100
	}
	return meta
}

// hasDriveImage reports whether the image value points at a Drive-hosted
// file. Empty strings, inline data URIs, and non-Drive URLs all count as
// "no image" for the dashboard KPI.
func hasDriveImage(image string) bool {
	if strings.TrimSpace(image) == "" {
		return false
	}
	return strings.Contains(image, "drive.google.com") ||
		strings.Contains(image, "googleusercontent.com")
}
