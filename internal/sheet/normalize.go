package sheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

// Header spellings seen across upstream sheet deployments, in lookup
// priority order. New spellings go at the end so established sheets keep
// winning exact-match lookups.
var (
	headersCategory  = []string{"Category", "Type", "VehicleType"}
	headersBrand     = []string{"Brand", "Make"}
	headersModel     = []string{"Model"}
	headersYear      = []string{"Year", "ModelYear"}
	headersPlate     = []string{"Plate", "PlateNumber", "Plate No"}
	headersPriceNew  = []string{"PriceNew", "Price New", "Price", "MarketPrice"}
	headersPrice40   = []string{"Price40", "D.O.C.40%", "DOC40", "Price 40%"}
	headersPrice70   = []string{"Price70", "D.O.C.70%", "DOC70", "Price 70%"}
	headersTaxType   = []string{"TaxType", "Tax"}
	headersCondition = []string{"Condition"}
	headersBodyType  = []string{"BodyType", "Body"}
	headersColor     = []string{"Color", "Colour"}
	headersImage     = []string{"Image", "ImageUrl", "Photo"}
	headersTime      = []string{"Time", "Timestamp", "CreatedAt"}
	headersFast      = []string{"Fast", "FastSale"}

	headersMarketLow        = []string{"MarketPriceLow"}
	headersMarketMedian     = []string{"MarketPriceMedian"}
	headersMarketHigh       = []string{"MarketPriceHigh"}
	headersMarketSource     = []string{"MarketPriceSource"}
	headersMarketSamples    = []string{"MarketPriceSamples"}
	headersMarketConfidence = []string{"MarketPriceConfidence"}
	headersMarketUpdatedAt  = []string{"MarketPriceUpdatedAt"}
)

// categoryFromSheet maps storage-facing synonyms (normalized form) to the
// display categories. categoryToSheet is its exact inverse for the three
// known categories; the round trip must stay lossless for every spelling
// listed here.
var categoryFromSheet = map[string]string{
	"car":         domain.CategoryCars,
	"cars":        domain.CategoryCars,
	"motorcycle":  domain.CategoryMotorcycles,
	"motorcycles": domain.CategoryMotorcycles,
	"moto":        domain.CategoryMotorcycles,
	"tuktuk":      domain.CategoryTukTuk,
	"tuk-tuk":     domain.CategoryTukTuk,
}

var categoryToSheet = map[string]string{
	domain.CategoryCars:        "Car",
	domain.CategoryMotorcycles: "Motorcycle",
	domain.CategoryTukTuk:      "Tuk Tuk",
}

// NormalizeCategory maps a storage-facing category value to its display
// form. Unrecognized categories pass through unchanged (trimmed only).
func NormalizeCategory(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if display, ok := categoryFromSheet[normalizeKey(trimmed)]; ok {
		return display
	}
	return trimmed
}

// CategoryToSheet maps a display category back to the singular storage
// form the sheet expects. Unrecognized categories pass through unchanged.
func CategoryToSheet(display string) string {
	trimmed := strings.TrimSpace(display)
	if storage, ok := categoryToSheet[trimmed]; ok {
		return storage
	}
	return trimmed
}

// ToVehicle maps an arbitrary spreadsheet row to the canonical Vehicle.
// It never fails: missing or malformed fields degrade to nulls and empty
// strings so downstream aggregation needs no per-field error handling.
func ToVehicle(row RawRow) domain.Vehicle {
	v := domain.Vehicle{
		VehicleID: row.ID(),
		Category:  NormalizeCategory(stringField(row, headersCategory)),
		Brand:     stringField(row, headersBrand),
		Model:     stringField(row, headersModel),
		Year:      intField(row, headersYear),
		Plate:     stringField(row, headersPlate),
		PriceNew:  numberField(row, headersPriceNew),
		Price40:   numberField(row, headersPrice40),
		Price70:   numberField(row, headersPrice70),
		TaxType:   stringField(row, headersTaxType),
		Condition: stringField(row, headersCondition),
		BodyType:  stringField(row, headersBodyType),
		Color:     stringField(row, headersColor),
		Image:     stringField(row, headersImage),
		Time:      NormalizeTime(stringField(row, headersTime)),
		Fast:      boolField(row, headersFast),

		MarketPriceLow:        numberField(row, headersMarketLow),
		MarketPriceMedian:     numberField(row, headersMarketMedian),
		MarketPriceHigh:       numberField(row, headersMarketHigh),
		MarketPriceSource:     stringField(row, headersMarketSource),
		MarketPriceSamples:    intField(row, headersMarketSamples),
		MarketPriceConfidence: stringField(row, headersMarketConfidence),
		MarketPriceUpdatedAt:  stringField(row, headersMarketUpdatedAt),
	}

	// Stored Price40/Price70 always win; derive only when the row carries
	// no usable value.
	if v.Price40 == nil && v.PriceNew != nil {
		p := round2(*v.PriceNew * 0.4)
		v.Price40 = &p
	}
	if v.Price70 == nil && v.PriceNew != nil {
		p := round2(*v.PriceNew * 0.7)
		v.Price70 = &p
	}

	return v
}

// ToPayload builds the write payload for the upstream "add" and "update"
// actions. Price fields are emitted under both the modern and the legacy
// header spellings; deployed sheets still read the legacy columns.
func ToPayload(v domain.Vehicle) RawRow {
	row := RawRow{}
	if v.VehicleID != "" {
		row["VehicleId"] = v.VehicleID
	}
	row["Category"] = CategoryToSheet(v.Category)
	row["Brand"] = v.Brand
	row["Model"] = v.Model
	if v.Year != nil {
		row["Year"] = *v.Year
	}
	row["Plate"] = v.Plate
	if v.PriceNew != nil {
		row["PriceNew"] = *v.PriceNew
	}
	if v.Price40 != nil {
		row["Price40"] = *v.Price40
		row["D.O.C.40%"] = *v.Price40
	}
	if v.Price70 != nil {
		row["Price70"] = *v.Price70
		row["D.O.C.70%"] = *v.Price70
	}
	row["TaxType"] = v.TaxType
	row["Condition"] = v.Condition
	row["BodyType"] = v.BodyType
	row["Color"] = v.Color
	row["Image"] = v.Image
	if v.Time != "" {
		row["Time"] = v.Time
	}
	row["Fast"] = v.Fast

	if v.MarketPriceLow != nil {
		row["MarketPriceLow"] = *v.MarketPriceLow
	}
	if v.MarketPriceMedian != nil {
		row["MarketPriceMedian"] = *v.MarketPriceMedian
	}
	if v.MarketPriceHigh != nil {
		row["MarketPriceHigh"] = *v.MarketPriceHigh
	}
	if v.MarketPriceSource != "" {
		row["MarketPriceSource"] = v.MarketPriceSource
	}
	if v.MarketPriceSamples != nil {
		row["MarketPriceSamples"] = *v.MarketPriceSamples
	}
	if v.MarketPriceConfidence != "" {
		row["MarketPriceConfidence"] = v.MarketPriceConfidence
	}
	if v.MarketPriceUpdatedAt != "" {
		row["MarketPriceUpdatedAt"] = v.MarketPriceUpdatedAt
	}

	return row
}

// sheetTimeLayout is the fixed timestamp format stored in the sheet.
const sheetTimeLayout = "2006-01-02 15:04:05"

// sheetZone is the sheet's timezone (Indochina Time). A fixed zone avoids
// depending on the host tzdata being present.
var sheetZone = time.FixedZone("ICT", 7*60*60)

// NormalizeTime converts any of the timestamp formats seen in sheet
// deployments to the fixed "2006-01-02 15:04:05" ICT form. Unparseable
// values pass through unchanged rather than being dropped.
func NormalizeTime(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	layouts := []string{
		time.RFC3339,
		sheetTimeLayout,
		"2006-01-02T15:04:05",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		// Zone-less layouts are already local sheet time; ParseInLocation
		// keeps them fixed instead of shifting them from UTC.
		if t, err := time.ParseInLocation(layout, trimmed, sheetZone); err == nil {
			return t.In(sheetZone).Format(sheetTimeLayout)
		}
	}
	return trimmed
}

// --- value coercion ---------------------------------------------------------

// stringValue renders any cell value as a string. Numbers avoid the
// %v float noise ("20000" rather than "20000.000000").
func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// numberValue parses a cell as a number. Comma-grouped strings ("12,500")
// are accepted; non-finite results and garbage return nil, never an error.
func numberValue(v any) *float64 {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case int:
		n = float64(t)
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		if cleaned == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

func stringField(row RawRow, headers []string) string {
	v, ok := row.lookup(headers...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(stringValue(v))
}

func numberField(row RawRow, headers []string) *float64 {
	v, ok := row.lookup(headers...)
	if !ok {
		return nil
	}
	return numberValue(v)
}

func intField(row RawRow, headers []string) *int {
	f := numberField(row, headers)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

// boolField accepts real bools plus the string and numeric truthy forms
// sheets produce ("TRUE", "yes", 1).
func boolField(row RawRow, headers []string) bool {
	v, ok := row.lookup(headers...)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			return true
		}
	}
	return false
}

func round2(n float64) float64 {
	return math.Round(n*100) / 100
}
