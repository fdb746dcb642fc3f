package domain

import "strconv"

// ExportColumns is the stable header row for the CSV export, in the order
// the dashboard's spreadsheet-minded users expect. Keep this aligned with
// ExportRecord below.
var ExportColumns = []string{
	"VehicleId", "Category", "Brand", "Model", "Year", "Plate",
	"PriceNew", "Price40", "Price70", "TaxType", "Condition",
	"BodyType", "Color", "Image", "Time", "Fast",
}

// ExportRecord flattens a Vehicle into one CSV record matching
// ExportColumns. Nil numerics render as empty cells, not zeros.
func ExportRecord(v Vehicle) []string {
	return []string{
		v.VehicleID,
		v.Category,
		v.Brand,
		v.Model,
		formatInt(v.Year),
		v.Plate,
		formatFloat(v.PriceNew),
		formatFloat(v.Price40),
		formatFloat(v.Price70),
		v.TaxType,
		v.Condition,
		v.BodyType,
		v.Color,
		v.Image,
		v.Time,
		strconv.FormatBool(v.Fast),
	}
}

func formatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func formatFloat(n *float64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatFloat(*n, 'f', -1, 64)
}
