package domain

// maxRowCap is the hard ceiling on the maxRows list projection.
// Larger caller values are clamped, never rejected.
const maxRowCap = 5000

// ListParams carries the response-only list projections from the HTTP
// layer to the service layer. Projections never affect what is cached or
// what VehicleMeta is computed over, only what is returned to the caller.
type ListParams struct {
	// MaxRows caps the number of vehicles in the response. 0 means no cap.
	MaxRows int
	// Lite strips the market-price research fields from each vehicle.
	Lite bool
}

// NewListParams builds a ListParams from optional HTTP query params.
// A nil or non-positive maxRows means no cap; values above 5000 are
// clamped to 5000 to prevent runaway payloads.
func NewListParams(maxRows *int, lite bool) ListParams {
	p := ListParams{Lite: lite}
	if maxRows != nil && *maxRows > 0 {
		p.MaxRows = *maxRows
		if p.MaxRows > maxRowCap {
			p.MaxRows = maxRowCap
		}
	}
	return p
}
