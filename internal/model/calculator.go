package model

import "math"

// PurchaseEstimate holds the results of a stock purchasing calculation.
type PurchaseEstimate struct {
	TotalPieceLength float64 `json:"total_piece_length"` // Total length of all pieces including kerf (mm)
	RodLength        float64 `json:"rod_length"`         // Length of one stock rod (mm)
	RodsNeededExact  float64 `json:"rods_needed_exact"`  // Exact fractional number of rods
	RodsNeededMin    int     `json:"rods_needed_min"`    // Minimum rods (ceiling of exact)
	RodsWithWaste    int     `json:"rods_with_waste"`    // Recommended rods including waste factor
	WastePercent     float64 `json:"waste_percent"`      // Waste factor applied (e.g., 15 for 15%)
	EstimatedCost    float64 `json:"estimated_cost"`     // Total cost if pricing available
	PricePerRod      float64 `json:"price_per_rod"`
	Kerf             float64 `json:"kerf"`
}

// CalculatePurchaseEstimate computes how many stock rods of one length to buy
// for a cut list. It accounts for kerf per piece and an additional waste
// percentage factor. The estimate is a lower bound; the optimizer decides
// whether the pieces actually fit.
func CalculatePurchaseEstimate(pieces []Piece, rodLength, kerf, wastePercent, pricePerRod float64) PurchaseEstimate {
	var total float64
	for _, p := range pieces {
		total += (p.Length + kerf) * float64(p.Quantity)
	}

	if rodLength <= 0 {
		return PurchaseEstimate{
			TotalPieceLength: total,
			WastePercent:     wastePercent,
			Kerf:             kerf,
		}
	}

	exact := total / rodLength
	minRods := int(math.Ceil(exact))

	wasteFactor := 1.0 + (wastePercent / 100.0)
	withWaste := int(math.Ceil(exact * wasteFactor))
	if withWaste < minRods {
		withWaste = minRods
	}

	return PurchaseEstimate{
		TotalPieceLength: total,
		RodLength:        rodLength,
		RodsNeededExact:  exact,
		RodsNeededMin:    minRods,
		RodsWithWaste:    withWaste,
		WastePercent:     wastePercent,
		EstimatedCost:    float64(withWaste) * pricePerRod,
		PricePerRod:      pricePerRod,
		Kerf:             kerf,
	}
}
