package dataset

// Listing columns.
const (
	ColBrand          = "brand"
	ColFuelType       = "fuel_type"
	ColMakeYear       = "make_year"
	ColMileageKmpl    = "mileage_kmpl"
	ColEngineCC       = "engine_cc"
	ColOwnerCount     = "owner_count"
	ColServiceHistory = "service_history"
	ColTransmission   = "transmission"
	ColColor          = "color"
	ColInsuranceValid = "insurance_valid"
	ColPriceUSD       = "price_usd"

	ColCarAge        = "car_age"
	ColOwnerType     = "owner_type"
	ColBrandBucketed = "brand_bucketed"
)

// RequiredColumns must be present in a raw listings file.
var RequiredColumns = []string{
	ColBrand, ColFuelType, ColMakeYear, ColMileageKmpl, ColEngineCC, ColOwnerCount,
	ColServiceHistory, ColTransmission, ColColor, ColInsuranceValid, ColPriceUSD,
}

// ValidateListings checks that t carries every required listing column.
func ValidateListings(t *Table) error {
	return t.Require(RequiredColumns...)
}
