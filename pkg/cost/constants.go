package cost

// Unit cost constants for the development estimate.
// Baseline values from provincial industrial-estate budget schedules.
const (
	RoadPerimeterCostPerM2 = 950.0  // ฿/m² heavy pavement
	RoadMainCostPerM2      = 850.0  // ฿/m²
	RoadSecondaryCostPerM2 = 700.0  // ฿/m²
	RoadAccessCostPerM2    = 550.0  // ฿/m² light internal pavement

	GradingMinimalPerM2  = 45.0  // ฿/m² minimal-cut earthworks
	GradingBalancedPerM2 = 80.0  // ฿/m² balanced cut and fill
	GradingMajorPerM2    = 140.0 // ฿/m² major grading

	LandscapePerM2 = 120.0 // ฿/m² green and verge planting
	EntranceWorks  = 2_500_000.0

	M2PerRai = 1600.0
	M2PerHa  = 10000.0
)
