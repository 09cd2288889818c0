package geo

// Lane is an industry to buyer-country trade corridor key.
type Lane struct {
	Industry string
	Country  string
}

// Defaults are the fallbacks used for lookups that miss: an unknown lane is
// assumed weak-to-moderate.
type Defaults struct {
	Corridor   float64 `json:"corridor" yaml:"corridor"`
	StateSpec  float64 `json:"state_spec" yaml:"stateSpec"`
	Regulatory float64 `json:"regulatory" yaml:"regulatory"`
	Logistics  float64 `json:"logistics" yaml:"logistics"`
}

// Tables holds the static lookup data used by the Scorer. Treat as read-only
// once constructed, it is shared by reference across queries.
type Tables struct {
	Corridors      map[Lane]float64
	Specialisation map[string]map[string]float64 // state -> industry -> spec
	RegulatoryEase map[string]float64
	Logistics      map[string]float64
	Defaults       Defaults
}

// DefaultTables returns India-export lookup tables built from EXIM Bank, DGFT
// and WTO trade profiles.
func DefaultTables() *Tables {
	return &Tables{
		Corridors:      defaultCorridors(),
		Specialisation: defaultSpecialisation(),
		RegulatoryEase: map[string]float64{
			"UAE":         0.95,
			"Australia":   0.90,
			"Singapore":   0.85,
			"Japan":       0.80,
			"Germany":     0.75,
			"France":      0.75,
			"Netherlands": 0.75,
			"Italy":       0.72,
			"UK":          0.70,
			"Canada":      0.65,
			"USA":         0.60,
		},
		Logistics: map[string]float64{
			"UAE":         1.00,
			"Singapore":   0.95,
			"UK":          0.80,
			"Germany":     0.78,
			"Netherlands": 0.78,
			"France":      0.75,
			"Italy":       0.73,
			"Australia":   0.70,
			"Japan":       0.72,
			"USA":         0.68,
			"Canada":      0.60,
		},
		Defaults: Defaults{
			Corridor:   0.40,
			StateSpec:  0.50,
			Regulatory: 0.55,
			Logistics:  0.55,
		},
	}
}

// 1.0 proven corridor, 0.5 moderate, 0.3 weak or emerging
func defaultCorridors() map[Lane]float64 {
	byIndustry := map[string]map[string]float64{
		"Textiles": {
			"USA": 1.00, "UK": 0.90, "Germany": 0.85, "France": 0.80, "Italy": 0.80, "UAE": 0.85,
			"Netherlands": 0.75, "Canada": 0.70, "Australia": 0.65, "Japan": 0.60, "Singapore": 0.55,
		},
		"Chemicals": {
			"USA": 0.90, "Germany": 0.95, "Netherlands": 0.90, "Japan": 0.85, "Singapore": 0.85, "UK": 0.80,
			"UAE": 0.75, "France": 0.75, "Australia": 0.70, "Canada": 0.70, "Italy": 0.65,
		},
		"Pharmaceuticals": {
			"USA": 1.00, "UK": 0.95, "Germany": 0.90, "Australia": 0.85, "Canada": 0.85, "France": 0.80,
			"Japan": 0.75, "Netherlands": 0.75, "UAE": 0.70, "Singapore": 0.70, "Italy": 0.65,
		},
		"Engineering": {
			"Germany": 0.95, "USA": 0.85, "UK": 0.85, "UAE": 0.80, "Japan": 0.80, "Australia": 0.75,
			"Italy": 0.75, "France": 0.70, "Singapore": 0.70, "Canada": 0.65, "Netherlands": 0.65,
		},
		"Auto Parts": {
			"Germany": 0.95, "Japan": 0.90, "USA": 0.90, "UK": 0.85, "France": 0.80, "Italy": 0.80,
			"Australia": 0.75, "Canada": 0.70, "Singapore": 0.65, "UAE": 0.60, "Netherlands": 0.60,
		},
		"Electronics": {
			"USA": 0.90, "Germany": 0.90, "Japan": 0.95, "Singapore": 0.95, "UK": 0.80, "Netherlands": 0.80,
			"France": 0.75, "Australia": 0.75, "Canada": 0.70, "UAE": 0.65, "Italy": 0.65,
		},
		"IT Software": {
			"USA": 1.00, "UK": 0.95, "Australia": 0.90, "Canada": 0.90, "Singapore": 0.90, "Germany": 0.85,
			"Netherlands": 0.80, "France": 0.75, "UAE": 0.75, "Japan": 0.70, "Italy": 0.65,
		},
		"Solar": {
			"Australia": 0.95, "Germany": 0.90, "UAE": 0.90, "USA": 0.85, "Japan": 0.85, "UK": 0.80,
			"Singapore": 0.75, "France": 0.75, "Netherlands": 0.70, "Italy": 0.70, "Canada": 0.70,
		},
		"Machinery": {
			"Germany": 0.95, "Japan": 0.90, "USA": 0.85, "UAE": 0.80, "UK": 0.80, "Italy": 0.80,
			"Singapore": 0.75, "Australia": 0.70, "France": 0.70, "Netherlands": 0.65, "Canada": 0.65,
		},
		"Medical Devices": {
			"USA": 1.00, "Germany": 0.90, "UK": 0.90, "Japan": 0.85, "Australia": 0.85, "France": 0.80,
			"Canada": 0.80, "Netherlands": 0.75, "Singapore": 0.75, "UAE": 0.70, "Italy": 0.65,
		},
	}

	m := make(map[Lane]float64, len(byIndustry)*11)
	for industry, countries := range byIndustry {
		for country, v := range countries {
			m[Lane{Industry: industry, Country: country}] = v
		}
	}
	return m
}

// 1.0 primary hub, 0.8 strong, 0.6 moderate, 0.4 minor presence
func defaultSpecialisation() map[string]map[string]float64 {
	return map[string]map[string]float64{
		"Gujarat": {
			"Chemicals": 1.0, "Pharmaceuticals": 1.0, "Textiles": 0.85, "Engineering": 0.75, "Machinery": 0.70,
			"Solar": 0.70, "Auto Parts": 0.55, "Electronics": 0.50, "IT Software": 0.40, "Medical Devices": 0.60,
		},
		"Maharashtra": {
			"IT Software": 1.0, "Pharmaceuticals": 0.90, "Engineering": 0.85, "Auto Parts": 0.85, "Chemicals": 0.75,
			"Machinery": 0.80, "Electronics": 0.70, "Medical Devices": 0.80, "Textiles": 0.65, "Solar": 0.60,
		},
		"Tamil Nadu": {
			"Auto Parts": 1.0, "Textiles": 0.90, "Machinery": 0.85, "Electronics": 0.80, "Engineering": 0.75,
			"Chemicals": 0.65, "Pharmaceuticals": 0.60, "Solar": 0.65, "IT Software": 0.70, "Medical Devices": 0.65,
		},
		"Karnataka": {
			"IT Software": 1.0, "Electronics": 0.90, "Engineering": 0.80, "Machinery": 0.75, "Pharmaceuticals": 0.70,
			"Medical Devices": 0.75, "Auto Parts": 0.65, "Chemicals": 0.60, "Textiles": 0.55, "Solar": 0.70,
		},
		"Delhi": {
			"IT Software": 0.90, "Textiles": 0.85, "Engineering": 0.80, "Electronics": 0.75, "Pharmaceuticals": 0.70,
			"Machinery": 0.65, "Chemicals": 0.60, "Auto Parts": 0.60, "Medical Devices": 0.65, "Solar": 0.55,
		},
		"Telangana": {
			"IT Software": 1.0, "Pharmaceuticals": 0.90, "Electronics": 0.80, "Engineering": 0.70, "Medical Devices": 0.75,
			"Chemicals": 0.65, "Machinery": 0.60, "Auto Parts": 0.55, "Textiles": 0.50, "Solar": 0.65,
		},
		"Punjab": {
			"Textiles": 1.0, "Auto Parts": 0.80, "Engineering": 0.75, "Machinery": 0.70, "Chemicals": 0.60,
			"Electronics": 0.50, "IT Software": 0.55, "Pharmaceuticals": 0.55, "Medical Devices": 0.50, "Solar": 0.55,
		},
		"Haryana": {
			"Auto Parts": 0.90, "Engineering": 0.85, "Textiles": 0.80, "Machinery": 0.75, "Electronics": 0.65,
			"IT Software": 0.65, "Chemicals": 0.60, "Pharmaceuticals": 0.55, "Medical Devices": 0.55, "Solar": 0.55,
		},
		"Rajasthan": {
			"Textiles": 0.95, "Chemicals": 0.80, "Machinery": 0.70, "Engineering": 0.65, "Auto Parts": 0.60,
			"Solar": 0.75, "Electronics": 0.50, "IT Software": 0.50, "Pharmaceuticals": 0.55, "Medical Devices": 0.50,
		},
	}
}
