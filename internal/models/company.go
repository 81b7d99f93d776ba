package models

// Company mirrors the backend company record, including the denormalized
// summary of its latest profile. Nullable backend fields are pointers.
type Company struct {
	ID                  ID       `json:"id"`
	Name                string   `json:"name"`
	Ticker              *string  `json:"ticker"`
	CIK                 *string  `json:"cik"`
	Industry            *string  `json:"industry"`
	HeadquartersCity    *string  `json:"headquarters_city"`
	HeadquartersState   *string  `json:"headquarters_state"`
	HeadquartersCountry *string  `json:"headquarters_country"`
	EmployeeCount       *int64   `json:"employee_count"`
	RevenueUSD          *float64 `json:"revenue_usd"`
	Website             *string  `json:"website,omitempty"`
	CreatedAt           *string  `json:"created_at"`
	UpdatedAt           *string  `json:"updated_at,omitempty"`

	DEIStatus                *DEIStatus `json:"dei_status"`
	RiskLevel                *RiskLevel `json:"risk_level"`
	CommitmentStrengthRating *float64   `json:"commitment_strength_rating"`
	TransparencyRating       *float64   `json:"transparency_rating"`
	Recommendation           *string    `json:"recommendation"`
	SourceCount              *int       `json:"source_count"`
}

// CompanySuggestion is one autocomplete hit.
type CompanySuggestion struct {
	ID       ID      `json:"id"`
	Name     string  `json:"name"`
	Ticker   *string `json:"ticker"`
	Industry *string `json:"industry"`
}

// FilterOptions lists the values the companies page can filter by.
type FilterOptions struct {
	Industries []string `json:"industries"`
	Countries  []string `json:"countries"`
	States     []string `json:"states"`
	DEIStatus  []string `json:"dei_statuses,omitempty"`
	RiskLevels []string `json:"risk_levels,omitempty"`
}
