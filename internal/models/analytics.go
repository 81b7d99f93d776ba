package models

import "encoding/json"

// AnalyticsOverview holds the backend's precomputed dashboard statistics.
type AnalyticsOverview struct {
	TotalCompanies            int            `json:"total_companies"`
	TotalProfiles             int            `json:"total_profiles"`
	TotalCommitments          int            `json:"total_commitments"`
	TotalControversies        int            `json:"total_controversies"`
	AverageCommitmentStrength *float64       `json:"average_commitment_strength"`
	AverageTransparency       *float64       `json:"average_transparency"`
	StatusDistribution        map[string]int `json:"dei_status_distribution"`
	RiskDistribution          map[string]int `json:"risk_distribution"`
	IndustryDistribution      map[string]int `json:"industry_distribution"`
	LastUpdated               *string        `json:"last_updated,omitempty"`
}

type IndustryStats struct {
	Industry                  string         `json:"industry"`
	CompanyCount              int            `json:"company_count"`
	AverageCommitmentStrength *float64       `json:"average_commitment_strength"`
	AverageTransparency       *float64       `json:"average_transparency"`
	HighRiskCount             int            `json:"high_risk_count"`
	StatusBreakdown           map[string]int `json:"status_breakdown,omitempty"`
}

// RiskSummary is one bucket of the analytics risks endpoint.
type RiskSummary struct {
	RiskLevel RiskLevel `json:"risk_level"`
	Count     int       `json:"count"`
	Companies []Company `json:"companies,omitempty"`
}

// Comparison is relayed as received; its columns depend on the requested companies.
type Comparison map[string]json.RawMessage
