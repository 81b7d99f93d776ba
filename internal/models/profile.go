package models

// Profile is a timestamped research snapshot for one company.
type Profile struct {
	ID            ID       `json:"id"`
	CompanyID     ID       `json:"company_id"`
	ResearchDate  *string  `json:"research_date"`
	OverallStance *string  `json:"overall_stance"`
	KeyActions    []string `json:"key_actions"`
	RecentChanges *string  `json:"recent_changes"`
	SourceCount   *int     `json:"source_count"`
	CreatedAt     *string  `json:"created_at"`
	UpdatedAt     *string  `json:"updated_at,omitempty"`
}

// RankedProfile is a row of the at-risk and top-committed rankings.
type RankedProfile struct {
	ProfileID                ID         `json:"profile_id"`
	CompanyID                ID         `json:"company_id"`
	CompanyName              string     `json:"company_name"`
	Ticker                   *string    `json:"ticker"`
	Industry                 *string    `json:"industry"`
	DEIStatus                *DEIStatus `json:"dei_status"`
	RiskLevel                *RiskLevel `json:"risk_level"`
	RiskScore                *float64   `json:"risk_score"`
	CommitmentStrengthRating *float64   `json:"commitment_strength_rating"`
}

// FullProfile is a profile with its child records. Upstream emits several
// aliases for the same collection; call Normalize before reading it.
type FullProfile struct {
	Profile
	Company *Company `json:"company,omitempty"`

	Commitments    []Commitment       `json:"commitments"`
	Controversies  []Controversy      `json:"controversies"`
	Events         []Event            `json:"events"`
	Sources        []DataSource       `json:"sources"`
	CDORole        *CDORole           `json:"cdo_role"`
	RiskAssessment *RiskAssessment    `json:"risk_assessment"`
	AIContext      *AIContext         `json:"ai_context"`
	DEIPosture     *DEIPosture        `json:"dei_posture"`
	SupplierDiv    *SupplierDiversity `json:"supplier_diversity"`

	KeyInsights           []string `json:"key_insights"`
	StrategicImplications []string `json:"strategic_implications"`

	// Aliases and flattened view fields.
	DataSources              []DataSource        `json:"data_sources,omitempty"`
	RiskAssessments          []RiskAssessment    `json:"risk_assessments,omitempty"`
	CDORoles                 []CDORole           `json:"cdo_roles,omitempty"`
	AIContexts               []AIContext         `json:"ai_contexts,omitempty"`
	SupplierDiversityRecords []SupplierDiversity `json:"supplier_diversity_records,omitempty"`
	CommitmentIDs            []ID                `json:"commitment_ids,omitempty"`
	ControversyIDs           []ID                `json:"controversy_ids,omitempty"`
}

// Normalize folds aliased fields into their canonical ones. A populated
// canonical field wins; otherwise the first populated alias is used. Aliases
// are cleared afterwards so consumers only see one shape.
func (p *FullProfile) Normalize() {
	if len(p.Sources) == 0 && len(p.DataSources) > 0 {
		p.Sources = p.DataSources
	}
	p.DataSources = nil

	if p.RiskAssessment == nil && len(p.RiskAssessments) > 0 {
		p.RiskAssessment = &p.RiskAssessments[0]
	}
	p.RiskAssessments = nil

	if p.CDORole == nil && len(p.CDORoles) > 0 {
		p.CDORole = &p.CDORoles[0]
	}
	p.CDORoles = nil

	if p.AIContext == nil && len(p.AIContexts) > 0 {
		p.AIContext = &p.AIContexts[0]
	}
	p.AIContexts = nil

	if p.SupplierDiv == nil && len(p.SupplierDiversityRecords) > 0 {
		p.SupplierDiv = &p.SupplierDiversityRecords[0]
	}
	p.SupplierDiversityRecords = nil

	if p.AIContext != nil {
		if len(p.KeyInsights) == 0 {
			p.KeyInsights = p.AIContext.KeyInsights
		}
		if len(p.StrategicImplications) == 0 {
			p.StrategicImplications = p.AIContext.StrategicImplications
		}
	}

	if p.Commitments == nil {
		p.Commitments = []Commitment{}
	}
	if p.Controversies == nil {
		p.Controversies = []Controversy{}
	}
	if p.Events == nil {
		p.Events = []Event{}
	}
	if p.Sources == nil {
		p.Sources = []DataSource{}
	}
}

// NeedsCommitmentLookup reports whether commitments arrived only as ids.
func (p *FullProfile) NeedsCommitmentLookup() bool {
	return len(p.Commitments) == 0 && len(p.CommitmentIDs) > 0
}

func (p *FullProfile) NeedsControversyLookup() bool {
	return len(p.Controversies) == 0 && len(p.ControversyIDs) > 0
}
