package models

// DEIStatus is a company's current DEI posture classification.
type DEIStatus string

const (
	DEIStatusCommitted   DEIStatus = "committed"
	DEIStatusMaintaining DEIStatus = "maintaining"
	DEIStatusScalingBack DEIStatus = "scaling_back"
	DEIStatusEliminated  DEIStatus = "eliminated"
	DEIStatusUnknown     DEIStatus = "unknown"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type CommitmentStatus string

const (
	CommitmentActive    CommitmentStatus = "active"
	CommitmentFulfilled CommitmentStatus = "fulfilled"
	CommitmentModified  CommitmentStatus = "modified"
	CommitmentAbandoned CommitmentStatus = "abandoned"
)

type ControversyStatus string

const (
	ControversyOngoing   ControversyStatus = "ongoing"
	ControversyResolved  ControversyStatus = "resolved"
	ControversyDismissed ControversyStatus = "dismissed"
)

// Tone is the badge color family a status renders with.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneCaution  Tone = "caution"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
)

func (s DEIStatus) Tone() Tone {
	switch s {
	case DEIStatusCommitted:
		return TonePositive
	case DEIStatusMaintaining:
		return TonePositive
	case DEIStatusScalingBack:
		return ToneCaution
	case DEIStatusEliminated:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

func (r RiskLevel) Tone() Tone {
	switch r {
	case RiskLow:
		return TonePositive
	case RiskMedium:
		return ToneCaution
	case RiskHigh, RiskCritical:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

func (s CommitmentStatus) Tone() Tone {
	switch s {
	case CommitmentActive, CommitmentFulfilled:
		return TonePositive
	case CommitmentModified:
		return ToneCaution
	case CommitmentAbandoned:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

func (s ControversyStatus) Tone() Tone {
	switch s {
	case ControversyOngoing:
		return ToneNegative
	case ControversyResolved:
		return TonePositive
	case ControversyDismissed:
		return ToneNeutral
	default:
		return ToneNeutral
	}
}
