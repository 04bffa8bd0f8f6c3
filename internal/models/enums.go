package models

type ContactStatus string

const (
	ContactLead     ContactStatus = "lead"
	ContactProspect ContactStatus = "prospect"
	ContactCustomer ContactStatus = "customer"
	ContactPartner  ContactStatus = "partner"
)

func (s ContactStatus) Valid() bool {
	switch s {
	case ContactLead, ContactProspect, ContactCustomer, ContactPartner:
		return true
	}
	return false
}

type CompanyType string

const (
	CompanyProspect CompanyType = "prospect"
	CompanyCustomer CompanyType = "customer"
	CompanyPartner  CompanyType = "partner"
	CompanyVendor   CompanyType = "vendor"
)

func (t CompanyType) Valid() bool {
	switch t {
	case CompanyProspect, CompanyCustomer, CompanyPartner, CompanyVendor:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	return p.Rank() != 0
}

// Rank orders priorities from low (1) to critical (4). Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	}
	return 0
}

type DealStage string

const (
	StageQualification DealStage = "qualification"
	StageNeedsAnalysis DealStage = "needs_analysis"
	StageProposal      DealStage = "proposal"
	StageNegotiation   DealStage = "negotiation"
	StageClosedWon     DealStage = "closed_won"
	StageClosedLost    DealStage = "closed_lost"
)

// DealStages lists every stage in pipeline order.
var DealStages = []DealStage{
	StageQualification,
	StageNeedsAnalysis,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

func (s DealStage) Valid() bool {
	for _, st := range DealStages {
		if s == st {
			return true
		}
	}
	return false
}

type DealStatus string

const (
	DealOpen DealStatus = "open"
	DealWon  DealStatus = "won"
	DealLost DealStatus = "lost"
)

func (s DealStatus) Valid() bool {
	switch s {
	case DealOpen, DealWon, DealLost:
		return true
	}
	return false
}

type ActivityType string

const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivityMeeting ActivityType = "meeting"
	ActivityTask    ActivityType = "task"
	ActivityNote    ActivityType = "note"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityCall, ActivityEmail, ActivityMeeting, ActivityTask, ActivityNote:
		return true
	}
	return false
}

type ActivityStatus string

const (
	ActivityPending   ActivityStatus = "pending"
	ActivityCompleted ActivityStatus = "completed"
	ActivityCancelled ActivityStatus = "cancelled"
)

func (s ActivityStatus) Valid() bool {
	switch s {
	case ActivityPending, ActivityCompleted, ActivityCancelled:
		return true
	}
	return false
}

// companySizes are the accepted head-count buckets.
var companySizes = map[string]bool{
	"1-10":     true,
	"11-50":    true,
	"51-200":   true,
	"201-500":  true,
	"501-1000": true,
	"1000+":    true,
}
