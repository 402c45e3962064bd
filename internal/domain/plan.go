package domain

// Capability names a feature that a plan may or may not grant.
type Capability string

const (
	CapabilityDocumentCreation Capability = "document_creation"
	CapabilityFullLegalContext Capability = "full_legal_context"
)

// PlanDefinition is the static description of a tier.
type PlanDefinition struct {
	Tier         Tier
	Name         string
	Emoji        string
	PriceLabel   string
	MonthlyLimit *int
	Capabilities map[Capability]bool
	Features     []string
}

// Unlimited reports whether the plan has no monthly cap.
func (p PlanDefinition) Unlimited() bool {
	return p.MonthlyLimit == nil
}

// Limit returns the monthly cap, or -1 when unlimited.
func (p PlanDefinition) Limit() int {
	if p.MonthlyLimit == nil {
		return -1
	}
	return *p.MonthlyLimit
}

// Allows reports whether the capability is granted.
func (p PlanDefinition) Allows(c Capability) bool {
	return p.Capabilities[c]
}
