// Package plans holds the immutable subscription plan table.
package plans

import (
	"bytes"
	_ "embed"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"legalbot/internal/domain"
)

//go:embed plans.yaml
var defaultPlans []byte

type planFile struct {
	Plans []planEntry `yaml:"plans"`
}

type planEntry struct {
	Tier         string          `yaml:"tier"`
	Name         string          `yaml:"name"`
	Emoji        string          `yaml:"emoji"`
	Price        string          `yaml:"price"`
	MonthlyLimit *int            `yaml:"monthly_limit"`
	Capabilities map[string]bool `yaml:"capabilities"`
	Features     []string        `yaml:"features"`
}

// Registry maps every tier to its definition. It is read-only after Load.
type Registry struct {
	byTier map[domain.Tier]domain.PlanDefinition
}

// Default loads the embedded plan table.
func Default() (*Registry, error) {
	return Load(defaultPlans)
}

// MustDefault is Default for process start-up.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// Load parses a YAML plan table and checks that it covers exactly the closed tier set.
func Load(raw []byte) (*Registry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var file planFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode plans: %w", err)
	}

	title := cases.Title(language.BrazilianPortuguese)
	byTier := make(map[domain.Tier]domain.PlanDefinition, len(file.Plans))
	for _, entry := range file.Plans {
		tier, err := domain.ParseTier(entry.Tier)
		if err != nil {
			return nil, fmt.Errorf("plan %q: %w", entry.Tier, err)
		}
		if _, dup := byTier[tier]; dup {
			return nil, fmt.Errorf("plan %q declared twice", tier)
		}
		if entry.MonthlyLimit != nil && *entry.MonthlyLimit < 0 {
			return nil, fmt.Errorf("plan %q: negative monthly limit", tier)
		}
		caps := make(map[domain.Capability]bool, len(entry.Capabilities))
		for name, on := range entry.Capabilities {
			c := domain.Capability(name)
			switch c {
			case domain.CapabilityDocumentCreation, domain.CapabilityFullLegalContext:
			default:
				return nil, fmt.Errorf("plan %q: unknown capability %q", tier, name)
			}
			caps[c] = on
		}
		name := entry.Name
		if name == "" {
			name = title.String(string(tier))
		}
		byTier[tier] = domain.PlanDefinition{
			Tier:         tier,
			Name:         name,
			Emoji:        entry.Emoji,
			PriceLabel:   entry.Price,
			MonthlyLimit: entry.MonthlyLimit,
			Capabilities: caps,
			Features:     append([]string(nil), entry.Features...),
		}
	}

	for _, tier := range domain.Tiers {
		if _, ok := byTier[tier]; !ok {
			return nil, fmt.Errorf("plan %q missing", tier)
		}
	}
	return &Registry{byTier: byTier}, nil
}

// Lookup returns the definition for tier or ErrUnknownTier.
func (r *Registry) Lookup(tier domain.Tier) (domain.PlanDefinition, error) {
	def, ok := r.byTier[tier]
	if !ok {
		return domain.PlanDefinition{}, fmt.Errorf("%w: %q", domain.ErrUnknownTier, tier)
	}
	return def, nil
}

// Default returns the lowest tier's definition.
func (r *Registry) Default() domain.PlanDefinition {
	return r.byTier[domain.DefaultTier]
}

// All returns the definitions in tier order.
func (r *Registry) All() []domain.PlanDefinition {
	out := make([]domain.PlanDefinition, 0, len(domain.Tiers))
	for _, tier := range domain.Tiers {
		out = append(out, r.byTier[tier])
	}
	return out
}
