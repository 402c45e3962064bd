package domain

import (
	"time"

	"github.com/google/uuid"
)

// LegalDocument is an entry of the legal reference corpus (statutes, case law, doctrine).
type LegalDocument struct {
	ID      uuid.UUID
	Title   string
	Content string
	Type    string
	Tags    []string
	AddedAt time.Time
}

// LegalReference is a search hit with its relevance score.
type LegalReference struct {
	LegalDocument
	Rank float32
}
