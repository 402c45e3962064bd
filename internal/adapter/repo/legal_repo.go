package repo

import (
	"context"
	"fmt"

	"legalbot/internal/domain"
	"legalbot/internal/infra"
	"legalbot/internal/sqlinline"
)

// LegalRepositoryPG searches legal_documents through its generated Portuguese tsvector column.
type LegalRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewLegalRepository(sql infra.SQLExecutor) *LegalRepositoryPG {
	return &LegalRepositoryPG{sql: sql}
}

func (r *LegalRepositoryPG) Search(ctx context.Context, query string, limit int) ([]domain.LegalReference, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSearchLegalDocuments, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search legal documents: %w", err)
	}
	defer rows.Close()

	var refs []domain.LegalReference
	for rows.Next() {
		var ref domain.LegalReference
		if err := rows.Scan(
			&ref.ID,
			&ref.Title,
			&ref.Content,
			&ref.Type,
			&ref.Tags,
			&ref.AddedAt,
			&ref.Rank,
		); err != nil {
			return nil, fmt.Errorf("scan legal document: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *LegalRepositoryPG) Insert(ctx context.Context, doc *domain.LegalDocument) error {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertLegalDocument,
		doc.ID,
		doc.Title,
		doc.Content,
		doc.Type,
		tags,
		doc.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("insert legal document %q: %w", doc.Title, err)
	}
	return nil
}

func (r *LegalRepositoryPG) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.sql.QueryRow(ctx, sqlinline.QCountLegalDocuments).Scan(&n); err != nil {
		return 0, fmt.Errorf("count legal documents: %w", err)
	}
	return n, nil
}

var _ domain.LegalRepository = (*LegalRepositoryPG)(nil)
