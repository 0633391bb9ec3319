// Package store is the opaque load/save boundary for form documents. The
// engine treats persistence as an external collaborator: a failed load or
// save surfaces as an error to the caller while the in-memory document and
// its history stay valid and editable offline.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-formedit/pkg/document"
)

// ErrNotFound reports that no form exists under the requested id.
var ErrNotFound = errors.New("store: form not found")

// Summary is the listing projection of a stored form.
type Summary struct {
	ID        string          `db:"id" json:"id"`
	Title     string          `db:"title" json:"title"`
	Status    document.Status `db:"status" json:"status"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// Store persists form documents. Save applies create-vs-update semantics: a
// form with a temporary id is inserted under a fresh persistent id, which the
// returned form carries; any other id upserts in place.
type Store interface {
	Load(ctx context.Context, id string) (document.Form, error)
	Save(ctx context.Context, form document.Form) (document.Form, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Summary, error)
}

// Normalize reduces a form to the subset worth persisting: a deep copy with
// legacy conditions filtered to ids present in the current field set and
// rule lists kept fully expanded, dangling targets included (the evaluator
// fails those closed).
func Normalize(f document.Form) document.Form {
	out := document.Clone(f)

	known := make(map[string]bool, len(out.Fields))
	for _, field := range out.Fields {
		known[field.ID] = true
	}
	kept := out.Conditions[:0]
	for _, cond := range out.Conditions {
		if known[cond.FieldID] && known[cond.TargetID] {
			kept = append(kept, cond)
		}
	}
	out.Conditions = kept

	if out.Status == "" {
		out.Status = document.StatusDraft
	}
	return out
}
