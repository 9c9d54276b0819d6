package repository

import (
	"context"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

// TransferRepository manages the global pending-transfer list.
type TransferRepository struct {
	w *Workspace
}

// List returns every pending transfer.
func (r *TransferRepository) List(ctx context.Context) []models.Transfer {
	return load(ctx, r.w, storage.KeyTransfers, []models.Transfer{})
}

// Save overwrites the list.
func (r *TransferRepository) Save(ctx context.Context, transfers []models.Transfer) {
	if transfers == nil {
		transfers = []models.Transfer{}
	}
	save(ctx, r.w, storage.KeyTransfers, transfers)
}

// Add appends a transfer, assigning an id when missing.
func (r *TransferRepository) Add(ctx context.Context, transfer models.Transfer) models.Transfer {
	if transfer.ID == "" {
		transfer.ID = r.w.NewID("trans-")
	}
	transfers := r.List(ctx)
	transfers = append(transfers, transfer)
	r.Save(ctx, transfers)
	return transfer
}

// Find returns the transfer with id or nil.
func (r *TransferRepository) Find(ctx context.Context, id string) *models.Transfer {
	for _, t := range r.List(ctx) {
		if t.ID == id {
			found := t
			return &found
		}
	}
	return nil
}

// Delete removes a transfer.
func (r *TransferRepository) Delete(ctx context.Context, id string) {
	transfers := r.List(ctx)
	kept := transfers[:0]
	for _, t := range transfers {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	r.Save(ctx, kept)
}

// PendingFor lists transfers addressed to email.
func (r *TransferRepository) PendingFor(ctx context.Context, email string) []models.Transfer {
	email = storage.NormalizeEmail(email)
	if email == "" {
		return []models.Transfer{}
	}
	all := r.List(ctx)
	out := make([]models.Transfer, 0, len(all))
	for _, t := range all {
		if storage.NormalizeEmail(t.ToUser) == email {
			out = append(out, t)
		}
	}
	return out
}
