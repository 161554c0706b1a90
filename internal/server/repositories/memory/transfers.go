package memory

import (
	"context"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
)

type transferRepo struct{ v *view }

func (r transferRepo) Create(_ context.Context, t *models.Transfer) (*models.Transfer, error) {
	err := r.v.write(func(st *state) error {
		st.transfers[t.ID] = copyTransfer(t)
		st.track(t.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r transferRepo) Get(_ context.Context, id string) (*models.Transfer, error) {
	var out *models.Transfer
	err := r.v.read(func(st *state) error {
		t, ok := st.transfers[id]
		if !ok {
			return common.NotFound("transfer", common.MetaTransferID, id)
		}
		out = copyTransfer(t)
		return nil
	})
	return out, err
}

// ListByUser returns the newest transfers first.
func (r transferRepo) ListByUser(_ context.Context, userID string) ([]*models.Transfer, error) {
	var out []*models.Transfer
	err := r.v.read(func(st *state) error {
		for _, t := range st.transfers {
			if t.UserID == userID {
				out = append(out, copyTransfer(t))
			}
		}
		sortBySeq(st, out, func(t *models.Transfer) string { return t.ID })
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return nil
	})
	return out, err
}

func (r transferRepo) UpdateStatus(_ context.Context, id string, status models.TransferStatus, txHash *string) (*models.Transfer, error) {
	var out *models.Transfer
	err := r.v.write(func(st *state) error {
		t, ok := st.transfers[id]
		if !ok {
			return common.NotFound("transfer", common.MetaTransferID, id)
		}
		next := copyTransfer(t)
		next.Status = status
		if txHash != nil {
			h := *txHash
			next.TxHash = &h
		}
		st.transfers[id] = next
		out = copyTransfer(next)
		return nil
	})
	return out, err
}
