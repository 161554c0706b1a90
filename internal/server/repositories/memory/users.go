package memory

import (
	"context"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
)

type userRepo struct{ v *view }

func (r userRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	err := r.v.write(func(st *state) error {
		for _, existing := range st.users {
			if existing.UserName == u.UserName || existing.WalletAddress == u.WalletAddress {
				return common.NewError(common.KindConflict, "user already exists", "username", u.UserName)
			}
		}
		st.users[u.ID] = copyUser(u)
		st.track(u.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r userRepo) GetByWallet(_ context.Context, wallet string) (*models.User, error) {
	var out *models.User
	err := r.v.read(func(st *state) error {
		for _, u := range st.users {
			if u.WalletAddress == wallet {
				out = copyUser(u)
				return nil
			}
		}
		return common.NotFound("user")
	})
	return out, err
}

func (r userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	var out *models.User
	err := r.v.read(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return common.NotFound("user")
		}
		out = copyUser(u)
		return nil
	})
	return out, err
}
