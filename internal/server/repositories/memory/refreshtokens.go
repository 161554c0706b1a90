package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
)

type refreshRepo struct{ v *view }

func (r refreshRepo) Create(_ context.Context, userID string, token string, expires time.Time) error {
	return r.v.write(func(st *state) error {
		st.refresh[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: expires, CreatedAt: time.Now()}
		return nil
	})
}

func (r refreshRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	var out *models.RefreshToken
	err := r.v.read(func(st *state) error {
		rt, ok := st.refresh[token]
		if !ok {
			return common.NotFound("refresh token")
		}
		c := *rt
		out = &c
		return nil
	})
	return out, err
}

func (r refreshRepo) Delete(_ context.Context, token string) error {
	return r.v.write(func(st *state) error {
		delete(st.refresh, token)
		return nil
	})
}
