package postgres

import (
	"context"

	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
)

type loginsRepo struct {
	q querier
}

const getSessionLoginQuery = `
SELECT
	account.id,
	account.username,
	account.display_name,
	account.created,
	session_login.token_expiry
FROM account
INNER JOIN login ON login.user_id = account.id
INNER JOIN session_login ON session_login.login_id = login.login_id
WHERE login.login_id = $1 AND login.kind = 'session'`

func (r *loginsRepo) GetSessionLogin(ctx context.Context, loginID idx.ID) (domain.SessionLogin, error) {
	var (
		out       domain.SessionLogin
		accountID string
	)

	row := r.q.QueryRowContext(ctx, getSessionLoginQuery, loginID.String())
	err := row.Scan(
		&accountID,
		&out.Account.Username,
		&out.Account.DisplayName,
		&out.Account.Created,
		&out.TokenExpiry,
	)
	if err != nil {
		return domain.SessionLogin{}, mapNotFound(err)
	}

	id, err := idx.Parse(accountID)
	if err != nil {
		return domain.SessionLogin{}, err
	}
	out.Account.ID = id
	out.LoginID = loginID

	return out, nil
}
