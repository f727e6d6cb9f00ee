package postgres

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
	"github.com/lib/pq"
)

type apiTokensRepo struct {
	q querier
}

const getAPITokenQuery = `
SELECT
	api_token.token_id,
	api_token.user_id,
	api_token.token_hash,
	api_token.token_nbf,
	api_token.token_exp,
	api_token.revoked,
	api_token.allowed_ips,
	account.username,
	account.display_name,
	account.created
FROM api_token
INNER JOIN login ON login.login_id = api_token.token_id
INNER JOIN account ON account.id = api_token.user_id
WHERE api_token.token_id = $1 AND login.kind = 'api_token'`

func (r *apiTokensRepo) GetAPIToken(ctx context.Context, loginID idx.ID) (domain.APITokenRecord, error) {
	var (
		out        domain.APITokenRecord
		tokenID    string
		userID     string
		allowedIPs pq.StringArray
	)

	row := r.q.QueryRowContext(ctx, getAPITokenQuery, loginID.String())
	err := row.Scan(
		&tokenID,
		&userID,
		&out.TokenHash,
		&out.NotBefore,
		&out.Expiry,
		&out.Revoked,
		&allowedIPs,
		&out.Account.Username,
		&out.Account.DisplayName,
		&out.Account.Created,
	)
	if err != nil {
		return domain.APITokenRecord{}, mapNotFound(err)
	}

	if out.TokenID, err = idx.Parse(tokenID); err != nil {
		return domain.APITokenRecord{}, err
	}
	if out.UserID, err = idx.Parse(userID); err != nil {
		return domain.APITokenRecord{}, err
	}
	out.Account.ID = out.UserID

	// NULL array means "no allow-list"; keep nil so callers can tell.
	if allowedIPs != nil {
		prefixes, err := parsePrefixes(allowedIPs)
		if err != nil {
			return domain.APITokenRecord{}, err
		}
		out.AllowedIPs = prefixes
	}

	return out, nil
}

func parsePrefixes(raw []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(raw))
	for _, s := range raw {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return nil, fmt.Errorf("postgres: bad cidr %q in allowed_ips: %w", s, err)
		}
		prefixes = append(prefixes, p)
	}
	return prefixes, nil
}
