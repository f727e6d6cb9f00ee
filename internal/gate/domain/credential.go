package domain

import "github.com/aussiebroadwan/gatehouse/pkg/idx"

// Credential is the parsed bearer credential: either an opaque signed
// session token or an API token's decoded components. The two variants
// are verified by entirely different paths but produce the same Identity.
type Credential interface {
	credential()
}

// SessionCredential carries a session JWT. Its internal structure is left
// to token decoding; parsing does not interpret it.
type SessionCredential struct {
	Token string
}

// APITokenCredential carries the decoded parts of an API token string.
type APITokenCredential struct {
	LoginID idx.ID
	Secret  idx.ID
}

func (SessionCredential) credential()  {}
func (APITokenCredential) credential() {}
