package service

import (
	"context"
	"sync/atomic"

	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
	"github.com/aussiebroadwan/gatehouse/internal/gate/store"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
)

// fakeStore is an in-memory store.Store for service tests. The queries
// counter lets tests assert that a rejection happened before any store
// access.
type fakeStore struct {
	sessionLogins map[idx.ID]domain.SessionLogin
	apiTokens     map[idx.ID]domain.APITokenRecord

	superAdmin map[idx.ID][]idx.ID
	excludes   map[idx.ID][]domain.PermissionRule
	includes   map[idx.ID][]domain.PermissionRule

	workspaces     map[idx.ID]domain.Workspace
	resourceCounts map[idx.ID]int64
	deleted        []idx.ID

	err     error
	queries atomic.Int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessionLogins:  map[idx.ID]domain.SessionLogin{},
		apiTokens:      map[idx.ID]domain.APITokenRecord{},
		superAdmin:     map[idx.ID][]idx.ID{},
		excludes:       map[idx.ID][]domain.PermissionRule{},
		includes:       map[idx.ID][]domain.PermissionRule{},
		workspaces:     map[idx.ID]domain.Workspace{},
		resourceCounts: map[idx.ID]int64{},
	}
}

func (f *fakeStore) Logins() store.Logins           { return f }
func (f *fakeStore) APITokens() store.APITokens     { return f }
func (f *fakeStore) Permissions() store.Permissions { return f }
func (f *fakeStore) Workspaces() store.Workspaces   { return f }

func (f *fakeStore) ApplyMigrations() error           { return nil }
func (f *fakeStore) Close() error                     { return nil }
func (f *fakeStore) Ping(ctx context.Context) error   { return nil }
func (f *fakeStore) Tx(ctx context.Context) (store.Tx, error) {
	return fakeTx{f}, nil
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return fn(fakeTx{f})
}

type fakeTx struct{ *fakeStore }

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

func (f *fakeStore) GetSessionLogin(ctx context.Context, loginID idx.ID) (domain.SessionLogin, error) {
	f.queries.Add(1)
	if f.err != nil {
		return domain.SessionLogin{}, f.err
	}
	login, ok := f.sessionLogins[loginID]
	if !ok {
		return domain.SessionLogin{}, store.ErrNotFound
	}
	return login, nil
}

func (f *fakeStore) GetAPIToken(ctx context.Context, loginID idx.ID) (domain.APITokenRecord, error) {
	f.queries.Add(1)
	if f.err != nil {
		return domain.APITokenRecord{}, f.err
	}
	rec, ok := f.apiTokens[loginID]
	if !ok {
		return domain.APITokenRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (f *fakeStore) SuperAdminWorkspaces(ctx context.Context, loginID idx.ID) ([]idx.ID, error) {
	f.queries.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.superAdmin[loginID], nil
}

func (f *fakeStore) ExcludeRules(ctx context.Context, loginID idx.ID) ([]domain.PermissionRule, error) {
	f.queries.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.excludes[loginID], nil
}

func (f *fakeStore) IncludeRules(ctx context.Context, loginID idx.ID) ([]domain.PermissionRule, error) {
	f.queries.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.includes[loginID], nil
}

func (f *fakeStore) GetWorkspace(ctx context.Context, id idx.ID) (domain.Workspace, error) {
	f.queries.Add(1)
	if f.err != nil {
		return domain.Workspace{}, f.err
	}
	ws, ok := f.workspaces[id]
	if !ok || ws.Deleted != nil {
		return domain.Workspace{}, store.ErrNotFound
	}
	return ws, nil
}

func (f *fakeStore) CountActiveResources(ctx context.Context, workspaceID idx.ID) (int64, error) {
	f.queries.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	return f.resourceCounts[workspaceID], nil
}

func (f *fakeStore) SoftDeleteWorkspace(ctx context.Context, id idx.ID) error {
	f.queries.Add(1)
	if f.err != nil {
		return f.err
	}
	ws, ok := f.workspaces[id]
	if !ok || ws.Deleted != nil {
		return store.ErrNotFound
	}
	now := nowRef()
	ws.Deleted = &now
	f.workspaces[id] = ws
	f.deleted = append(f.deleted, id)
	return nil
}
