package firefly

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Listing every account is one request per page, so keep the result around.
// Creating or deleting through this client keeps the cache in step; anything
// else that writes to the server calls InvalidateAccounts.

type Cache struct {
	Accounts []Account
	mu       sync.Mutex // Protects the cached data
}

type AccountCache struct {
	Accounts       []Account
	AccountsByID   map[string]Account
	AccountsByName map[AccountKey]Account
}

// AccountKey identifies an account by name within its type; Firefly III
// only enforces name uniqueness per type.
type AccountKey struct {
	Type string
	Name string
}

func (f *Firefly) CachedAccounts(ctx context.Context) (AccountCache, error) {
	f.cache.mu.Lock()
	defer f.cache.mu.Unlock()

	if f.cache.Accounts == nil {
		err := f.refreshAccounts(ctx)
		if err != nil {
			return AccountCache{}, err
		}
	}
	return buildAccountIndexes(f.cache.Accounts), nil
}

// RefreshAccounts refetches the account list regardless of the cache state.
func (f *Firefly) RefreshAccounts(ctx context.Context) (AccountCache, error) {
	f.cache.mu.Lock()
	defer f.cache.mu.Unlock()

	if err := f.refreshAccounts(ctx); err != nil {
		return AccountCache{}, err
	}
	return buildAccountIndexes(f.cache.Accounts), nil
}

// AccountsCached reports whether an account list is held.
func (f *Firefly) AccountsCached() bool {
	f.cache.mu.Lock()
	defer f.cache.mu.Unlock()
	return f.cache.Accounts != nil
}

func (f *Firefly) InvalidateAccounts() {
	f.cache.mu.Lock()
	defer f.cache.mu.Unlock()
	log.Debug().Msg("Cache: clearing Accounts")
	f.cache.Accounts = nil
}

func buildAccountIndexes(accounts []Account) AccountCache {
	cache := AccountCache{
		Accounts:       accounts,
		AccountsByID:   make(map[string]Account, len(accounts)),
		AccountsByName: make(map[AccountKey]Account, len(accounts)),
	}

	for _, acct := range accounts {
		cache.AccountsByID[acct.ID] = acct
		cache.AccountsByName[AccountKey{Type: acct.Attributes.Type, Name: acct.Attributes.Name}] = acct
	}

	return cache
}

// refreshAccounts replaces the cached accounts. The caller is responsible
// for locking the mutex.
func (f *Firefly) refreshAccounts(ctx context.Context) error {
	c, err := f.ListAccounts(ctx, "")
	if err != nil {
		return err
	}
	if c == nil {
		c = []Account{}
	}
	log.Debug().Int("Count", len(c)).Msg("Cache: updating Accounts")
	f.cache.Accounts = c
	return nil
}

func (f *Firefly) addCachedAccount(acct Account) {
	f.cache.mu.Lock()
	defer f.cache.mu.Unlock()
	if f.cache.Accounts == nil {
		return
	}
	f.cache.Accounts = append(f.cache.Accounts, acct)
}

func (f *Firefly) removeCachedAccount(id string) {
	f.cache.mu.Lock()
	defer f.cache.mu.Unlock()
	if f.cache.Accounts == nil {
		return
	}
	kept := make([]Account, 0, len(f.cache.Accounts))
	for _, acct := range f.cache.Accounts {
		if acct.ID != id {
			kept = append(kept, acct)
		}
	}
	f.cache.Accounts = kept
}
