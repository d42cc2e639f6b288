package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/gsyncapp/gsync/internal/store"
)

// ErrReauthRequired indicates the stored credential is expired and carries
// no refresh token. There is no automatic recovery; the user must go
// through the consent flow again.
var ErrReauthRequired = errors.New("credential expired and no refresh token stored; re-authorization required")

// expirySkew treats tokens about to expire as already expired, matching the
// early-expiry window the oauth2 package applies.
const expirySkew = 10 * time.Second

// Refresher hands out currently-valid access tokens for stored credentials,
// refreshing and persisting them when expired. Callers never perform their
// own expiry math.
type Refresher struct {
	creds store.CredentialRepository

	mu       sync.Mutex
	accounts map[string]*sync.Mutex

	now func() time.Time
}

func NewRefresher(creds store.CredentialRepository) *Refresher {
	return &Refresher{
		creds:    creds,
		accounts: make(map[string]*sync.Mutex),
		now:      time.Now,
	}
}

// EnsureValid resolves the account's credential record and returns a token
// that is valid at the time of return. The refresh-and-persist sequence is
// serialized per account; a request that waited on the lock reuses the
// refresh its predecessor performed instead of issuing its own.
func (r *Refresher) EnsureValid(ctx context.Context, email string) (*oauth2.Token, error) {
	cred, err := r.creds.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if tok := tokenFromCredential(cred); r.valid(tok) {
		return tok, nil
	}

	lock := r.accountLock(email)
	lock.Lock()
	defer lock.Unlock()

	// Re-read: a concurrent request may have refreshed while we waited.
	cred, err = r.creds.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	tok := tokenFromCredential(cred)
	if r.valid(tok) {
		return tok, nil
	}

	if cred.RefreshToken == "" {
		return nil, ErrReauthRequired
	}

	conf := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: cred.TokenURI},
	}
	fresh, err := conf.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token for %s: %w", email, err)
	}

	if err := r.creds.UpdateToken(ctx, email, fresh.AccessToken, fresh.RefreshToken, fresh.Expiry); err != nil {
		return nil, fmt.Errorf("persist refreshed token for %s: %w", email, err)
	}
	return fresh, nil
}

func (r *Refresher) valid(tok *oauth2.Token) bool {
	if tok.AccessToken == "" {
		return false
	}
	// A zero expiry is treated as expired: the record always stores one and
	// an access token must never outlive it unchecked.
	return tok.Expiry.After(r.now().Add(expirySkew))
}

func (r *Refresher) accountLock(email string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.accounts[email]
	if !ok {
		lock = &sync.Mutex{}
		r.accounts[email] = lock
	}
	return lock
}

func tokenFromCredential(cred *store.Credential) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       cred.Expiry,
		TokenType:    "Bearer",
	}
}
