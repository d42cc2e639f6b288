package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/tasks/v1"

	"github.com/gsyncapp/gsync/internal/config"
	httperrors "github.com/gsyncapp/gsync/internal/http/errors"
	"github.com/gsyncapp/gsync/internal/store"
)

var scopes = []string{
	calendar.CalendarScope,
	calendar.CalendarEventsScope,
	tasks.TasksScope,
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	oidc.ScopeOpenID,
}

const stateCookie = "gsync_oauth_state"

// Service drives the Google authorization-code flow and persists the
// resulting credential record.
type Service struct {
	cfg      *config.Config
	store    *store.Store
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

func NewService(ctx context.Context, cfg *config.Config, stor *store.Store) (*Service, error) {
	provider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, fmt.Errorf("discover google oidc provider: %w", err)
	}

	return &Service{
		cfg:   cfg,
		store: stor,
		oauth: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       scopes,
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.Google.ClientID}),
	}, nil
}

// BeginOAuth redirects to Google's consent screen requesting offline access
// and forced consent so a refresh token is always issued.
func (s *Service) BeginOAuth(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		httperrors.Internal(w, r, err, "generate oauth state")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	authURL := s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleOAuthCallback exchanges the authorization code, verifies the ID
// token against the configured client id, upserts the credential record,
// and sends the user back to the frontend.
func (s *Service) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := r.URL.Query().Get("code")
	if code == "" {
		httperrors.BadRequest(w, r, fmt.Errorf("callback without code"), "No authorization code received")
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		httperrors.BadRequest(w, r, fmt.Errorf("oauth state mismatch"), "Invalid state parameter")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		httperrors.Internal(w, r, err, "exchange authorization code")
		return
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok {
		httperrors.Internal(w, r, fmt.Errorf("token response has no id_token"), "verify identity")
		return
	}

	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		httperrors.Internal(w, r, err, "verify id token")
		return
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		httperrors.Internal(w, r, err, "decode id token claims")
		return
	}
	if claims.Email == "" {
		httperrors.Internal(w, r, fmt.Errorf("id token has no email claim"), "verify identity")
		return
	}

	cred := store.Credential{
		Email:        claims.Email,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenURI:     google.Endpoint.TokenURL,
		ClientID:     s.cfg.Google.ClientID,
		ClientSecret: s.cfg.Google.ClientSecret,
		Expiry:       tok.Expiry,
	}
	if claims.Name != "" {
		cred.DisplayName = &claims.Name
	}
	if claims.Picture != "" {
		cred.PictureURL = &claims.Picture
	}

	if _, err := s.store.Credentials.Upsert(ctx, cred); err != nil {
		httperrors.Internal(w, r, err, "persist credentials")
		return
	}

	httperrors.LogInfo(r, "authorized account "+claims.Email)
	redirectURL := fmt.Sprintf("%s/events?email=%s", s.cfg.FrontendURL, url.QueryEscape(claims.Email))
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func randomState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
