package api

import (
	"errors"
	"net/http"

	httperrors "github.com/gsyncapp/gsync/internal/http/errors"
	"github.com/gsyncapp/gsync/internal/store"
)

// Profile returns the identity details captured during the OAuth callback.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		httperrors.BadRequest(w, r, errors.New("missing email query parameter"), "Email is required")
		return
	}

	cred, err := h.store.Credentials.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httperrors.NotFound(w, r, "User not found")
			return
		}
		httperrors.Internal(w, r, err, "load profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"email":               cred.Email,
		"name":                strOrEmpty(cred.DisplayName),
		"picture":             strOrEmpty(cred.PictureURL),
		"default_calendar_id": strOrEmpty(cred.DefaultCalendarID),
	})
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
