package export

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmynk/odemetakip/internal/auth"
	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/storage"
	"github.com/mmynk/odemetakip/internal/textnorm"
)

// Pattern is the route served by Handler.
const Pattern = "GET /export/{listID}"

// TokenValidator checks a session token.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Handler serves a list as a CSV download to its owner. The session token
// is read from the Authorization header, or from the "token" query
// parameter so that a plain link can trigger the download.
type Handler struct {
	store  storage.Store
	tokens TokenValidator
}

// NewHandler creates an export handler.
func NewHandler(store storage.Store, tokens TokenValidator) *Handler {
	return &Handler{store: store, tokens: tokens}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("listID")
	slog.Info("Export request received", "list_id", listID)

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		http.Error(w, auth.ErrMissingToken.Error(), http.StatusUnauthorized)
		return
	}
	claims, err := h.tokens.Validate(token)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	ctx := r.Context()
	list, err := h.store.GetList(ctx, listID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && list.OwnerID != claims.UserID) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("Export failed", "list_id", listID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	athletes, err := h.store.ListAthletes(ctx, listID)
	if err != nil {
		slog.Error("Export failed", "list_id", listID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	rows := make([]models.Athlete, 0, len(athletes))
	for _, a := range athletes {
		rows = append(rows, *a)
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, Filename(list.Name, time.Now())))
	if err := Write(w, rows); err != nil {
		slog.Error("Export failed", "list_id", listID, "error", err)
		return
	}

	slog.Info("Export successful", "list_id", listID, "athletes", len(rows))
}

// Filename builds the download name, e.g. "u12-kizlar-2026-02-14.csv".
func Filename(listName string, at time.Time) string {
	var b strings.Builder
	dash := false
	for _, r := range textnorm.Normalize(listName) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if name == "" {
		name = "liste"
	}
	return name + "-" + at.Format(time.DateOnly) + ".csv"
}
