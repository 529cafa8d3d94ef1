package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/odemetakip/internal/api"
	"github.com/mmynk/odemetakip/internal/auth"
	"github.com/mmynk/odemetakip/internal/middleware"
	"github.com/mmynk/odemetakip/internal/realtime"
	"github.com/mmynk/odemetakip/internal/service"
	"github.com/mmynk/odemetakip/internal/storage/local"
	"github.com/mmynk/odemetakip/internal/storage/sqlite"
)

// cli runs odeme against a cache file in a fresh home directory.
type cli struct {
	t     *testing.T
	home  string
	cache string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return &cli{t: t, home: home, cache: filepath.Join(home, "cache.yaml")}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--cache", c.cache}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func TestInterpret(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("interpret", "Ali", "ekim", "ve", "kasım", "ödendi")
	assert.Contains(t, out, "Durum: ödendi")
	assert.Contains(t, out, "Aylar: Eki 25, Kas 25")
	assert.Contains(t, out, "İsim:  ali")

	out = c.mustRun("interpret", "tüm ödenmedi")
	assert.Contains(t, out, "Durum: ödenmedi")
	assert.Contains(t, out, "(herkes)")

	out = c.mustRun("interpret", "Ali ekim")
	assert.Contains(t, out, "ödendi\" ya da \"ödenmedi\" bulunamadı")
}

func TestAthletesAndApply(t *testing.T) {
	c := newCLI(t)

	c.mustRun("athlete", "add", "Ayşe", "Yılmaz")
	c.mustRun("athlete", "add", "Ali Veli")
	_, err := c.run("athlete", "add", "ayse yilmaz")
	assert.ErrorIs(t, err, errDuplicateName)

	out := c.mustRun("apply", "ayşe ekim ödendi")
	assert.Contains(t, out, "1 sporcu, 1 ay: ödendi")

	out = c.mustRun("apply", "--dry-run", "tüm ödendi")
	assert.Contains(t, out, "Önizleme: 2 sporcu, 13 ay: ödendi")

	out = c.mustRun("apply", "Mehmet ekim ödendi")
	assert.Contains(t, out, "Eşleşen sporcu bulunamadı.")

	out = c.mustRun("athlete", "ls", "--search", "ayse")
	assert.Contains(t, out, "Ayşe Yılmaz")
	assert.NotContains(t, out, "Ali Veli")
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "0/1 sporcunun borcu yok")

	c.mustRun("athlete", "rm", "ali", "veli")
	out = c.mustRun("athlete", "ls")
	assert.NotContains(t, out, "Ali Veli")

	_, err = c.run("athlete", "rm", "nobody")
	assert.ErrorIs(t, err, errNoAthlete)
}

func TestLists(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("list", "ls")
	assert.Contains(t, out, "Listem")

	c.mustRun("list", "add", "U12", "Kızlar")
	c.mustRun("--list", "u12 kizlar", "athlete", "add", "Zeynep")

	out = c.mustRun("--list", "U12 Kızlar", "athlete", "ls")
	assert.Contains(t, out, "Zeynep")
	out = c.mustRun("athlete", "ls")
	assert.NotContains(t, out, "Zeynep", "default list is the first one")

	c.mustRun("list", "rename", "U12 Kızlar", "U14", "Kızlar")
	c.mustRun("list", "rm", "Listem")
	_, err := c.run("list", "rm", "U14 Kızlar")
	assert.ErrorIs(t, err, errLastList)

	_, err = c.run("--list", "missing", "athlete", "ls")
	assert.ErrorIs(t, err, errListNotFound)
}

func TestExportImport(t *testing.T) {
	c := newCLI(t)
	c.mustRun("athlete", "add", "Ali")
	c.mustRun("apply", "ali ocak ve şubat ödendi")

	file := filepath.Join(c.home, "out.csv")
	c.mustRun("export", "-o", file)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Sporcu,Eyl 25,"))

	other := newCLI(t)
	out := other.mustRun("import", file)
	assert.Contains(t, out, "1 sporcu eklendi, 0 sporcu güncellendi")
	out = other.mustRun("import", file)
	assert.Contains(t, out, "0 sporcu eklendi, 1 sporcu güncellendi")

	out = other.mustRun("export")
	assert.Equal(t, string(data), out)
}

func TestDatabaseFlag(t *testing.T) {
	c := newCLI(t)
	db := filepath.Join(c.home, "odeme.db")

	c.mustRun("--db", db, "athlete", "add", "Ali")
	out := c.mustRun("--db", db, "athlete", "ls")
	assert.Contains(t, out, "Ali")

	out = c.mustRun("athlete", "ls")
	assert.NotContains(t, out, "Ali", "cache and database are separate")
}

func TestLoginClearsCache(t *testing.T) {
	c := newCLI(t)
	c.mustRun("athlete", "add", "Ali")

	store, err := sqlite.New(filepath.Join(c.home, "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := []connect.HandlerOption{connect.WithInterceptors(middleware.NewAuthInterceptor(jwtManager, api.PublicProcedures...))}

	broker := realtime.NewBroker(4)
	mux := http.NewServeMux()
	mux.Handle(service.NewAuthServiceHandler(service.NewAuthService(authenticator, store, jwtManager, logger), opts...))
	mux.Handle(service.NewListServiceHandler(service.NewListService(store, broker), opts...))
	mux.Handle(service.NewRosterServiceHandler(service.NewRosterService(store, broker), opts...))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	_, err = api.NewClient(http.DefaultClient, server.URL).Register.CallUnary(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       "coach@example.com",
		DisplayName: "Coach",
		Password:    "password123",
	}))
	require.NoError(t, err)

	_, err = c.run("--server", server.URL, "login", "-e", "coach@example.com", "-p", "wrong-password")
	assert.Error(t, err)

	out := c.mustRun("--server", server.URL, "login", "-e", "coach@example.com", "-p", "password123")
	assert.Contains(t, out, "Giriş yapıldı: Coach")

	token, err := os.ReadFile(filepath.Join(c.home, ".odemetakip", "token"))
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(string(token)))

	cache, err := local.Open(c.cache)
	require.NoError(t, err)
	lists, err := cache.ListLists(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, lists, 1)
	athletes, err := cache.ListAthletes(context.Background(), lists[0].ID)
	require.NoError(t, err)
	assert.Empty(t, athletes, "sign-in drops the local cache")
}

func TestWatchRequiresLogin(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("watch")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestPickList(t *testing.T) {
	lists := []api.List{{ID: "1", Name: "Listem"}, {ID: "2", Name: "U12 Kızlar"}}

	got, err := pickList(lists, "")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	got, err = pickList(lists, "u12 kizlar")
	require.NoError(t, err)
	assert.Equal(t, "2", got.ID)

	_, err = pickList(lists, "x")
	assert.ErrorIs(t, err, errListNotFound)
}
