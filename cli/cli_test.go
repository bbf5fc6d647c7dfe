package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"capacitaciones/config"
	"capacitaciones/database"
	"capacitaciones/models"
	"capacitaciones/server"
)

// startBackend points the environment at a fresh in-memory backend, the
// same way a developer would with .env, and returns the session file.
func startBackend(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	session := filepath.Join(dir, "session.json")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file:"+t.Name()+"?mode=memory&cache=shared")
	t.Setenv("JWT_SECRET_KEY", "cli-secret")
	t.Setenv("SALT_ROUND", "4")
	t.Setenv("UPLOAD_DIR", filepath.Join(dir, "media"))
	t.Setenv("SESSION_FILE", session)
	t.Setenv("ADMIN_EMAIL", "admin@cli.test")
	t.Setenv("ADMIN_PASSWORD", "secreto")

	cfg := config.LoadConfig()
	require.NoError(t, database.ConnectDb(cfg, zaptest.NewLogger(t)))
	sqlDB, err := database.Database.Db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	_, err = database.SeedCollaborators(database.Database.Db, []models.Collaborator{
		{Cedula: "1010", FirstName: "Ana"}, {Cedula: "2020", FirstName: "Luis"},
		{Cedula: "3030", FirstName: "Marta"}, {Cedula: "4040", FirstName: "Iván"},
		{Cedula: "5050", FirstName: "Sara"},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(adaptor.FiberApp(server.NewApp(cfg, true)))
	t.Cleanup(srv.Close)
	t.Setenv("API_URL", srv.URL+"/")
	return session
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dryRun, loginEmail, loginPassword, seedFile = false, "", "", ""
	logLevel, apiURL = "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDryRun(t *testing.T) {
	t.Setenv("SESSION_FILE", filepath.Join(t.TempDir(), "s.json"))
	out, err := runCLI(t, "push", "--dry-run", writeManifest(t, sampleManifest))
	require.NoError(t, err)
	assert.Contains(t, out, "Manifiesto válido")

	_, err = runCLI(t, "push", "--dry-run", writeManifest(t, "titulo: x\ndescripcion: y\n"))
	assert.ErrorContains(t, err, "Las fechas de inicio y fin son obligatorias")
}

func TestCommandsAgainstBackend(t *testing.T) {
	session := startBackend(t)

	_, err := runCLI(t, "list")
	assert.Error(t, err, "no session yet")

	_, err = runCLI(t, "login", "--email", "admin@cli.test", "--password", "otra")
	assert.Error(t, err)

	out, err := runCLI(t, "login", "--email", "admin@cli.test", "--password", "secreto")
	require.NoError(t, err)
	assert.Contains(t, out, "administrador")
	assert.FileExists(t, session)

	out, err = runCLI(t, "push", writeManifest(t, sampleManifest))
	require.NoError(t, err)
	assert.Contains(t, out, "Capacitación 1 creada (3 archivo(s) subido(s))")

	out, err = runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Manejo defensivo")
	assert.Contains(t, out, "2024-05-06")

	out, err = runCLI(t, "fetch", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "id: 1")
	assert.Contains(t, out, "/media/")

	var m Manifest
	require.NoError(t, yaml.Unmarshal([]byte(out), &m))
	assert.ElementsMatch(t, []int{4, 5}, m.Collaborators)
	m.Title = "Manejo defensivo 2024"
	m.Collaborators = []int{5, 3}
	fetched := filepath.Join(t.TempDir(), "editada.yaml")
	f, err := os.Create(fetched)
	require.NoError(t, err)
	require.NoError(t, encodeManifest(f, &m))
	require.NoError(t, f.Close())

	out, err = runCLI(t, "push", fetched)
	require.NoError(t, err)
	assert.Contains(t, out, "Capacitación 1 actualizada (0 archivo(s) subido(s))")
	assert.Contains(t, out, "Colaboradores: +[3] -[4]")

	csv := filepath.Join(t.TempDir(), "lista.csv")
	require.NoError(t, os.WriteFile(csv, []byte("cedula;nombre\n1010;Ana\n7777;Nadie\n"), 0o644))
	out, err = runCLI(t, "collaborators", "upload", csv)
	require.NoError(t, err)
	assert.Contains(t, out, "1010")
	assert.Contains(t, out, "No encontrados: [7777]")

	out, err = runCLI(t, "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Capacitación 1 eliminada")
	_, err = runCLI(t, "fetch", "1")
	assert.Error(t, err)

	_, err = runCLI(t, "logout")
	require.NoError(t, err)
	assert.NoFileExists(t, session)
}
