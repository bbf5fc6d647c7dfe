package server

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"capacitaciones/api"
	"capacitaciones/config"
	"capacitaciones/database"
	"capacitaciones/draft"
	"capacitaciones/models"
	"capacitaciones/utils"
)

const (
	adminEmail    = "admin@test.co"
	adminPassword = "clave-segura"
)

var (
	pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	pdfData = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
)

type backend struct {
	cfg *config.Config
	url string
}

// startBackend runs the app on an in-memory sqlite database with three
// known collaborators (ids 1..3).
func startBackend(t *testing.T) *backend {
	t.Helper()
	cfg := &config.Config{
		DBDriver:       "sqlite",
		DBDSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		JWTKey:         "test-secret",
		SaltRound:      bcrypt.MinCost,
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 5 << 20,
		AdminEmail:     adminEmail,
		AdminPassword:  adminPassword,
		LogLevel:       "warn",
	}
	config.AppConfig = cfg
	require.NoError(t, database.ConnectDb(cfg, zaptest.NewLogger(t)))
	sqlDB, err := database.Database.Db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = database.SeedCollaborators(database.Database.Db, []models.Collaborator{
		{Cedula: "1010", FirstName: "Ana", LastName: "Gómez"},
		{Cedula: "2020", FirstName: "Luis", LastName: "Pérez"},
		{Cedula: "3030", FirstName: "Marta", LastName: "Ríos"},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(adaptor.FiberApp(NewApp(cfg, true)))
	t.Cleanup(srv.Close)
	return &backend{cfg: cfg, url: srv.URL + "/"}
}

func (b *backend) client(t *testing.T) *api.Client {
	return api.NewClient(api.Config{BaseURL: b.url, Logger: zaptest.NewLogger(t)})
}

func (b *backend) admin(t *testing.T) *api.Client {
	t.Helper()
	c := b.client(t)
	_, err := c.Login(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)
	require.NoError(t, c.RequireAdmin())
	return c
}

func newDraft(t *testing.T, c *api.Client) *draft.Builder {
	t.Helper()
	b := draft.New(c, zaptest.NewLogger(t))
	b.SetTitle("Trabajo en alturas")
	b.SetDescription("Certificación básica")
	require.NoError(t, b.SetType("LEGAL"))
	require.NoError(t, b.SetStartDate("2024-06-03"))
	require.NoError(t, b.SetEndDate("2024-06-07"))
	require.NoError(t, b.AttachTrainingImage(draft.NewPendingFile("portada.png", "", pngData)))

	m := b.AddModule("Normativa")
	l, err := b.AddLesson(m)
	require.NoError(t, err)
	require.NoError(t, b.SetLessonTitle(m, l, "Resolución"))
	require.NoError(t, b.SetLessonKind(m, l, draft.LessonPDF))
	require.NoError(t, b.AttachLessonFile(m, l, draft.NewPendingFile("resolucion.pdf", "", pdfData)))

	l, err = b.AddLesson(m)
	require.NoError(t, err)
	require.NoError(t, b.SetLessonTitle(m, l, "Evaluación"))
	require.NoError(t, b.SetLessonKind(m, l, draft.LessonForm))
	q, err := b.AddQuestion(m, l)
	require.NoError(t, err)
	require.NoError(t, b.SetQuestionText(m, l, q, "¿Altura mínima?"))
	require.NoError(t, b.AttachQuestionMedia(m, l, q, draft.NewPendingFile("arnes.png", "", pngData)))
	require.NoError(t, b.SetAnswerText(m, l, q, 0, "1,5 m"))
	require.NoError(t, b.ToggleAnswer(m, l, q, 0))

	b.SetCollaborators([]int{1, 2})
	return b
}

func TestCreateAndEditTraining(t *testing.T) {
	be := startBackend(t)
	c := be.admin(t)
	ctx := context.Background()

	res, err := newDraft(t, c).Submit(ctx)
	require.NoError(t, err)
	require.True(t, res.Created)
	assert.Equal(t, 3, res.Uploaded)

	detail, err := c.FetchTraining(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trabajo en alturas", detail.Title)
	assert.Equal(t, "2024-06-03T08:00:00Z", detail.StartDate)
	assert.Equal(t, "2024-06-07T18:00:00Z", detail.EndDate)
	assert.True(t, strings.HasPrefix(detail.Image, utils.MediaPrefix))
	assert.FileExists(t, filepath.Join(be.cfg.UploadDir, strings.TrimPrefix(detail.Image, utils.MediaPrefix)))
	require.Len(t, detail.Modules, 1)
	require.Len(t, detail.Modules[0].Lessons, 2)
	assert.True(t, strings.HasSuffix(detail.Modules[0].Lessons[0].URL, "_resolucion.pdf"))
	quiz := detail.Modules[0].Lessons[1]
	require.Len(t, quiz.Questions, 1)
	assert.Equal(t, "opcion_unica", quiz.Questions[0].Kind)
	assert.True(t, bool(quiz.Questions[0].Answers[0].Correct))
	assert.Len(t, detail.Collaborators, 2)

	edit, err := draft.Load(ctx, c, res.ID, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, edit.OriginalCollaborators())
	require.NoError(t, edit.RemoveCollaborator(0))
	edit.AddCollaborators(3)
	require.NoError(t, edit.RenameModule(0, "Normativa vigente"))

	res2, err := edit.Submit(ctx)
	require.NoError(t, err)
	assert.False(t, res2.Created)
	assert.Equal(t, []int{3}, res2.Added)
	assert.Equal(t, []int{1}, res2.Removed)

	detail, err = c.FetchTraining(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Normativa vigente", detail.Modules[0].Name)
	var ids []int
	for _, col := range detail.Collaborators {
		ids = append(ids, col.ID)
	}
	assert.ElementsMatch(t, []int{2, 3}, ids)

	list, err := c.ListTrainings(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.ID, list[0].ID)

	require.NoError(t, c.DeleteTraining(ctx, res.ID))
	_, err = c.FetchTraining(ctx, res.ID)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestSyncRejectsUnknownAndOverlapping(t *testing.T) {
	be := startBackend(t)
	c := be.admin(t)
	ctx := context.Background()
	res, err := newDraft(t, c).Submit(ctx)
	require.NoError(t, err)

	_, err = c.SyncCollaborators(ctx, res.ID, []int{99}, nil)
	var herr *api.HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, 400, herr.Status)
	assert.Equal(t, "Colaboradores no encontrados", herr.Message)

	_, err = c.SyncCollaborators(ctx, res.ID, []int{3}, []int{3})
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, 400, herr.Status)

	edit, err := draft.Load(ctx, c, res.ID, nil)
	require.NoError(t, err)
	edit.AddCollaborators(99)
	_, err = edit.Submit(ctx)
	var perr *draft.PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, draft.StageSync, perr.Stage)
	assert.Equal(t, []int{1, 2}, edit.OriginalCollaborators())
}

func TestCreateValidatesOnServer(t *testing.T) {
	be := startBackend(t)
	c := be.admin(t)

	_, err := c.CreateTraining(context.Background(), &api.TrainingPayload{Title: "Sin módulos", StartDate: "2024-01-01"})
	var herr *api.HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, 422, herr.Status)
}

func TestUploadSniffsContent(t *testing.T) {
	be := startBackend(t)
	c := be.admin(t)
	ctx := context.Background()

	_, err := c.UploadAttachment(ctx, api.PurposeTrainingImage, api.Attachment{Name: "falsa.png", MIME: "image/png", Data: []byte("no soy una imagen")})
	var herr *api.HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, 400, herr.Status)

	url, err := c.UploadAttachment(ctx, api.PurposeLessonPDF, api.Attachment{Name: "guia.pdf", MIME: "application/pdf", Data: pdfData})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, utils.MediaPrefix))
}

func TestCollaboratorCSV(t *testing.T) {
	be := startBackend(t)
	c := be.admin(t)

	res, err := c.UploadCollaboratorCSV(context.Background(), "lista.csv", []byte("nombre;cedula\nAna;1010\nX;9999\nAna;1010\n"))
	require.NoError(t, err)
	require.Len(t, res.Found, 1)
	assert.Equal(t, "1010", res.Found[0].Cedula)
	assert.Equal(t, "Ana", res.Found[0].FirstName)
	assert.Equal(t, []string{"9999"}, res.NotFound)

	_, err = c.UploadCollaboratorCSV(context.Background(), "mala.csv", []byte("nombre,correo\nAna,a@x.co\n"))
	var herr *api.HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, 400, herr.Status)
}

func TestRoleGate(t *testing.T) {
	be := startBackend(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("staff-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, database.Database.Db.Create(&models.User{Email: "staff@test.co", Password: string(hash), Role: models.RoleStaff}).Error)

	c := be.client(t)
	_, err = c.Login(context.Background(), "staff@test.co", "staff-pass")
	require.NoError(t, err)
	assert.ErrorIs(t, c.RequireAdmin(), api.ErrForbidden)

	_, err = c.ListTrainings(context.Background())
	var herr *api.HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, 403, herr.Status)

	_, err = c.Login(context.Background(), "staff@test.co", "otra")
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	var attempts []models.LoginTracking
	require.NoError(t, database.Database.Db.Where("email = ?", "staff@test.co").Order("id").Find(&attempts).Error)
	require.Len(t, attempts, 2)
	assert.True(t, attempts[0].Success)
	assert.False(t, attempts[1].Success)
	assert.NotZero(t, attempts[1].UserID)
}

func TestExpiredTokenClearsSession(t *testing.T) {
	be := startBackend(t)
	c := be.client(t)
	require.NoError(t, c.Store().Save(api.Session{Access: "basura", Role: api.RoleAdmin}))

	_, err := c.ListTrainings(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Empty(t, c.Store().Token())
}

func TestOrphanSweep(t *testing.T) {
	be := startBackend(t)
	c := be.admin(t)
	ctx := context.Background()

	res, err := newDraft(t, c).Submit(ctx)
	require.NoError(t, err)
	orphan, err := c.UploadAttachment(ctx, api.PurposeAnswerImage, api.Attachment{Name: "huerfana.png", MIME: "image/png", Data: pngData})
	require.NoError(t, err)
	orphanPath := filepath.Join(be.cfg.UploadDir, strings.TrimPrefix(orphan, utils.MediaPrefix))
	require.FileExists(t, orphanPath)

	db := database.Database.Db
	n, err := utils.SweepOrphanUploads(db, be.cfg.UploadDir, time.Hour, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n, "uploads inside the grace period stay")

	n, err = utils.SweepOrphanUploads(db, be.cfg.UploadDir, 0, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoFileExists(t, orphanPath)

	detail, err := c.FetchTraining(ctx, res.ID)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(be.cfg.UploadDir, strings.TrimPrefix(detail.Image, utils.MediaPrefix)))
	assert.NoError(t, err, "referenced uploads are kept")
}
