package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-complaint-api/internal/apperrors"
	"github.com/noah-isme/campus-complaint-api/internal/auth"
	"github.com/noah-isme/campus-complaint-api/internal/database"
	"github.com/noah-isme/campus-complaint-api/internal/events"
	"github.com/noah-isme/campus-complaint-api/internal/handler"
	"github.com/noah-isme/campus-complaint-api/internal/middleware"
	"github.com/noah-isme/campus-complaint-api/internal/models"
	"github.com/noah-isme/campus-complaint-api/internal/repository"
	"github.com/noah-isme/campus-complaint-api/internal/service"
	"github.com/noah-isme/campus-complaint-api/internal/storage"
)

const (
	testUserHeader = "X-Test-User"
	testRoleHeader = "X-Test-Role"
	testPassword   = "password123"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

type envelope struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

type handlerEnv struct {
	app      *fiber.App
	db       *gorm.DB
	student  models.User
	other    models.User
	staff    models.User
	admin    models.User
	category models.ComplaintCategory
	status   models.ComplaintStatus
	resolved models.ComplaintStatus
}

// newHandlerEnv wires every handler against an in-memory database. Identity
// comes from test headers instead of a bearer token.
func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	env := &handlerEnv{db: db}
	env.seed(t)

	logger := zerolog.Nop()
	validate := apperrors.NewValidator()
	store, err := storage.NewLocal(t.TempDir(), logger)
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	statuses := repository.NewStatusRepository(db)
	complaints := repository.NewComplaintRepository(db)
	responses := repository.NewComplaintResponseRepository(db)

	attachments := service.NewAttachmentService(store, 256, logger)
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	dashboard := service.NewAdminDashboardService(repository.NewAdminReportRepository(db), categories, statuses, validate, nil, 0, logger)
	publisher := events.NewNopPublisher()

	complaintService := service.NewComplaintService(service.ComplaintServiceDeps{
		Complaints:  complaints,
		Responses:   responses,
		Categories:  categories,
		Statuses:    statuses,
		Attachments: attachments,
		Validator:   validate,
		Activity:    activity,
		Events:      publisher,
		Dashboard:   dashboard,
		Logger:      logger,
	})
	responseService := service.NewComplaintResponseService(service.ComplaintResponseServiceDeps{
		Complaints:  complaints,
		Responses:   responses,
		Attachments: attachments,
		Validator:   validate,
		Events:      publisher,
		Logger:      logger,
	})
	authService := service.NewAuthService(users, auth.NewTokenIssuer("secret", time.Hour, "test"), auth.NewMemoryDenylist(), validate, nil, logger)

	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Use(func(c *fiber.Ctx) error {
		if raw := c.Get(testUserHeader); raw != "" {
			id, _ := strconv.ParseUint(raw, 10, 64)
			c.Locals(middleware.LocalUserID, uint(id))
			c.Locals(middleware.LocalUserRole, c.Get(testRoleHeader))
		}
		return c.Next()
	})

	authHandler := handler.NewAuthHandler(authService, logger)
	authHandler.RegisterPublic(app)
	authHandler.Register(app)
	handler.NewComplaintHandler(complaintService, logger).Register(app.Group("/complaints"))
	handler.NewComplaintResponseHandler(responseService, logger).Register(app.Group("/complaints/:id/responses"))

	categoryHandler := handler.NewCategoryHandler(service.NewCategoryService(categories, validate, activity, nil, logger), logger)
	categoryHandler.Register(app.Group("/categories"))
	categoryHandler.RegisterAdmin(app.Group("/admin/categories"))

	statusHandler := handler.NewStatusHandler(service.NewStatusService(statuses, validate, activity, nil, logger), logger)
	statusHandler.Register(app.Group("/statuses"))
	statusHandler.RegisterAdmin(app.Group("/admin/statuses"))

	handler.NewAdminUserHandler(service.NewAdminUserService(users, attachments, validate, activity, dashboard, logger), logger).Register(app.Group("/admin/users"))
	handler.NewAdminDashboardHandler(dashboard, logger).Register(app.Group("/admin"))
	handler.NewAdminActivityHandler(activity, logger).Register(app.Group("/admin/activities"))

	env.app = app
	return env
}

func (e *handlerEnv) seed(t *testing.T) {
	t.Helper()
	hashed, err := auth.HashPasswordWithCost(testPassword, bcrypt.MinCost)
	require.NoError(t, err)

	e.student = models.User{Name: "Sita", Email: "sita@campus.test", Password: hashed, Role: models.RoleStudent}
	e.other = models.User{Name: "Omar", Email: "omar@campus.test", Password: hashed, Role: models.RoleStudent}
	e.staff = models.User{Name: "Stan", Email: "stan@campus.test", Password: hashed, Role: models.RoleStaff}
	e.admin = models.User{Name: "Ada", Email: "ada@campus.test", Password: hashed, Role: models.RoleAdmin}
	for _, user := range []*models.User{&e.student, &e.other, &e.staff, &e.admin} {
		require.NoError(t, e.db.Create(user).Error)
	}

	e.category = models.ComplaintCategory{Name: "Facilities", IsActive: true}
	require.NoError(t, e.db.Create(&e.category).Error)
	e.status = models.ComplaintStatus{Name: "New", Color: models.DefaultStatusColor, IsActive: true}
	require.NoError(t, e.db.Create(&e.status).Error)
	e.resolved = models.ComplaintStatus{Name: "Resolved", Color: "#2ecc71", IsActive: true}
	require.NoError(t, e.db.Create(&e.resolved).Error)
}

// do sends a JSON request as the given user (nil for anonymous).
func (e *handlerEnv) do(t *testing.T, method, path string, body interface{}, as *models.User) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return e.send(t, req, as)
}

// upload sends a multipart form with one attachment as the given user.
func (e *handlerEnv) upload(t *testing.T, method, path string, fields map[string]string, filename string, content []byte, as *models.User) (*http.Response, envelope) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile("attachments", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	return e.send(t, req, as)
}

func (e *handlerEnv) send(t *testing.T, req *http.Request, as *models.User) (*http.Response, envelope) {
	t.Helper()
	if as != nil {
		req.Header.Set(testUserHeader, strconv.FormatUint(uint64(as.ID), 10))
		req.Header.Set(testRoleHeader, as.Role.String())
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, target))
}
