package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-complaint-api/internal/apperrors"
	"github.com/noah-isme/campus-complaint-api/internal/events"
	"github.com/noah-isme/campus-complaint-api/internal/models"
	"github.com/noah-isme/campus-complaint-api/internal/policy"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func ptrUint(v uint) *uint {
	return &v
}

func ptrBool(v bool) *bool {
	return &v
}

func ptrString(v string) *string {
	return &v
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ComplaintCategory{},
		&models.ComplaintStatus{},
		&models.Complaint{},
		&models.ComplaintResponse{},
		&models.ActivityLog{},
	))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type campus struct {
	student  models.User
	other    models.User
	staff    models.User
	admin    models.User
	academic models.ComplaintCategory
	it       models.ComplaintCategory
	newStat  models.ComplaintStatus
	resolved models.ComplaintStatus
}

func (c campus) actor(user models.User) policy.Actor {
	return policy.Actor{ID: user.ID, Role: user.Role}
}

func seedCampus(t *testing.T, db *gorm.DB) campus {
	t.Helper()
	c := campus{
		student:  models.User{Name: "Sita", Email: "sita@campus.test", Password: "x", Role: models.RoleStudent},
		other:    models.User{Name: "Omar", Email: "omar@campus.test", Password: "x", Role: models.RoleStudent},
		staff:    models.User{Name: "Stan", Email: "stan@campus.test", Password: "x", Role: models.RoleStaff},
		admin:    models.User{Name: "Ada", Email: "ada@campus.test", Password: "x", Role: models.RoleAdmin},
		academic: models.ComplaintCategory{Name: "Academic Issues", IsActive: true},
		it:       models.ComplaintCategory{Name: "IT Services", IsActive: true},
		newStat:  models.ComplaintStatus{Name: "New", Color: "#3498db", IsActive: true},
		resolved: models.ComplaintStatus{Name: "Resolved", Color: "#2ecc71", IsActive: true},
	}
	for _, user := range []*models.User{&c.student, &c.other, &c.staff, &c.admin} {
		require.NoError(t, db.Create(user).Error)
	}
	require.NoError(t, db.Create(&c.academic).Error)
	require.NoError(t, db.Create(&c.it).Error)
	require.NoError(t, db.Create(&c.newStat).Error)
	require.NoError(t, db.Create(&c.resolved).Error)
	return c
}

// memoryStorage keeps blobs in a map keyed by reference.
type memoryStorage struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	seq     int
	failAt  int
	deleted []string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{blobs: map[string][]byte{}}
}

func (m *memoryStorage) Save(ctx context.Context, folder, filename string, reader io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if m.failAt > 0 && m.seq == m.failAt {
		return "", fmt.Errorf("disk full")
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	ref := fmt.Sprintf("%s/%d-%s", folder, m.seq, filename)
	m.blobs[ref] = payload
	return ref, nil
}

func (m *memoryStorage) Delete(ctx context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, ref)
	m.deleted = append(m.deleted, ref)
	return nil
}

func (m *memoryStorage) has(ref string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[ref]
	return ok
}

type capturePublisher struct {
	events []events.Event
}

func (c *capturePublisher) Publish(ctx context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return nil
}

func (c *capturePublisher) types() []string {
	out := make([]string, 0, len(c.events))
	for _, event := range c.events {
		out = append(out, event.Type)
	}
	return out
}

type invalidationCounter struct {
	calls int
}

func (i *invalidationCounter) Invalidate(ctx context.Context) {
	i.calls++
}

var (
	pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
)

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf("form-data; name=\"attachments\"; filename=\"%s\"", filename)},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	files := form.File["attachments"]
	require.Len(t, files, 1)
	return files[0]
}

func validationFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var validation *apperrors.ValidationError
	require.ErrorAs(t, err, &validation)
	return validation.Fields
}

func validatorForTests() *validator.Validate {
	return apperrors.NewValidator()
}
