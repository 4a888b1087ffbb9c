package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/campus-complaint-api/internal/apperrors"
	"github.com/noah-isme/campus-complaint-api/internal/observability"
)

// Storage folders for attachment blobs.
const (
	ComplaintAttachmentFolder = "complaint_attachments"
	ResponseAttachmentFolder  = "response_attachments"
)

const defaultMaxAttachmentKB = 2048

var (
	// ErrAttachmentTooLarge indicates the file exceeded the configured limit.
	ErrAttachmentTooLarge = errors.New("attachment exceeds maximum allowed size")
	// ErrAttachmentTypeNotAllowed indicates the detected MIME type is not permitted.
	ErrAttachmentTypeNotAllowed = errors.New("attachment type not allowed")
	// ErrAttachmentScanFailed indicates the archive structure could not be verified.
	ErrAttachmentScanFailed = errors.New("attachment scanning failed")
)

// allowedAttachmentTypes maps detected MIME types to the extension stored on disk.
var allowedAttachmentTypes = map[string]string{
	"image/jpeg":         ".jpg",
	"image/png":          ".png",
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

// FileStorage abstracts attachment destinations. References returned by Save
// are opaque to callers and accepted back by Delete.
type FileStorage interface {
	Save(ctx context.Context, folder, filename string, reader io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// AttachmentService validates and stores uploaded files.
type AttachmentService interface {
	Store(ctx context.Context, folder string, files []*multipart.FileHeader) ([]string, error)
	Remove(ctx context.Context, refs []string)
}

type attachmentService struct {
	storage FileStorage
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewAttachmentService constructs an attachment service with a per-file size limit in kilobytes.
func NewAttachmentService(storage FileStorage, maxSizeKB int, logger zerolog.Logger) AttachmentService {
	if maxSizeKB <= 0 {
		maxSizeKB = defaultMaxAttachmentKB
	}
	return &attachmentService{
		storage: storage,
		logger:  logger.With().Str("component", "attachment_service").Logger(),
		maxSize: int64(maxSizeKB) * 1024,
		tracer:  otel.Tracer("github.com/noah-isme/campus-complaint-api/internal/service/attachment"),
	}
}

// Store validates every file before writing any of them. When a write fails
// part way, the files already stored are removed again.
func (s *attachmentService) Store(ctx context.Context, folder string, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	ctx, span := s.tracer.Start(ctx, "attachment.store")
	defer span.End()
	span.SetAttributes(
		attribute.String("attachment.folder", folder),
		attribute.Int("attachment.count", len(files)),
		attribute.Int64("attachment.max_bytes", s.maxSize),
	)

	start := time.Now()
	defer func() {
		observability.AttachmentLatency().Observe(time.Since(start).Seconds())
	}()

	type pending struct {
		name    string
		payload []byte
		mime    string
	}

	validation := &apperrors.ValidationError{}
	prepared := make([]pending, 0, len(files))
	for i, file := range files {
		field := fmt.Sprintf("attachments.%d", i)
		payload, mime, err := s.inspect(file)
		if err != nil {
			switch {
			case errors.Is(err, ErrAttachmentTooLarge):
				observability.AttachmentsRejected().WithLabelValues("size").Inc()
				validation.Add(field, fmt.Sprintf("The %s must not be greater than %d kilobytes.", field, s.maxSize/1024))
			case errors.Is(err, ErrAttachmentTypeNotAllowed):
				observability.AttachmentsRejected().WithLabelValues("type").Inc()
				validation.Add(field, fmt.Sprintf("The %s must be a file of type: jpg, jpeg, png, pdf, doc, docx.", field))
			case errors.Is(err, ErrAttachmentScanFailed):
				observability.AttachmentsRejected().WithLabelValues("scan").Inc()
				validation.Add(field, fmt.Sprintf("The %s could not be verified.", field))
			default:
				span.RecordError(err)
				span.SetStatus(codes.Error, "read failed")
				return nil, err
			}
			continue
		}
		prepared = append(prepared, pending{
			name:    storedName(file.Filename, mime),
			payload: payload,
			mime:    mime,
		})
	}
	if !validation.Empty() {
		span.SetStatus(codes.Error, "validation failed")
		return nil, validation
	}

	refs := make([]string, 0, len(prepared))
	for _, item := range prepared {
		ref, err := s.storage.Save(ctx, folder, item.name, bytes.NewReader(item.payload))
		if err != nil {
			observability.AttachmentsRejected().WithLabelValues("storage").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "storage failed")
			s.Remove(ctx, refs)
			return nil, fmt.Errorf("store attachment: %w", err)
		}
		observability.AttachmentsStored().WithLabelValues(item.mime).Inc()
		refs = append(refs, ref)
	}

	span.SetStatus(codes.Ok, "stored")
	return refs, nil
}

// Remove deletes stored blobs. Failures are logged and otherwise ignored.
func (s *attachmentService) Remove(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if strings.TrimSpace(ref) == "" {
			continue
		}
		if err := s.storage.Delete(ctx, ref); err != nil {
			s.logger.Warn().Err(err).Str("reference", ref).Msg("failed to delete attachment")
		}
	}
}

func (s *attachmentService) inspect(file *multipart.FileHeader) ([]byte, string, error) {
	if file == nil {
		return nil, "", ErrAttachmentTypeNotAllowed
	}
	if file.Size > s.maxSize {
		return nil, "", ErrAttachmentTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		return nil, "", err
	}
	if int64(buf.Len()) > s.maxSize {
		return nil, "", ErrAttachmentTooLarge
	}

	mime := normalizeAttachmentMime(mimetype.Detect(buf.Bytes()).String(), file.Filename)
	if _, ok := allowedAttachmentTypes[mime]; !ok {
		return nil, "", ErrAttachmentTypeNotAllowed
	}
	if err := s.scan(buf.Bytes(), mime); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mime, nil
}

// scan bounds the uncompressed size of zip based documents.
func (s *attachmentService) scan(payload []byte, mime string) error {
	if !strings.Contains(mime, "openxmlformats") {
		return nil
	}
	reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return ErrAttachmentScanFailed
	}
	var totalUncompressed uint64
	for _, f := range reader.File {
		totalUncompressed += f.UncompressedSize64
		if totalUncompressed > uint64(s.maxSize*20) {
			return fmt.Errorf("archive uncompressed size too large: %w", ErrAttachmentScanFailed)
		}
	}
	return nil
}

func normalizeAttachmentMime(detected, filename string) string {
	lower := strings.ToLower(strings.TrimSpace(detected))
	if idx := strings.Index(lower, ";"); idx >= 0 {
		lower = strings.TrimSpace(lower[:idx])
	}
	// Legacy Word files sniff as a generic OLE container.
	if lower == "application/x-ole-storage" && strings.EqualFold(filepath.Ext(filename), ".doc") {
		return "application/msword"
	}
	return lower
}

func storedName(original, mime string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" || base == "." {
		base = "attachment"
	}
	return base + allowedAttachmentTypes[mime]
}
