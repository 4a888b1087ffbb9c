package cloudinary

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeAssetAPI struct {
	uploaded  uploader.UploadParams
	destroyed uploader.DestroyParams
	body      string
}

func (f *fakeAssetAPI) Upload(_ context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.uploaded = params
	if reader, ok := file.(io.Reader); ok {
		data, _ := io.ReadAll(reader)
		f.body = string(data)
	}
	return &uploader.UploadResult{PublicID: params.Folder + "/" + params.PublicID, ResourceType: "raw"}, nil
}

func (f *fakeAssetAPI) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroyed = params
	return &uploader.DestroyResult{Result: "ok"}, nil
}

func TestServiceSaveAndDeleteRoundTrip(t *testing.T) {
	api := &fakeAssetAPI{}
	svc := newService(api, "/campus/", zerolog.Nop())

	ref, err := svc.Save(context.Background(), "complaint_attachments", "Lab Report.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	require.Equal(t, "campus/complaint_attachments", api.uploaded.Folder)
	require.True(t, strings.HasPrefix(api.uploaded.PublicID, "Lab-Report-"))
	require.Equal(t, "pdf-bytes", api.body)
	require.True(t, strings.HasPrefix(ref, "raw:campus/complaint_attachments/Lab-Report-"))

	require.NoError(t, svc.Delete(context.Background(), ref))
	require.Equal(t, "raw", api.destroyed.ResourceType)
	require.Equal(t, strings.TrimPrefix(ref, "raw:"), api.destroyed.PublicID)

	require.Error(t, svc.Delete(context.Background(), "no-separator"))
}
