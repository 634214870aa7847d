package models

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	storage_go "github.com/supabase-community/storage-go"
)

func (su *SupabaseRepo) Upload(ctx context.Context, filePath, contentType string, data io.Reader) error {
	opts := storage_go.FileOptions{}
	if contentType != "" {
		opts.ContentType = &contentType
	}
	if _, err := su.supabaseClient.Storage.UploadFile(su.bucket, filePath, data, opts); err != nil {
		return fmt.Errorf("failed to upload %s: %v", filePath, err)
	}
	return nil
}

func (su *SupabaseRepo) PublicURL(filePath string) (string, error) {
	res := su.supabaseClient.Storage.GetPublicUrl(su.bucket, filePath)
	if res.SignedURL == "" {
		return "", fmt.Errorf("no public url for %s", filePath)
	}
	return res.SignedURL, nil
}

// CloudinaryStore keeps listing images in a Cloudinary folder. Object paths
// map to public ids without their extension.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStore(cld *cloudinary.Cloudinary, folder string) *CloudinaryStore {
	if folder == "" {
		folder = PropertyImageBucket
	}
	return &CloudinaryStore{cld: cld, folder: folder}
}

func publicID(filePath string) string {
	return strings.TrimSuffix(filePath, path.Ext(filePath))
}

func (cs *CloudinaryStore) Upload(ctx context.Context, filePath, contentType string, data io.Reader) error {
	_, err := cs.cld.Upload.Upload(ctx, data, uploader.UploadParams{
		PublicID: publicID(filePath),
		Folder:   cs.folder,
		Tags:     []string{"estately"},
	})
	if err != nil {
		return fmt.Errorf("failed to upload image %s: %v", filePath, err)
	}
	return nil
}

func (cs *CloudinaryStore) PublicURL(filePath string) (string, error) {
	img, err := cs.cld.Image(cs.folder + "/" + publicID(filePath))
	if err != nil {
		return "", fmt.Errorf("failed to build image url: %v", err)
	}
	url, err := img.String()
	if err != nil {
		return "", fmt.Errorf("failed to build image url: %v", err)
	}
	return url, nil
}

var _ ObjectStore = (*CloudinaryStore)(nil)
