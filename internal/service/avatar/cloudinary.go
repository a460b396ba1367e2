package avatar

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"go-contacts-api/internal/core/config"
)

// Uploader 把头像推到 Cloudinary，返回可持久化的 URL
type Uploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func New(cfg config.Cloudinary) (*Uploader, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, err
	}
	cld.Config.URL.Secure = true
	return &Uploader{cld: cld, folder: cfg.Folder}, nil
}

func (u *Uploader) Upload(ctx context.Context, userEmail string, file io.Reader) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:  publicIDForEmail(userEmail),
		Folder:    u.folder,
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return "", err
	}
	return resp.SecureURL, nil
}

// publicIDForEmail 同一用户重复上传覆盖同一资源
func publicIDForEmail(email string) string {
	sum := sha256.Sum224([]byte(email))
	return fmt.Sprintf("avatar_%x", sum[:8])
}
