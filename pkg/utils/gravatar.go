package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GravatarURL 注册时的默认头像，后续可被 Cloudinary 上传覆盖
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon", sum)
}
