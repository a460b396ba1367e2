package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go-contacts-api/pkg/utils"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash := utils.HashPassword("s3cret-pass")
	require.NotEmpty(t, hash)
	require.NotEqual(t, "s3cret-pass", hash)

	require.True(t, utils.CheckPassword("s3cret-pass", hash))
	require.False(t, utils.CheckPassword("wrong-pass", hash))
	require.False(t, utils.CheckPassword("", hash))
}

func TestNewID(t *testing.T) {
	a, b := utils.NewID(), utils.NewID()
	require.Len(t, a, 32)
	require.NotContains(t, a, "-")
	require.NotEqual(t, a, b)
}

func TestGravatarURL(t *testing.T) {
	url := utils.GravatarURL("  User@Example.COM ")
	require.True(t, strings.HasPrefix(url, "https://www.gravatar.com/avatar/"))
	// 大小写与空白不影响结果
	require.Equal(t, utils.GravatarURL("user@example.com"), url)
}
