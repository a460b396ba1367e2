package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-contacts-api/internal/core/auth"
	"go-contacts-api/internal/core/cache"
	"go-contacts-api/internal/core/config"
	"go-contacts-api/internal/domain"
	"go-contacts-api/internal/repo"
	"go-contacts-api/internal/service"
	"go-contacts-api/internal/transport/http/router"
	"go-contacts-api/pkg/utils"
)

// chanMailer 把令牌丢进 channel，注册邮件是异步投递的，测试侧阻塞等待
type chanMailer struct {
	verify chan string
	reset  chan string
}

func (m *chanMailer) SendVerification(_ context.Context, _, _, token string) error {
	m.verify <- token
	return nil
}

func (m *chanMailer) SendPasswordReset(_ context.Context, _, _, token string) error {
	m.reset <- token
	return nil
}

type fakeUploader struct{}

func (fakeUploader) Upload(_ context.Context, email string, _ io.Reader) (string, error) {
	return "https://img.example.com/" + email, nil
}

type env struct {
	engine *gin.Engine
	db     *gorm.DB
	mail   *chanMailer
}

func newEnv(t *testing.T) *env {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Contact{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.NewWithClient(rdb)

	j := &auth.JWTer{
		Secret:     []byte("test-secret"),
		Issuer:     "contacts-api",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		EmailTTL:   24 * time.Hour,
	}

	users := repo.NewUserRepo(db)
	contacts := repo.NewContactRepo(db)
	mail := &chanMailer{verify: make(chan string, 4), reset: make(chan string, 4)}

	authSvc := service.NewAuthService(users, j, c, mail, 5*time.Minute, zap.NewNop())
	userSvc := service.NewUserService(users, fakeUploader{}, authSvc)
	contactSvc := service.NewContactService(contacts)

	cfg := &config.Config{}
	cfg.RateLimit = config.RateLimit{
		CreateContactTimes:     2,
		CreateContactWindowSec: 60,
		GlobalRPS:              1000,
		GlobalBurst:            1000,
		MaxAvatarBytes:         1 << 20,
	}

	engine := router.NewAPIEngine(router.Deps{
		Log:      zap.NewNop(),
		Cfg:      cfg,
		RDB:      rdb,
		Auth:     authSvc,
		Users:    userSvc,
		Contacts: contactSvc,
	})
	return &env{engine: engine, db: db, mail: mail}
}

func (e *env) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, json.RawMessage) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var out struct {
		Data json.RawMessage `json:"data"`
	}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out.Data
}

func (e *env) waitVerifyToken(t *testing.T) string {
	select {
	case tok := <-e.mail.verify:
		return tok
	case <-time.After(3 * time.Second):
		t.Fatal("no verification mail delivered")
		return ""
	}
}

// signupLogin 走完整的注册-确认-登录流程，返回 access token
func (e *env) signupLogin(t *testing.T, email, password string) string {
	w, _ := e.do(t, http.MethodPost, "/api/v1/users/signup", "", gin.H{
		"email": email, "username": "tester", "password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	tok := e.waitVerifyToken(t)
	w, _ = e.do(t, http.MethodGet, "/api/v1/users/verify/"+tok, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, data := e.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var pair service.TokenPair
	require.NoError(t, json.Unmarshal(data, &pair))
	require.NotEmpty(t, pair.AccessToken)
	return pair.AccessToken
}

func TestSignupFlow(t *testing.T) {
	e := newEnv(t)

	// 登录在确认邮箱前被拒
	w, _ := e.do(t, http.MethodPost, "/api/v1/users/signup", "", gin.H{
		"email": "a@x.com", "username": "a", "password": "secret12",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tok := e.waitVerifyToken(t)

	w, _ = e.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"email": "a@x.com", "password": "secret12",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// 重复注册冲突
	w, _ = e.do(t, http.MethodPost, "/api/v1/users/signup", "", gin.H{
		"email": "a@x.com", "username": "a2", "password": "secret12",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// 缺字段拒绝
	w, _ = e.do(t, http.MethodPost, "/api/v1/users/signup", "", gin.H{"email": "b@x.com"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// 确认后可登录，确认链接一次性
	w, _ = e.do(t, http.MethodGet, "/api/v1/users/verify/"+tok, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = e.do(t, http.MethodGet, "/api/v1/users/verify/"+tok, "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"email": "a@x.com", "password": "secret12",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestContactCRUD(t *testing.T) {
	e := newEnv(t)
	tok := e.signupLogin(t, "crud@x.com", "secret12")

	// 未带令牌一律 401
	w, _ := e.do(t, http.MethodGet, "/api/v1/contacts", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, data := e.do(t, http.MethodPost, "/api/v1/contacts", tok, gin.H{
		"fullName": "John Smith", "email": "john@x.com", "phone": "123", "birthday": "1990-03-13",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.Contact
	require.NoError(t, json.Unmarshal(data, &created))
	require.NotEmpty(t, created.ID)

	// 坏日期格式
	w, _ = e.do(t, http.MethodPost, "/api/v1/contacts", tok, gin.H{
		"fullName": "Bad", "email": "bad@x.com", "birthday": "13-03-1990",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, data = e.do(t, http.MethodGet, "/api/v1/contacts/"+created.ID, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, data = e.do(t, http.MethodPut, "/api/v1/contacts/"+created.ID, tok, gin.H{
		"fullName": "John Renamed", "email": "john@x.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated domain.Contact
	require.NoError(t, json.Unmarshal(data, &updated))
	require.Equal(t, "John Renamed", updated.FullName)

	w, data = e.do(t, http.MethodPatch, "/api/v1/contacts/"+created.ID+"/favorite", tok, gin.H{"favorite": true})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(t, http.MethodGet, "/api/v1/contacts/search?name=Renamed", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	// 搜索至少要一个条件
	w, _ = e.do(t, http.MethodGet, "/api/v1/contacts/search", tok, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = e.do(t, http.MethodGet, "/api/v1/contacts/birthdays?days=7", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(t, http.MethodDelete, "/api/v1/contacts/"+created.ID, tok, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w, _ = e.do(t, http.MethodGet, "/api/v1/contacts/"+created.ID, tok, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestContactIsolationBetweenUsers(t *testing.T) {
	e := newEnv(t)
	tokA := e.signupLogin(t, "isoA@x.com", "secret12")
	tokB := e.signupLogin(t, "isoB@x.com", "secret12")

	w, data := e.do(t, http.MethodPost, "/api/v1/contacts", tokA, gin.H{
		"fullName": "Private", "email": "priv@x.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var c domain.Contact
	require.NoError(t, json.Unmarshal(data, &c))

	// 别人的联系人一律 404，不暴露存在性
	w, _ = e.do(t, http.MethodGet, "/api/v1/contacts/"+c.ID, tokB, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w, _ = e.do(t, http.MethodDelete, "/api/v1/contacts/"+c.ID, tokB, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateContactRateLimited(t *testing.T) {
	e := newEnv(t)
	tok := e.signupLogin(t, "rl@x.com", "secret12")

	// 窗口配额 2 次，第 3 次 429
	for i := 0; i < 2; i++ {
		w, _ := e.do(t, http.MethodPost, "/api/v1/contacts", tok, gin.H{
			"fullName": "C", "email": fmt.Sprintf("c%d@x.com", i),
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w, _ := e.do(t, http.MethodPost, "/api/v1/contacts", tok, gin.H{
		"fullName": "C", "email": "c9@x.com",
	})
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	// 读操作不受创建限速影响
	w, _ = e.do(t, http.MethodGet, "/api/v1/contacts", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestMeAndAvatar(t *testing.T) {
	e := newEnv(t)
	tok := e.signupLogin(t, "me@x.com", "secret12")

	w, data := e.do(t, http.MethodGet, "/api/v1/users/me", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me domain.User
	require.NoError(t, json.Unmarshal(data, &me))
	require.Equal(t, "me@x.com", me.Email)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "img.example.com")

	// 新头像立刻可见（缓存被踢掉）
	w, data = e.do(t, http.MethodGet, "/api/v1/users/me", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(data, &me))
	require.Contains(t, me.AvatarURL, "img.example.com")
}

func TestAdminEndpoints(t *testing.T) {
	e := newEnv(t)
	userTok := e.signupLogin(t, "plain@x.com", "secret12")

	// 管理端对普通用户 403
	w, _ := e.do(t, http.MethodGet, "/admin/v1/users", userTok, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	admin := &domain.User{
		ID:           utils.NewID(),
		Email:        "admin@x.com",
		Username:     "admin",
		PasswordHash: utils.HashPassword("secret12"),
		Role:         domain.RoleAdmin,
		Verified:     true,
	}
	require.NoError(t, e.db.Create(admin).Error)

	w, data := e.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"email": "admin@x.com", "password": "secret12",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var pair service.TokenPair
	require.NoError(t, json.Unmarshal(data, &pair))

	w, _ = e.do(t, http.MethodGet, "/admin/v1/users", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 封禁后该用户的令牌立即失效
	var plain domain.User
	require.NoError(t, e.db.Where("email = ?", "plain@x.com").First(&plain).Error)
	w, _ = e.do(t, http.MethodPost, "/admin/v1/users/"+plain.ID+"/ban", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(t, http.MethodGet, "/api/v1/users/me", userTok, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	e := newEnv(t)
	e.signupLogin(t, "rot@x.com", "secret12")

	w, data := e.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"email": "rot@x.com", "password": "secret12",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var pair service.TokenPair
	require.NoError(t, json.Unmarshal(data, &pair))

	w, data = e.do(t, http.MethodPost, "/api/v1/users/refresh", "", gin.H{"refresh_token": pair.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	var next service.TokenPair
	require.NoError(t, json.Unmarshal(data, &next))
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// 旧令牌重放 → 401
	w, _ = e.do(t, http.MethodPost, "/api/v1/users/refresh", "", gin.H{"refresh_token": pair.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
