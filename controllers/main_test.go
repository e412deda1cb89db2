package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ptminh/auth-server/admission"
	"github.com/ptminh/auth-server/config"
	"github.com/ptminh/auth-server/controllers"
	"github.com/ptminh/auth-server/models"
	"github.com/ptminh/auth-server/routes"
	"github.com/ptminh/auth-server/utils"
)

// captureMailer records outgoing mail so tests can pull tokens out of it.
type captureMailer struct {
	mu   sync.Mutex
	sent []capturedMail
}

type capturedMail struct {
	To      string
	Subject string
	Body    string
}

func (m *captureMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, capturedMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *captureMailer) last(t *testing.T) capturedMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "expected at least one mail")
	return m.sent[len(m.sent)-1]
}

// tokens are appended to the mail body after the final space
func tokenFromMail(mail capturedMail) string {
	fields := strings.Fields(mail.Body)
	return fields[len(fields)-1]
}

var ipCounter int
var ipMu sync.Mutex

// nextIP hands each test request chain its own client IP so the per-IP
// rate limiters never bleed between tests.
func nextIP() string {
	ipMu.Lock()
	defer ipMu.Unlock()
	ipCounter++
	return fmt.Sprintf("10.1.%d.%d", ipCounter/256, ipCounter%256)
}

type testApp struct {
	router *gin.Engine
	mail   *captureMailer
	ip     string
}

func setupApp(t *testing.T, mode config.SignupMode) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "app.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.InviteCode{},
		&models.WaitlistEntry{},
		&models.PasswordResetToken{},
		&models.EmailVerificationToken{},
	))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	config.DB = db
	config.C = config.AppConfig{
		SignupMode: mode,
		JWTExpiry:  time.Hour,
	}

	controllers.InitAdmission(admission.NewLedger(db, admission.RetryConfig{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
	}))

	mail := &captureMailer{}
	utils.Mail = mail
	t.Cleanup(func() { utils.Mail = utils.LogMailer{} })

	r := gin.New()
	routes.SetupRoutes(r)

	return &testApp{router: r, mail: mail, ip: nextIP()}
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = a.ip + ":54321"
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func seedInviteCode(t *testing.T, code string) {
	t.Helper()
	require.NoError(t, config.DB.Create(&models.InviteCode{Code: code}).Error)
}

func seedUser(t *testing.T, name, email, password string, admin bool) models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := models.User{Name: name, Email: email, PasswordHash: hash, IsAdmin: admin}
	require.NoError(t, config.DB.Create(&u).Error)
	return u
}

func login(t *testing.T, a *testApp, email, password string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email":    email,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
