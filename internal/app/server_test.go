package app_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"searchapp_backend/internal/app"
	"searchapp_backend/internal/auth"
	"searchapp_backend/internal/cache"
	"searchapp_backend/internal/config"
	"searchapp_backend/internal/logger"
	"searchapp_backend/internal/models"
	"searchapp_backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const jwtSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	logger.InitWithWriter("production", io.Discard)
}

// TestServer - API поверх sqlite в памяти и локального хранилища
type TestServer struct {
	Server *httptest.Server
	DB     *gorm.DB
	Config *config.Config
}

func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := config.Defaults()
	cfg.Auth.JWTSecret = jwtSecret

	db := testutil.NewDB(t)
	router := app.SetupRouter(cfg, db, testutil.NewStorage(t), cache.NoopCompanySettingsCache{})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{Server: server, DB: db, Config: cfg}
}

// Token подписывает токен как внешний сервис аутентификации
func Token(t *testing.T, companyID string, role models.UserRole) string {
	t.Helper()
	token, err := auth.IssueToken(auth.Principal{
		UserID:    uuid.NewString(),
		CompanyID: companyID,
		Role:      role,
	}, []byte(jwtSecret), time.Hour)
	require.NoError(t, err)
	return token
}

// Response - ответ с уже прочитанным телом
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r Response) String() string { return string(r.Body) }

func (r Response) JSON(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), r.String())
}

// ErrorCode - поле error.code стандартного ответа об ошибке
func (r Response) ErrorCode(t *testing.T) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	r.JSON(t, &payload)
	return payload.Error.Code
}

func (ts *TestServer) Do(t *testing.T, method, path, token, contentType string, body io.Reader) Response {
	t.Helper()

	req, err := http.NewRequest(method, ts.Server.URL+path, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return Response{StatusCode: res.StatusCode, Header: res.Header, Body: data}
}

func (ts *TestServer) SendJSON(t *testing.T, method, path, token string, body interface{}) Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	return ts.Do(t, method, path, token, "application/json", reader)
}

// Photo - файл multipart-формы
type Photo struct {
	Name        string
	ContentType string
	Data        []byte
}

// SearchForm - multipart-форма поиска; значения полей могут повторяться
type SearchForm struct {
	Fields [][2]string
	Photos []Photo
}

func (f SearchForm) Encode(t *testing.T) (string, io.Reader) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, kv := range f.Fields {
		require.NoError(t, w.WriteField(kv[0], kv[1]))
	}
	for _, p := range f.Photos {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photos"; filename=%q`, p.Name))
		h.Set("Content-Type", p.ContentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(p.Data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return w.FormDataContentType(), &buf
}

func (ts *TestServer) SendForm(t *testing.T, method, path, token string, form SearchForm) Response {
	t.Helper()
	contentType, body := form.Encode(t)
	return ts.Do(t, method, path, token, contentType, body)
}
