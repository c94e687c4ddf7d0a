package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avdonin/foodreel/internal/hash"
	"github.com/avdonin/foodreel/internal/models"
	"github.com/avdonin/foodreel/internal/mykafka"
	"github.com/avdonin/foodreel/internal/service"
	"github.com/avdonin/foodreel/internal/storage"
)

type testEnv struct {
	T       *testing.T
	E       *echo.Echo
	DB      *gorm.DB
	A       *AuthHandler
	C       *CartHandler
	P       *ProductHandler
	V       *VideoHandler
	L       *LikeHandler
	Tokens  *service.TokenService
	Uploads *storage.FileStore
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.Account{}, &models.Product{}, &models.CartItem{}, &models.Video{}, &models.Like{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	uploads, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	tokenService := &service.TokenService{
		DB:            db,
		JWTSecret:     []byte("test_jwt_secret"),
		RefreshSecret: []byte("test_refresh_secret"),
	}
	cartService := &service.CartService{DB: db}
	producer := &mykafka.Producer{}

	return &testEnv{
		T:       t,
		E:       echo.New(),
		DB:      db,
		A:       &AuthHandler{DB: db, Tokens: tokenService, Producer: producer, Uploads: uploads},
		C:       &CartHandler{Cart: cartService, Producer: producer},
		P:       &ProductHandler{DB: db, Cart: cartService, Producer: producer, Uploads: uploads},
		V:       &VideoHandler{DB: db, Uploads: uploads},
		L:       &LikeHandler{DB: db},
		Tokens:  tokenService,
		Uploads: uploads,
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) doMultipartRequest(method, path string, fields map[string]string, fileField, fileName string) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(env.T, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(env.T, err)
		_, err = io.WriteString(fw, "test file content")
		require.NoError(env.T, err)
	}
	require.NoError(env.T, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) createAccount(email, role string) *models.Account {
	pwHash, err := hash.HashPassword("secret")
	require.NoError(env.T, err)

	account := models.Account{
		Name:         "test_user",
		Email:        email,
		Role:         role,
		PasswordHash: pwHash,
	}
	require.NoError(env.T, env.DB.Create(&account).Error)
	return &account
}

func (env *testEnv) createProduct(ownerID uint) *models.Product {
	product := models.Product{
		Name:     "margherita",
		Price:    9.5,
		Quantity: 10,
		Type:     "veg",
		Category: "Pizza",
		ImageURL: "/uploads/test.png",
		OwnerID:  ownerID,
	}
	require.NoError(env.T, env.DB.Create(&product).Error)
	return &product
}

// asAccount mimics the auth middleware attaching the account to the context.
func asAccount(c echo.Context, account *models.Account) {
	c.Set("account", account)
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	return he.Code
}
