package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"metaconvert/internal/database"
	"metaconvert/internal/domain"
	"metaconvert/internal/domain/conversion"
	"metaconvert/internal/domain/notification"
	"metaconvert/internal/domain/reaper"
	"metaconvert/internal/domain/share"
	"metaconvert/internal/domain/storage"
	"metaconvert/internal/middleware"
	jwtsvc "metaconvert/internal/pkg/jwt"
)

const workerToken = "e2e-worker-token"

type E2ETestSuite struct {
	router     *gin.Engine
	db         *gorm.DB
	jwtService *jwtsvc.Service
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	t.Setenv("WORKER_INTERNAL_TOKEN", workerToken)

	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")

	// One connection, so every query sees the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&storage.Blob{},
		&conversion.Conversion{},
		&conversion.Upscale{},
		&share.SharedLink{},
		&share.DropLink{},
		&notification.Notification{},
	))

	store := storage.NewStore(db, nil)
	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)

	conversionHandler := conversion.NewHandler(conversion.NewService(conversion.NewRepository(db), store))

	reaperService := reaper.NewService(reaper.NewRepository(db), store)
	reaperHandler := reaper.NewHandler(reaperService)

	shareHandler := share.NewHandler(share.NewService(share.NewRepository(db)), reaperService)

	hub := notification.NewHub()
	notificationHandler := notification.NewHandler(notification.NewService(notification.NewRepository(db), hub), hub)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")

	public := v1.Group("/")
	public.Use(middleware.OptionalAuth(jwtService))

	protected := v1.Group("/")
	protected.Use(middleware.Auth(jwtService))

	conversion.RegisterRoutes(public, protected, conversionHandler)
	share.RegisterRoutes(public, protected, shareHandler)
	reaper.RegisterRoutes(protected, reaperHandler)
	notification.RegisterRoutes(protected, notificationHandler)

	internal := v1.Group("/internal")
	internal.Use(middleware.InternalTokenAuth())
	conversion.RegisterWorkerRoutes(internal, conversionHandler)

	admin := v1.Group("/admin")
	admin.Use(middleware.Auth(jwtService), middleware.AdminOnly())
	reaper.RegisterAdminRoutes(admin, reaperHandler)
	notification.RegisterAdminRoutes(admin, notificationHandler)

	return &E2ETestSuite{router: r, db: db, jwtService: jwtService}
}

// tokenFor creates the user row and mints a session token for it.
func (s *E2ETestSuite) tokenFor(t *testing.T, id int64, role domain.UserRole) string {
	t.Helper()

	user := domain.User{
		ID:    id,
		Email: fmt.Sprintf("user%d@test.com", id),
		Name:  fmt.Sprintf("User %d", id),
		Role:  role,
	}
	require.NoError(t, s.db.Create(&user).Error)

	token, err := s.jwtService.GenerateToken(id, string(role))
	require.NoError(t, err)
	return token
}

func (s *E2ETestSuite) makeRequest(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// makeUploadRequest posts a multipart body the way a worker callback does.
func (s *E2ETestSuite) makeUploadRequest(t *testing.T, path string, content []byte, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "output.bin")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *TestResponse {
	t.Helper()

	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp),
		"Failed to parse response. Status: %d, Body: %s", w.Code, w.Body.String())
	return &resp
}

func TestConversionLifecycle(t *testing.T) {
	suite := setupTestSuite(t)
	userToken := suite.tokenFor(t, 1, domain.RoleUser)

	var conversionID string

	t.Run("POST /conversions", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/conversions", map[string]interface{}{
			"source_name": "report.docx",
			"source_type": "docx",
			"target_type": "pdf",
			"source_size": 2048,
		}, userToken)

		assert.Equal(t, http.StatusCreated, w.Code)

		resp := parseResponse(t, w)
		assert.True(t, resp.Success)
		conversionID = resp.Data["id"].(string)
		assert.Equal(t, "pending", resp.Data["status"])
	})

	t.Run("worker callback rejects a bad token", func(t *testing.T) {
		w := suite.makeUploadRequest(t,
			"/api/v1/internal/conversions/"+conversionID+"/complete",
			[]byte("output"), "wrong-token")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("POST /internal/conversions/:id/complete", func(t *testing.T) {
		w := suite.makeUploadRequest(t,
			"/api/v1/internal/conversions/"+conversionID+"/complete",
			[]byte("%PDF-1.7 converted"), workerToken)

		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, "completed", resp.Data["status"])
		assert.Equal(t, float64(len("%PDF-1.7 converted")), resp.Data["result_size"])
		// The locator never leaks through the API.
		assert.NotContains(t, w.Body.String(), "inline:")
	})

	t.Run("second complete is a conflict", func(t *testing.T) {
		w := suite.makeUploadRequest(t,
			"/api/v1/internal/conversions/"+conversionID+"/complete",
			[]byte("other bytes"), workerToken)

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := parseResponse(t, w)
		assert.Equal(t, "ALREADY_TERMINAL", resp.Error.Code)
	})

	t.Run("GET /conversions/:id/download", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/conversions/"+conversionID+"/download", nil, userToken)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "%PDF-1.7 converted", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), "report.docx")
	})

	t.Run("PATCH /conversions/:id", func(t *testing.T) {
		w := suite.makeRequest("PATCH", "/api/v1/conversions/"+conversionID,
			map[string]interface{}{"source_name": "renamed.docx"}, userToken)
		assert.Equal(t, http.StatusOK, w.Code)

		w = suite.makeRequest("GET", "/api/v1/conversions", nil, userToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("download requires a session", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/conversions/"+conversionID+"/download", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("another user gets 404", func(t *testing.T) {
		otherToken := suite.tokenFor(t, 2, domain.RoleUser)

		w := suite.makeRequest("GET", "/api/v1/conversions/"+conversionID+"/download", nil, otherToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestShareLinkFlow(t *testing.T) {
	suite := setupTestSuite(t)
	userToken := suite.tokenFor(t, 1, domain.RoleUser)

	// Store an artifact to share: create + complete a conversion.
	w := suite.makeRequest("POST", "/api/v1/conversions", map[string]interface{}{
		"source_name": "deck.pptx",
		"target_type": "pdf",
	}, userToken)
	require.Equal(t, http.StatusCreated, w.Code)
	conversionID := parseResponse(t, w).Data["id"].(string)

	w = suite.makeUploadRequest(t,
		"/api/v1/internal/conversions/"+conversionID+"/complete",
		[]byte("slides"), workerToken)
	require.Equal(t, http.StatusOK, w.Code)

	// The locator is never exposed over the API; the app server reads it from
	// the record when building a share.
	var rec conversion.Conversion
	require.NoError(t, suite.db.First(&rec, "id = ?", conversionID).Error)
	require.NotNil(t, rec.Locator)
	locator := *rec.Locator

	var linkID string

	t.Run("POST /share", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/share", map[string]interface{}{
			"locator":   locator,
			"file_name": "deck.pdf",
			"ttl_hours": 48,
			"password":  "hunter2",
		}, userToken)

		assert.Equal(t, http.StatusCreated, w.Code)

		resp := parseResponse(t, w)
		assert.True(t, resp.Success)
		linkID = resp.Data["link_id"].(string)
	})

	t.Run("issuing requires a session", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/share", map[string]interface{}{
			"locator":   locator,
			"file_name": "deck.pdf",
			"ttl_hours": 1,
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GET /share/:id is public and hides the locator", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/share/"+linkID, nil, "")

		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		assert.Equal(t, "deck.pdf", resp.Data["file_name"])
		assert.Equal(t, true, resp.Data["has_password"])
		assert.NotContains(t, w.Body.String(), locator)
	})

	t.Run("POST /share/:id/unlock wrong password", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/share/"+linkID+"/unlock",
			map[string]interface{}{"password": "wrong"}, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := parseResponse(t, w)
		assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
	})

	t.Run("POST /share/:id/unlock", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/share/"+linkID+"/unlock",
			map[string]interface{}{"password": "hunter2"}, "")

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		assert.Equal(t, locator, resp.Data["locator"])
	})

	t.Run("DELETE /share/:id", func(t *testing.T) {
		w := suite.makeRequest("DELETE", "/api/v1/share/"+linkID, nil, userToken)
		assert.Equal(t, http.StatusOK, w.Code)

		// The revoked link is gone for everyone.
		w = suite.makeRequest("GET", "/api/v1/share/"+linkID, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = suite.makeRequest("POST", "/api/v1/share/"+linkID+"/unlock",
			map[string]interface{}{"password": "hunter2"}, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDropLinkFlow(t *testing.T) {
	suite := setupTestSuite(t)
	userToken := suite.tokenFor(t, 1, domain.RoleUser)

	t.Run("anonymous callers cannot create drops", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/drops", map[string]interface{}{
			"title":    "client uploads",
			"ttl_days": 7,
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	var dropID string

	t.Run("POST /drops", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/drops", map[string]interface{}{
			"title":       "client uploads",
			"description": "drop your raw files here",
			"ttl_days":    7,
		}, userToken)

		assert.Equal(t, http.StatusCreated, w.Code)
		dropID = parseResponse(t, w).Data["link_id"].(string)
	})

	t.Run("GET /drops/:id", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/drops/"+dropID, nil, "")

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		assert.Equal(t, "client uploads", resp.Data["title"])
		assert.Equal(t, false, resp.Data["has_password"])
	})

	t.Run("POST /drops/:id/unlock without a password gate", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/drops/"+dropID+"/unlock", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("DELETE /drops/:id", func(t *testing.T) {
		w := suite.makeRequest("DELETE", "/api/v1/drops/"+dropID, nil, userToken)
		assert.Equal(t, http.StatusOK, w.Code)

		w = suite.makeRequest("GET", "/api/v1/drops/"+dropID, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCloudDeleteAndAdmin(t *testing.T) {
	suite := setupTestSuite(t)
	userToken := suite.tokenFor(t, 1, domain.RoleUser)
	adminToken := suite.tokenFor(t, 9, domain.RoleAdmin)

	newCompleted := func(t *testing.T, name string) string {
		w := suite.makeRequest("POST", "/api/v1/conversions", map[string]interface{}{
			"source_name": name,
			"target_type": "pdf",
		}, userToken)
		require.Equal(t, http.StatusCreated, w.Code)
		id := parseResponse(t, w).Data["id"].(string)

		w = suite.makeUploadRequest(t,
			"/api/v1/internal/conversions/"+id+"/complete",
			[]byte("bytes of "+name), workerToken)
		require.Equal(t, http.StatusOK, w.Code)
		return id
	}

	t.Run("DELETE /cloud/:kind/:id", func(t *testing.T) {
		id := newCompleted(t, "a.docx")

		w := suite.makeRequest("DELETE", "/api/v1/cloud/conversion/"+id, nil, userToken)
		assert.Equal(t, http.StatusOK, w.Code)

		// Record and bytes are both gone; a repeat delete is a 404.
		w = suite.makeRequest("GET", "/api/v1/conversions/"+id+"/download", nil, userToken)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = suite.makeRequest("DELETE", "/api/v1/cloud/conversion/"+id, nil, userToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DELETE /cloud with an unknown kind", func(t *testing.T) {
		w := suite.makeRequest("DELETE", "/api/v1/cloud/bogus/some-id", nil, userToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("POST /admin/artifacts/bulk-delete", func(t *testing.T) {
		id1 := newCompleted(t, "b.docx")
		id2 := newCompleted(t, "c.docx")

		// Plain users never reach the admin console.
		w := suite.makeRequest("POST", "/api/v1/admin/artifacts/bulk-delete", map[string]interface{}{
			"targets": []map[string]string{{"kind": "conversion", "id": id1}},
		}, userToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = suite.makeRequest("POST", "/api/v1/admin/artifacts/bulk-delete", map[string]interface{}{
			"targets": []map[string]string{
				{"kind": "conversion", "id": id1},
				{"kind": "conversion", "id": id2},
				{"kind": "conversion", "id": "no-such"},
			},
		}, adminToken)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		assert.Equal(t, float64(3), resp.Data["requested"])
		assert.Equal(t, float64(2), resp.Data["deleted"])
	})
}

func TestNotificationFlow(t *testing.T) {
	suite := setupTestSuite(t)
	userToken := suite.tokenFor(t, 1, domain.RoleUser)
	suite.tokenFor(t, 2, domain.RoleUser)
	adminToken := suite.tokenFor(t, 9, domain.RoleAdmin)

	t.Run("broadcast is admin only", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/admin/broadcast", map[string]interface{}{
			"all":     true,
			"title":   "t",
			"message": "m",
		}, userToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("POST /admin/broadcast to all users", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/admin/broadcast", map[string]interface{}{
			"all":     true,
			"title":   "Scheduled maintenance",
			"message": "Converters pause at 02:00 UTC.",
			"kind":    "maintenance",
		}, adminToken)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		assert.Equal(t, float64(3), resp.Data["count"])
		assert.NotEmpty(t, resp.Data["campaign_id"])
	})

	t.Run("GET /notifications and mark read", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/notifications", nil, userToken)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		assert.Equal(t, float64(1), resp.Data["unread_count"])

		list := resp.Data["notifications"].([]interface{})
		require.Len(t, list, 1)
		id := list[0].(map[string]interface{})["id"].(float64)

		w = suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/notifications/%d/read", int64(id)), nil, userToken)
		assert.Equal(t, http.StatusOK, w.Code)

		w = suite.makeRequest("GET", "/api/v1/notifications", nil, userToken)
		resp = parseResponse(t, w)
		assert.Equal(t, float64(0), resp.Data["unread_count"])
	})

	t.Run("broadcast with no audience is rejected", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/admin/broadcast", map[string]interface{}{
			"title":   "t",
			"message": "m",
		}, adminToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}
