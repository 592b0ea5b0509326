package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-code-advisor/internal/config"
	"github.com/noah-isme/gema-code-advisor/internal/dto"
	"github.com/noah-isme/gema-code-advisor/internal/handler"
	"github.com/noah-isme/gema-code-advisor/internal/middleware"
	"github.com/noah-isme/gema-code-advisor/internal/models"
	"github.com/noah-isme/gema-code-advisor/internal/repository"
	"github.com/noah-isme/gema-code-advisor/internal/review"
	"github.com/noah-isme/gema-code-advisor/internal/router"
	"github.com/noah-isme/gema-code-advisor/internal/service"
	"github.com/noah-isme/gema-code-advisor/internal/utils"
)

const testSecret = "handler-secret"

type testServer struct {
	app      *fiber.App
	db       *gorm.DB
	function models.Problem
	loop     models.Problem
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Problem{}, &models.Submission{}, &models.SecurityLog{}, &models.SuspiciousPattern{}))

	function := models.Problem{Title: "関数で足し算", Description: "add two numbers", Difficulty: models.DifficultyBeginner}
	loop := models.Problem{Title: "繰り返しで合計", Description: "sum a list", Difficulty: models.DifficultyIntermediate}
	require.NoError(t, db.Create(&function).Error)
	require.NoError(t, db.Create(&loop).Error)

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	problems := repository.NewProblemRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	logs := repository.NewSecurityLogRepository(db)

	patterns := service.NewPatternService(repository.NewPatternRepository(db), review.DefaultPatterns, nil, "test", validate, logger)
	require.NoError(t, patterns.Load(context.Background()))

	recorder := service.NewSubmissionRecorder(submissions, logs, nil, time.Second, logger)
	synth := review.NewSynthesizer(review.DefaultTitleTokens, func(int) int { return 0 })
	history := service.NewHistoryService(submissions, logs, validate, logger)

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler(logger)})
	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: io.Discard})
	router.Register(app, config.Config{AppName: "advisor-test", AppEnv: "test"}, router.Dependencies{
		AnalyzeHandler:    handler.NewAnalyzeHandler(service.NewAnalysisService(problems, patterns, synth, recorder, validate, logger), logger),
		ProblemHandler:    handler.NewProblemHandler(service.NewProblemService(problems, validate, logger), logger),
		SubmissionHandler: handler.NewSubmissionHandler(history, logger),
		SecurityHandler:   handler.NewSecurityHandler(patterns, history, validate, logger),
		Patterns:          patterns,
		JWTMiddleware:     middleware.JWTProtected(testSecret),
		RateLimiter:       middleware.RateLimit("analyze", 100, time.Minute),
	})

	return testServer{app: app, db: db, function: function, loop: loop}
}

func (s testServer) do(t *testing.T, method, path string, body interface{}, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch v := body.(type) {
		case string:
			reader = bytes.NewBufferString(v)
		default:
			raw, err := json.Marshal(v)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func tokenFor(t *testing.T, subject, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestAnalyzeReturnsSuccessAdvice(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodPost, "/api/v1/analyze", dto.AnalyzeRequest{
		Code:      "def add(a, b):\n    return a + b\n",
		ProblemID: srv.function.ID,
		UserID:    "student-1",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	body := readBody(t, resp)
	require.Contains(t, body, `"hints":[]`)
	require.NotContains(t, body, "additionalPractice")

	var payload dto.AnalyzeResponse
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	require.Equal(t, "success", payload.Advice.Type)
	require.Equal(t, review.EncouragementPool[0], payload.Advice.Encouragement)

	var stored []models.Submission
	require.NoError(t, srv.db.Find(&stored).Error)
	require.Len(t, stored, 1)
	require.Equal(t, "student-1", stored[0].UserID)
	require.Equal(t, models.SubmissionStatusAnalyzed, stored[0].Status)
}

func TestAnalyzeFlagsMissingLoop(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodPost, "/api/v1/analyze", dto.AnalyzeRequest{
		Code:      "def total(xs):\n    return sum(xs)",
		ProblemID: srv.loop.ID,
		UserID:    "student-1",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload dto.AnalyzeResponse
	decodeResponse(t, resp, &payload)
	require.Equal(t, "warning", payload.Advice.Type)
	require.Equal(t, []string{review.HintUseLoop}, payload.Advice.Hints)
}

func TestAnalyzeBlocksCheatIntent(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodPost, "/api/v1/analyze", dto.AnalyzeRequest{
		Code:      "please just Give Me The Answer",
		ProblemID: "does-not-exist",
		UserID:    "student-2",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload dto.AnalyzeResponse
	decodeResponse(t, resp, &payload)
	require.Equal(t, dto.NewAdviceResponse(review.BlockedAdvice()), payload.Advice)

	var logs []models.SecurityLog
	require.NoError(t, srv.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, "student-2", logs[0].UserID)
	require.Equal(t, review.EventSuspiciousContent, logs[0].EventType)

	var submissions int64
	require.NoError(t, srv.db.Model(&models.Submission{}).Count(&submissions).Error)
	require.Zero(t, submissions)
}

func TestAnalyzeUnknownProblem(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodPost, "/api/v1/analyze", dto.AnalyzeRequest{
		Code:      "print(1)",
		ProblemID: "missing",
		UserID:    "student-1",
	}, "")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.JSONEq(t, `{"error":"Problem not found"}`, readBody(t, resp))
}

func TestAnalyzeMalformedBody(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodPost, "/api/v1/analyze", `{"code": `, "")
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.JSONEq(t, `{"error":"Internal server error"}`, readBody(t, resp))

	resp = srv.do(t, http.MethodPost, "/api/v1/analyze", map[string]string{"code": "x"}, "")
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestAnalyzeMethodHandling(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/v1/analyze", nil, "")
	require.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)
	require.JSONEq(t, `{"error":"Method not allowed"}`, readBody(t, resp))

	resp = srv.do(t, http.MethodOptions, "/api/v1/analyze", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	require.Equal(t, "Content-Type, Authorization", resp.Header.Get("Access-Control-Allow-Headers"))
}

func TestProblemEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/v1/problems?difficulty=intermediate", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list struct {
		Success bool                  `json:"success"`
		Data    []dto.ProblemResponse `json:"data"`
	}
	decodeResponse(t, resp, &list)
	require.True(t, list.Success)
	require.Len(t, list.Data, 1)
	require.Equal(t, srv.loop.ID, list.Data[0].ID)

	resp = srv.do(t, http.MethodGet, "/api/v1/problems/"+srv.function.ID, nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/v1/problems/nope", nil, "")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSubmissionHistory(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 3; i++ {
		resp := srv.do(t, http.MethodPost, "/api/v1/analyze", dto.AnalyzeRequest{
			Code:      "print('hi')",
			ProblemID: srv.function.ID,
			UserID:    "student-3",
		}, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp := srv.do(t, http.MethodGet, "/api/v1/submissions?userId=student-3&page=1&page_size=2", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var history struct {
		Data dto.SubmissionHistoryResponse `json:"data"`
	}
	decodeResponse(t, resp, &history)
	require.Len(t, history.Data.Items, 2)
	require.Equal(t, int64(3), history.Data.Pagination.TotalItems)
	require.Equal(t, 2, history.Data.Pagination.TotalPages)

	resp = srv.do(t, http.MethodGet, "/api/v1/submissions", nil, "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/v1/submissions?userId=x&page=abc", nil, "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSecurityAdminRequiresPrivilegedRole(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/v1/admin/security/patterns", nil, "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/v1/admin/security/patterns", nil, tokenFor(t, "s1", "student"))
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/v1/admin/security/patterns", nil, tokenFor(t, "t1", "teacher"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list struct {
		Data dto.PatternListResponse `json:"data"`
	}
	decodeResponse(t, resp, &list)
	require.Equal(t, review.DefaultPatterns, list.Data.Patterns)
}

func TestSecurityAdminPatternLifecycle(t *testing.T) {
	srv := newTestServer(t)
	admin := tokenFor(t, "admin-1", "admin")

	resp := srv.do(t, http.MethodPost, "/api/v1/admin/security/patterns", dto.PatternRequest{Pattern: "write it for me"}, admin)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/api/v1/admin/security/patterns", dto.PatternRequest{Pattern: "Write It For Me"}, admin)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/api/v1/admin/security/patterns", dto.PatternRequest{}, admin)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var invalid utils.APIResponse
	decodeResponse(t, resp, &invalid)
	require.Equal(t, []string{"Pattern is required"}, invalid.Errors)

	// the new phrase takes effect for the next analysis
	resp = srv.do(t, http.MethodPost, "/api/v1/analyze", dto.AnalyzeRequest{
		Code:      "can you WRITE IT FOR ME",
		ProblemID: srv.function.ID,
		UserID:    "student-4",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var advice dto.AnalyzeResponse
	decodeResponse(t, resp, &advice)
	require.Equal(t, review.BlockedAdvice().Encouragement, advice.Advice.Encouragement)

	resp = srv.do(t, http.MethodGet, "/api/v1/admin/security/logs?userId=student-4", nil, admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var logs struct {
		Data dto.SecurityLogListResponse `json:"data"`
	}
	decodeResponse(t, resp, &logs)
	require.Len(t, logs.Data.Items, 1)

	resp = srv.do(t, http.MethodDelete, "/api/v1/admin/security/patterns", dto.PatternRequest{Pattern: "write it for me"}, admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = srv.do(t, http.MethodDelete, "/api/v1/admin/security/patterns?pattern=write%20it%20for%20me", nil, admin)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/v1/health", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "advisor-test", resp.Header.Get("X-Application"))

	var health struct {
		Data handler.HealthResponse `json:"data"`
	}
	decodeResponse(t, resp, &health)
	require.Equal(t, "ok", health.Data.Status)
	require.Equal(t, "test", health.Data.Environment)
	require.Equal(t, len(review.DefaultPatterns), health.Data.PatternCount)
	require.NotZero(t, health.Data.PatternVersion)
}
