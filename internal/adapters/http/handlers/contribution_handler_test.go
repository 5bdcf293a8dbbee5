package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"nja-ledger/internal/adapters/http/middleware"
	"nja-ledger/internal/adapters/persistence/models"
	"nja-ledger/internal/adapters/persistence/repositories"
	"nja-ledger/internal/config"
	"nja-ledger/internal/core/domain"
	"nja-ledger/internal/core/services"
	"nja-ledger/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "handler-test-secret"

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: testSecret, AccessTokenMins: 15},
	}

	contribRepo := repositories.NewContributionRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	logRepo := repositories.NewTransactionLogRepository(db)
	contributionService := services.NewContributionService(db, contribRepo, memberRepo, logRepo)
	handler := NewContributionHandler(contributionService)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	group := app.Group("/api/v1/contributions", middleware.AuthMiddleware(cfg))
	group.Post("/", handler.Create)
	group.Get("/", handler.List)

	return app, db
}

func seedHandlerMember(t *testing.T, db *gorm.DB, name, email, role string) *models.Member {
	t.Helper()

	member := &models.Member{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(member).Error)
	return member
}

func bearerToken(t *testing.T, member *models.Member) string {
	t.Helper()

	token, err := jwt.GenerateAccessToken(member.ID, member.Name, member.Role, testSecret, 15)
	require.NoError(t, err)
	return "Bearer " + token
}

func postJSON(t *testing.T, app *fiber.App, path, auth string, body interface{}) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestCreateContributionEndpoint(t *testing.T) {
	app, db := newTestApp(t)

	treasurer := seedHandlerMember(t, db, "Treasurer", "t@example.com", string(domain.RoleTreasurer))
	member := seedHandlerMember(t, db, "Member", "m@example.com", string(domain.RoleMember))

	resp := postJSON(t, app, "/api/v1/contributions/", bearerToken(t, treasurer), fiber.Map{
		"member_id": member.ID,
		"amount":    "50.00",
		"date":      "2025-08-01",
		"category":  models.CategorySocial,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Contribution{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCreateContributionForbiddenForMember(t *testing.T) {
	app, db := newTestApp(t)

	member := seedHandlerMember(t, db, "Member", "m@example.com", string(domain.RoleMember))

	resp := postJSON(t, app, "/api/v1/contributions/", bearerToken(t, member), fiber.Map{
		"member_id": member.ID,
		"amount":    "50.00",
		"date":      "2025-08-01",
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCreateContributionUnauthenticated(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/v1/contributions/", "", fiber.Map{
		"member_id": 1,
		"amount":    "50.00",
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateContributionBadDate(t *testing.T) {
	app, db := newTestApp(t)

	treasurer := seedHandlerMember(t, db, "Treasurer", "t@example.com", string(domain.RoleTreasurer))

	resp := postJSON(t, app, "/api/v1/contributions/", bearerToken(t, treasurer), fiber.Map{
		"member_id": 1,
		"amount":    "50.00",
		"date":      "01/08/2025",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
