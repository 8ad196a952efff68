package reservation_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubboard/internal/auth"
	"clubboard/internal/user"
)

func buildUserRouter(conn *sqlx.DB) *gin.Engine {
	userRepo := user.NewRepository(conn)
	userService := user.NewService(userRepo, testSecret)
	userHandler := user.NewHandler(userService)

	router := gin.New()

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(testSecret)
	router.GET("/me", authMiddleware, userHandler.GetMe)
	router.PUT("/admin/users/:userID/role", authMiddleware, auth.RequireRole(auth.RoleAdmin), userHandler.SetRole)

	return router
}

func postJSON(router *gin.Engine, t *testing.T, path string, payload map[string]any, token string) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	conn := setupTestDB(t)
	defer conn.Close()
	cleanDatabase(t, conn)

	router := buildUserRouter(conn)

	t.Run("Register, login and fetch profile", func(t *testing.T) {
		cleanDatabase(t, conn)

		w := postJSON(router, t, "/auth/register", map[string]any{
			"name":     "New Member",
			"email":    "member@example.com",
			"password": "password123",
		}, "")

		require.Equal(t, http.StatusCreated, w.Code)

		var registered struct {
			AccessToken string `json:"access_token"`
			User        struct {
				ID   int    `json:"id"`
				Role string `json:"role"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
		assert.NotEmpty(t, registered.AccessToken)
		// New members carry no role until an admin assigns one.
		assert.Equal(t, "", registered.User.Role)

		w = postJSON(router, t, "/auth/login", map[string]any{
			"email":    "member@example.com",
			"password": "password123",
		}, "")

		require.Equal(t, http.StatusOK, w.Code)

		var loggedIn struct {
			AccessToken string `json:"access_token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loggedIn))

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+loggedIn.AccessToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var me struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
		assert.Equal(t, "member@example.com", me.Email)
		assert.Equal(t, "New Member", me.Name)
	})

	t.Run("Duplicate email is rejected", func(t *testing.T) {
		cleanDatabase(t, conn)
		createTestUser(t, conn, "taken@example.com", "First", auth.RoleAthlete)

		w := postJSON(router, t, "/auth/register", map[string]any{
			"name":     "Second",
			"email":    "taken@example.com",
			"password": "password123",
		}, "")

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Wrong password is rejected", func(t *testing.T) {
		cleanDatabase(t, conn)
		createTestUser(t, conn, "member@example.com", "Member", auth.RoleAthlete)

		w := postJSON(router, t, "/auth/login", map[string]any{
			"email":    "member@example.com",
			"password": "wrong-password",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Refresh issues a new access token", func(t *testing.T) {
		cleanDatabase(t, conn)

		w := postJSON(router, t, "/auth/register", map[string]any{
			"name":     "Refresher",
			"email":    "refresh@example.com",
			"password": "password123",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code)

		var registered struct {
			RefreshToken string `json:"refresh_token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

		w = postJSON(router, t, "/auth/refresh", map[string]any{
			"refresh_token": registered.RefreshToken,
		}, "")

		require.Equal(t, http.StatusOK, w.Code)

		var refreshed struct {
			AccessToken string `json:"access_token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
		assert.NotEmpty(t, refreshed.AccessToken)
	})
}

func TestSetRoleIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	conn := setupTestDB(t)
	defer conn.Close()
	cleanDatabase(t, conn)

	router := buildUserRouter(conn)

	setRole := func(targetID int, role, token string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]any{"role": role})
		req := httptest.NewRequest("PUT", "/admin/users/"+strconv.Itoa(targetID)+"/role", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Admin assigns a role", func(t *testing.T) {
		cleanDatabase(t, conn)

		adminID := createTestUser(t, conn, "admin@example.com", "Admin", auth.RoleAdmin)
		memberID := createTestUser(t, conn, "member@example.com", "Member", "")
		token := generateTestToken(adminID, "admin@example.com", "Admin", auth.RoleAdmin)

		w := setRole(memberID, auth.RoleRedacteur, token)

		require.Equal(t, http.StatusOK, w.Code)

		var role string
		require.NoError(t, conn.Get(&role, "SELECT role FROM users WHERE id = $1", memberID))
		assert.Equal(t, auth.RoleRedacteur, role)
	})

	t.Run("Non-admin cannot assign roles", func(t *testing.T) {
		cleanDatabase(t, conn)

		athleteID := createTestUser(t, conn, "athlete@example.com", "Athlete", auth.RoleAthlete)
		memberID := createTestUser(t, conn, "member@example.com", "Member", "")
		token := generateTestToken(athleteID, "athlete@example.com", "Athlete", auth.RoleAthlete)

		w := setRole(memberID, auth.RoleAdmin, token)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Unknown role is rejected", func(t *testing.T) {
		cleanDatabase(t, conn)

		adminID := createTestUser(t, conn, "admin@example.com", "Admin", auth.RoleAdmin)
		memberID := createTestUser(t, conn, "member@example.com", "Member", "")
		token := generateTestToken(adminID, "admin@example.com", "Admin", auth.RoleAdmin)

		w := setRole(memberID, "coach", token)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
