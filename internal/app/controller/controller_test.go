package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/internal/app/repository"
	"github.com/ratethestore/ratethestore-backend/internal/app/service"
	"github.com/ratethestore/ratethestore-backend/internal/db"
	"github.com/ratethestore/ratethestore-backend/internal/middleware"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Secret#123"

type controllerEnv struct {
	router      *gin.Engine
	authService service.AuthService
	storeRepo   repository.StoreRepository
}

func setupControllerTest(t *testing.T) *controllerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	ratingRepo := repository.NewRatingRepository(testDB)

	authService := service.NewAuthService(userRepo, service.AuthConfig{
		JWTSecret:        "test-secret",
		TokenExpiry:      time.Hour,
		BcryptCost:       bcrypt.MinCost,
		AllowAdminSignup: true,
	})
	userService := service.NewUserService(userRepo, ratingRepo, bcrypt.MinCost)
	storeService := service.NewStoreService(storeRepo, userRepo, ratingRepo)
	ratingService := service.NewRatingService(ratingRepo, storeRepo, nil)
	dashboardService := service.NewDashboardService(userRepo, storeRepo, ratingRepo, storeService)

	authCtrl := NewAuthController(authService)
	userCtrl := NewUserController(userService)
	storeCtrl := NewStoreController(storeService, ratingService)
	ratingCtrl := NewRatingController(ratingService)
	dashboardCtrl := NewDashboardController(dashboardService)
	auth := middleware.NewAuthMiddleware(authService)

	router := gin.New()
	router.POST("/auth/signup", authCtrl.Signup)
	router.POST("/auth/login", authCtrl.Login)
	router.GET("/auth/me", auth.Authenticate(), authCtrl.Me)

	admin := router.Group("/users", auth.Authenticate())
	admin.PATCH("/:id/password", userCtrl.UpdatePassword)
	admin.Use(auth.RequireCapability(service.CapAdmin))
	admin.GET("", userCtrl.ListUsers)
	admin.POST("", userCtrl.CreateUser)
	admin.GET("/:id", userCtrl.GetUser)
	admin.DELETE("/:id", userCtrl.DeleteUser)

	stores := router.Group("/stores", auth.Authenticate())
	stores.GET("", storeCtrl.ListStores)
	stores.GET("/:id", storeCtrl.GetStore)
	stores.POST("", auth.RequireCapability(service.CapManageStores), storeCtrl.CreateStore)
	stores.PATCH("/:id", auth.RequireCapability(service.CapManageStores), storeCtrl.UpdateStore)
	stores.PATCH("/:id/ratings", storeCtrl.RateStore)
	stores.DELETE("/:id", auth.RequireCapability(service.CapAdmin), storeCtrl.DeleteStore)

	ratings := router.Group("/ratings", auth.Authenticate())
	ratings.POST("", ratingCtrl.SubmitRating)
	ratings.GET("/:store_id", ratingCtrl.ListRatings)
	ratings.GET("/:store_id/average", ratingCtrl.GetAverage)

	router.GET("/dashboard", auth.Authenticate(), dashboardCtrl.GetDashboard)

	return &controllerEnv{
		router:      router,
		authService: authService,
		storeRepo:   storeRepo,
	}
}

// account signs up a user directly through the service and returns a token.
func (e *controllerEnv) account(t *testing.T, name, email string, role model.UserRole) (*model.User, string) {
	t.Helper()
	user, err := e.authService.Signup(service.UserInput{
		Name:     name,
		Email:    email,
		Password: testPassword,
		Address:  "12 Market Street",
		Role:     string(role),
	})
	require.NoError(t, err)

	_, token, err := e.authService.Login(email, testPassword)
	require.NoError(t, err)
	return user, token.AccessToken
}

func (e *controllerEnv) store(t *testing.T, name string, ownerID *uint) *model.Store {
	t.Helper()
	store := &model.Store{
		Name:    name,
		Email:   "contact@" + name + ".example",
		Address: name + " Avenue, Springfield",
		OwnerID: ownerID,
	}
	require.NoError(t, e.storeRepo.Create(store))
	return store
}

func (e *controllerEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	decode(t, w, &body)
	code, _ := body["error"].(string)
	return code
}

