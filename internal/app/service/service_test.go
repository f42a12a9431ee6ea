package service

import (
	"testing"
	"time"

	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/internal/app/repository"
	"github.com/ratethestore/ratethestore-backend/internal/db"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testJWTSecret = "test-jwt-secret"
	testPassword  = "Secret#123"
)

type testEnv struct {
	users     repository.UserRepository
	stores    repository.StoreRepository
	ratings   repository.RatingRepository
	auth      AuthService
	userSvc   UserService
	storeSvc  StoreService
	ratingSvc RatingService
	dashboard DashboardService
	observer  *countingObserver
}

type countingObserver struct {
	outcomes map[string]int
}

func (o *countingObserver) ObserveRatingSubmission(outcome string) {
	o.outcomes[outcome]++
}

func setupServiceTest(t *testing.T) *testEnv {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	env := &testEnv{
		users:    repository.NewUserRepository(testDB),
		stores:   repository.NewStoreRepository(testDB),
		ratings:  repository.NewRatingRepository(testDB),
		observer: &countingObserver{outcomes: map[string]int{}},
	}
	env.auth = NewAuthService(env.users, AuthConfig{
		JWTSecret:        testJWTSecret,
		TokenExpiry:      time.Hour,
		BcryptCost:       bcrypt.MinCost,
		AllowAdminSignup: true,
	})
	env.userSvc = NewUserService(env.users, env.ratings, bcrypt.MinCost)
	env.storeSvc = NewStoreService(env.stores, env.users, env.ratings)
	env.ratingSvc = NewRatingService(env.ratings, env.stores, env.observer)
	env.dashboard = NewDashboardService(env.users, env.stores, env.ratings, env.storeSvc)
	return env
}

func (e *testEnv) signup(t *testing.T, name, email string, role model.UserRole) (*model.User, *Session) {
	t.Helper()
	user, err := e.auth.Signup(UserInput{
		Name:     name,
		Email:    email,
		Password: testPassword,
		Address:  "221B Baker Street, London",
		Role:     string(role),
	})
	require.NoError(t, err)
	return user, NewSession(user)
}

func (e *testEnv) store(t *testing.T, admin *Session, name string, ownerID *uint) *StoreView {
	t.Helper()
	view, err := e.storeSvc.Create(admin, StoreInput{
		Name:    name,
		Email:   "hello@" + name + ".example",
		Address: name + " Road, Springfield",
		OwnerID: ownerID,
	})
	require.NoError(t, err)
	return view
}
