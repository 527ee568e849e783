package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	adaptershttp "github.com/splitledger/splitledger/internal/adapter/http"
	"github.com/splitledger/splitledger/internal/adapter/http/handler"
	"github.com/splitledger/splitledger/internal/adapter/repository/postgres"
	redisrepo "github.com/splitledger/splitledger/internal/adapter/repository/redis"
	"github.com/splitledger/splitledger/internal/domain"
	"github.com/splitledger/splitledger/internal/infrastructure/auth"
	"github.com/splitledger/splitledger/internal/infrastructure/events"
	"github.com/splitledger/splitledger/internal/infrastructure/metrics"
	infraredis "github.com/splitledger/splitledger/internal/infrastructure/redis"
	"github.com/splitledger/splitledger/internal/usecase"
	"github.com/splitledger/splitledger/tests/testutil"
)

// testEnv wires the full stack against real Postgres and Redis the way
// the server binary does.
type testEnv struct {
	DB         *testutil.TestDB
	Router     http.Handler
	JWTManager *auth.JWTManager
	Hub        *events.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	userRepo := postgres.NewUserRepository(pool)
	groupRepo := postgres.NewGroupRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	inviteRepo := postgres.NewInviteRepository(pool)
	retrier := postgres.NewRetrier()
	idGen := postgres.NewULIDGenerator()
	cache := redisrepo.NewCache(redisClient)
	idempotencyStore := redisrepo.NewIdempotencyStore(redisClient)

	hub := events.NewHub(zerolog.Nop())
	t.Cleanup(hub.Close)

	m := metrics.NewWith(prometheus.NewRegistry())
	jwtManager := auth.NewJWTManager("integration-test-secret", time.Hour)

	userUC := usecase.NewUserUseCase(userRepo, idGen)
	groupUC := usecase.NewGroupUseCase(txManager, groupRepo, userRepo, expenseRepo, paymentRepo, idGen, hub)
	expenseUC := usecase.NewExpenseUseCase(txManager, groupRepo, expenseRepo, idGen, cache, hub)
	paymentUC := usecase.NewPaymentUseCase(txManager, groupRepo, expenseRepo, paymentRepo, idGen, retrier, cache, hub)
	balanceUC := usecase.NewBalanceUseCase(groupRepo, expenseRepo, paymentRepo, cache)
	inviteUC := usecase.NewInviteUseCase(txManager, groupRepo, inviteRepo, idGen, hub)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AuthHandler:      handler.NewAuthHandler(userUC, jwtManager, m),
		GroupHandler:     handler.NewGroupHandler(groupUC, m),
		ExpenseHandler:   handler.NewExpenseHandler(expenseUC, m),
		PaymentHandler:   handler.NewPaymentHandler(paymentUC, m),
		BalanceHandler:   handler.NewBalanceHandler(balanceUC, m),
		InviteHandler:    handler.NewInviteHandler(inviteUC, "http://localhost:8080/invites", m),
		EventsHandler:    handler.NewEventsHandler(groupUC, hub, time.Minute, m),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		JWTManager:       jwtManager,
		IdempotencyStore: idempotencyStore,
	})

	return &testEnv{
		DB:         testDB,
		Router:     router,
		JWTManager: jwtManager,
		Hub:        hub,
	}
}

// token issues a bearer token for a fixture user.
func (env *testEnv) token(t *testing.T, user *domain.User) string {
	t.Helper()

	token, err := env.JWTManager.Generate(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

// do runs a request through the router. body is JSON-encoded when not
// nil; token may be empty for public endpoints.
func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
}
