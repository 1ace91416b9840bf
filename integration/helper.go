package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-dashboard/internal/auth"
	"github.com/iyhunko/inventory-dashboard/internal/cache"
	httpAPI "github.com/iyhunko/inventory-dashboard/internal/http"
	"github.com/iyhunko/inventory-dashboard/internal/http/controller"
	"github.com/iyhunko/inventory-dashboard/internal/http/middleware"
	"github.com/iyhunko/inventory-dashboard/internal/live"
	reposql "github.com/iyhunko/inventory-dashboard/internal/repository/sql"
	"github.com/iyhunko/inventory-dashboard/internal/service"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
)

// TestDB holds the test database connection and cleanup function
type TestDB struct {
	DB       *sql.DB
	Pool     *dockertest.Pool
	Resource *dockertest.Resource
}

// SetupTestDB sets up a PostgreSQL container using dockertest and runs migrations.
// The test is skipped when no Docker daemon is reachable.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	// Create dockertest pool
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Could not connect to docker: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("Docker is not available: %s", err)
	}

	// Set max wait time for Docker operations
	pool.MaxWait = 120 * time.Second

	// Pull and run PostgreSQL container
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=testdb",
			"listen_addresses='*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	// Set container to expire after 2 minutes to avoid orphaned containers
	if err := resource.Expire(120); err != nil {
		t.Fatalf("Could not set expiration: %s", err)
	}

	hostAndPort := resource.GetHostPort("5432/tcp")
	databaseURL := fmt.Sprintf("postgres://testuser:secret@%s/testdb?sslmode=disable", hostAndPort)

	log.Println("Connecting to database on url: ", databaseURL)

	// Wait for database to be ready
	var db *sql.DB
	if err = pool.Retry(func() error {
		var err error
		db, err = sql.Open("postgres", databaseURL)
		if err != nil {
			return err
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}

	// Get the migrations path - go up from integration folder to root
	migrationsPath := "../migrations"
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		t.Fatalf("Migrations directory not found: %s", migrationsPath)
	}

	if err := reposql.RunMigrations(db, "file://"+migrationsPath); err != nil {
		t.Fatalf("Could not run migrations: %s", err)
	}

	return &TestDB{
		DB:       db,
		Pool:     pool,
		Resource: resource,
	}
}

// Cleanup closes the database connection and purges the Docker container
func (tdb *TestDB) Cleanup(t *testing.T) {
	t.Helper()

	if tdb.DB != nil {
		if err := tdb.DB.Close(); err != nil {
			t.Errorf("Could not close database: %s", err)
		}
	}

	if tdb.Pool != nil && tdb.Resource != nil {
		if err := tdb.Pool.Purge(tdb.Resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	}
}

// TruncateTables truncates all tables in the test database
func (tdb *TestDB) TruncateTables(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	tables := []string{"events", "products_history", "sales", "dashboard_products", "products", "users"}

	for _, table := range tables {
		_, err := tdb.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			t.Fatalf("Could not truncate table %s: %s", table, err)
		}
	}
}

type fixedRate float64

func (r fixedRate) Rate(context.Context) float64 { return float64(r) }

// App is the HTTP API wired against the test database the same way the service binary wires it.
type App struct {
	Router   *gin.Engine
	Registry *live.Registry
	Auth     *service.AuthService
	Products *service.ProductService
	Purchase *service.PurchaseService
}

// NewApp builds the full router over db with a fixed exchange rate and no cache.
func NewApp(db *sql.DB, rate float64) *App {
	userRepo := reposql.NewUserRepository(db)
	productRepo := reposql.NewProductRepository(db)
	historyRepo := reposql.NewHistoryRepository(db)
	tx := reposql.NewTransactionalRepository(db)
	registry := live.NewRegistry()
	noCache := cache.Noop{}

	authService := service.NewAuthService(userRepo, auth.NewTokens("integration-secret", time.Hour))
	productService := service.NewProductService(tx, productRepo, historyRepo, fixedRate(rate), noCache)
	purchaseService := service.NewPurchaseService(tx, historyRepo, registry, noCache)
	rateService := service.NewRateService(tx, staticRateProvider{rate: rate}, registry, noCache)

	gin.SetMode(gin.TestMode)
	router := httpAPI.InitRouter(gin.New(), middleware.New(authService), httpAPI.Controllers{
		Base:      controller.New(),
		Auth:      controller.NewAuthController(authService),
		Product:   controller.NewProductController(productService),
		Purchase:  controller.NewPurchaseController(purchaseService),
		Sales:     controller.NewSalesController(service.NewSalesService(reposql.NewSaleRepository(db), reposql.NewReportRepository(db, "postgres"), noCache)),
		Dashboard: controller.NewDashboardController(service.NewDashboardService(reposql.NewDashboardRepository(db), noCache)),
		History:   controller.NewHistoryController(service.NewHistoryService(historyRepo)),
		Rate:      controller.NewRateController(rateService),
		Live:      controller.NewLiveController(registry, authService),
	})

	return &App{
		Router:   router,
		Registry: registry,
		Auth:     authService,
		Products: productService,
		Purchase: purchaseService,
	}
}

type staticRateProvider struct {
	rate float64
}

func (p staticRateProvider) Current(context.Context) (float64, string) { return p.rate, "manual" }

func (p staticRateProvider) SetRate(float64) error { return nil }

// Login registers username and returns a bearer token for it.
func (a *App) Login(t *testing.T, username string) string {
	t.Helper()
	ctx := context.Background()
	_, err := a.Auth.Register(ctx, username, "password123")
	require.NoError(t, err)
	token, _, err := a.Auth.Login(ctx, username, "password123")
	require.NoError(t, err)
	return token
}

// Do sends a JSON request with the given bearer token.
func (a *App) Do(t *testing.T, token, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
