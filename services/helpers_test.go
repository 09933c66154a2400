package services

import (
	"context"
	"io"
	"sync"
	"testing"

	"nika.id/internal/testutil"
	"nika.id/pkg/cache"
	"nika.id/pkg/payment"
	"nika.id/pkg/plans"
	"nika.id/pkg/storage"
	"nika.id/pkg/themes"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const testServerKey = "SB-Mid-server-test"

type mockGateway struct {
	CreateSnapFunc func(ctx context.Context, req payment.SnapRequest) (payment.SnapResult, error)
	calls          int
}

func (m *mockGateway) CreateSnap(ctx context.Context, req payment.SnapRequest) (payment.SnapResult, error) {
	m.calls++
	if m.CreateSnapFunc != nil {
		return m.CreateSnapFunc(ctx, req)
	}
	return payment.SnapResult{Token: "snap-" + req.OrderID, RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/" + req.OrderID}, nil
}
func (m *mockGateway) ServerKey() string  { return testServerKey }
func (m *mockGateway) ClientKey() string  { return "SB-Mid-client-test" }
func (m *mockGateway) IsProduction() bool { return false }

type memoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryUploader) Upload(_ context.Context, obj storage.Object) (string, error) {
	b, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	key := obj.Folder + "/" + obj.Name
	m.objects[key] = b
	return "/uploads/" + key, nil
}

type testEnv struct {
	db       *gorm.DB
	svc      *Services
	gateway  *mockGateway
	uploader *memoryUploader
}

func newTestEnv(t *testing.T, mutate ...func(*Options)) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	renderer, err := themes.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	env := &testEnv{db: db, gateway: &mockGateway{}, uploader: &memoryUploader{}}
	opts := Options{
		DB:        db,
		Plans:     plans.NewStaticRegistry(),
		Themes:    themes.DefaultRegistry(),
		Renderer:  renderer,
		Storage:   env.uploader,
		Gateway:   env.gateway,
		JWTSecret: []byte("test-secret"),
		BaseURL:   "https://nika.id",
	}
	for _, m := range mutate {
		m(&opts)
	}
	env.svc = New(opts)
	return env
}

// withPageCache backs the page cache with an in-process redis.
func withPageCache(t *testing.T) func(*Options) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return func(o *Options) { o.PageCache = cache.NewPageCache(rdb, 0) }
}
