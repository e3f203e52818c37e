package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-crypto-backend/internal/domain"
	"github.com/tbourn/go-crypto-backend/internal/http/middleware"
	"github.com/tbourn/go-crypto-backend/internal/quote"
	"github.com/tbourn/go-crypto-backend/internal/services"
)

// ---------- service stubs ----------

type stubConv struct {
	listAssets func(context.Context) ([]quote.Asset, error)
	convert    func(context.Context, string, string, decimal.Decimal) (*domain.Conversion, error)
	history    func(context.Context, string) ([]domain.Conversion, error)
	stats      func(context.Context, string) (int64, *time.Time, error)
	replay     func(context.Context, string, string, string, decimal.Decimal) (*domain.Conversion, bool, error)
	remembered []string
}

func (s *stubConv) ListAssets(ctx context.Context) ([]quote.Asset, error) {
	if s.listAssets != nil {
		return s.listAssets(ctx)
	}
	return []quote.Asset{}, nil
}

func (s *stubConv) Convert(ctx context.Context, uid, asset string, amount decimal.Decimal) (*domain.Conversion, error) {
	if s.convert != nil {
		return s.convert(ctx, uid, asset, amount)
	}
	return nil, nil
}

func (s *stubConv) History(ctx context.Context, uid string) ([]domain.Conversion, error) {
	if s.history != nil {
		return s.history(ctx, uid)
	}
	return []domain.Conversion{}, nil
}

func (s *stubConv) HistoryStats(ctx context.Context, uid string) (int64, *time.Time, error) {
	if s.stats != nil {
		return s.stats(ctx, uid)
	}
	return 0, nil, nil
}

func (s *stubConv) Replay(ctx context.Context, uid, key, asset string, amount decimal.Decimal) (*domain.Conversion, bool, error) {
	if s.replay != nil {
		return s.replay(ctx, uid, key, asset, amount)
	}
	return nil, false, nil
}

func (s *stubConv) Remember(_ context.Context, uid, key string, conv *domain.Conversion) error {
	s.remembered = append(s.remembered, uid+"|"+key+"|"+conv.ID)
	return nil
}

type stubFav struct {
	add    func(context.Context, string, string) (*domain.Favorite, error)
	remove func(context.Context, string, string) (int64, error)
	list   func(context.Context, string) ([]domain.Favorite, error)
}

func (s stubFav) Add(ctx context.Context, uid, asset string) (*domain.Favorite, error) {
	return s.add(ctx, uid, asset)
}

func (s stubFav) Remove(ctx context.Context, uid, asset string) (int64, error) {
	return s.remove(ctx, uid, asset)
}

func (s stubFav) List(ctx context.Context, uid string) ([]domain.Favorite, error) {
	return s.list(ctx, uid)
}

type stubAuth struct {
	signup func(context.Context, string, string, string) (*services.AuthResult, error)
	login  func(context.Context, string, string) (*services.AuthResult, error)
}

func (s stubAuth) Signup(ctx context.Context, name, email, pw string) (*services.AuthResult, error) {
	return s.signup(ctx, name, email, pw)
}

func (s stubAuth) Login(ctx context.Context, email, pw string) (*services.AuthResult, error) {
	return s.login(ctx, email, pw)
}

type stubUsers struct {
	profile func(context.Context, string) (*domain.User, error)
	get     func(context.Context, string, string) (*domain.User, error)
	update  func(context.Context, string, string, *string) (*domain.User, error)
	del     func(context.Context, string, string) error
}

func (s stubUsers) Profile(ctx context.Context, sub string) (*domain.User, error) {
	return s.profile(ctx, sub)
}

func (s stubUsers) Get(ctx context.Context, sub, id string) (*domain.User, error) {
	return s.get(ctx, sub, id)
}

func (s stubUsers) Update(ctx context.Context, sub, id string, name *string) (*domain.User, error) {
	return s.update(ctx, sub, id, name)
}

func (s stubUsers) Delete(ctx context.Context, sub, id string) error { return s.del(ctx, sub, id) }

// ---------- router + request helpers ----------

// testRouter mounts h behind RequestID and a fake authenticator that trusts
// the X-Test-User header.
func testRouter(h *Handlers, lookup middleware.IdempotencyLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/login", h.Login)

	p := r.Group("/")
	p.Use(func(c *gin.Context) {
		if u := c.GetHeader("X-Test-User"); u != "" {
			c.Set("userID", u)
		}
		c.Next()
	})
	p.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, lookup))
	p.GET("/crypto/list", h.ListCryptos)
	p.POST("/crypto/convert", h.Convert)
	p.GET("/crypto/history", h.History)
	p.POST("/crypto/favorite", h.AddFavorite)
	p.POST("/crypto/unfavorite", h.RemoveFavorite)
	p.GET("/crypto/favorites", h.ListFavorites)
	p.GET("/user/me", h.Me)
	p.GET("/user/:id", h.GetUser)
	p.PATCH("/user/:id", h.UpdateUser)
	p.DELETE("/user/:id", h.DeleteUser)
	return r
}

func do(t *testing.T, r http.Handler, method, path, user string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	if e.RequestID == "" {
		t.Fatalf("error envelope missing request_id: %s", w.Body.String())
	}
	return e
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code, msg string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	e := decodeError(t, w)
	if e.Code != code {
		t.Fatalf("code = %q, want %q", e.Code, code)
	}
	if msg != "" && e.Message != msg {
		t.Fatalf("message = %q, want %q", e.Message, msg)
	}
}
