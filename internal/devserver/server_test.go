package devserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/grocery/internal/api"
	"github.com/idilsaglam/grocery/internal/grocery"
	"github.com/idilsaglam/grocery/internal/model"
	"github.com/idilsaglam/grocery/internal/store/jsonstore"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestServer(t *testing.T, opts ...Option) (*Server, *api.Client) {
	t.Helper()
	s, err := New(append([]Option{WithLogger(quiet())}, opts...)...)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, api.NewClient(ts.URL, api.WithLogger(quiet()))
}

func TestClientRoundTrip(t *testing.T) {
	s, c := newTestServer(t, WithItems([]model.Item{{ID: "1", Item: "Milk"}}))
	ctx := context.Background()

	require.NoError(t, c.Create(ctx, model.Item{ID: "2", Item: "Eggs"}))
	require.NoError(t, c.SetChecked(ctx, "1", true))

	items, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Item{{ID: "1", Item: "Milk", Checked: true}, {ID: "2", Item: "Eggs"}}, items)

	require.NoError(t, c.Delete(ctx, "1"))
	assert.Equal(t, []model.Item{{ID: "2", Item: "Eggs"}}, s.Items())
}

func TestErrorsCarryBody(t *testing.T) {
	_, c := newTestServer(t, WithItems([]model.Item{{ID: "1", Item: "Milk"}}))
	ctx := context.Background()

	var se *api.StatusError

	err := c.SetChecked(ctx, "404", true)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "item not found", se.Body)

	err = c.Create(ctx, model.Item{ID: "1", Item: "Milk again"})
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusConflict, se.Code)
	assert.Equal(t, "duplicate id 1", se.Body)

	err = c.Delete(ctx, "404")
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestCreateMintsMissingID(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"item":"Tea"}`))
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	items := s.Items()
	require.Len(t, items, 1)
	assert.NotEmpty(t, items[0].ID)
	assert.Equal(t, "Tea", items[0].Item)
}

func TestGetAndBadJSON(t *testing.T) {
	s, _ := newTestServer(t, WithItems([]model.Item{{ID: "1", Item: "Milk"}}))
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"1","item":"Milk","checked":false}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/items/1", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/items/1", strings.NewReader(`{"item":"Oat milk"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Oat milk", s.Items()[0].Item)
	assert.False(t, s.Items()[0].Checked)
}

func TestPersistsToFile(t *testing.T) {
	f := jsonstore.Open(filepath.Join(t.TempDir(), "items.json"))
	_, c := newTestServer(t, WithFile(f))

	require.NoError(t, c.Create(context.Background(), model.Item{ID: "1", Item: "Milk"}))

	stored, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, []model.Item{{ID: "1", Item: "Milk"}}, stored)

	// a fresh server picks the file up again
	s2, err := New(WithFile(f), WithLogger(quiet()))
	require.NoError(t, err)
	assert.Equal(t, stored, s2.Items())
}

func TestControllerAgainstServer(t *testing.T) {
	s, c := newTestServer(t, WithItems([]model.Item{{ID: "1", Item: "Milk"}, {ID: "2", Item: "Eggs"}}))
	now := time.UnixMilli(1700000000000)
	l := grocery.New(c,
		grocery.WithLoadDelay(0),
		grocery.WithLogger(quiet()),
		grocery.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, l.Load(ctx))
	require.NoError(t, l.Toggle(ctx, "1"))
	_, err := l.Add(ctx, "Bread")
	require.NoError(t, err)

	// the store no longer has "2"; the local list still drops it
	s.mu.Lock()
	s.items = s.items[:1]
	s.mu.Unlock()
	assert.Error(t, l.Delete(ctx, "2"))

	want := []model.Item{{ID: "1", Item: "Milk", Checked: true}, {ID: "1700000000000", Item: "Bread"}}
	assert.Equal(t, want, l.Items())
}

func TestListenAndServeShutsDown(t *testing.T) {
	s, err := New(WithLogger(quiet()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	addrc := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0", func(a net.Addr) { addrc <- a }) }()

	addr := <-addrc
	items, err := api.NewClient("http://" + addr.String()).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
