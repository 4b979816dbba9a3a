package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confpaper/internal/audit"
	auditmemory "confpaper/internal/audit/store/memory"
	id "confpaper/pkg/domain"
	"confpaper/pkg/testutil"
)

type failingReader struct{}

func (failingReader) ListByPaper(context.Context, id.PaperID) ([]audit.Event, error) {
	return nil, errors.New("db down")
}

func newRouter(reader Reader) http.Handler {
	r := chi.NewRouter()
	New(reader, slog.New(slog.NewTextHandler(io.Discard, nil))).RegisterAdmin(r)
	return r
}

func TestHandleList(t *testing.T) {
	ctx := context.Background()
	store := auditmemory.NewInMemoryStore()
	paperID := id.NewPaperID()
	require.NoError(t, store.Append(ctx, audit.Event{PaperID: paperID, Action: audit.ActionDraftCreated, ClientIP: "10.0.0.1"}))
	require.NoError(t, store.Append(ctx, audit.Event{PaperID: paperID, Action: audit.ActionSubmitted}))
	require.NoError(t, store.Append(ctx, audit.Event{PaperID: id.NewPaperID(), Action: audit.ActionSubmitted}))

	t.Run("returns the paper's events in order", func(t *testing.T) {
		rec := testutil.DoRequest(newRouter(store), httptest.NewRequest(http.MethodGet, "/papers/"+paperID.String()+"/audit", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		body := testutil.DecodeJSON[listResponse](t, rec)
		require.Len(t, body.Events, 2)
		assert.Equal(t, audit.ActionDraftCreated, body.Events[0].Action)
		assert.Equal(t, "10.0.0.1", body.Events[0].ClientIP)
		assert.Equal(t, audit.ActionSubmitted, body.Events[1].Action)
	})

	t.Run("empty trail is an empty list", func(t *testing.T) {
		rec := testutil.DoRequest(newRouter(store), httptest.NewRequest(http.MethodGet, "/papers/"+id.NewPaperID().String()+"/audit", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"events":[]}`, rec.Body.String())
	})

	t.Run("malformed paper id", func(t *testing.T) {
		rec := testutil.DoRequest(newRouter(store), httptest.NewRequest(http.MethodGet, "/papers/not-a-uuid/audit", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		rec := testutil.DoRequest(newRouter(failingReader{}), httptest.NewRequest(http.MethodGet, "/papers/"+paperID.String()+"/audit", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "db down")
	})
}
