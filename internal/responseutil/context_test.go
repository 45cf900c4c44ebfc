package responseutil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusWriter struct{ status int }

func (s statusWriter) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	w.WriteHeader(s.status)
}

func TestBuilderRoundTrip(t *testing.T) {
	assert.Nil(t, Builder(context.Background()))

	ctx := WithBuilder(context.Background(), statusWriter{status: http.StatusTeapot})
	builder := Builder(ctx)
	require.NotNil(t, builder)

	rec := httptest.NewRecorder()
	builder.WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("x"))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
