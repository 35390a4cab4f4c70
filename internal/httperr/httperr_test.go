package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (int, map[string]string) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, Respond(c, err))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestRespondStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validationf("bid_too_low", "bid must exceed 26.50"), http.StatusBadRequest},
		{NotFoundf("product_not_found", "product not found"), http.StatusNotFound},
		{Forbiddenf("own_listing", "you cannot bid on your own listing"), http.StatusForbidden},
		{Conflictf("insufficient_stock", "only 30kg available"), http.StatusConflict},
		{AlreadyDonef("already_paid", "this order is already paid"), http.StatusConflict},
		{Upstreamf("store_error", "commit failed"), http.StatusBadGateway},
	}

	for _, tc := range cases {
		code, _ := respond(t, tc.err)
		assert.Equal(t, tc.want, code)
	}
}

// AlreadyDone shares 409 with Conflict but keeps its own code, so
// clients can tell "someone else got there first" from "you already did
// this".
func TestRespondAlreadyDoneKeepsCode(t *testing.T) {
	code, body := respond(t, AlreadyDonef("already_paid", "this order is already paid"))

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "already_paid", body["code"])
	assert.Equal(t, "this order is already paid", body["error"])
}

func TestRespondUnclassified(t *testing.T) {
	code, body := respond(t, errors.New("pq: out of memory"))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal error", body["error"])
	assert.NotContains(t, body["error"], "pq:")
}
