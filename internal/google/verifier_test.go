package google_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkorzh/identity-service/internal/google"
)

func newTokenInfoServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("id_token"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerify_Success(t *testing.T) {
	srv := newTokenInfoServer(t, http.StatusOK,
		`{"aud":"client-1","email":"b@x.com","email_verified":"true","name":"Bo"}`)
	v := google.New("client-1", google.WithTokenInfoURL(srv.URL))

	name, email, err := v.Verify(context.Background(), "some-id-token")
	require.NoError(t, err)
	assert.Equal(t, "Bo", name)
	assert.Equal(t, "b@x.com", email)
}

func TestVerify_FallsBackToEmailAsName(t *testing.T) {
	srv := newTokenInfoServer(t, http.StatusOK,
		`{"aud":"client-1","email":"b@x.com","email_verified":"true"}`)
	v := google.New("client-1", google.WithTokenInfoURL(srv.URL))

	name, _, err := v.Verify(context.Background(), "some-id-token")
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", name)
}

func TestVerify_WrongAudience(t *testing.T) {
	srv := newTokenInfoServer(t, http.StatusOK,
		`{"aud":"someone-else","email":"b@x.com","email_verified":"true","name":"Bo"}`)
	v := google.New("client-1", google.WithTokenInfoURL(srv.URL))

	_, _, err := v.Verify(context.Background(), "some-id-token")
	assert.ErrorIs(t, err, google.ErrInvalidAssertion)
}

func TestVerify_UnverifiedEmail(t *testing.T) {
	srv := newTokenInfoServer(t, http.StatusOK,
		`{"aud":"client-1","email":"b@x.com","email_verified":"false","name":"Bo"}`)
	v := google.New("client-1", google.WithTokenInfoURL(srv.URL))

	_, _, err := v.Verify(context.Background(), "some-id-token")
	assert.ErrorIs(t, err, google.ErrInvalidAssertion)
}

func TestVerify_GoogleRejects(t *testing.T) {
	srv := newTokenInfoServer(t, http.StatusBadRequest, `{"error":"invalid_token"}`)
	v := google.New("client-1", google.WithTokenInfoURL(srv.URL))

	_, _, err := v.Verify(context.Background(), "expired-token")
	assert.ErrorIs(t, err, google.ErrInvalidAssertion)
}

func TestVerify_EmptyToken(t *testing.T) {
	v := google.New("client-1")
	_, _, err := v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, google.ErrInvalidAssertion)
}
