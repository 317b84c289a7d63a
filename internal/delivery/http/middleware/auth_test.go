package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVerifier implements domain.TokenVerifier.
type fakeVerifier struct {
	subject string
	err     error
	last    string
}

func (f *fakeVerifier) Verify(token string) (string, error) {
	f.last = token
	return f.subject, f.err
}

func TestRequireToken(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		verifierErr error
		wantStatus  int
		wantNext    bool
	}{
		{name: "valid token", header: "Bearer good-token", wantStatus: http.StatusOK, wantNext: true},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "verification fails", header: "Bearer bad", verifierErr: errors.New("expired"), wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{subject: "turnstile:abc", err: tt.verifierErr}

			nextCalled := false
			var gotSubject string
			next := func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				gotSubject, _ = SubjectFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}

			req := httptest.NewRequest(http.MethodGet, "/events/eAb12Cd3", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			RequireToken(verifier)(next)(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNext, nextCalled)
			if tt.wantNext {
				assert.Equal(t, "good-token", verifier.last)
				assert.Equal(t, "turnstile:abc", gotSubject)
			}
		})
	}
}

func TestRequireToken_NilVerifierDisablesCheck(t *testing.T) {
	nextCalled := false
	next := func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	}

	req := httptest.NewRequest(http.MethodGet, "/events/eAb12Cd3", nil)
	rec := httptest.NewRecorder()
	RequireToken(nil)(next)(rec, req)

	require.True(t, nextCalled)
	assert.Equal(t, http.StatusOK, rec.Code)
}
