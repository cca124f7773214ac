package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the success body every endpoint writes
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

// ErrorEnvelope mirrors the failure body
type ErrorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// DecodeEnvelope checks the success envelope and decodes its data into v.
// v may be nil when only the envelope matters.
func DecodeEnvelope(t *testing.T, resp *http.Response, v interface{}) Envelope {
	t.Helper()

	var env Envelope
	AssertJSONResponse(t, resp, &env)
	assert.True(t, env.Success, "expected success envelope")
	assert.Equal(t, resp.StatusCode, env.StatusCode, "envelope status mismatch")

	if v != nil {
		require.NoError(t, json.Unmarshal(env.Data, v), "failed to unmarshal data: %s", string(env.Data))
	}
	return env
}

// AssertErrorResponse verifies the failure envelope's status and message
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var env ErrorEnvelope
	AssertJSONResponse(t, resp, &env)
	assert.False(t, env.Success)
	assert.Equal(t, expectedStatus, env.StatusCode)
	assert.Contains(t, env.Message, expectedMessage, "error message mismatch")
}

// AssertNoCredentials fails if a raw JSON user body leaks credential fields
func AssertNoCredentials(t *testing.T, raw []byte) {
	t.Helper()

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"password", "passwordHash", "PasswordHash", "refreshToken", "RefreshToken"} {
		assert.NotContains(t, fields, key, "credential field %s leaked", key)
	}
}

// FindCookie returns the named cookie set on resp, or nil
func FindCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
