package indexing

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serviceAccountJSON(t *testing.T, tokenURI string) []byte {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	raw, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"client_email":   "indexer@neuralpost.iam.gserviceaccount.com",
		"private_key_id": "key-1",
		"private_key":    string(keyPEM),
		"token_uri":      tokenURI,
	})
	require.NoError(t, err)
	return raw
}

func TestNewGooglePublisherRequiresServiceAccount(t *testing.T) {
	t.Parallel()

	_, err := NewGooglePublisher(context.Background(), GoogleOptions{})
	require.True(t, eris.Is(err, ErrMissingServiceAccount))

	_, err = NewGooglePublisher(context.Background(), GoogleOptions{ServiceAccountJSON: []byte(`{"type":`)})
	require.Error(t, err)
}

func TestGooglePublisherExchangesTokenAndPublishes(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int32
	var published []map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:jwt-bearer", form.Get("grant_type"))
		assert.Equal(t, 3, len(strings.Split(form.Get("assertion"), ".")))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"indexing-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v3/urlNotifications:publish", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer indexing-token", r.Header.Get("Authorization"))

		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		published = append(published, payload)

		if strings.HasSuffix(payload["url"], "/forbidden") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Permission denied"}}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"urlNotificationMetadata":{"url":"` + payload["url"] + `","latestUpdate":{"url":"` + payload["url"] + `","type":"URL_UPDATED","notifyTime":"2025-05-01T10:00:00Z"}}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	publisher, err := NewGooglePublisher(context.Background(), GoogleOptions{
		ServiceAccountJSON: serviceAccountJSON(t, server.URL+"/token"),
		Endpoint:           server.URL + "/",
		HTTPClient:         server.Client(),
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, publisher.Authorize(ctx))

	notification, err := publisher.Publish(ctx, "https://prophetic.pw/article/chips-2025-05-01", TypeUpdated)
	require.NoError(t, err)
	assert.Equal(t, 200, notification.Status)
	assert.Equal(t, "2025-05-01T10:00:00Z", notification.NotifyTime)

	notification, err = publisher.Publish(ctx, "https://prophetic.pw/forbidden", TypeUpdated)
	require.Error(t, err)
	assert.Equal(t, 403, notification.Status)

	assert.Equal(t, int32(1), tokenCalls.Load())
	require.Len(t, published, 2)
	assert.Equal(t, TypeUpdated, published[0]["type"])
}

func TestGooglePublisherAuthorizeSurfacesTokenFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	publisher, err := NewGooglePublisher(context.Background(), GoogleOptions{
		ServiceAccountJSON: serviceAccountJSON(t, server.URL+"/token"),
		Endpoint:           server.URL + "/",
		HTTPClient:         server.Client(),
	})
	require.NoError(t, err)

	err = publisher.Authorize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Token exchange failed")
}
