package consul

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgent struct {
	mu       sync.Mutex
	register map[string]any
	deregged string
}

func (f *fakeAgent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.URL.Path == "/v1/agent/service/register":
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &f.register)
	case r.URL.Path == "/v1/agent/service/deregister/cart-1":
		f.deregged = "cart-1"
	case r.URL.Path == "/v1/health/service/cart":
		_, _ = w.Write([]byte(`[{"Node":{"Address":"10.0.0.1"},"Service":{"Address":"10.0.0.9","Port":8080}}]`))
	default:
		http.NotFound(w, r)
	}
}

func TestRegisterLookupDeregister(t *testing.T) {
	agent := &fakeAgent{}
	srv := httptest.NewServer(agent)
	defer srv.Close()

	client, err := NewClient(srv.Listener.Addr().String())
	require.NoError(t, err)

	require.NoError(t, RegisterService(client, "cart-1", "cart", "10.0.0.9", 8080, "http://10.0.0.9:8080/ping"))
	agent.mu.Lock()
	assert.Equal(t, "cart", agent.register["Name"])
	assert.Equal(t, float64(8080), agent.register["Port"])
	agent.mu.Unlock()

	addr, port, err := GetServiceAddress(client, "cart")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.9", addr)
	assert.Equal(t, 8080, port)

	require.NoError(t, DeregisterService(client, "cart-1"))
	assert.Equal(t, "cart-1", agent.deregged)
}

func TestGetServiceAddress_NilClient(t *testing.T) {
	_, _, err := GetServiceAddress(nil, "cart")
	assert.Error(t, err)
}
