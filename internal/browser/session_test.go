package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickUserAgent(t *testing.T) {
	pool := []string{"ua-a", "ua-b", "ua-c"}

	for i := range pool {
		got := PickUserAgent(pool, func(n int) int {
			assert.Equal(t, len(pool), n)
			return i
		})
		assert.Equal(t, pool[i], got)
	}

	assert.Equal(t, "", PickUserAgent(nil, nil))
	assert.Contains(t, pool, PickUserAgent(pool, nil))
}

const listingPage = `<!DOCTYPE html>
<html>
<body>
  <div class="block">
    <a href="/product/one-P1">One</a>
    <a href="/brand/acme">Brand</a>
  </div>
  <div class="block">
    <a href="/product/two-P2">Two</a>
    <a href="/product/one-P1">One again</a>
  </div>
  <div id="ingredients"><div>Water</div></div>
</body>
</html>`

// findChrome returns the first Chrome-like binary on PATH.
func findChrome() (string, bool) {
	for _, name := range []string{"headless-shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}

func TestSessionAgainstLocalPage(t *testing.T) {
	if testing.Short() {
		t.Skip("launches a browser")
	}
	execPath, ok := findChrome()
	if !ok {
		t.Skip("no Chrome binary found on PATH")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, listingPage)
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s, err := NewSession(ctx, Options{
		Headless:       true,
		ExecPath:       execPath,
		UserAgents:     []string{"prodcrawl-test"},
		AcceptLanguage: "en-US",
		ActionTimeout:  20 * time.Second,
	})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "prodcrawl-test", s.UserAgent())

	require.NoError(t, s.Navigate(server.URL+"/shop/cleanser"))
	require.NoError(t, s.WaitReady("body", 5*time.Second))

	n, err := s.Count("div.block")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	blocks, err := s.Links("div.block", "/product/")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{server.URL + "/product/one-P1"},
		{server.URL + "/product/two-P2", server.URL + "/product/one-P1"},
	}, blocks)

	assert.NoError(t, s.ScrollBy(300))
	assert.NoError(t, s.ScrollIntoView("#ingredients"))
	assert.ErrorIs(t, s.ScrollIntoView("#missing"), ErrNotFound)

	evalTests := []struct {
		name   string
		script string
		want   string
	}{
		{name: "string", script: "(() => 'test string')()", want: "test string"},
		{name: "object", script: "(() => ({ key: 'value', num: 123 }))()", want: `{"key":"value","num":123}`},
		{name: "array", script: "(() => ['a', 'b', 'c'])()", want: `["a","b","c"]`},
	}
	for _, tt := range evalTests {
		t.Run("evaluate "+tt.name, func(t *testing.T) {
			var result any
			require.NoError(t, s.Evaluate(tt.script, &result))

			got, ok := result.(string)
			if !ok {
				raw, err := json.Marshal(result)
				require.NoError(t, err)
				got = string(raw)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	markup, err := s.HTML()
	require.NoError(t, err)
	assert.Contains(t, markup, "Water")

	// closing twice must not panic
	s.Close()
	s.Close()
}
