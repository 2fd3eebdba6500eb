package remote

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/assetforge/engine/assets/compilers"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer("", "", &compilers.FontCompiler{}, &compilers.EffectCompiler{Tool: "cp", Args: []string{"{input}", "{output}"}})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestDiscoverLoopback(t *testing.T) {
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = ServeDiscovery(conn) }()
	defer conn.Close()

	port := conn.LocalAddr().(*net.UDPAddr).Port
	host, err := Discover(context.Background(), "127.0.0.1", port, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
}

func TestDiscoverTimeout(t *testing.T) {
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	// a socket that never answers
	defer conn.Close()

	port := conn.LocalAddr().(*net.UDPAddr).Port
	_, err = Discover(context.Background(), "127.0.0.1", port, 100*time.Millisecond)
	require.ErrorIs(t, err, core.ErrRemoteCompilerUnavailable)
}

func TestServerNotFound(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, FontPath},
		{http.MethodPost, "/compilesomething"},
	} {
		req, err := http.NewRequest(tc.method, ts.URL+tc.path, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode, tc.path)
		assert.Equal(t, "not found", strings.TrimSpace(string(body)))
	}
}

func TestServerRejectsBadFontRequest(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+FontPath+"?platform=5", "application/octet-stream", strings.NewReader("Arial\x00twelve"))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "expected 4 font fields")
}

func TestRemoteFontCompile(t *testing.T) {
	ts := newTestServer(t)

	f, err := metadata.NewFontAsset("font.Title", "Arial", 20, true, 1, nil)
	require.NoError(t, err)

	fc := NewFontCompiler(StaticLocator(ts.URL), nil)
	require.NoError(t, fc.Compile(f, platform.Android))
	require.NotNil(t, f.PlatformData())
	assert.Equal(t, platform.Android, f.PlatformData().Platform)
	require.NotNil(t, f.Font)
	assert.Equal(t, 1, f.Font.Spacing)
}

func TestRemoteEffectCompile(t *testing.T) {
	if _, err := exec.LookPath("cp"); err != nil {
		t.Skip("cp not available")
	}
	ts := newTestServer(t)

	e, err := metadata.NewEffectAsset("effect.Basic", "technique T {}", nil, false)
	require.NoError(t, err)

	ec := NewEffectCompiler(StaticLocator(ts.URL), nil)
	require.NoError(t, ec.Compile(e, platform.IOS))
	assert.Equal(t, []byte("technique T {}"), e.Program)
}

func TestRemoteUnavailableLeavesSourceOnly(t *testing.T) {
	f, err := metadata.NewFontAsset("font.Title", "Arial", 20, true, 0, nil)
	require.NoError(t, err)

	fc := NewFontCompiler(StaticLocator(""), nil)
	require.NoError(t, fc.Compile(f, platform.Android))
	assert.True(t, f.SourceOnly())
}

func TestRemoteErrorCarriesBody(t *testing.T) {
	ts := newTestServer(t)

	f, err := metadata.NewFontAsset("font.Zero", "Arial", 0, false, 0, nil)
	require.NoError(t, err)

	fc := NewFontCompiler(StaticLocator(ts.URL), nil)
	err = fc.Compile(f, platform.Android)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid size")
}

func TestParseFontRequest(t *testing.T) {
	f, err := metadata.NewFontAsset("font.Body", "Verdana", 14, true, 3, nil)
	require.NoError(t, err)

	parsed, err := ParseFontRequest(FontRequest(f))
	require.NoError(t, err)
	assert.Equal(t, "Verdana", parsed.FontName)
	assert.Equal(t, 14, parsed.FontSize)
	assert.Equal(t, 3, parsed.Spacing)
	assert.True(t, parsed.UseKerning)
}
