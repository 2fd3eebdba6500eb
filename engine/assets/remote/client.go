package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

const (
	FontPath   = "/compilefont"
	EffectPath = "/compileeffect"

	requestIDHeader = "X-Request-Id"
)

type client struct {
	locator Locator
	http    *http.Client
}

func newClient(locator Locator, hc *http.Client) client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return client{locator: locator, http: hc}
}

// post sends body to the compile server and returns the response body.
func (c client) post(ctx context.Context, path string, target platform.TargetPlatform, body []byte) ([]byte, error) {
	base, err := c.locator.Locate(ctx)
	if err != nil {
		return nil, err
	}
	url := strings.TrimSuffix(base, "/") + path + "?platform=" + strconv.Itoa(int(target))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	id := uuid.New().String()
	req.Header.Set(requestIDHeader, id)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		if r, ok := c.locator.(interface{ Reset() }); ok {
			r.Reset()
		}
		return nil, fmt.Errorf("%w: %v", core.ErrRemoteCompilerUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("remote compile %s failed (%d): %s", id, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

// FontCompiler compiles fonts on a remote compile server. When no server can
// be reached the font is left uncompiled.
type FontCompiler struct {
	client
}

func NewFontCompiler(locator Locator, hc *http.Client) *FontCompiler {
	return &FontCompiler{client: newClient(locator, hc)}
}

// FontRequest encodes the body of a font compile request.
func FontRequest(f *metadata.FontAsset) []byte {
	return []byte(fmt.Sprintf("%s\x00%d\x00%d\x00%t", f.FontName, f.FontSize, f.Spacing, f.UseKerning))
}

func (fc *FontCompiler) Compile(asset *metadata.FontAsset, target platform.TargetPlatform) error {
	data, err := fc.post(context.Background(), FontPath, target, FontRequest(asset))
	if errors.Is(err, core.ErrRemoteCompilerUnavailable) {
		core.LogWarn("Unable to compile font '%s' remotely: %s", asset.Name(), err)
		return nil
	}
	if err != nil {
		return err
	}
	return asset.SetPlatformData(&compiled.PlatformData{Platform: target, Data: data})
}

// EffectCompiler compiles effect code on a remote compile server. When no
// server can be reached the effect is left uncompiled.
type EffectCompiler struct {
	client
}

func NewEffectCompiler(locator Locator, hc *http.Client) *EffectCompiler {
	return &EffectCompiler{client: newClient(locator, hc)}
}

func (ec *EffectCompiler) Compile(asset *metadata.EffectAsset, target platform.TargetPlatform) error {
	data, err := ec.post(context.Background(), EffectPath, target, []byte(asset.Code))
	if errors.Is(err, core.ErrRemoteCompilerUnavailable) {
		core.LogWarn("Unable to compile effect '%s' remotely: %s", asset.Name(), err)
		return nil
	}
	if err != nil {
		return err
	}
	return asset.SetPlatformData(&compiled.PlatformData{Platform: target, Data: data})
}
