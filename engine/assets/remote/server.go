package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

const maxRequestBody = 8 << 20

// EffectRunner compiles effect code into a program.
type EffectRunner interface {
	Run(ctx context.Context, code string, target platform.TargetPlatform) ([]byte, error)
}

// Server is the companion compile server. It answers discovery requests over
// UDP and compiles fonts and effects over HTTP for hosts that cannot.
type Server struct {
	httpAddr      string
	discoveryAddr string

	fonts   assets.AssetCompiler[*metadata.FontAsset]
	effects EffectRunner
}

func NewServer(httpAddr, discoveryAddr string, fonts assets.AssetCompiler[*metadata.FontAsset], effects EffectRunner) *Server {
	return &Server{
		httpAddr:      httpAddr,
		discoveryAddr: discoveryAddr,
		fonts:         fonts,
		effects:       effects,
	}
}

// Handler returns the HTTP side of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logRequests)

	r.Post(FontPath, s.compileFont)
	r.Post(EffectPath, s.compileEffect)
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return gzhttp.GzipHandler(r)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		core.LogInfo("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "not found", http.StatusNotFound)
}

func failed(w http.ResponseWriter, err error) {
	core.LogError("Compile failed: %s", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func targetOf(r *http.Request) (platform.TargetPlatform, error) {
	v, err := strconv.ParseInt(r.URL.Query().Get("platform"), 10, 32)
	if err != nil {
		return platform.Windows, fmt.Errorf("invalid platform parameter: %w", err)
	}
	return platform.FromOrdinal(v)
}

// ParseFontRequest decodes FontName\0FontSize\0Spacing\0UseKerning.
func ParseFontRequest(body []byte) (*metadata.FontAsset, error) {
	parts := strings.Split(string(body), "\x00")
	if len(parts) != 4 {
		return nil, fmt.Errorf("expected 4 font fields, got %d", len(parts))
	}
	size, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid font size: %w", err)
	}
	spacing, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid font spacing: %w", err)
	}
	kerning, err := strconv.ParseBool(parts[3])
	if err != nil {
		return nil, fmt.Errorf("invalid kerning flag: %w", err)
	}
	return metadata.NewFontAsset("remote."+parts[0], parts[0], size, kerning, spacing, nil)
}

func (s *Server) compileFont(w http.ResponseWriter, r *http.Request) {
	target, err := targetOf(r)
	if err != nil {
		failed(w, err)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		failed(w, err)
		return
	}
	font, err := ParseFontRequest(body)
	if err != nil {
		failed(w, err)
		return
	}
	if s.fonts == nil {
		failed(w, errors.New("font compilation is not available on this server"))
		return
	}
	if err := s.fonts.Compile(font, target); err != nil {
		failed(w, err)
		return
	}
	if font.PlatformData() == nil {
		failed(w, fmt.Errorf("font '%s' was not compiled", font.FontName))
		return
	}
	writeBlob(w, font.PlatformData().Data)
}

func (s *Server) compileEffect(w http.ResponseWriter, r *http.Request) {
	target, err := targetOf(r)
	if err != nil {
		failed(w, err)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		failed(w, err)
		return
	}
	if s.effects == nil {
		failed(w, errors.New("effect compilation is not available on this server"))
		return
	}
	program, err := s.effects.Run(r.Context(), string(body), target)
	if err != nil {
		failed(w, err)
		return
	}
	writeBlob(w, program)
}

func writeBlob(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ListenAndServe runs the discovery responder and the HTTP server until ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	udp, err := net.ListenPacket("udp4", s.discoveryAddr)
	if err != nil {
		return fmt.Errorf("failed to listen for discovery on %s: %w", s.discoveryAddr, err)
	}
	go func() {
		if err := ServeDiscovery(udp); err != nil {
			core.LogError("Discovery responder stopped: %s", err)
		}
	}()

	srv := &http.Server{
		Addr:              s.httpAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = udp.Close()
	}()

	core.LogInfo("Compile server listening on %s (discovery on %s)", s.httpAddr, s.discoveryAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_ = udp.Close()
		return err
	}
	return nil
}
