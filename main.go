/*
assetforge resolves, compiles and serves game assets from a content root.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/spaghettifunk/assetforge/engine"
	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/build"
	"github.com/spaghettifunk/assetforge/engine/assets/compilers"
	"github.com/spaghettifunk/assetforge/engine/assets/loaders"
	"github.com/spaghettifunk/assetforge/engine/assets/remote"
	"github.com/spaghettifunk/assetforge/engine/assets/savers"
	"github.com/spaghettifunk/assetforge/engine/assets/store"
	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

var CLI struct {
	Config   string `help:"Configuration file (.toml, .yaml)." short:"c" type:"existingfile"`
	Debug    bool   `help:"Whether to enable debug logging."`
	Root     string `help:"Override the content root."`
	Platform string `help:"Override the target platform." short:"p"`

	Compile struct {
		Platforms []string `help:"Platforms to compile for. Defaults to the configured list or the host." name:"platforms"`
		Output    string   `help:"Output directory for compiled assets." short:"o"`
		Workers   int      `help:"Number of compile workers."`
		Mirror    bool     `help:"Mirror compiled blobs into the configured Redis store."`
	} `cmd:"" help:"Compile every asset under the content root."`

	Serve struct {
		Listen string `help:"Bind address for HTTP and discovery." default:"0.0.0.0"`
	} `cmd:"" help:"Run the companion compile server."`

	Get struct {
		Names []string `arg:"" name:"names" help:"Dotted asset names to resolve."`
	} `cmd:"" help:"Resolve assets and print a summary."`

	List struct {
	} `cmd:"" help:"List every asset name under the content root."`

	Watch struct {
	} `cmd:"" help:"Watch the content root and report changed assets."`

	Platforms struct {
	} `cmd:"" help:"List the known target platforms."`

	Init struct {
		Path string `arg:"" name:"path" help:"Where to write the default configuration."`
	} `cmd:"" help:"Write the default configuration to a file."`
}

func writeError(err error) {
	core.LogError("%s", err)
	os.Exit(1)
}

func loadConfig() (*core.Config, error) {
	cfg := core.DefaultConfig()
	if CLI.Config != "" {
		loaded, err := core.LoadConfig(CLI.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if CLI.Root != "" {
		cfg.ContentRoot = CLI.Root
	}
	if CLI.Platform != "" {
		cfg.Platform = CLI.Platform
	}
	if CLI.Debug {
		cfg.Log.Level = "debug"
	}
	core.SetLogLevel(cfg.Log.Level)
	return cfg, nil
}

// signalContext is cancelled on SIGTERM, SIGINT or SIGQUIT.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("assetforge"),
		kong.Description("asset compilation and caching pipeline"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	var err error
	switch ctx.Command() {
	case "compile":
		err = compileCommand()
	case "serve":
		err = serveCommand()
	case "get <names>":
		err = getCommand(CLI.Get.Names)
	case "list":
		err = listCommand()
	case "watch":
		err = watchCommand()
	case "platforms":
		platformsCommand()
	case "init <path>":
		err = core.DefaultConfig().Write(CLI.Init.Path)
	}
	if err != nil {
		writeError(err)
	}
}

func compileCommand() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	names := CLI.Compile.Platforms
	if len(names) == 0 {
		names = cfg.Build.Platforms
	}
	if len(names) == 0 && cfg.Platform != "" {
		names = []string{cfg.Platform}
	}
	host := platform.GetExecutingPlatform()
	targets := []platform.TargetPlatform{host}
	if len(names) > 0 {
		targets = targets[:0]
		for _, n := range names {
			p, err := platform.Parse(n)
			if err != nil {
				return err
			}
			targets = append(targets, p)
		}
	}

	output := CLI.Compile.Output
	if output == "" {
		output = cfg.Build.Output
	}
	if output == "" {
		output = cfg.ContentRoot
	}
	workers := CLI.Compile.Workers
	if workers <= 0 {
		workers = cfg.Build.Workers
	}

	reg := assets.NewRegistry()
	if _, err := loaders.RegisterDefaults(reg); err != nil {
		return err
	}
	if err := savers.RegisterDefaults(reg); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	opts := build.Options{
		Root:       cfg.ContentRoot,
		SourcePath: cfg.SourcePath,
		Output:     output,
		Platforms:  targets,
		Workers:    workers,
		RawFormats: cfg.RawFormats,
		Registry:   reg,
		Host:       host,
		Compilers: compilers.Options{
			FontDirs:   []string{cfg.ContentRoot, filepath.Join(cfg.ContentRoot, "fonts")},
			EffectTool: cfg.Effect.Tool,
			EffectArgs: cfg.Effect.Args,
		},
	}
	if CLI.Compile.Mirror {
		if cfg.Store.RedisAddr == "" {
			return errors.New("--mirror requires store.redis_addr")
		}
		ttl := time.Duration(cfg.Store.TTLSeconds) * time.Second
		rs, err := store.DialRedis(ctx, cfg.Store.RedisAddr, cfg.Store.RedisDB, cfg.Store.Prefix, ttl)
		if err != nil {
			return err
		}
		defer rs.Close()
		opts.Mirror = rs
	}

	clock := core.NewClock()
	clock.Start()
	report, err := build.NewBuilder(opts).Run(ctx)
	clock.Update()
	if report != nil {
		core.LogInfo("Compiled %d, up to date %d, skipped %d, deleted %d in %s",
			len(report.Compiled), len(report.UpToDate), len(report.Skipped), len(report.Deleted),
			clock.Elapsed().Round(time.Millisecond))
		for _, name := range report.Compiled {
			fmt.Println(name)
		}
	}
	return err
}

func serveCommand() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fonts := &compilers.FontCompiler{Dirs: []string{cfg.ContentRoot, filepath.Join(cfg.ContentRoot, "fonts")}}
	var effects remote.EffectRunner
	if cfg.Effect.Tool != "" {
		effects = &compilers.EffectCompiler{Tool: cfg.Effect.Tool, Args: cfg.Effect.Args}
	} else {
		core.LogWarn("No effect tool configured, effect compilation is disabled.")
	}

	srv := remote.NewServer(
		net.JoinHostPort(CLI.Serve.Listen, strconv.Itoa(cfg.Remote.HTTPPort)),
		net.JoinHostPort(CLI.Serve.Listen, strconv.Itoa(cfg.Remote.DiscoveryPort)),
		fonts,
		effects,
	)

	ctx, cancel := signalContext()
	defer cancel()
	return srv.ListenAndServe(ctx)
}

func startEngine(cfg *core.Config) (*engine.Engine, error) {
	e, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := e.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return e, nil
}

func getCommand(names []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.HotReload = false
	e, err := startEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Shutdown()

	var errs []error
	for _, name := range names {
		a, err := e.Manager().Get(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Printf("%s\t%s\t%s\n", a.Name(), a.Kind(), representation(a))
	}
	return errors.Join(errs...)
}

func representation(a assets.Asset) string {
	switch {
	case a.SourceOnly():
		return "source"
	case a.CompiledOnly():
		return "compiled"
	default:
		return "source+compiled"
	}
}

func listCommand() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.HotReload = false
	e, err := startEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Shutdown()

	names, err := e.Manager().GetAllNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func watchCommand() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.HotReload = true
	e, err := startEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Shutdown()

	core.EventRegister(core.EVENT_CODE_ASSET_DIRTIED, e, func(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
		a, err := e.Manager().Get(data.Name)
		if err != nil {
			core.LogError("Reloading '%s' failed: %s", data.Name, err)
			return false
		}
		fmt.Printf("%s\t%s\t%s\n", a.Name(), a.Kind(), representation(a))
		return false
	})
	core.EventRegister(core.EVENT_CODE_WATCHER_ERROR, e, func(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
		core.LogError("Watcher error: %s", data.Err)
		return false
	})

	ctx, cancel := signalContext()
	defer cancel()
	return e.Run(ctx)
}

func platformsCommand() {
	host := platform.GetExecutingPlatform()
	for _, p := range platform.All() {
		class := "other"
		switch {
		case p.IsDesktop():
			class = "desktop"
		case p.IsMobile():
			class = "mobile"
		}
		marker := ""
		if p == host {
			marker = "\t(host)"
		}
		fmt.Printf("%d\t%s\t%s%s\n", int32(p), p, class, marker)
	}
}
