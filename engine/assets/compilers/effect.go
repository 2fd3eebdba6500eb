package compilers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

const defaultEffectTimeout = 30 * time.Second

// EffectCompiler hands effect code to an external shader compiler. Args may
// reference {input}, {output} and {platform}; the tool must write the
// compiled program to {output}.
type EffectCompiler struct {
	Tool    string
	Args    []string
	Timeout time.Duration
}

func (ec *EffectCompiler) Compile(asset *metadata.EffectAsset, target platform.TargetPlatform) error {
	program, err := ec.Run(context.Background(), asset.Code, target)
	if err != nil {
		return fmt.Errorf("effect '%s': %w", asset.Name(), err)
	}
	return asset.SetPlatformData(&compiled.PlatformData{
		Platform: target,
		Data:     program,
	})
}

// Run compiles code and returns the program bytes.
func (ec *EffectCompiler) Run(ctx context.Context, code string, target platform.TargetPlatform) ([]byte, error) {
	if ec.Tool == "" {
		return nil, fmt.Errorf("no effect compiler configured")
	}
	dir, err := os.MkdirTemp("", "assetforge-effect-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "effect.fx")
	output := filepath.Join(dir, "effect.bin")
	if err := os.WriteFile(input, []byte(code), 0o644); err != nil {
		return nil, err
	}

	replacer := strings.NewReplacer(
		"{input}", input,
		"{output}", output,
		"{platform}", target.String(),
	)
	args := make([]string, len(ec.Args))
	for i, a := range ec.Args {
		args[i] = replacer.Replace(a)
	}

	timeout := ec.Timeout
	if timeout <= 0 {
		timeout = defaultEffectTimeout
	}
	if _, err := executeCmd(ctx, ec.Tool, withArgs(args...), withDir(dir), withTimeout(timeout)); err != nil {
		return nil, err
	}
	program, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("effect compiler produced no output: %w", err)
	}
	return program, nil
}
