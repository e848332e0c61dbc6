package wasmhost

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/ababil/ababil/log"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

// RunOptions configures a guest run. Nil readers/writers are replaced by
// empty ones.
type RunOptions struct {
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run compiles and runs a WASI command module with the http_request host
// function available, and returns the guest's exit code. A non-nil error
// means the module could not be compiled or instantiated, or trapped.
func Run(ctx context.Context, wasm []byte, opts RunOptions) (uint32, error) {
	runtime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))
	defer func() {
		if err := runtime.Close(context.Background()); err != nil {
			log.Error(ctx, "Failed to close wasm runtime", err)
		}
	}()

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		return 0, fmt.Errorf("instantiate WASI: %w", err)
	}
	if err := Register(ctx, runtime); err != nil {
		return 0, err
	}

	log.Debug(ctx, "Compiling wasm module", "size", len(wasm))
	compiled, err := runtime.CompileModule(ctx, wasm)
	if err != nil {
		return 0, fmt.Errorf("compile wasm module: %w", err)
	}
	defer compiled.Close(context.Background())

	config := wazero.NewModuleConfig().
		WithArgs(opts.Args...).
		WithSysWalltime().
		WithSysNanotime().
		WithRandSource(rand.Reader)
	if opts.Stdin != nil {
		config = config.WithStdin(opts.Stdin)
	}
	if opts.Stdout != nil {
		config = config.WithStdout(opts.Stdout)
	}
	if opts.Stderr != nil {
		config = config.WithStderr(opts.Stderr)
	}

	log.Debug(ctx, "Running wasm module", "args", opts.Args)
	mod, err := runtime.InstantiateModule(ctx, compiled, config)
	if mod != nil {
		defer mod.Close(context.Background())
	}

	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) {
		log.Debug(ctx, "Wasm module exited", "exitCode", exitErr.ExitCode())
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return 0, fmt.Errorf("run wasm module: %w", err)
	}
	return 0, nil
}
