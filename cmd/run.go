package cmd

import (
	"fmt"
	"os"

	"github.com/ababil/ababil/core/wasmhost"
	"github.com/ababil/ababil/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run MODULE.wasm [args...]",
	Short: "Run a WASI module with the http_request host function",
	Long: `Run a WASI command module with the ababil.http_request host function
available. Guests written in Go can use the guest package, e.g.:

  GOOS=wasip1 GOARCH=wasm go build -o fetch.wasm ./guest/example
  ababil run fetch.wasm https://example.com`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := runModule(cmd, args[0], args[1:])
		if err != nil {
			return err
		}
		if code != 0 {
			return &exitError{code: code}
		}
		return nil
	},
}

type exitError struct {
	code uint32
}

func (e *exitError) Error() string {
	return fmt.Sprintf("module exited with code %d", e.code)
}

func init() {
	// flags after MODULE.wasm belong to the guest
	runCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(runCmd)
}

func runModule(cmd *cobra.Command, path string, args []string) (uint32, error) {
	ctx := cmd.Context()
	wasm, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading module: %w", err)
	}
	log.Debug(ctx, "Running module", "path", path, "size", humanize.Bytes(uint64(len(wasm))))

	return wasmhost.Run(ctx, wasm, wasmhost.RunOptions{
		Args:   append([]string{path}, args...),
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
}
