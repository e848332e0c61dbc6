package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ababil/ababil/ffi"
	"github.com/ababil/ababil/log"
	"github.com/ababil/ababil/model"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var errInvalidHeader = errors.New(`header must look like "Name: Value"`)

// optionalString is a flag value that remembers whether it was given, so an
// empty -d "" still sends an empty body.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }
func (o *optionalString) Type() string   { return "string" }

func (o *optionalString) Set(v string) error {
	o.value, o.set = v, true
	return nil
}

func (o *optionalString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

type requestOptions struct {
	method      string
	headers     []string
	headersJSON optionalString
	data        optionalString
	summary     bool
}

var reqOpts requestOptions

var requestCmd = &cobra.Command{
	Use:   "request [flags] URL",
	Short: "Perform one HTTP request and print its JSON outcome",
	Long: `Perform one HTTP request through the shim and print the JSON payload a
foreign caller would receive. Network failures are part of the payload
(status_code 0); only invalid arguments make the command fail.`,
	Example: `  ababil request https://example.com
  ababil request -X POST -H "Content-Type: application/json" -d '{"a":1}' https://example.com/items
  ababil request --headers-json '[["Accept","text/plain"]]' https://example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRequest(cmd, args[0])
	},
}

func init() {
	requestCmd.Flags().StringVarP(&reqOpts.method, "request", "X", http.MethodGet, "HTTP method")
	requestCmd.Flags().StringArrayVarP(&reqOpts.headers, "header", "H", nil, `request header as "Name: Value", repeatable`)
	requestCmd.Flags().Var(&reqOpts.headersJSON, "headers-json", "request headers as a JSON array of [name, value] pairs, passed through verbatim; overrides -H")
	requestCmd.Flags().VarP(&reqOpts.data, "data", "d", "request body")
	requestCmd.Flags().BoolVarP(&reqOpts.summary, "summary", "s", false, "print a one-line summary to stderr")
	rootCmd.AddCommand(requestCmd)
}

func runRequest(cmd *cobra.Command, url string) error {
	ctx := cmd.Context()

	headersJSON := reqOpts.headersJSON.ptr()
	if headersJSON == nil && len(reqOpts.headers) > 0 {
		hs, err := parseHeaderFlags(reqOpts.headers)
		if err != nil {
			return err
		}
		b, err := hs.MarshalJSON()
		if err != nil {
			return err
		}
		s := string(b)
		headersJSON = &s
	}

	method := reqOpts.method
	payload, err := ffi.MakeHTTPRequest(ctx, &method, &url, headersJSON, reqOpts.data.ptr())
	if err != nil {
		log.Error(ctx, "Request could not be performed", "url", url, err)
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), payload)

	if reqOpts.summary {
		resp, err := model.DecodeResponse([]byte(payload))
		if err != nil {
			return err
		}
		printSummary(cmd.ErrOrStderr(), resp)
	}
	return nil
}

func parseHeaderFlags(values []string) (model.Headers, error) {
	hs := make(model.Headers, 0, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidHeader, v)
		}
		hs = append(hs, model.Header{Name: name, Value: strings.TrimSpace(value)})
	}
	return hs, nil
}

func printSummary(w io.Writer, resp *model.Response) {
	if resp.Failed() {
		_, _ = fmt.Fprintf(w, "failed after %dms: %s\n", resp.DurationMs, strings.TrimPrefix(resp.Body, model.ErrorTag))
		return
	}
	_, _ = fmt.Fprintf(w, "%d %s, %s, %d headers in %dms\n",
		resp.StatusCode, http.StatusText(int(resp.StatusCode)),
		humanize.Bytes(uint64(len(resp.Body))), len(resp.Headers), resp.DurationMs)
}
