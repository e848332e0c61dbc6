// Command example fetches one URL through the shim and prints the JSON
// outcome. Built natively it calls the shim in-process; built for wasip1 it
// must run under "ababil run", which provides the host function.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ababil/ababil/guest"
	"github.com/ababil/ababil/model"
)

func main() {
	method := flag.String("X", "GET", "HTTP method")
	accept := flag.String("accept", "", "value for the Accept header")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: example [-X method] [-accept type] URL")
		os.Exit(2)
	}

	req := model.Request{Method: *method, URL: flag.Arg(0)}
	if *accept != "" {
		req.Headers = model.Headers{{Name: "Accept", Value: *accept}}
	}

	resp, err := guest.NewFetcher().Fetch(context.Background(), req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	out, err := resp.Encode()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
	if resp.Failed() {
		os.Exit(1)
	}
}
