package executor

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// readText reads the whole body and decodes it to UTF-8 using the charset
// declared in Content-Type. Without a usable charset the body is treated as
// UTF-8, and invalid sequences become U+FFFD. A leading UTF-8 BOM is dropped
// whether or not the charset was declared.
func readText(res *http.Response) (string, error) {
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	text, err := bodyEncoding(res.Header.Get("Content-Type")).NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding response body: %w", err)
	}
	return string(text), nil
}

func bodyEncoding(contentType string) encoding.Encoding {
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			if label := params["charset"]; label != "" {
				enc, name := charset.Lookup(label)
				if name == "utf-8" {
					return unicode.UTF8BOM
				}
				if enc != nil {
					return enc
				}
			}
		}
	}
	return unicode.UTF8BOM
}
