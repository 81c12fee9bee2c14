// internal/scraper/charset.go
package scraper

import (
	"bytes"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeBody converts body to UTF-8. A BOM, the Content-Type charset or a
// <meta> declaration decides the encoding; without one, valid UTF-8 passes
// through and anything else is sniffed. Undecodable bodies are returned as-is.
func decodeBody(body []byte, contentType string) string {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if !certain {
		if utf8.Valid(body) {
			return string(body)
		}
		if label := detectCharset(body); label != "" {
			if sniffed, err := htmlindex.Get(label); err == nil {
				enc = sniffed
				name, _ = htmlindex.Name(sniffed)
			}
		}
	}
	if name == "utf-8" {
		return string(bytes.TrimPrefix(body, utf8BOM))
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

func detectCharset(body []byte) string {
	result, err := chardet.NewHtmlDetector().DetectBest(body)
	if err != nil || result == nil {
		return ""
	}
	return result.Charset
}
