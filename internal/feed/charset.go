package feed

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

var xmlDeclEncoding = regexp.MustCompile(`^(\s*<\?xml[^>]*?encoding\s*=\s*)["'][^"']*["']`)

// toUTF8 makes a best effort at turning a feed body into utf-8.
//
// Valid utf-8 is kept as is. Anything else goes through charset detection, and
// when that fails the invalid bytes are dropped. The xml declaration is
// rewritten to match so the parser doesn't decode a second time.
func toUTF8(body []byte) []byte {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))

	if !utf8.Valid(body) {
		body = decode(body)
	}

	return xmlDeclEncoding.ReplaceAll(body, []byte(`${1}"utf-8"`))
}

func decode(body []byte) []byte {
	res, err := chardet.NewTextDetector().DetectBest(body)
	if err != nil || res.Charset == "" {
		return []byte(strings.ToValidUTF8(string(body), ""))
	}

	enc, err := htmlindex.Get(res.Charset)
	if err != nil {
		return []byte(strings.ToValidUTF8(string(body), ""))
	}

	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return []byte(strings.ToValidUTF8(string(body), ""))
	}

	return out
}
