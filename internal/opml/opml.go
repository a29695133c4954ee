// Package opml reads the list of subscribed feeds out of an OPML document.
package opml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// ParseFile opens the OPML file at path and returns its feed urls.
func ParseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening opml file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse returns the xmlUrl of every outline element, at any depth, in
// document order. Outlines without one (folders) are skipped.
func Parse(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	// Plenty of exported OPML files declare a legacy charset
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(label)
		if err != nil {
			return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
		}

		return enc.NewDecoder().Reader(input), nil
	}

	var (
		urls    []string
		sawRoot bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error parsing opml: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if start.Name.Local != "outline" {
			continue
		}

		for _, attr := range start.Attr {
			if attr.Name.Local != "xmlUrl" {
				continue
			}
			if u := strings.TrimSpace(attr.Value); u != "" {
				urls = append(urls, u)
			}
		}
	}

	if !sawRoot {
		return nil, errors.New("error parsing opml: empty document")
	}

	return urls, nil
}
