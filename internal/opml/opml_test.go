package opml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOPML = `<?xml version="1.0" encoding="UTF-8"?>
<opml version="2.0">
  <head><title>Subscriptions</title></head>
  <body>
    <outline text="Machine Learning" title="Machine Learning">
      <outline type="rss" text="One" xmlUrl="https://one.example.com/feed.xml"/>
      <outline type="rss" text="Two" xmlUrl=" https://two.example.com/rss "/>
    </outline>
    <outline type="rss" text="Three" xmlUrl="https://three.example.com/atom"/>
    <outline type="rss" text="Empty" xmlUrl=""/>
  </body>
</opml>`

func TestParse(t *testing.T) {
	urls, err := Parse(strings.NewReader(testOPML))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://one.example.com/feed.xml",
		"https://two.example.com/rss",
		"https://three.example.com/atom",
	}, urls)
}

func TestParse_LegacyCharset(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<opml version=\"1.0\"><body>" +
		"<outline text=\"Caf\xe9\" xmlUrl=\"https://cafe.example.com/rss?q=cr\xe8me\"/>" +
		"</body></opml>"

	urls, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cafe.example.com/rss?q=crème"}, urls)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "unclosed element",
			input: `<opml><body><outline xmlUrl="https://a.example.com"></body></opml>`,
		},
		{
			name:  "unknown charset",
			input: `<?xml version="1.0" encoding="x-not-a-charset"?><opml><body/></opml>`,
		},
		{
			name:  "empty document",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.xml")
	require.NoError(t, os.WriteFile(path, []byte(testOPML), 0o644))

	urls, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, urls, 3)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}
