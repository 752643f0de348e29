package htmlx

import (
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Quarterly Results</title></head>
<body>
<h1>Quarterly Results</h1>
<p>Revenue grew in the <b>first</b> quarter.</p>
<a href="/markets/stocks.html">Stocks</a>
<a href="https://other.example.net/analysis">Analysis</a>
<a name="anchor-without-href">skip me</a>
<a href=" relative/page.html ">Relative</a>
</body>
</html>`

func TestParse(t *testing.T) {
	p := NewParser()

	doc, err := p.Parse([]byte(samplePage))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc == nil {
		t.Fatal("expected a document")
	}

	t.Run("title", func(t *testing.T) {
		if got := doc.Title(); got != "Quarterly Results" {
			t.Fatalf("title = %q", got)
		}
	})

	t.Run("text keeps document order and case", func(t *testing.T) {
		idxRevenue := strings.Index(doc.Text, "Revenue grew in the ")
		idxFirst := strings.Index(doc.Text, "first")
		idxQuarter := strings.Index(doc.Text, " quarter.")
		if idxRevenue < 0 || idxFirst < 0 || idxQuarter < 0 {
			t.Fatalf("text missing fragments: %q", doc.Text)
		}
		if !(idxRevenue < idxFirst && idxFirst < idxQuarter) {
			t.Fatalf("text out of order: %q", doc.Text)
		}
	})

	t.Run("hrefs in document order", func(t *testing.T) {
		got := doc.Hrefs()
		want := []string{
			"/markets/stocks.html",
			"https://other.example.net/analysis",
			" relative/page.html ",
		}
		if len(got) != len(want) {
			t.Fatalf("hrefs = %v", got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("hrefs[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})
}

func TestParseEmptyInput(t *testing.T) {
	p := NewParser()
	doc, err := p.Parse(nil)
	if err != nil {
		t.Fatalf("parse nil: %v", err)
	}
	if doc != nil {
		t.Fatal("nil input should yield no document")
	}
	if doc.Title() != "" || doc.Hrefs() != nil {
		t.Fatal("nil doc accessors should be empty")
	}
}

func TestParseMalformed(t *testing.T) {
	p := NewParser()
	doc, err := p.Parse([]byte("<p>unclosed <b>tag<a href='x'>link"))
	if err != nil {
		t.Fatalf("malformed html should still parse: %v", err)
	}
	if doc == nil {
		t.Fatal("expected best-effort document")
	}
	if got := doc.Hrefs(); len(got) != 1 || got[0] != "x" {
		t.Fatalf("hrefs = %v", got)
	}
}

func TestParserReuse(t *testing.T) {
	p := NewParser()
	first, err := p.Parse([]byte("<title>A</title><p>alpha</p>"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Parse([]byte("<title>B</title><p>beta</p>"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(second.Text, "alpha") {
		t.Fatalf("parser state leaked between parses: %q", second.Text)
	}
	if first.Title() != "A" || second.Title() != "B" {
		t.Fatalf("titles = %q, %q", first.Title(), second.Title())
	}
}
