package urlparse

import (
	"reflect"
	"testing"
)

func TestParseWithQuery(t *testing.T) {
	p := Parse("/taco?style=mexicanos&meat=chorizo")

	if p.Path != "/taco" {
		t.Errorf("Path = %q, want %q", p.Path, "/taco")
	}
	if p.QueryString != "style=mexicanos&meat=chorizo" {
		t.Errorf("QueryString = %q, want %q", p.QueryString, "style=mexicanos&meat=chorizo")
	}
	want := map[string]string{"style": "mexicanos", "meat": "chorizo"}
	if !reflect.DeepEqual(p.Query, want) {
		t.Errorf("Query = %v, want %v", p.Query, want)
	}
}

func TestParseWithoutQuery(t *testing.T) {
	p := Parse("/taco")

	if p.Path != "/taco" {
		t.Errorf("Path = %q, want %q", p.Path, "/taco")
	}
	if p.QueryString != "" {
		t.Errorf("QueryString = %q, want empty", p.QueryString)
	}
	if p.Query == nil || len(p.Query) != 0 {
		t.Errorf("Query = %v, want empty non-nil map", p.Query)
	}
}

func TestParseDecodesQueryParts(t *testing.T) {
	p := Parse("/taco?meat%20ingredients=chorizo%20barbacoa%20steak")

	want := map[string]string{"meat ingredients": "chorizo barbacoa steak"}
	if !reflect.DeepEqual(p.Query, want) {
		t.Errorf("Query = %v, want %v", p.Query, want)
	}
}

func TestParseEqualsInValue(t *testing.T) {
	p := Parse("/taco?meat=chor=izo")

	if got := p.Query["meat"]; got != "chor=izo" {
		t.Errorf("Query[meat] = %q, want %q", got, "chor=izo")
	}
}

func TestParseSplitsOnFirstQuestionMark(t *testing.T) {
	p := Parse("/search?q=what?&x=1")

	if p.Path != "/search" {
		t.Errorf("Path = %q, want %q", p.Path, "/search")
	}
	if p.QueryString != "q=what?&x=1" {
		t.Errorf("QueryString = %q, want %q", p.QueryString, "q=what?&x=1")
	}
	if p.Query["q"] != "what?" {
		t.Errorf("Query[q] = %q, want %q", p.Query["q"], "what?")
	}
}

func TestParseTolerantOfMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want map[string]string
	}{
		{"missing equals", "/a?flag", map[string]string{"flag": ""}},
		{"bad escape kept verbatim", "/a?k=%zz", map[string]string{"k": "%zz"}},
		{"truncated escape", "/a?k%2=v", map[string]string{"k%2": "v"}},
		{"empty segments skipped", "/a?x=1&&y=2&", map[string]string{"x": "1", "y": "2"}},
		{"plus is not space", "/a?q=a+b", map[string]string{"q": "a+b"}},
		{"last duplicate wins", "/a?k=1&k=2", map[string]string{"k": "2"}},
		{"empty key", "/a?=v", map[string]string{"": "v"}},
		{"bare question mark", "/a?", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.url).Query
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q).Query = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestParseEmptyURL(t *testing.T) {
	p := Parse("")
	if p.Path != "" || p.QueryString != "" || len(p.Query) != 0 {
		t.Errorf("Parse(\"\") = %+v, want zero parts", p)
	}
}

func TestValuesKeepsDuplicates(t *testing.T) {
	p := Parse("/a?tag=go&tag=web&q=x%26y")

	v := p.Values()
	if got := v["tag"]; !reflect.DeepEqual(got, []string{"go", "web"}) {
		t.Errorf("Values()[tag] = %v, want [go web]", got)
	}
	if got := v.Get("q"); got != "x&y" {
		t.Errorf("Values().Get(q) = %q, want %q", got, "x&y")
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		path  string
		query map[string]string
		want  string
	}{
		{"/a", nil, "/a"},
		{"/a", map[string]string{"b": "2", "a": "1"}, "/a?a=1&b=2"},
		{"/s", map[string]string{"q": "tacos y salsa"}, "/s?q=tacos%20y%20salsa"},
		{"/s", map[string]string{"eq": "a=b&c"}, "/s?eq=a%3Db%26c"},
	}

	for _, tt := range tests {
		if got := Join(tt.path, tt.query); got != tt.want {
			t.Errorf("Join(%q, %v) = %q, want %q", tt.path, tt.query, got, tt.want)
		}
	}
}

func TestJoinParseRoundTrip(t *testing.T) {
	query := map[string]string{"q": "a+b c", "k": "v=1&2"}
	p := Parse(Join("/x", query))

	if p.Path != "/x" {
		t.Errorf("Path = %q, want /x", p.Path)
	}
	if !reflect.DeepEqual(p.Query, query) {
		t.Errorf("Query = %v, want %v", p.Query, query)
	}
}
