package history

import (
	"testing"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		url  string
		want Location
	}{
		{"/beans/rice?plantains=yes", Location{Pathname: "/beans/rice", Search: "?plantains=yes"}},
		{"/beans", Location{Pathname: "/beans"}},
		{"/beans?", Location{Pathname: "/beans"}},
	}

	for _, tt := range tests {
		got := ParseLocation(tt.url)
		if got != tt.want {
			t.Errorf("ParseLocation(%q) = %+v, want %+v", tt.url, got, tt.want)
		}
	}

	if got := (Location{Pathname: "/beans/rice", Search: "?plantains=yes"}).URL(); got != "/beans/rice?plantains=yes" {
		t.Errorf("URL() = %q", got)
	}
}

func TestMemoryCurrentDefaultsToRoot(t *testing.T) {
	m := NewMemory("")
	if got := m.Current().URL(); got != "/" {
		t.Errorf("Current() = %q, want /", got)
	}
}

func TestMemoryPushNotifiesListeners(t *testing.T) {
	m := NewMemory("/")

	var got []string
	m.Listen(func(loc Location) { got = append(got, loc.URL()) })

	m.Push("/a")
	m.Push("/b?x=1")

	if len(got) != 2 || got[0] != "/a" || got[1] != "/b?x=1" {
		t.Errorf("notifications = %v, want [/a /b?x=1]", got)
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
}

func TestMemoryBackForward(t *testing.T) {
	m := NewMemory("/home")
	m.Push("/a")
	m.Push("/b")

	var got []string
	m.Listen(func(loc Location) { got = append(got, loc.Pathname) })

	if !m.Back() {
		t.Fatal("Back() = false, want true")
	}
	if !m.Back() {
		t.Fatal("Back() = false, want true")
	}
	if m.Back() {
		t.Error("Back() at start of history should be false")
	}
	if !m.Forward() {
		t.Fatal("Forward() = false, want true")
	}

	want := []string{"/a", "/home", "/a"}
	if len(got) != len(want) {
		t.Fatalf("notifications = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Pushing from the middle drops forward entries.
	m.Push("/c")
	if m.Forward() {
		t.Error("Forward() after push should be false")
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
}

func TestMemoryReplaceAndParams(t *testing.T) {
	m := NewMemory("/search")

	m.Navigate("/search?q=tacos", WithReplace(), WithParams(map[string]string{"page": "2"}))

	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after replace", m.Len())
	}
	cur := m.Current()
	if cur.Pathname != "/search" || cur.Search != "?page=2&q=tacos" {
		t.Errorf("Current() = %+v", cur)
	}
}

func TestMemoryUnlisten(t *testing.T) {
	m := NewMemory("/")

	calls := 0
	unlisten := m.Listen(func(Location) { calls++ })
	m.Push("/a")
	unlisten()
	unlisten()
	m.Push("/b")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestMemoryListenerMayNavigate(t *testing.T) {
	m := NewMemory("/")

	m.Listen(func(loc Location) {
		if loc.Pathname == "/old" {
			m.Replace("/new")
		}
	})
	m.Push("/old")

	if got := m.Current().Pathname; got != "/new" {
		t.Errorf("Current() = %q, want /new", got)
	}
}
