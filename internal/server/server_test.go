package server

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", "home")
	writeFile(t, dir, "about/index.html", "about")
	writeFile(t, dir, "post.html", "post")
	writeFile(t, dir, "css/site.css", "body{}")

	tests := []struct {
		url  string
		want string // relative to dir, "" means not found
	}{
		{"/", "index.html"},
		{"/about/", filepath.Join("about", "index.html")},
		{"/about", filepath.Join("about", "index.html")},
		{"/post", "post.html"},
		{"/post.html", "post.html"},
		{"/css/site.css", filepath.Join("css", "site.css")},
		{"/missing", ""},
		{"/../etc/passwd", ""},
	}
	for _, tt := range tests {
		got := ResolvePath(dir, tt.url)
		want := ""
		if tt.want != "" {
			want = filepath.Join(dir, tt.want)
		}
		if got != want {
			t.Errorf("ResolvePath(%q) = %q, want %q", tt.url, got, want)
		}
	}
}

func TestInjectLiveReloadBeforeBody(t *testing.T) {
	html := []byte("<html><body><p>hi</p></body></html>")
	out := InjectLiveReload(html, 8080)

	if !bytes.Contains(out, []byte("__janos/ws")) {
		t.Fatal("script not injected")
	}
	scriptIdx := bytes.Index(out, []byte("<script>"))
	bodyIdx := bytes.Index(out, []byte("</body>"))
	if scriptIdx == -1 || bodyIdx == -1 || scriptIdx > bodyIdx {
		t.Errorf("script not before </body>: %s", out)
	}
	if !strings.Contains(string(out), ":8080/") {
		t.Error("port not substituted")
	}
}

func TestInjectLiveReloadNoBody(t *testing.T) {
	out := InjectLiveReload([]byte("<p>fragment</p>"), 3000)
	if !bytes.HasPrefix(out, []byte("<p>fragment</p>")) || !bytes.Contains(out, []byte("__janos/ws")) {
		t.Errorf("script not appended: %s", out)
	}
}

func TestHubClientCount(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	if n := h.ClientCount(); n != 0 {
		t.Errorf("fresh hub has %d clients", n)
	}
	// Broadcast with no clients must not block.
	for i := 0; i < 100; i++ {
		h.Broadcast([]byte("reload"))
	}
}
