package cookie

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chromedp/cdproto/network"
)

func TestLoadJar(t *testing.T) {
	t.Parallel()

	t.Run("load valid jar", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "cookies.json")
		content := `[
  {
    "name": "session",
    "value": "abc123",
    "domain": "docs.example.com",
    "path": "/",
    "expires": 1893456000.5,
    "httpOnly": true,
    "secure": true,
    "sameSite": "Lax"
  },
  {
    "name": "pref",
    "value": "dark",
    "domain": "docs.example.com",
    "unknownField": "ignored"
  }
]`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		jar, err := LoadJar(path)
		if err != nil {
			t.Fatalf("LoadJar() error = %v", err)
		}
		if len(jar) != 2 {
			t.Fatalf("len(jar) = %d, want 2", len(jar))
		}
		if jar[0].Name != "session" || jar[0].Value != "abc123" {
			t.Errorf("unexpected first cookie: %+v", jar[0])
		}
		if !jar[0].HTTPOnly || !jar[0].Secure {
			t.Error("httpOnly/secure flags not loaded")
		}
		if jar[0].Expires != 1893456000.5 {
			t.Errorf("Expires = %v, want fractional epoch seconds preserved", jar[0].Expires)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadJar(filepath.Join(t.TempDir(), "missing.json")); err == nil {
			t.Error("LoadJar() should fail for a missing file")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadJar(path); err == nil {
			t.Error("LoadJar() should fail for invalid JSON")
		}
	})
}

func TestWriteJarRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json")
	jar := Jar{
		{Name: "session", Value: "abc", Domain: "example.com", Path: "/", Secure: true},
	}

	if err := WriteJar(path, jar); err != nil {
		t.Fatalf("WriteJar() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("jar permissions = %o, want 600", perm)
	}

	got, err := LoadJar(path)
	if err != nil {
		t.Fatalf("LoadJar() error = %v", err)
	}
	if len(got) != 1 || got[0] != jar[0] {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestJarParams(t *testing.T) {
	t.Parallel()

	jar := Jar{
		{Name: "session", Value: "abc", Domain: "example.com", Path: "/", Expires: 1893456000, SameSite: "Strict"},
		{Name: "temp", Value: "x", Domain: "example.com"},
	}

	params := jar.Params()
	if len(params) != 2 {
		t.Fatalf("len(params) = %d, want 2", len(params))
	}
	if params[0].Expires == nil {
		t.Error("persistent cookie should carry an expiry")
	}
	if params[0].SameSite != network.CookieSameSiteStrict {
		t.Errorf("SameSite = %v, want Strict", params[0].SameSite)
	}
	if params[1].Expires != nil {
		t.Error("session cookie should have nil expiry")
	}
}

func TestFromNetworkCookies(t *testing.T) {
	t.Parallel()

	jar := FromNetworkCookies([]*network.Cookie{
		{
			Name:     "session",
			Value:    "abc",
			Domain:   "example.com",
			Path:     "/",
			Expires:  1893456000,
			HTTPOnly: true,
			Secure:   true,
			SameSite: network.CookieSameSiteLax,
		},
	})

	if len(jar) != 1 {
		t.Fatalf("len(jar) = %d, want 1", len(jar))
	}
	c := jar[0]
	if c.Name != "session" || !c.HTTPOnly || !c.Secure || c.SameSite != "Lax" {
		t.Errorf("unexpected cookie: %+v", c)
	}
}
