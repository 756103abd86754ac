package cachepath

import (
	"path/filepath"
	"testing"
)

func TestKeyKnownVector(t *testing.T) {
	// Interoperability vector: every application sharing the cache derives
	// this exact name for this URI.
	got := Key("file:///home/jens/photos/me.png")
	want := "c6ee772d9e49320e97ec29a7eb5b1697"
	if got != want {
		t.Errorf("Key() = %s, want %s", got, want)
	}
}

func TestKeyDeterministic(t *testing.T) {
	uri := "file:///tmp/a.jpg"
	first := Key(uri)

	if len(first) != 32 {
		t.Errorf("Key() length = %d, want 32", len(first))
	}
	for i := 0; i < 10; i++ {
		if got := Key(uri); got != first {
			t.Fatalf("Key not deterministic: %s vs %s", got, first)
		}
	}
	if Key("file:///tmp/b.jpg") == first {
		t.Error("distinct URIs produced the same key")
	}
}

func TestSizeClasses(t *testing.T) {
	tests := []struct {
		size   Size
		dir    string
		pixels int
	}{
		{Normal, "normal", 128},
		{Large, "large", 256},
		{XLarge, "x-large", 512},
		{XXLarge, "xx-large", 1024},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			if tt.size.Dir() != tt.dir {
				t.Errorf("Dir() = %s, want %s", tt.size.Dir(), tt.dir)
			}
			if tt.size.Pixels() != tt.pixels {
				t.Errorf("Pixels() = %d, want %d", tt.size.Pixels(), tt.pixels)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    Size
		wantErr bool
	}{
		{"normal", Normal, false},
		{"128", Normal, false},
		{"large", Large, false},
		{"256", Large, false},
		{"x-large", XLarge, false},
		{"512", XLarge, false},
		{"xx-large", XXLarge, false},
		{"1024", XXLarge, false},
		{"huge", Normal, true},
		{"", Normal, true},
		{"64", Normal, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseSize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestThumbnailPathDistinctPerSize(t *testing.T) {
	root := "/cache/thumbnails"
	key := "c6ee772d9e49320e97ec29a7eb5b1697"

	seen := make(map[string]Size)
	for _, size := range All() {
		p := ThumbnailPath(root, key, size)

		if prev, dup := seen[p]; dup {
			t.Errorf("size classes %v and %v collide on %s", prev, size, p)
		}
		seen[p] = size

		want := filepath.Join(root, size.Dir(), key+".png")
		if p != want {
			t.Errorf("ThumbnailPath(%v) = %s, want %s", size, p, want)
		}
	}
}

func TestFailPath(t *testing.T) {
	got := FailPath("/cache/thumbnails", "myapp-1.0", "abc123")
	want := filepath.Join("/cache/thumbnails", "fail", "myapp-1.0", "abc123.png")
	if got != want {
		t.Errorf("FailPath() = %s, want %s", got, want)
	}
}

func TestDefaultRoot(t *testing.T) {
	t.Run("Explicit override wins", func(t *testing.T) {
		t.Setenv("THUMBNAIL_CACHE_DIR", "/var/cache/thumbs")
		t.Setenv("XDG_CACHE_HOME", "/ignored")
		if got := DefaultRoot(); got != "/var/cache/thumbs" {
			t.Errorf("DefaultRoot() = %s, want /var/cache/thumbs", got)
		}
	})

	t.Run("XDG cache home", func(t *testing.T) {
		t.Setenv("THUMBNAIL_CACHE_DIR", "")
		t.Setenv("XDG_CACHE_HOME", "/home/u/.cache")
		want := filepath.Join("/home/u/.cache", "thumbnails")
		if got := DefaultRoot(); got != want {
			t.Errorf("DefaultRoot() = %s, want %s", got, want)
		}
	})

	t.Run("Home fallback", func(t *testing.T) {
		t.Setenv("THUMBNAIL_CACHE_DIR", "")
		t.Setenv("XDG_CACHE_HOME", "")
		got := DefaultRoot()
		if filepath.Base(got) != "thumbnails" {
			t.Errorf("DefaultRoot() = %s, want .../thumbnails", got)
		}
	})
}
