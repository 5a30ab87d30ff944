package plugin

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPortabilize(t *testing.T) {
	vendor := filepath.FromSlash("/srv/app/vendor")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"under vendor", filepath.FromSlash("/srv/app/vendor/acme/foo/src"), "<vendor-dir>/acme/foo/src"},
		{"vendor itself", vendor, "<vendor-dir>"},
		{"sibling with shared prefix", filepath.FromSlash("/srv/app/vendor-old/acme"), filepath.FromSlash("/srv/app/vendor-old/acme")},
		{"outside", filepath.FromSlash("/opt/plugins/foo"), filepath.FromSlash("/opt/plugins/foo")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Portabilize(tt.path, vendor))
		})
	}
}

func TestPortabilize_RootVendorDir(t *testing.T) {
	root := string(filepath.Separator)

	assert.Equal(t, "<vendor-dir>/a/b", Portabilize(filepath.FromSlash("/a/b"), root))
	assert.Equal(t, "<vendor-dir>/", Portabilize(root, root))
	assert.Equal(t, filepath.FromSlash("/a/b"), Expand("<vendor-dir>/a/b", root))
	assert.Equal(t, root, Expand("<vendor-dir>/", root))
}

func TestExpand(t *testing.T) {
	vendor := filepath.FromSlash("/srv/app/vendor")

	assert.Equal(t, filepath.FromSlash("/srv/app/vendor/acme/foo"), Expand("<vendor-dir>/acme/foo", vendor))
	assert.Equal(t, vendor, Expand("<vendor-dir>", vendor))
	assert.Equal(t, "/opt/plugins/foo", Expand("/opt/plugins/foo", vendor))
}

// segment draws a single path segment.
func segment() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-zA-Z0-9_.-]{1,12}`).Filter(func(s string) bool {
		return s != "." && s != ".."
	})
}

func absPathGen(minSegs, maxSegs int) *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		segs := rapid.SliceOfN(segment(), minSegs, maxSegs).Draw(t, "segments")
		return filepath.Join(append([]string{string(filepath.Separator)}, segs...)...)
	})
}

func TestPortabilize_RoundTripUnderVendor(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		vendor := absPathGen(1, 4).Draw(t, "vendor")
		rel := rapid.SliceOfN(segment(), 0, 5).Draw(t, "rel")
		path := filepath.Join(append([]string{vendor}, rel...)...)

		portable := Portabilize(path, vendor)
		if !strings.HasPrefix(portable, VendorDirToken) {
			t.Fatalf("Portabilize(%q, %q) = %q, want token prefix", path, vendor, portable)
		}
		if got := Expand(portable, vendor); got != path {
			t.Fatalf("Expand(Portabilize(%q)) = %q", path, got)
		}
	})
}

func TestPortabilize_RoundTripUnderRoot(t *testing.T) {
	root := string(filepath.Separator)
	rapid.Check(t, func(t *rapid.T) {
		path := absPathGen(1, 6).Draw(t, "path")

		portable := Portabilize(path, root)
		if !strings.HasPrefix(portable, VendorDirToken+"/") {
			t.Fatalf("Portabilize(%q, %q) = %q, want token prefix", path, root, portable)
		}
		if got := Expand(portable, root); got != path {
			t.Fatalf("Expand(Portabilize(%q)) = %q", path, got)
		}
	})
}

func TestPortabilize_OutsideVendorUnchanged(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		vendor := absPathGen(1, 4).Draw(t, "vendor")
		path := absPathGen(1, 6).Draw(t, "path")

		v := filepath.ToSlash(vendor)
		p := filepath.ToSlash(path)
		if strings.HasPrefix(p+"/", v+"/") {
			t.Skip("path is under vendor")
		}
		if got := Portabilize(path, vendor); got != path {
			t.Fatalf("Portabilize(%q, %q) = %q, want unchanged", path, vendor, got)
		}
	})
}
