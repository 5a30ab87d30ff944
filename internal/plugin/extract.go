package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pawkit/pawx/internal/manifest"
)

// DefaultClassFileExt is the extension of class files looked up during
// alias inference.
const DefaultClassFileExt = ".php"

// Extractor builds plugin records from package metadata.
type Extractor struct {
	vendorDir string
	classExt  string
	io        IO
}

// NewExtractor creates an extractor for packages installed under vendorDir.
// Handle deprecation warnings are written to out; nil discards them.
func NewExtractor(vendorDir string, out IO) *Extractor {
	if out == nil {
		out = discardIO{}
	}
	return &Extractor{
		vendorDir: filepath.Clean(vendorDir),
		classExt:  DefaultClassFileExt,
		io:        out,
	}
}

// SetClassFileExt changes the class file extension used for inference.
func (e *Extractor) SetClassFileExt(ext string) {
	e.classExt = ext
}

// Extract validates the package's plugin metadata and returns its record.
// installDir is the directory the package's files were installed to;
// relative autoload paths are resolved against it.
func (e *Extractor) Extract(pkg *manifest.Package, installDir string) (*Record, error) {
	extra := pkg.Extra

	class, _ := extraString(extra, "class")
	basePath, ok := extraString(extra, "basePath")
	if ok {
		basePath = e.resolvePath(basePath, installDir)
	}

	inf := inferAliases(pkg.Autoload.PSR4, installDir, e.classExt, class, basePath)

	if inf.class == "" {
		return nil, &InvalidPluginError{Package: pkg.PrettyName, Reason: ReasonNoClass}
	}
	if inf.basePath == "" {
		return nil, &InvalidPluginError{Package: pkg.PrettyName, Reason: ReasonNoBasePath}
	}

	original, ok := extra["handle"].(string)
	if !ok || !ValidHandle(original) {
		return nil, &InvalidPluginError{Package: pkg.PrettyName, Reason: ReasonInvalidHandle}
	}
	handle := original
	if strings.ToLower(handle) != handle {
		handle = NormalizeHandle(handle)
		e.io.Write(fmt.Sprintf("<warning>%s uses the old plugin handle format (%q). It should be %q.</warning>",
			pkg.PrettyName, original, handle))
	}

	rec := &Record{
		Class:    inf.class,
		BasePath: inf.basePath,
		Handle:   handle,
		Aliases:  inf.aliases,
	}

	rec.Name = pkg.ShortName()
	if v, ok := extraString(extra, "name"); ok {
		rec.Name = v
	}

	rec.Version = pkg.Version
	if v, ok := extraString(extra, "version"); ok {
		rec.Version = v
	}

	rec.Description = pkg.Description
	if v, ok := extraString(extra, "description"); ok {
		rec.Description = v
	}

	rec.Developer = developer(pkg)
	if v, ok := extraString(extra, "developer"); ok {
		rec.Developer = v
	}

	return rec, nil
}

// developer falls back to the first author's name, then to the vendor
// segment of the pretty name.
func developer(pkg *manifest.Package) string {
	if len(pkg.Authors) > 0 && pkg.Authors[0].Name != "" {
		return pkg.Authors[0].Name
	}
	if vendor, ok := pkg.Vendor(); ok {
		return vendor
	}
	return ""
}

// resolvePath makes an explicitly configured path absolute.
func (e *Extractor) resolvePath(path, installDir string) string {
	if strings.HasPrefix(path, VendorDirToken) {
		return Expand(path, e.vendorDir)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(installDir, path)
	}
	return filepath.Clean(path)
}

// inference is the outcome of a pass over the autoload mapping.
type inference struct {
	class    string
	basePath string
	aliases  Aliases
}

// inferAliases derives an alias for every namespace mapped to a single
// directory and, while class or basePath are unknown, tries to infer them:
// a namespace whose directory holds Plugin<ext> supplies the class
// <namespace>Plugin, and the directory holding the class file becomes the
// base path.
func inferAliases(psr4 manifest.NamespaceMap, installDir, ext, class, basePath string) inference {
	out := inference{class: class, basePath: basePath}

	for _, entry := range psr4 {
		if !entry.Single() {
			// No single directory to alias.
			continue
		}

		path := entry.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(installDir, path)
		}
		path = filepath.Clean(path)

		alias := "@" + strings.ReplaceAll(strings.Trim(entry.Namespace, `\`), `\`, "/")
		out.aliases = out.aliases.Set(alias, path)

		if out.class == "" && fileExists(filepath.Join(path, "Plugin"+ext)) {
			out.class = entry.Namespace + "Plugin"
		}

		if out.basePath == "" && out.class != "" && strings.HasPrefix(out.class, entry.Namespace) {
			rel := strings.ReplaceAll(out.class[len(entry.Namespace):], `\`, "/")
			classFile := filepath.Join(path, filepath.FromSlash(rel)+ext)
			if fileExists(classFile) {
				out.basePath = filepath.Dir(classFile)
			}
		}
	}

	return out
}

// extraString returns a scalar value of the extra block as a string.
// Missing, empty and non-scalar values report false.
func extraString(extra map[string]interface{}, key string) (string, bool) {
	v, ok := extra[key]
	if !ok || v == nil {
		return "", false
	}
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case int, int64, uint64, float64, bool:
		s = fmt.Sprint(val)
	default:
		return "", false
	}
	if s == "" {
		return "", false
	}
	return s, true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
