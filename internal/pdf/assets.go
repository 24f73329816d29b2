package pdf

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Assets resolves the static files a generation request needs: the
// pre-printed base document and the logo images embedded into the
// generated pages. Everything is read fresh per request; no caching.
type Assets struct {
	Dir string
}

// Well-known file names under the asset directory.
const (
	sourceDocumentFile = "form.pdf"
	logoProjectFile    = "logo-project.svg"
	logoResidenceFile  = "logo-residence.svg"
)

func NewAssets(dir string) *Assets {
	return &Assets{Dir: dir}
}

// SourceDocument reads the base PDF. Absence is a MissingAssetError:
// it fails the request before any browser is launched.
func (a *Assets) SourceDocument() ([]byte, error) {
	path := filepath.Join(a.Dir, sourceDocumentFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, genErr(KindMissingAsset, "load_source", "", fmt.Errorf("base document %s: %w", path, err))
	}
	return data, nil
}

// LogoDataURI reads an SVG asset and returns it as an inline data URI.
// A missing or unreadable logo degrades to an empty string so the page
// renders without it.
func (a *Assets) LogoDataURI(name string) string {
	path := filepath.Join(a.Dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[PDF] logo asset %s unavailable: %v", path, err)
		return ""
	}
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(data)
}

// ProjectLogo and ResidenceLogo are the two header logos.
func (a *Assets) ProjectLogo() string   { return a.LogoDataURI(logoProjectFile) }
func (a *Assets) ResidenceLogo() string { return a.LogoDataURI(logoResidenceFile) }
