package vanilla

import (
	"embed"
	"io/fs"
)

// StylesheetName is the file name of the bundled stylesheet inside AssetsFS.
const StylesheetName = "authform.css"

var (
	//go:embed templates/*.tmpl
	templates embed.FS

	//go:embed assets
	assets embed.FS

	//go:embed assets/authform.css
	stylesheet string
)

// TemplatesFS returns the page and field templates. Paths keep their
// templates/ prefix, which is what WithTemplatesFS expects of overrides too.
func TemplatesFS() fs.FS {
	return templates
}

// AssetsFS returns the static files (currently the stylesheet) rooted at the
// asset directory, ready for http.FileServerFS.
func AssetsFS() fs.FS {
	root, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return root
}
