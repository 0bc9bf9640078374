package handlers

import (
	"net/http"
	"os"
	"path"
	"strings"
)

// StaticFiles serves the gallery site from root. "/" maps to index.html;
// directory listings and dot files are not served.
func StaticFiles(root string) http.Handler {
	return http.FileServer(siteFS{http.Dir(root)})
}

type siteFS struct {
	fs http.FileSystem
}

func (s siteFS) Open(name string) (http.File, error) {
	for _, part := range strings.Split(path.Clean(name), "/") {
		if strings.HasPrefix(part, ".") && part != "." {
			return nil, os.ErrNotExist
		}
	}

	f, err := s.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := s.fs.Open(path.Join(name, "index.html"))
		if err != nil {
			f.Close()
			return nil, os.ErrNotExist
		}
		index.Close()
	}
	return f, nil
}
