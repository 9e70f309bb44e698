// Package content loads pages and layout documents from a content tree.
//
// A content tree is a directory of JSON-encoded documents:
//
//	_layout.json         layout document of the directory it sits in
//	_layouts/<id>.json   named layout, reachable through extends="<id>"
//	**/*.json            pages
//
// Files and directories whose names start with "_" are never pages.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentic-research/runekit/api"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

const (
	LayoutFile = "_layout.json"
	LayoutsDir = "_layouts"
	Ext        = ".json"
)

// PageFile is a page found in the content tree.
type PageFile struct {
	Path string // file path inside the tree, slash separated, rooted at "/"
	URL  string
	Dir  string
}

// Tree reads documents from a billy filesystem.
type Tree struct {
	fs billy.Filesystem
}

// New wraps fs.
func New(fs billy.Filesystem) *Tree {
	return &Tree{fs: fs}
}

// Open returns a tree rooted at dir on the local disk.
func Open(dir string) (*Tree, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s is not a directory", dir)
	}
	return New(osfs.New(dir)), nil
}

// LayoutDocument reads dir/_layout.json.
func (t *Tree) LayoutDocument(dir string) (*api.Node, bool, error) {
	return t.readOptional(path.Join(cleanDir(dir), LayoutFile))
}

// NamedLayout reads _layouts/<id>.json. An id that cannot name a file in
// _layouts is reported as not found.
func (t *Tree) NamedLayout(id string) (*api.Node, bool, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return nil, false, nil
	}
	return t.readOptional(path.Join("/", LayoutsDir, id+Ext))
}

// ReadDocument decodes the document at p.
func (t *Tree) ReadDocument(p string) (*api.Node, error) {
	data, err := util.ReadFile(t.fs, p)
	if err != nil {
		return nil, err
	}
	var doc api.Node
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	return &doc, nil
}

func (t *Tree) readOptional(p string) (*api.Node, bool, error) {
	doc, err := t.ReadDocument(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// Pages lists every page in the tree, sorted by URL.
func (t *Tree) Pages() ([]PageFile, error) {
	var pages []PageFile
	err := util.Walk(t.fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name := info.Name()
		if p != "/" && strings.HasPrefix(name, "_") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || path.Ext(name) != Ext {
			return nil
		}
		p = "/" + strings.TrimPrefix(filepath.ToSlash(p), "/")
		pages = append(pages, PageFile{Path: p, URL: URLFor(p), Dir: path.Dir(p)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk content: %w", err)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].URL < pages[j].URL })
	return pages, nil
}

// URLFor maps a page file to its URL: the extension is dropped and
// "index" pages stand for their directory.
func URLFor(p string) string {
	p = strings.TrimSuffix(cleanDir(p), Ext)
	if path.Base(p) == "index" {
		p = path.Dir(p)
	}
	return p
}

func cleanDir(dir string) string {
	return path.Clean("/" + strings.TrimPrefix(filepath.ToSlash(dir), "/"))
}
