// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.microglot.org/fnc.go/internal/exc"
	"gopkg.microglot.org/fnc.go/internal/idl"
)

const (
	fileExt = ".fn" // fn source text
)

var knownExts = map[string]idl.FileKind{
	fileExt: idl.FileKindFn,
}

// KindOf returns the kind of file implied by the extension of the given path.
func KindOf(name string) idl.FileKind {
	return knownExts[path.Ext(name)]
}

var _ idl.FileSystem = FileSystemMulti{}

// FileSystemMulti searches each backend in order and returns the first match.
// Writes must go to one of the backends directly.
type FileSystemMulti []idl.FileSystem

func (r FileSystemMulti) Open(ctx context.Context, uri string) ([]idl.File, error) {
	for _, backend := range r {
		files, err := backend.Open(ctx, uri)
		if err == nil {
			return files, nil
		}
		// A root that cannot be read hides the roots after it.
		if !exc.HasCode(err, exc.CodeFileNotFound) {
			return nil, err
		}
	}
	return nil, exc.Newf(exc.Location{URI: uri}, exc.CodeFileNotFound, "could not find %s in any root", uri)
}

func (r FileSystemMulti) Write(ctx context.Context, uri string, content string) error {
	return exc.New(exc.Location{URI: uri}, exc.CodeUnsuportedFileSystemOperation, "cannot write to a composite file system")
}

// FileFilter selects the entries of a directory target that become sources.
type FileFilter func(ctx context.Context, fname string) bool

type FileSystemLocalOption func(*localFS)

// WithOptionFSFactory replaces os.DirFS as the source of the fs.FS that is
// rooted at the local root directory.
func WithOptionFSFactory(v func(root string) fs.FS) FileSystemLocalOption {
	return func(l *localFS) {
		l.dirFS = v
	}
}

// WithOptionFileFilter replaces the default directory filter, which accepts
// only .fn files.
func WithOptionFileFilter(v FileFilter) FileSystemLocalOption {
	return func(l *localFS) {
		l.accept = v
	}
}

type localFS struct {
	root   string
	dirFS  func(string) fs.FS
	accept FileFilter
}

// NewFileSystemLocal serves sources below root. Every URI is resolved as if
// root were "/".
func NewFileSystemLocal(root string, options ...FileSystemLocalOption) (idl.FileSystem, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, exc.WrapUnknown(exc.Location{URI: root}, err)
	}
	l := &localFS{
		root:  abs,
		dirFS: os.DirFS,
		accept: func(ctx context.Context, fname string) bool {
			return KindOf(fname) != idl.FileKindNone
		},
	}
	for _, option := range options {
		option(l)
	}
	return l, nil
}

// Open returns a single file or, for a directory, every accepted file directly
// inside it in name order.
func (l *localFS) Open(ctx context.Context, uri string) ([]idl.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := resolve(uri)
	dir := l.dirFS(l.root)
	rel := relative(name)
	info, err := fs.Stat(dir, rel)
	if err != nil {
		return nil, pathErr(name, err)
	}
	if !info.IsDir() {
		return []idl.File{l.file(dir, rel)}, nil
	}
	entries, err := fs.ReadDir(dir, rel)
	if err != nil {
		return nil, pathErr(name, err)
	}
	files := make([]idl.File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !l.accept(ctx, entry.Name()) {
			continue
		}
		files = append(files, l.file(dir, path.Join(rel, entry.Name())))
	}
	if len(files) < 1 {
		return nil, exc.Newf(exc.Location{URI: name}, exc.CodeFileNotFound, "directory %s contains no %s files", name, fileExt)
	}
	return files, nil
}

func (l *localFS) file(dir fs.FS, rel string) idl.File {
	return NewFileFN("/"+rel, func() (io.ReadCloser, error) {
		return dir.Open(rel)
	}, KindOf(rel))
}

// Write creates or replaces a file below root, creating parent directories
// as needed.
func (l *localFS) Write(ctx context.Context, uri string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dest := filepath.Join(l.root, filepath.FromSlash(resolve(uri)))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return pathErr(uri, err)
	}
	if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
		return pathErr(uri, err)
	}
	return nil
}

// resolve turns a file URI or a slash separated path into a clean path
// rooted at "/". Anything without the file scheme is a plain path.
func resolve(uri string) string {
	name := uri
	if strings.HasPrefix(uri, "file:") {
		if u, err := url.Parse(uri); err == nil {
			name = u.Path
		}
	}
	return path.Clean("/" + filepath.ToSlash(name))
}

// relative converts a resolved path into the un-rooted form that fs.FS
// requires, which is "." for the root itself.
func relative(name string) string {
	rel := strings.TrimPrefix(name, "/")
	if rel == "" {
		return "."
	}
	return rel
}

func pathErr(name string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return exc.Wrap(exc.Location{URI: name}, exc.CodeFileNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return exc.Wrap(exc.Location{URI: name}, exc.CodePermissionDenied, err)
	default:
		return exc.WrapUnknown(exc.Location{URI: name}, err)
	}
}
