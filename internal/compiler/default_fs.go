// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"path/filepath"

	"gopkg.microglot.org/fnc.go/internal/fs"
	"gopkg.microglot.org/fnc.go/internal/idl"
)

// NewDefaultFS returns the system wide search roots for fn sources.
func NewDefaultFS(lookup func(string) (string, bool)) (idl.FileSystem, error) {
	return NewRootsFS(getDefaultRoots(lookup))
}

// NewRootsFS searches the given roots in order.
func NewRootsFS(roots []string) (fs.FileSystemMulti, error) {
	f := make(fs.FileSystemMulti, 0, len(roots))
	for _, root := range roots {
		absRoot, errAbs := filepath.Abs(root)
		if errAbs != nil {
			return nil, errAbs
		}
		rf, err := fs.NewFileSystemLocal(absRoot)
		if err != nil {
			return nil, err
		}
		f = append(f, rf)
	}
	return f, nil
}
