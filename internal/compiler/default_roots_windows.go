// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package compiler

import (
	"path/filepath"
)

func getDefaultRoots(lookup func(string) (string, bool)) []string {
	var roots []string
	if localAppData, ok := lookup("LOCALAPPDATA"); ok && localAppData != "" {
		roots = append(roots, filepath.Join(localAppData, "fnc"))
	} else {
		userprofile, _ := lookup("USERPROFILE")
		roots = append(roots, filepath.Join(userprofile, "AppData", "Local", "fnc"))
	}
	programData, ok := lookup("ProgramData")
	if !ok || programData == "" {
		systemdrive, _ := lookup("SystemDrive")
		programData = filepath.Join(systemdrive+string(filepath.Separator), "ProgramData")
	}
	return append(roots, filepath.Join(programData, "fnc"))
}
