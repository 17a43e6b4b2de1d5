// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

const (
	CodeUnknownFatal                  = "M0000"
	CodeFileNotFound                  = "M0001"
	CodeUnsuportedFileSystemOperation = "M0002"
	CodePermissionDenied              = "M0003"
	CodeUnsupportedFileFormat         = "M0004"
	CodeUnexpectedEOF                 = "M0005"
	CodeInvalidConfig                 = "M0006"
	CodeUnrecognizedLexeme            = "M0008"
	CodeFailedToParseInteger          = "M0009"
)

const (
	CodeEOF = "_EOF_"
)

var (
	defaultNonFatal = map[string]bool{}
)
