// Package migrations embute os scripts SQL versionados aplicados pelo goose.
package migrations

import "embed"

// FS contém os arquivos *.sql deste diretório.
//
//go:embed *.sql
var FS embed.FS
