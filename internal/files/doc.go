// Package files provides discovery of per-agent source files in the
// data directory.
//
// Each agent's export is a single spreadsheet or CSV file whose name
// starts with the agent identifier ("Shouq - October.xlsx" belongs to
// source "Shouq"). Discovery returns files in lexicographic order so
// the merged table's source order is stable across load cycles.
package files
