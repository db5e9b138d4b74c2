// Package config provides configuration structures and utilities for
// sheetgrade. It defines the CLI-facing options for grading runs and the
// YAML assignment schema that names the solution workbook and the graded
// regions per sheet.
package config
