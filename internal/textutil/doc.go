// Package textutil holds string helpers for building file-system and
// identifier safe tokens.
package textutil
