// Package output renders command results in the formats hubctl supports.
//
// It offers Formatter for indented JSON, compact JSON, and human-readable
// text. Text rendering uses each result type's own summary when it provides
// one, with an ordered key/value fallback for everything else.
package output
