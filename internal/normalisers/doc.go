// Package normalisers provides implementations of the Normaliser interface
// for the document formats tenants upload. Each normaliser knows how to
// extract text content from a specific MIME type.
//
// Normalisers are registered with the NormaliserRegistry at startup.
// This package holds the helpers they share.
package normalisers
