// Package html extracts readable text from HTML pages. Scripts, styles
// and comments are dropped and entities are decoded.
package html
