// Package output writes rendered template text to disk.
//
// Every write goes through a temp file in the destination directory that is
// synced and renamed into place, so a destination either keeps its previous
// contents or holds the complete new artifact. Text is transcoded from UTF-8
// into the target's IANA encoding before anything touches disk; a rune the
// encoding cannot represent fails the write up front.
//
// Markup artifacts (.svg, .xml, .xhtml) can additionally be checked for
// well-formedness and re-indented with CheckMarkup and IndentMarkup.
package output
