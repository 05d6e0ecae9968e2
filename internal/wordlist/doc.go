// Package wordlist loads vocabulary word lists and samples words from them.
// A word list is any plain text resource whose tokens are separated by
// whitespace or newlines.
package wordlist
