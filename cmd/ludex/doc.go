// Command ludex indexes, verifies and deduplicates a game image library.
package main
