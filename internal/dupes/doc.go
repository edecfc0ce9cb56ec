// Package dupes finds files with byte-identical content below a root directory.
//
// It walks the tree using fastwalk for parallel traversal, buckets the regular
// files by exact size, hashes only the buckets that can hold duplicates and
// groups their members by digest. The resulting Report numbers every file of
// every duplicate set, and an Executor deletes a caller-selected subset of
// those numbers while accounting for the reclaimed space.
//
// Digest equality is treated as content equality. Files are never compared
// byte by byte, so the test is probabilistic but practically certain with any
// of the 128-bit or wider algorithms.
package dupes
