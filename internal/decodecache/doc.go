// Package decodecache memoizes audio decoding by content digest.
//
// A Cache is shared by every session in the process. Identical bytes always
// decode to identical buffers, concurrent requests for the same content
// share one decode, and failures are never remembered. Entries live until
// evicted by an optional byte budget; an optional zstd disk tier keeps
// decoded buffers across restarts.
package decodecache
