// Package paper is a thin client for the Paper download API: it lists
// versions, lists builds of a version and streams build downloads.
//
// The API orders both lists newest first; callers selecting "latest" take
// the head of the list. Network and HTTP failures surface as *RequestError
// and are never retried.
package paper
