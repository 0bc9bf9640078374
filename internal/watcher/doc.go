// Package watcher follows the gallery's upload directory with fsnotify and
// reports each new or rewritten image once it has settled.
//
// Only creates and writes of files with a supported image extension are
// considered; hidden files, directories and other operations are ignored.
// Bursts of events for the same file are collapsed by a debounce interval and
// the handler is called sequentially, in name order, from the goroutine
// running [Watcher.Run].
package watcher
