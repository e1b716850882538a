// Package fileutil locates submission request files on disk.
//
// Request files are JSON documents holding one submission each. Callers
// pass a mix of files and directories; directories are scanned for files
// with a .json extension. Hidden directories and common dependency folders
// are never entered.
//
// Scanning is error tolerant: unreadable entries are collected and
// returned alongside the files that were found, so one bad entry does not
// abort a batch. Output is sorted and de-duplicated for deterministic
// processing order.
package fileutil
