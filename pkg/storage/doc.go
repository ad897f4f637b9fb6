// Package storage writes crawl output to disk.
//
// Every file is written through WriteAtomic: data goes to a temporary file
// in the destination directory, is synced, and is renamed into place. A
// crashed or failed write never leaves a truncated photo or manifest.
//
//	manager, err := storage.NewManager(cfg.Output.BaseDirectory)
//	path, size, err := manager.SavePhoto(bytes.NewReader(data), "owl", 12)
package storage
