// Package prefs remembers the folders last used to open and save videos.
package prefs

import (
	"path/filepath"

	"github.com/kikiluvv/ezcrop/pkg/util"
)

const (
	keyOpenFolder = "last_open_folder"
	keySaveFolder = "last_save_folder"
)

// Store is the subset of fyne.Preferences the folders need.
type Store interface {
	StringWithFallback(key, fallback string) string
	SetString(key, value string)
}

// Folders reads and writes the last-used folders, defaulting to the home
// directory.
type Folders struct {
	store    Store
	fallback string
}

// NewFolders wraps a preferences store.
func NewFolders(store Store) *Folders {
	return &Folders{store: store, fallback: util.HomeDir()}
}

// OpenFolder returns the last folder a video was opened from.
func (f *Folders) OpenFolder() string {
	return f.get(keyOpenFolder)
}

// SaveFolder returns the last folder an export was written to.
func (f *Folders) SaveFolder() string {
	return f.get(keySaveFolder)
}

// RememberOpen records the folder of an opened file.
func (f *Folders) RememberOpen(file string) {
	f.store.SetString(keyOpenFolder, filepath.Dir(file))
}

// RememberSave records the folder of an exported file.
func (f *Folders) RememberSave(file string) {
	f.store.SetString(keySaveFolder, filepath.Dir(file))
}

// get falls back to home when the stored folder has since been removed.
func (f *Folders) get(key string) string {
	dir := f.store.StringWithFallback(key, f.fallback)
	if dir == "" || !util.DirExists(dir) {
		return f.fallback
	}
	return dir
}
