package editor

import "github.com/atotto/clipboard"

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the operating system clipboard.
type SystemClipboard struct{}

// WriteAll replaces the clipboard contents.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Available reports whether the platform has a usable clipboard.
func (SystemClipboard) Available() bool {
	return !clipboard.Unsupported
}
