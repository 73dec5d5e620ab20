package main

import (
	"fmt"

	"golang.design/x/clipboard"
)

type systemClipboard struct{}

// newSystemClipboard fails when no clipboard is reachable, e.g. without a
// display server.
func newSystemClipboard() (systemClipboard, error) {
	if err := clipboard.Init(); err != nil {
		return systemClipboard{}, fmt.Errorf("init clipboard: %w", err)
	}
	return systemClipboard{}, nil
}

func (systemClipboard) WriteText(s string) error {
	clipboard.Write(clipboard.FmtText, []byte(s))
	return nil
}
