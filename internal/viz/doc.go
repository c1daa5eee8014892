// Package viz draws the sandbox scene in a terminal.
//
// [TerminalRenderer] implements the sandbox Renderer interface on a Braille
// [Canvas]: every mesh is projected through the scene camera and drawn as a
// wireframe of its geometry, tinted with its material color. Each terminal
// cell holds 2x4 dots, so a canvas of w x h cells is a (2w) x (4h) viewport.
//
// Themes and the lipgloss styles built from them are shared with the tui
// package's HUD.
package viz
