package tui

import "github.com/Cook1eMonster/Ralph/internal/domain"

// Msg is the sealed interface for all TUI messages.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgTreeLoaded is sent when the tree and project info are loaded.
type MsgTreeLoaded struct {
	Next         *domain.TaskWithPath
	Requirements string
	Tree         domain.Tree
	Target       int
}

func (MsgTreeLoaded) sealed() {}

// MsgTaskChanged is sent after a status change was saved.
type MsgTaskChanged struct {
	Action string
	Path   domain.Path
}

func (MsgTaskChanged) sealed() {}

// MsgError is sent when an operation fails.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}
