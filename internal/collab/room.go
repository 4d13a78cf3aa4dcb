// Package collab is the realtime fabric: rooms of websocket
// connections fed by a single hub goroutine. Document rooms relay
// editing events, the idea-board room owns authoritative board state,
// and the remaining global rooms are plain relays.
package collab

import (
	"fmt"
	"strings"

	"inkwell/internal/domain"
)

// Room kinds. A room id is "kind:key"; every kind except document uses
// the fixed key "global".
const (
	KindDocument     = "document"
	KindIdeaBoard    = "ideaboard"
	KindChat         = "chat"
	KindPresence     = "presence"
	KindTyping       = "typing"
	KindWordCount    = "wordcount"
	KindComment      = "comment"
	KindPoll         = "poll"
	KindNotification = "notification"
	KindTitle        = "title"
	KindWhiteboard   = "whiteboard"
	KindTodo         = "todo"
	KindQuiz         = "quiz"
	KindTimer        = "timer"
	KindUndoRedo     = "undoredo"
	KindTheme        = "theme"
)

var globalKinds = map[string]bool{
	KindIdeaBoard:    true,
	KindChat:         true,
	KindPresence:     true,
	KindTyping:       true,
	KindWordCount:    true,
	KindComment:      true,
	KindPoll:         true,
	KindNotification: true,
	KindTitle:        true,
	KindWhiteboard:   true,
	KindTodo:         true,
	KindQuiz:         true,
	KindTimer:        true,
	KindUndoRedo:     true,
	KindTheme:        true,
}

// DocumentRoom builds the room id for a document's edit session.
func DocumentRoom(documentID string) string {
	return KindDocument + ":" + documentID
}

// GlobalRoom builds the room id for one of the fixed global rooms.
func GlobalRoom(kind string) (string, error) {
	if !globalKinds[kind] {
		return "", fmt.Errorf("%w: unknown room kind %q", domain.ErrValidation, kind)
	}
	return kind + ":global", nil
}

// roomKind extracts the kind from a room id.
func roomKind(roomID string) string {
	kind, _, _ := strings.Cut(roomID, ":")
	return kind
}
