// Package ui translates engine status into the affordances a frontend should
// render. The daemon never draws anything itself, it emits intents that
// connected frontends (tray, IDE, TUI) replay into native badges, prompts and
// editor actions.
package ui

import "time"

type IntentKind string

const (
	IntentStatus      IntentKind = "status"
	IntentBadgeShow   IntentKind = "badge_show"
	IntentBadgeClear  IntentKind = "badge_clear"
	IntentPromptShow  IntentKind = "prompt_show"
	IntentPromptClear IntentKind = "prompt_clear"
	IntentEditorClose IntentKind = "editor_close"
)

type BadgeKind string

const (
	BadgeProgress  BadgeKind = "progress"
	BadgeConflicts BadgeKind = "conflicts"
)

// Badge is a small indicator attached to the frontend's activity anchor.
type Badge struct {
	ID    string    `json:"id"`
	Kind  BadgeKind `json:"kind"`
	Label string    `json:"label"`
	Count int       `json:"count,omitempty"`
}

type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelWarning NotificationLevel = "warning"
	LevelError   NotificationLevel = "error"
)

// NotificationAction is a button on a notification. Invoking it routes the
// action id back to the daemon.
type NotificationAction struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Notification struct {
	ID      string               `json:"id"`
	Level   NotificationLevel    `json:"level"`
	Message string               `json:"message"`
	Actions []NotificationAction `json:"actions,omitempty"`
}

// Intent is one instruction to the frontends. Seq increases monotonically so
// a reconnecting frontend can resume from the last intent it rendered.
type Intent struct {
	Seq          uint64        `json:"seq"`
	Kind         IntentKind    `json:"kind"`
	At           time.Time     `json:"at"`
	Status       string        `json:"status,omitempty"`
	Badge        *Badge        `json:"badge,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
	EditorID     string        `json:"editor_id,omitempty"`
}

type UserEventKind string

const (
	UserDismissed UserEventKind = "dismissed"
	UserAction    UserEventKind = "action"
)

// UserEvent is a frontend-originated event flowing back into the controller.
type UserEvent struct {
	Kind           UserEventKind
	NotificationID string
	ActionID       string
}
