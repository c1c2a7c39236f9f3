package domain

import "time"

// NotificationType controls how the presentation layer renders a
// notification.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
	NotificationSuccess NotificationType = "success"
)

// ActionKind is a user-selectable recovery action on a notification.
type ActionKind string

const (
	ActionRetry    ActionKind = "retry"
	ActionSkip     ActionKind = "skip"
	ActionFallback ActionKind = "fallback"
	ActionManual   ActionKind = "manual"
	ActionCancel   ActionKind = "cancel"
	ActionContinue ActionKind = "continue"
)

// FallbackData names the processor an executed fallback action switches to.
type FallbackData struct {
	Processor string `json:"processor"`
}

// ActionData is the closed payload attached to an action button. Note
// carries opaque diagnostic text from the pipeline.
type ActionData struct {
	Fallback *FallbackData `json:"fallback,omitempty"`
	Note     string        `json:"note,omitempty"`
}

// NotificationAction is one button on a user notification.
type NotificationAction struct {
	Label  string      `json:"label"`
	Action ActionKind  `json:"action"`
	Data   *ActionData `json:"data,omitempty"`
}

// UserNotification is a user-facing message created by the dispatcher and
// consumed when its action executes or it is dismissed.
type UserNotification struct {
	ID          string               `json:"id"`
	Type        NotificationType     `json:"type"`
	Title       string               `json:"title"`
	Message     string               `json:"message"`
	Stage       Stage                `json:"stage"`
	Timestamp   time.Time            `json:"timestamp"`
	Actions     []NotificationAction `json:"actions,omitempty"`
	Dismissible bool                 `json:"dismissible"`
	AutoHide    bool                 `json:"auto_hide"`
	Duration    time.Duration        `json:"duration,omitempty"`
}

// Clone returns a deep copy of the notification.
func (n *UserNotification) Clone() *UserNotification {
	c := *n
	c.Actions = make([]NotificationAction, len(n.Actions))
	copy(c.Actions, n.Actions)
	for i, a := range n.Actions {
		if a.Data != nil {
			data := *a.Data
			if a.Data.Fallback != nil {
				fb := *a.Data.Fallback
				data.Fallback = &fb
			}
			c.Actions[i].Data = &data
		}
	}
	return &c
}
