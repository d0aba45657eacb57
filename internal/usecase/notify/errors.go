package notify

import "errors"

// Sentinel errors for notify use case operations.
var (
	// ErrChannelDisabled indicates that Send was called on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrUnsupportedNotification indicates the channel does not deliver this kind.
	ErrUnsupportedNotification = errors.New("notification kind not supported by channel")

	// ErrInvalidNotification indicates a nil or incomplete notification.
	ErrInvalidNotification = errors.New("invalid notification")

	// ErrNotificationDropped indicates that a notification was dropped because
	// no worker slot became free in time. Used for observability only.
	ErrNotificationDropped = errors.New("notification dropped due to pool saturation")
)
