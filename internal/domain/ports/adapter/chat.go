package adapter

import "context"

// ChatDeliveryAdapter posts text into a messaging platform dialog.
// Implementations never return errors: failures are logged and reported as false.
type ChatDeliveryAdapter interface {
	SendMessage(ctx context.Context, chatID string, text string) bool
}
