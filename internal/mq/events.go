package mq

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

// TodoEventsChannel is the channel todo lifecycle events are published on.
const TodoEventsChannel = "todo-events"

type TodoEventType string

const (
	TodoCreated TodoEventType = "todo.created"
	TodoUpdated TodoEventType = "todo.updated"
	TodoDeleted TodoEventType = "todo.deleted"
)

// TodoEvent records a committed mutation of a todo.
type TodoEvent struct {
	Type   TodoEventType `json:"type"`
	UserID int           `json:"user_id"`
	TodoID int           `json:"todo_id"`
	At     time.Time     `json:"at"`
}

// TodoEvents publishes TodoEvent values as JSON.
type TodoEvents struct {
	mq      *MQ
	channel string
}

func NewTodoEvents(mq *MQ) *TodoEvents {
	return &TodoEvents{mq: mq, channel: TodoEventsChannel}
}

func (e *TodoEvents) Publish(ctx context.Context, event TodoEvent) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = e.mq.Publish(ctx, e.channel, data, map[string]string{
		"type":         string(event.Type),
		"content-type": "application/json",
		"ordering_key": strconv.Itoa(event.UserID),
	})
	return err
}

// DecodeTodoEvent parses a message published by TodoEvents.
func DecodeTodoEvent(msg Message) (TodoEvent, error) {
	var event TodoEvent
	err := json.Unmarshal(msg.Data, &event)
	return event, err
}
