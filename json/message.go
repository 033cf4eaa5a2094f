package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/trickle"
)

// messageDTO is the JSON representation of a Message with a type discriminator.
type messageDTO struct {
	Type       string    `json:"type"`
	Content    []part    `json:"content,omitempty"`
	Text       *string   `json:"text,omitempty"`
	Thinking   *string   `json:"thinking,omitempty"`
	StopReason *string   `json:"stop_reason,omitempty"`
	IsError    *bool     `json:"is_error,omitempty"`
	Error      *string   `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// MarshalMessage serializes one message with its type discriminator.
func MarshalMessage(msg trickle.Message) ([]byte, error) {
	dto, err := marshalMessage(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(dto)
}

// UnmarshalMessage deserializes a message written by MarshalMessage.
func UnmarshalMessage(data []byte) (trickle.Message, error) {
	var dto messageDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}
	return unmarshalMessage(dto)
}

func marshalMessage(msg trickle.Message) (messageDTO, error) {
	switch m := msg.(type) {
	case trickle.UserMessage:
		blocks, err := marshalContentBlocks(m.Content)
		if err != nil {
			return messageDTO{}, err
		}
		return messageDTO{
			Type:      "user",
			Content:   blocks,
			Timestamp: m.Timestamp,
		}, nil
	case trickle.AssistantMessage:
		dto := messageDTO{
			Type:      "assistant",
			Text:      &m.Text,
			Timestamp: m.Timestamp,
		}
		if m.Thinking != "" {
			dto.Thinking = &m.Thinking
		}
		if m.StopReason != "" {
			sr := string(m.StopReason)
			dto.StopReason = &sr
		}
		if m.IsError {
			dto.IsError = &m.IsError
			dto.Error = &m.Error
		}
		return dto, nil
	default:
		return messageDTO{}, fmt.Errorf("unknown message type: %T", msg)
	}
}

func unmarshalMessage(dto messageDTO) (trickle.Message, error) {
	switch dto.Type {
	case "user":
		blocks, err := unmarshalContentBlocks(dto.Content)
		if err != nil {
			return nil, err
		}
		return trickle.UserMessage{Content: blocks, Timestamp: dto.Timestamp}, nil
	case "assistant":
		m := trickle.AssistantMessage{Timestamp: dto.Timestamp}
		if dto.Text != nil {
			m.Text = *dto.Text
		}
		if dto.Thinking != nil {
			m.Thinking = *dto.Thinking
		}
		if dto.StopReason != nil {
			m.StopReason = trickle.StopReason(*dto.StopReason)
		}
		if dto.IsError != nil {
			m.IsError = *dto.IsError
		}
		if dto.Error != nil {
			m.Error = *dto.Error
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown message type: %q", dto.Type)
	}
}
