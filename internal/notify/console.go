package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Console prints messages to a writer. It stands in for a chat transport when
// the pipeline runs from the command line.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	nextID int64
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Send(ctx context.Context, chatID int64, msg Message) (MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return MessageRef{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	ref := MessageRef{ChatID: chatID, MessageID: c.nextID}
	if err := c.write(fmt.Sprintf("[chat %d, message %d]", chatID, ref.MessageID), msg); err != nil {
		return MessageRef{}, err
	}

	return ref, nil
}

func (c *Console) Edit(ctx context.Context, ref MessageRef, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.write(fmt.Sprintf("[chat %d, message %d edited]", ref.ChatID, ref.MessageID), msg)
}

func (c *Console) write(header string, msg Message) error {
	if _, err := fmt.Fprintf(c.out, "%s\n%s\n", header, msg.Text); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if msg.Button != nil {
		if _, err := fmt.Fprintf(c.out, "[%s](%s)\n", msg.Button.Text, msg.Button.URL); err != nil {
			return fmt.Errorf("write button: %w", err)
		}
	}
	_, err := fmt.Fprintln(c.out)
	return err
}
