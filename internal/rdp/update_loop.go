package rdp

import (
	"context"
	"errors"
	"fmt"

	"github.com/rcarmo/go-rdp/internal/protocol/pdu"
)

// RunUpdateLoop runs a single reader task that pulls server updates forever,
// applying each to the display surface via GetUpdate, until ctx is
// cancelled or a fatal read error occurs. A goroutine watches ctx and closes
// the underlying connection to unblock the in-flight read, since GetUpdate's
// blocking I/O has no context awareness of its own.
func (c *Client) RunUpdateLoop(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-done:
		}
	}()

	for {
		_, err := c.GetUpdate()
		if err != nil {
			if errors.Is(err, pdu.ErrDeactivateAll) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("update loop: %w", err)
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
