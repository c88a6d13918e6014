package container

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	errs "github.com/specialistvlad/wiregrid/internal/errors"
	"github.com/specialistvlad/wiregrid/internal/uri"
)

// Message is a request delivered to MessageReceiver objects.
type Message struct {
	// Name is the message name, the fragment of a post: URI.
	Name string
	// Target is the receiver: a named object name or the object itself.
	// A nil target broadcasts to every named receiver.
	Target any
	Params map[string]any
	Sender any
	// Handled is set once a receiver accepted the message.
	Handled bool
}

func newMessage(name string, params map[string]any, sender any) *Message {
	msg := &Message{Name: name, Params: make(map[string]any, len(params)), Sender: sender}
	for k, v := range params {
		if k == "target" {
			msg.Target = v
			continue
		}
		msg.Params[k] = v
	}
	return msg
}

// messageFromURI reads `post:target#message+param=...`. A URI without a
// fragment is read as `post:message+target=...`.
func messageFromURI(u *uri.CompoundURI, params map[string]any, sender any) *Message {
	if u.Fragment == "" {
		return newMessage(u.Name, params, sender)
	}
	msg := newMessage(u.Fragment, params, sender)
	if u.Name != "" {
		msg.Target = u.Name
	}
	return msg
}

// PostMessage parses ref, with or without the `post:` scheme, and delivers
// the message it describes.
func (c *Container) PostMessage(ctx context.Context, ref string, sender any) (*Message, error) {
	if !strings.HasPrefix(ref, SchemePost+":") {
		ref = SchemePost + ":" + ref
	}
	u, err := uri.Parse(ref)
	if err != nil {
		return nil, errs.WrapResolution(err, "container", ref, "post message")
	}
	params, err := c.handler.DereferenceParameters(ctx, u)
	if err != nil {
		return nil, errs.WrapResolution(err, "container", ref, "post message")
	}
	msg := messageFromURI(u, params, sender)
	if err := c.dispatch(ctx, msg); err != nil {
		return msg, err
	}
	return msg, nil
}

func (c *Container) dispatch(ctx context.Context, msg *Message) error {
	logger := ctxlog.FromContext(ctx).With("message", msg.Name)

	if msg.Target != nil {
		target := msg.Target
		if name, ok := target.(string); ok {
			obj, err := c.GetNamed(ctx, name)
			if err != nil {
				return err
			}
			target = obj
		}
		receiver, ok := target.(MessageReceiver)
		if !ok {
			return errs.WrapResolution(fmt.Errorf("%w: %T does not receive messages", errs.ErrNotFound, target), "container", msg.Name, "post message")
		}
		handled, err := receiver.ReceiveMessage(ctx, msg)
		msg.Handled = handled
		return err
	}

	for _, name := range c.receiverOrder() {
		obj, _ := c.Lookup(name)
		receiver, ok := obj.(MessageReceiver)
		if !ok {
			continue
		}
		handled, err := receiver.ReceiveMessage(ctx, msg)
		if err != nil {
			return fmt.Errorf("receiver %q: %w", name, err)
		}
		if handled {
			logger.Debug("Message handled.", "receiver", name)
			msg.Handled = true
			return nil
		}
	}
	logger.Debug("Message not handled by any receiver.")
	return nil
}

// receiverOrder lists named objects in build order, local names first, then
// the parents' names they do not shadow.
func (c *Container) receiverOrder() []string {
	seen := make(map[string]bool)
	var names []string
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		for _, name := range cur.order {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		cur.mu.RUnlock()
	}
	return names
}
