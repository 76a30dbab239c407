package channel

import (
	"fmt"
	"sync"

	"github.com/DoyleJ11/skaters-limit/internal/codec"
	"go.uber.org/zap"
)

// Handler receives a decoded message. sender identifies the connection the
// frame arrived on.
type Handler func(sender string, payload string) error

type handlerKey struct {
	ch   Channel
	name string
}

// Dispatcher routes decoded frames to handlers keyed by (channel, name).
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[handlerKey]Handler
	log      *zap.Logger
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		handlers: make(map[handlerKey]Handler),
		log:      logger.Named("dispatcher"),
	}
}

// Register installs h for name on ch. A second registration for the same pair
// replaces the first.
func (d *Dispatcher) Register(ch Channel, name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := handlerKey{ch: ch, name: name}
	if _, has := d.handlers[key]; has {
		d.log.Warn("Replacing message handler", zap.Stringer("channel", ch), zap.String("name", name))
	}
	d.handlers[key] = h
}

// Dispatch decodes raw and hands it to the handler registered for ch. Frames
// with no registered handler are ignored. Decode and handler failures are
// logged and returned; they never affect later frames.
func (d *Dispatcher) Dispatch(ch Channel, sender string, raw []byte) error {
	name, payload, err := codec.Decode(raw)
	if err != nil {
		d.log.Error("Failed to decode message", zap.Stringer("channel", ch), zap.String("sender", sender), zap.Error(err))
		return err
	}

	d.mu.RLock()
	h, has := d.handlers[handlerKey{ch: ch, name: name}]
	d.mu.RUnlock()

	if !has {
		d.log.Debug("No handler for message", zap.Stringer("channel", ch), zap.String("name", name))
		return nil
	}

	d.log.Debug("Received message",
		zap.Stringer("channel", ch),
		zap.String("name", name),
		zap.String("sender", sender),
		zap.Int("bytes", len(raw)),
		zap.String("payload", payload))

	if err := h(sender, payload); err != nil {
		d.log.Error("Message handler failed", zap.Stringer("channel", ch), zap.String("name", name), zap.Error(err))
		return fmt.Errorf("handling %s on %s: %w", name, ch, err)
	}
	return nil
}
