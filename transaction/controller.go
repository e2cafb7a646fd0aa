package transaction

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/openperiph/venus/flashmap"
	"github.com/openperiph/venus/protocol"
	"github.com/openperiph/venus/staging"
)

// DeviceChannel is the transport a controller writes through. Send
// delivers one command frame and returns the device's raw reply.
// Implementations are the HID channel in package venus, the raw
// interrupt-endpoint fallback, and scripted fakes in tests.
type DeviceChannel interface {
	Send(ctx context.Context, frame []byte) ([]byte, error)
}

// State is the apply run's phase.
type State int

const (
	StateIdle State = iota
	StatePreparing
	StateWriting
	StateVerifying
	StateCommitting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateWriting:
		return "writing"
	case StateVerifying:
		return "verifying"
	case StateCommitting:
		return "committing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Report is the outcome of an apply run.
type Report struct {
	// State is StateDone or StateFailed.
	State State

	// Reason classifies the failure. Zero when State is StateDone, or
	// when encoding failed before the device was contacted.
	Reason FailureReason

	// Applied lists the targets confirmed on the device. These have
	// been removed from the staging store.
	Applied []staging.Target

	// CompletedCount is len(Applied).
	CompletedCount int

	// Err is the underlying error for failed runs.
	Err error
}

// Controller drives apply runs over one device channel. A Controller
// is stateless between runs; a mutex serializes them, since the
// firmware tracks only one write session.
type Controller struct {
	mu    sync.Mutex
	ch    DeviceChannel
	frame protocol.FrameConfig
	cfg   Config
}

// New builds a controller for the given channel and frame dialect.
func New(ch DeviceChannel, frame protocol.FrameConfig, opts ...Option) *Controller {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Controller{ch: ch, frame: frame, cfg: cfg}
}

// Apply encodes the store's snapshot, unlocks the device, writes every
// staged target in order, optionally verifies the written regions, and
// commits. Applied targets are removed from the store; on failure the
// failing target and everything after it stay staged. A run that fails
// on the commit keeps the whole store intact, since the device state is
// unknown.
func (c *Controller) Apply(ctx context.Context, store *staging.Store) Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := store.Snapshot()
	if len(snap) == 0 {
		return Report{State: StateDone}
	}

	plan, err := buildPlan(snap, &c.cfg.MacroCodec)
	if err != nil {
		return Report{State: StateFailed, Err: err}
	}

	total := len(plan)
	c.report(Progress{State: StatePreparing, TotalTargets: total})

	if err := c.prepare(ctx); err != nil {
		reason := HandshakeFailure
		if ctx.Err() != nil {
			reason = Cancelled
		}
		return c.fail(store, nil, reason, nil, err)
	}

	applied := make([]staging.Target, 0, total)
	for i := range plan {
		entry := &plan[i]
		if err := ctx.Err(); err != nil {
			return c.fail(store, applied, Cancelled, &entry.target, err)
		}
		if err := c.writeTarget(ctx, entry); err != nil {
			reason := WriteRejected
			if ctx.Err() != nil {
				reason = Cancelled
			}
			return c.fail(store, applied, reason, &entry.target, err)
		}
		applied = append(applied, entry.target)
		c.report(Progress{
			State:            StateWriting,
			CompletedTargets: len(applied),
			TotalTargets:     total,
			Target:           entry.target.String(),
		})
	}

	if c.cfg.Verify {
		verified := make([]staging.Target, 0, total)
		for i := range plan {
			entry := &plan[i]
			if err := ctx.Err(); err != nil {
				return c.fail(store, verified, Cancelled, &entry.target, err)
			}
			if err := c.verifyTarget(ctx, entry); err != nil {
				reason := VerificationMismatch
				if ctx.Err() != nil {
					reason = Cancelled
				}
				return c.fail(store, verified, reason, &entry.target, err)
			}
			verified = append(verified, entry.target)
			c.report(Progress{
				State:            StateVerifying,
				CompletedTargets: len(verified),
				TotalTargets:     total,
				Target:           entry.target.String(),
			})
		}
	}

	c.report(Progress{State: StateCommitting, CompletedTargets: total, TotalTargets: total})
	if err := c.commit(ctx); err != nil {
		// The commit frame may or may not have reached the firmware.
		// Leave every target staged so the user can retry the run.
		c.cfg.Logger.Warn("commit unconfirmed", "error", err)
		return Report{
			State:  StateFailed,
			Reason: CommitUnconfirmed,
			Err:    &Error{Reason: CommitUnconfirmed, Err: err},
		}
	}

	store.ClearApplied(applied)
	c.report(Progress{State: StateDone, CompletedTargets: total, TotalTargets: total})
	c.cfg.Logger.Info("configuration applied", "targets", total)
	return Report{State: StateDone, Applied: applied, CompletedCount: len(applied)}
}

// fail clears the targets that made it onto the device and builds the
// failure report.
func (c *Controller) fail(store *staging.Store, applied []staging.Target, reason FailureReason, target *staging.Target, err error) Report {
	store.ClearApplied(applied)
	e := &Error{Reason: reason, Target: target, Err: err}
	c.cfg.Logger.Error("apply failed",
		"reason", reason.String(),
		"completed", len(applied),
		"error", err,
	)
	return Report{
		State:          StateFailed,
		Reason:         reason,
		Applied:        applied,
		CompletedCount: len(applied),
		Err:            e,
	}
}

// prepare unlocks the write session, retrying the handshake the
// configured number of times.
func (c *Controller) prepare(ctx context.Context) error {
	var last error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if attempt > 0 {
			c.cfg.Logger.Debug("handshake retry", "attempt", attempt)
		}
		if err := c.command(ctx, protocol.CmdHandshake); err != nil {
			last = err
			continue
		}
		return nil
	}
	return last
}

func (c *Controller) commit(ctx context.Context) error {
	return c.command(ctx, protocol.CmdCommit)
}

// command sends a payload-less frame and checks the acknowledgement.
func (c *Controller) command(ctx context.Context, cmd byte) error {
	frame := c.frame.EncodeSimple(cmd)
	resp, err := c.send(ctx, frame)
	if err != nil {
		return err
	}
	return checkAck(c.frame, cmd, resp)
}

func (c *Controller) writeTarget(ctx context.Context, entry *planEntry) error {
	for _, step := range entry.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame, err := c.frame.EncodeFlashWrite(step.addr.Page, step.addr.Offset, step.data)
		if err != nil {
			return err
		}
		resp, err := c.send(ctx, frame)
		if err != nil {
			return fmt.Errorf("write %s: %w", step.addr, err)
		}
		if err := checkAck(c.frame, protocol.CmdFlashWrite, resp); err != nil {
			return fmt.Errorf("write %s: %w", step.addr, err)
		}
	}
	return nil
}

// verifyTarget reads back every region written for the target and
// compares it with what was sent.
func (c *Controller) verifyTarget(ctx context.Context, entry *planEntry) error {
	for _, step := range entry.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		got, err := c.ReadFlash(ctx, step.addr, byte(len(step.data)))
		if err != nil {
			return fmt.Errorf("read back %s: %w", step.addr, err)
		}
		if !bytes.Equal(got, step.data) {
			return fmt.Errorf("%s: wrote % X, read % X", step.addr, step.data, got)
		}
	}
	return nil
}

// ReadFlash reads length bytes at addr through the flash read command.
func (c *Controller) ReadFlash(ctx context.Context, addr flashmap.Address, length byte) ([]byte, error) {
	frame, err := c.frame.EncodeFlashRead(addr.Page, addr.Offset, length)
	if err != nil {
		return nil, err
	}
	raw, err := c.send(ctx, frame)
	if err != nil {
		return nil, err
	}
	resp, err := protocol.ParseReadResponse(raw)
	if err != nil {
		return nil, err
	}
	if resp.Page != addr.Page || resp.Offset != addr.Offset {
		return nil, fmt.Errorf("%w: read response for 0x%02X:0x%02X, requested %s",
			protocol.ErrMalformedFrame, resp.Page, resp.Offset, addr)
	}
	if len(resp.Data) < int(length) {
		return nil, fmt.Errorf("%w: read response carries %d of %d bytes",
			protocol.ErrMalformedFrame, len(resp.Data), length)
	}
	return resp.Data[:length], nil
}

// Dump reads a contiguous flash region, chunking requests at the
// firmware's per-read limit.
func (c *Controller) Dump(ctx context.Context, addr flashmap.Address, length int) ([]byte, error) {
	out := make([]byte, 0, length)
	for length > 0 {
		n := protocol.WriteChunkLen
		if n > length {
			n = length
		}
		if room := 256 - int(addr.Offset); n > room {
			n = room
		}
		chunk, err := c.ReadFlash(ctx, addr, byte(n))
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		addr = flashmap.Advance(addr, n)
		length -= n
	}
	return out, nil
}

// FactoryReset unlocks the device and restores the factory
// configuration. Staged changes are untouched; they no longer reflect
// any on-device state, which is the caller's problem to resolve.
func (c *Controller) FactoryReset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.prepare(ctx); err != nil {
		return fmt.Errorf("factory reset handshake: %w", err)
	}
	if err := c.command(ctx, protocol.CmdFactoryReset); err != nil {
		return fmt.Errorf("factory reset: %w", err)
	}
	c.cfg.Logger.Info("factory reset issued")
	return nil
}

// send delivers one frame with the configured timeout and inter-command
// delay, tracing both directions at debug level.
func (c *Controller) send(ctx context.Context, frame []byte) ([]byte, error) {
	sctx := ctx
	if c.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, c.cfg.SendTimeout)
		defer cancel()
	}
	c.cfg.Logger.Debug("tx", "frame", hex.EncodeToString(frame))
	resp, err := c.ch.Send(sctx, frame)
	if err != nil {
		return nil, err
	}
	c.cfg.Logger.Debug("rx", "frame", hex.EncodeToString(resp))
	if c.cfg.CommandDelay > 0 {
		select {
		case <-time.After(c.cfg.CommandDelay):
		case <-ctx.Done():
			return resp, ctx.Err()
		}
	}
	return resp, nil
}

func (c *Controller) report(p Progress) {
	if c.cfg.Progress != nil {
		c.cfg.Progress(p)
	}
}

// checkAck validates a status reply: it must parse, echo the command,
// and carry the ready marker.
func checkAck(frame protocol.FrameConfig, cmd byte, raw []byte) error {
	resp, err := frame.ParseResponse(raw)
	if err != nil {
		return err
	}
	if resp.Command != cmd {
		return fmt.Errorf("%w: reply echoes command 0x%02X, sent 0x%02X",
			protocol.ErrMalformedFrame, resp.Command, cmd)
	}
	if !resp.Ready() {
		return &protocol.StatusError{Command: cmd, Status: resp.Status}
	}
	return nil
}
