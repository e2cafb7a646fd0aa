// venusctl configures Venus mice from the command line: button
// bindings, macros, lighting, DPI stages and polling rate, plus flash
// dumps and factory reset.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/openperiph/venus/binding"
	"github.com/openperiph/venus/flashmap"
	"github.com/openperiph/venus/internal/hid"
	"github.com/openperiph/venus/macro"
	"github.com/openperiph/venus/staging"
	"github.com/openperiph/venus/transaction"
	"github.com/openperiph/venus/venus"
)

type cli struct {
	Verbose bool   `short:"v" help:"Enable debug logging."`
	Profile string `help:"Configuration bank to write." enum:"wired,wireless,alt" default:"wired"`
	Verify  bool   `help:"Read written regions back before committing."`
	Raw     bool   `help:"Use the raw USB transport instead of HID (receiver only)."`

	List    listCmd    `cmd:"" help:"List connected devices."`
	Bind    bindCmd    `cmd:"" help:"Assign an action to a button."`
	Macro   macroCmd   `cmd:"" help:"Upload a macro to a slot."`
	RGB     rgbCmd     `cmd:"" name:"rgb" help:"Set the lighting color and mode."`
	Polling pollingCmd `cmd:"" help:"Set the polling rate."`
	DPI     dpiCmd     `cmd:"" name:"dpi" help:"Set a DPI stage."`
	Dump    dumpCmd    `cmd:"" help:"Dump a flash region."`
	Reset   resetCmd   `cmd:"" help:"Restore the factory configuration."`
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("venusctl"),
		kong.Description("Venus mouse configuration tool"),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &appEnv{cli: &c, logger: logger, ctx: ctx}
	kctx.FatalIfErrorf(kctx.Run(app))
}

// appEnv is the shared state kong passes to every command's Run.
type appEnv struct {
	cli    *cli
	logger *slog.Logger
	ctx    context.Context
}

func (a *appEnv) profile() flashmap.Profile {
	switch a.cli.Profile {
	case "wireless":
		return flashmap.Wireless
	case "alt":
		return flashmap.Alt
	}
	return flashmap.Wired
}

// session is one opened configuration channel with its controller.
type session struct {
	controller *transaction.Controller
	variant    venus.Variant
	close      func() error
}

func (a *appEnv) open() (*session, error) {
	opts := []transaction.Option{
		transaction.WithLogger(a.logger),
		transaction.WithVerify(a.cli.Verify),
	}

	if a.cli.Raw {
		ch, err := venus.OpenRaw(venus.Receiver.Frame)
		if err != nil {
			return nil, err
		}
		return &session{
			controller: transaction.New(ch, venus.Receiver.Frame, opts...),
			variant:    venus.Receiver,
			close:      ch.Close,
		}, nil
	}

	mgr, err := hid.NewManager()
	if err != nil {
		return nil, err
	}
	dev, variant, err := venus.Open(mgr)
	if err != nil {
		return nil, err
	}
	if a.cli.Verify && !variant.FlashRead {
		return nil, fmt.Errorf("%s does not answer flash reads; drop --verify", variant.Name)
	}
	ch := venus.NewChannel(dev, variant.Frame)
	return &session{
		controller: transaction.New(ch, variant.Frame, opts...),
		variant:    variant,
		close:      ch.Close,
	}, nil
}

// apply runs one staged batch and translates the report into an exit
// error.
func (a *appEnv) apply(store *staging.Store) error {
	s, err := a.open()
	if err != nil {
		return err
	}
	defer s.close()

	rep := s.controller.Apply(a.ctx, store)
	if rep.State != transaction.StateDone {
		return fmt.Errorf("applied %d of %d changes: %w",
			rep.CompletedCount, rep.CompletedCount+store.Len(), rep.Err)
	}
	a.logger.Info("applied", "targets", rep.CompletedCount, "profile", a.cli.Profile)
	return nil
}

type listCmd struct{}

func (l *listCmd) Run(a *appEnv) error {
	mgr, err := hid.NewManager()
	if err != nil {
		return err
	}
	infos, err := venus.Discover(mgr)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no devices found")
		return nil
	}
	for _, info := range infos {
		v, _ := venus.VariantForProduct(info.ProductID)
		fmt.Printf("%04x:%04x  %-10s  %s (%s)\n",
			info.VendorID, info.ProductID, v.Name, info.Product, info.Path)
	}
	return nil
}

type bindCmd struct {
	Button string `arg:"" help:"Button label (e.g. 'Side Button 3', 'Fire Key')."`
	Action string `arg:"" help:"left|right|middle|back|forward|disable|dpi-up|dpi-down|dpi-loop|poll-toggle|rgb-toggle|key:<combo>|media:<name>|macro:<slot>|fire:<delay>x<count>"`
}

func (b *bindCmd) Run(a *appEnv) error {
	btn, err := venus.ButtonByLabel(b.Button)
	if err != nil {
		return err
	}
	bnd, err := parseAction(b.Action)
	if err != nil {
		return err
	}

	store := staging.NewStore()
	store.Stage(staging.Button(a.profile(), btn.Index), staging.Change{Binding: bnd})
	return a.apply(store)
}

func parseAction(s string) (binding.Binding, error) {
	head, rest, _ := strings.Cut(s, ":")
	switch strings.ToLower(head) {
	case "left":
		return binding.MouseButton{Button: binding.MouseLeft}, nil
	case "right":
		return binding.MouseButton{Button: binding.MouseRight}, nil
	case "middle":
		return binding.MouseButton{Button: binding.MouseMiddle}, nil
	case "back":
		return binding.MouseButton{Button: binding.MouseBack}, nil
	case "forward":
		return binding.MouseButton{Button: binding.MouseForward}, nil
	case "disable":
		return binding.Disabled{}, nil
	case "dpi-up":
		return binding.DPIStep{Direction: binding.DPIUp}, nil
	case "dpi-down":
		return binding.DPIStep{Direction: binding.DPIDown}, nil
	case "dpi-loop":
		return binding.DPILoop{}, nil
	case "poll-toggle":
		return binding.PollingToggle{}, nil
	case "rgb-toggle":
		return binding.RGBToggle{}, nil
	case "key":
		return venus.ParseKeyCombo(rest)
	case "media":
		code, err := venus.MediaUsage(rest)
		if err != nil {
			return nil, err
		}
		return binding.MediaKey{Code: code}, nil
	case "macro":
		slot, err := strconv.Atoi(rest)
		if err != nil {
			return nil, fmt.Errorf("macro slot %q: %w", rest, err)
		}
		return binding.MacroRef{Slot: slot, Repeat: binding.RepeatOnce}, nil
	case "fire":
		var delay, count int
		if _, err := fmt.Sscanf(rest, "%dx%d", &delay, &count); err != nil {
			return nil, fmt.Errorf("fire argument %q, want <delay>x<count>", rest)
		}
		if delay < 0 || delay > 255 || count < 1 || count > 255 {
			return nil, fmt.Errorf("fire argument %q out of range", rest)
		}
		return binding.FireKey{DelayMS: byte(delay), Repeat: byte(count)}, nil
	}
	return nil, fmt.Errorf("unknown action %q", s)
}

type macroCmd struct {
	Slot   int      `arg:"" help:"Macro slot (0-11)."`
	Name   string   `arg:"" help:"Macro name shown in the vendor UI."`
	Events []string `arg:"" help:"Events as <down|up>:<key>[:delay-ms], e.g. down:a:10 up:a:10."`

	Bind   string `help:"Also bind the macro to this button."`
	Repeat string `help:"Playback mode when bound." enum:"once,hold,toggle" default:"once"`
}

func (m *macroCmd) Run(a *appEnv) error {
	events, err := parseMacroEvents(m.Events)
	if err != nil {
		return err
	}

	store := staging.NewStore()
	store.Stage(staging.MacroSlot(m.Slot), staging.Change{
		Macro: &macro.Macro{Name: m.Name, Events: events},
	})

	if m.Bind != "" {
		btn, err := venus.ButtonByLabel(m.Bind)
		if err != nil {
			return err
		}
		repeat := map[string]binding.RepeatMode{
			"once":   binding.RepeatOnce,
			"hold":   binding.RepeatHold,
			"toggle": binding.RepeatToggle,
		}[m.Repeat]
		store.Stage(staging.Button(a.profile(), btn.Index), staging.Change{
			Binding: binding.MacroRef{Slot: m.Slot, Repeat: repeat},
		})
	}
	return a.apply(store)
}

func parseMacroEvents(args []string) ([]macro.Event, error) {
	events := make([]macro.Event, 0, len(args))
	for _, raw := range args {
		parts := strings.Split(raw, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("event %q, want <down|up>:<key>[:delay-ms]", raw)
		}
		var kind macro.EventKind
		switch strings.ToLower(parts[0]) {
		case "down":
			kind = macro.KeyDown
		case "up":
			kind = macro.KeyUp
		default:
			return nil, fmt.Errorf("event %q: direction must be down or up", raw)
		}
		code, err := venus.KeyUsage(parts[1])
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", raw, err)
		}
		delay := uint16(10)
		if len(parts) == 3 {
			d, err := strconv.ParseUint(parts[2], 10, 16)
			if err != nil {
				return nil, fmt.Errorf("event %q: %w", raw, err)
			}
			delay = uint16(d)
		}
		events = append(events, macro.Event{Kind: kind, Code: code, DelayMS: delay})
	}
	return events, nil
}

type rgbCmd struct {
	Red   uint8 `arg:"" help:"Red 0-255."`
	Green uint8 `arg:"" help:"Green 0-255."`
	Blue  uint8 `arg:"" help:"Blue 0-255."`

	Mode       string `help:"Lighting mode." enum:"steady,neon" default:"steady"`
	Brightness int    `help:"Brightness percent." default:"100"`
}

func (r *rgbCmd) Run(a *appEnv) error {
	mode := venus.LEDSteady
	if r.Mode == "neon" {
		mode = venus.LEDNeon
	}
	rec, err := venus.LEDRecord(r.Red, r.Green, r.Blue, mode, r.Brightness)
	if err != nil {
		return err
	}
	store := staging.NewStore()
	store.Stage(staging.Global(a.profile(), staging.SettingLED, 0), staging.Change{Data: rec})
	return a.apply(store)
}

type pollingCmd struct {
	Rate int `arg:"" help:"Polling rate in Hz (125, 250, 500 or 1000)."`
}

func (p *pollingCmd) Run(a *appEnv) error {
	rec, err := venus.PollingRecord(p.Rate)
	if err != nil {
		return err
	}
	store := staging.NewStore()
	store.Stage(staging.Global(a.profile(), staging.SettingPolling, 0), staging.Change{Data: rec})
	return a.apply(store)
}

type dpiCmd struct {
	Stage      int `arg:"" help:"DPI stage (0-4)."`
	Resolution int `arg:"" help:"Resolution in DPI (preset values only)."`
}

func (d *dpiCmd) Run(a *appEnv) error {
	rec, err := venus.DPIRecord(d.Resolution)
	if err != nil {
		presets := venus.DPIPresets()
		known := make([]string, len(presets))
		for i, p := range presets {
			known[i] = strconv.Itoa(p.DPI)
		}
		return fmt.Errorf("%w (presets: %s)", err, strings.Join(known, ", "))
	}
	store := staging.NewStore()
	store.Stage(staging.Global(a.profile(), staging.SettingDPIStage, d.Stage), staging.Change{Data: rec})
	return a.apply(store)
}

type dumpCmd struct {
	Page   string `arg:"" help:"Flash page (hex, e.g. 0x00)."`
	Offset string `arg:"" optional:"" help:"Start offset (hex)." default:"0x00"`
	Length int    `help:"Bytes to read." default:"256"`
}

func (d *dumpCmd) Run(a *appEnv) error {
	page, err := parseByte(d.Page)
	if err != nil {
		return err
	}
	offset, err := parseByte(d.Offset)
	if err != nil {
		return err
	}

	s, err := a.open()
	if err != nil {
		return err
	}
	defer s.close()
	if !s.variant.FlashRead {
		return fmt.Errorf("%s does not answer flash reads", s.variant.Name)
	}

	buf, err := s.controller.Dump(a.ctx, flashmap.Address{Page: page, Offset: offset}, d.Length)
	if err != nil {
		return err
	}
	hexdump(os.Stdout, flashmap.Address{Page: page, Offset: offset}, buf)
	return nil
}

func parseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("%q is not a hex byte: %w", s, err)
	}
	return byte(v), nil
}

func hexdump(w *os.File, addr flashmap.Address, buf []byte) {
	for i := 0; i < len(buf); i += 16 {
		end := i + 16
		if end > len(buf) {
			end = len(buf)
		}
		fmt.Fprintf(w, "%02x:%02x ", addr.Page, addr.Offset)
		for _, b := range buf[i:end] {
			fmt.Fprintf(w, " %02x", b)
		}
		fmt.Fprintln(w)
		addr = flashmap.Advance(addr, end-i)
	}
}

type resetCmd struct {
	Force bool `help:"Skip the confirmation prompt."`
}

func (r *resetCmd) Run(a *appEnv) error {
	if !r.Force {
		fmt.Print("restore factory configuration? [y/N] ")
		var answer string
		fmt.Scanln(&answer)
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
	}

	s, err := a.open()
	if err != nil {
		return err
	}
	defer s.close()
	return s.controller.FactoryReset(a.ctx)
}
