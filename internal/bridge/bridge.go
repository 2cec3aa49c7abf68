// Package bridge wires the device reader, the conversion engines and the
// key actuator into the poll loop.
package bridge

import (
	"log"
	"sync"
	"time"

	"smbridge/internal/config"
	"smbridge/internal/device"
	"smbridge/internal/engine"
	"smbridge/internal/input"
	"smbridge/internal/keymap"
	"smbridge/internal/osutils"
)

// movementAxes is the axis group whose mode follows the Caps Lock LED:
// pulse for camera panning, hold for direct character movement.
var movementAxes = []string{"move_left", "move_right", "move_forward", "move_backward"}

// holdAxes are always continuous for smooth camera rotation.
var holdAxes = []string{"rotate_left", "rotate_right", "pitch_up", "pitch_down"}

// zoomAxes always pulse; zoom steps are discrete in the target scheme.
var zoomAxes = []string{"zoom_in", "zoom_out"}

// Status is a point-in-time view of the bridge for the API and tray.
type Status struct {
	Mode    engine.Mode                 `json:"mode"`
	Paused  bool                        `json:"paused"`
	Axes    map[string]engine.AxisState `json:"axes"`
	X       float64                     `json:"x"`
	Y       float64                     `json:"y"`
	Z       float64                     `json:"z"`
	Yaw     float64                     `json:"yaw"`
	Pitch   float64                     `json:"pitch"`
	Buttons []bool                      `json:"buttons"`
}

// Bridge owns the device-read, convert, actuate cycle. All engine access
// happens on the single poll goroutine; control methods only flip flags
// under the mutex.
type Bridge struct {
	mu         sync.Mutex
	cfgMgr     *config.Manager
	reader     device.Reader
	act        input.Actuator
	move       *engine.Engine
	zoom       *engine.Engine
	dispatcher *engine.Dispatcher
	lastMode   engine.Mode
	lastState  device.State
	paused     bool
	reloadReq  bool

	stopCh chan struct{}
	doneCh chan struct{}

	// onMode is notified from the poll goroutine when the movement mode
	// flips.
	onMode func(engine.Mode)
}

// New creates a Bridge over the given collaborators and binds all axes
// and buttons from the current configuration.
func New(cfgMgr *config.Manager, reader device.Reader, act input.Actuator) *Bridge {
	b := &Bridge{
		cfgMgr: cfgMgr,
		reader: reader,
		act:    act,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	b.rebuild()
	return b
}

// SetOnModeChange registers a callback for movement mode flips. Called
// from the poll goroutine; keep it fast.
func (b *Bridge) SetOnModeChange(fn func(engine.Mode)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onMode = fn
}

// rebuild constructs engines and dispatcher from the current config.
// Caller must not hold the poll between Update calls; used at startup
// and on config reload.
func (b *Bridge) rebuild() {
	cfg := b.cfgMgr.Get()

	b.move = engine.New(b.act, engineTuning(cfg.Move))
	b.zoom = engine.New(b.act, engineTuning(cfg.Zoom))

	b.lastMode = b.currentMode()
	for _, name := range movementAxes {
		b.bindAxis(b.move, cfg, name, b.lastMode)
	}
	for _, name := range holdAxes {
		b.bindAxis(b.move, cfg, name, engine.ModeHold)
	}
	for _, name := range zoomAxes {
		b.bindAxis(b.zoom, cfg, name, engine.ModePulse)
	}

	mappings := make(map[int][]input.Key, len(cfg.Buttons))
	for idx, spec := range cfg.Buttons {
		keys, err := keymap.ResolveSequence(spec)
		if err != nil {
			log.Printf("Bridge: Skipping button %d: %v", idx, err)
			continue
		}
		mappings[idx] = keys
	}
	b.dispatcher = engine.NewDispatcher(b.act, mappings)

	log.Printf("Bridge: Bound %d axes and %d buttons, movement mode %q",
		len(movementAxes)+len(holdAxes)+len(zoomAxes), len(mappings), b.lastMode)
}

func (b *Bridge) bindAxis(e *engine.Engine, cfg *config.Config, name string, mode engine.Mode) {
	keyName, ok := cfg.Axes[name]
	if !ok {
		log.Printf("Bridge: Axis %s has no key binding, skipping", name)
		return
	}
	key, err := keymap.Resolve(keyName)
	if err != nil {
		log.Printf("Bridge: Skipping axis %s: %v", name, err)
		return
	}
	e.Bind(name, key, mode)
}

func engineTuning(t config.Tuning) engine.Tuning {
	return engine.Tuning{
		PressDuration: time.Duration(t.PressMS * float64(time.Millisecond)),
		MinHz:         t.MinHz,
		MaxHz:         t.MaxHz,
		Deadzone:      t.Deadzone,
		HoldThreshold: t.HoldThreshold,
		EMAAlpha:      t.EMAAlpha,
	}
}

// currentMode derives the movement mode from the Caps Lock LED when sync
// is enabled and supported, otherwise from the configured default.
func (b *Bridge) currentMode() engine.Mode {
	cfg := b.cfgMgr.Get()
	if cfg.Mode.SyncWithCapsLockLED && osutils.CapsLockSupported() {
		if osutils.CapsLockOn() {
			return engine.ModeHold
		}
		return engine.ModePulse
	}
	if cfg.Mode.StartInCharacterMode {
		return engine.ModeHold
	}
	return engine.ModePulse
}

// Run executes the poll loop until Stop is called. Blocks; run it on its
// own goroutine. On exit every bound key is force-released.
func (b *Bridge) Run() {
	defer close(b.doneCh)
	defer b.releaseAll()

	interval := time.Duration(b.cfgMgr.Get().General.PollIntervalMS) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Bridge: Poll loop running every %v", interval)

	for {
		select {
		case <-b.stopCh:
			return
		case <-ticker.C:
			b.tick(time.Now())
		}
	}
}

// tick processes one poll cycle. The mode callback fires after the lock
// is dropped; it may call back into Status.
func (b *Bridge) tick(now time.Time) {
	b.mu.Lock()
	notify, mode := b.tickLocked(now)
	b.mu.Unlock()

	if notify != nil {
		notify(mode)
	}
}

func (b *Bridge) tickLocked(now time.Time) (func(engine.Mode), engine.Mode) {
	if b.reloadReq {
		b.reloadReq = false
		b.releaseAllLocked()
		b.rebuild()
	}

	if b.paused {
		return nil, ""
	}

	st, err := b.reader.Poll()
	if err != nil {
		log.Printf("Bridge: Device read error: %v", err)
		return nil, ""
	}
	if st == nil {
		// No new report this tick; normal.
		return nil, ""
	}
	b.lastState = *st

	var notify func(engine.Mode)
	mode := b.currentMode()
	if mode != b.lastMode {
		for _, name := range movementAxes {
			b.move.SetMode(name, mode)
			b.move.ForceRelease(name)
		}
		b.lastMode = mode
		if mode == engine.ModeHold {
			log.Printf("Bridge: Mode changed to character (hold)")
		} else {
			log.Printf("Bridge: Mode changed to camera (pulse)")
		}
		notify = b.onMode
	}

	b.routeAxes(st, now)

	if len(st.Buttons) > 0 {
		b.dispatcher.Dispatch(st.Buttons)
	}
	return notify, mode
}

// routeAxes splits each signed axis onto its opposite logical direction
// pair. The inactive side is fed zero so an in-flight pulse can finish
// and release.
func (b *Bridge) routeAxes(st *device.State, now time.Time) {
	cfg := b.cfgMgr.Get()

	x, y, z := st.X, st.Y, st.Z
	yaw, pitch := st.Yaw, st.Pitch
	if cfg.InvertX {
		x = -x
	}
	if cfg.InvertY {
		y = -y
	}
	if cfg.InvertZ {
		z = -z
	}
	if cfg.InvertYaw {
		yaw = -yaw
	}
	if cfg.SwapYZ {
		y, z = z, y
	}

	if x >= 0 {
		b.move.Update("move_right", x, now)
		b.move.Update("move_left", 0, now)
	} else {
		b.move.Update("move_left", -x, now)
		b.move.Update("move_right", 0, now)
	}

	if y <= 0 {
		b.move.Update("move_forward", -y, now)
		b.move.Update("move_backward", 0, now)
	} else {
		b.move.Update("move_backward", y, now)
		b.move.Update("move_forward", 0, now)
	}

	if z >= 0 {
		b.zoom.Update("zoom_in", z, now)
		b.zoom.Update("zoom_out", 0, now)
	} else {
		b.zoom.Update("zoom_out", -z, now)
		b.zoom.Update("zoom_in", 0, now)
	}

	if yaw >= 0 {
		b.move.Update("rotate_right", yaw, now)
		b.move.Update("rotate_left", 0, now)
	} else {
		b.move.Update("rotate_left", -yaw, now)
		b.move.Update("rotate_right", 0, now)
	}

	if pitch >= 0 {
		b.move.Update("pitch_up", pitch, now)
		b.move.Update("pitch_down", 0, now)
	} else {
		b.move.Update("pitch_down", -pitch, now)
		b.move.Update("pitch_up", 0, now)
	}
}

// SetPaused pauses or resumes conversion. Pausing force-releases all
// keys so nothing stays down while the bridge is idle.
func (b *Bridge) SetPaused(paused bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.paused == paused {
		return
	}
	b.paused = paused
	if paused {
		b.releaseAllLocked()
		log.Printf("Bridge: Paused")
	} else {
		log.Printf("Bridge: Resumed")
	}
}

// Paused reports whether conversion is paused.
func (b *Bridge) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

// RequestReload asks the poll loop to rebuild engines and bindings from
// the current configuration before its next cycle.
func (b *Bridge) RequestReload() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reloadReq = true
}

// Status returns a snapshot of mode, axis states and the last device
// sample.
func (b *Bridge) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	axes := b.move.Snapshot()
	for name, st := range b.zoom.Snapshot() {
		axes[name] = st
	}
	return Status{
		Mode:    b.lastMode,
		Paused:  b.paused,
		Axes:    axes,
		X:       b.lastState.X,
		Y:       b.lastState.Y,
		Z:       b.lastState.Z,
		Yaw:     b.lastState.Yaw,
		Pitch:   b.lastState.Pitch,
		Buttons: b.lastState.Buttons,
	}
}

// Stop terminates the poll loop and waits for the final forced release
// of every bound key.
func (b *Bridge) Stop() {
	select {
	case <-b.stopCh:
	default:
		close(b.stopCh)
	}
	<-b.doneCh
}

func (b *Bridge) releaseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseAllLocked()
}

func (b *Bridge) releaseAllLocked() {
	b.move.ForceReleaseAll()
	b.zoom.ForceReleaseAll()
}
