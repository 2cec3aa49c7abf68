// SMBridge - SpaceMouse to keyboard bridge
// Converts 6-DOF SpaceMouse motion into pulsed or held keyboard events
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smbridge/internal/api"
	"smbridge/internal/autostart"
	"smbridge/internal/bridge"
	"smbridge/internal/config"
	"smbridge/internal/device"
	"smbridge/internal/engine"
	"smbridge/internal/input"
	"smbridge/internal/tray"
)

var (
	version  = "0.3.0"
	showVer  = flag.Bool("version", false, "Show version")
	listDevs = flag.Bool("list", false, "List connected SpaceMouse devices")
	dryRun   = flag.Bool("dry-run", false, "Poll the device and log motion without injecting keys")
	cfgPath  = flag.String("config", "", "Path to configuration file")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("smbridge version %s\n", version)
		return
	}

	// Initialize config
	var cfgMgr *config.Manager
	if *cfgPath != "" {
		cfgMgr = config.NewManagerWithPath(*cfgPath)
	} else {
		var err error
		cfgMgr, err = config.NewManager()
		if err != nil {
			log.Fatalf("Failed to initialize config: %v", err)
		}
	}
	if err := cfgMgr.Load(); err != nil {
		log.Printf("Warning: failed to load config: %v", err)
	}

	// Handle --list flag
	if *listDevs {
		listDevices()
		return
	}

	// Handle --dry-run flag
	if *dryRun {
		runDryRun(cfgMgr)
		return
	}

	// Default: run as background service
	runService(cfgMgr)
}

func listDevices() {
	paths, err := device.Discover()
	if err != nil {
		log.Fatalf("Failed to scan for devices: %v", err)
	}

	if len(paths) == 0 {
		fmt.Println("No SpaceMouse devices found.")
		return
	}

	fmt.Println("Connected SpaceMouse devices:")
	fmt.Println("-----------------------------")
	for _, p := range paths {
		fmt.Printf("  %s\n", p)
	}
}

// runDryRun polls the device and logs decoded state without touching the
// keyboard. Useful for verifying axis orientation before binding keys.
func runDryRun(cfgMgr *config.Manager) {
	cfg := cfgMgr.Get()

	reader, err := device.Open(cfg.General.DevicePath)
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer reader.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Println("Dry run: polling device. Press Ctrl+C to stop.")

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			log.Println("Dry run stopped.")
			return
		case <-ticker.C:
			st, err := reader.Poll()
			if err != nil {
				log.Fatalf("Device read failed: %v", err)
			}
			if st == nil {
				continue
			}
			pressed := []int{}
			for i, b := range st.Buttons {
				if b {
					pressed = append(pressed, i)
				}
			}
			log.Printf("x:%+.3f y:%+.3f z:%+.3f roll:%+.3f pitch:%+.3f yaw:%+.3f buttons:%v",
				st.X, st.Y, st.Z, st.Roll, st.Pitch, st.Yaw, pressed)
		}
	}
}

func runService(cfgMgr *config.Manager) {
	log.Println("SMBridge service starting...")

	cfg := cfgMgr.Get()

	// Open the SpaceMouse
	reader, err := device.Open(cfg.General.DevicePath)
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer reader.Close()

	// Create the key injector
	injector := input.NewInjector()
	defer injector.Close()

	// Create the bridge
	b := bridge.New(cfgMgr, reader, injector)

	// Start API server if enabled
	var apiServer *api.Server
	if cfg.General.APIEnabled {
		apiServer = api.NewServer(cfgMgr, b)
		go func() {
			if err := apiServer.Start(cfg.General.APIPort); err != nil {
				log.Printf("API server error: %v", err)
			}
		}()
	}

	// Hot reload: watch the config file and rebuild engines on change
	cfgMgr.RegisterChangeCallback(b.RequestReload)
	if err := cfgMgr.Watch(); err != nil {
		log.Printf("Warning: config watch unavailable: %v", err)
	}
	defer cfgMgr.StopWatch()

	// Auto-start sync
	if cfg.General.StartOnBoot != autostart.IsEnabled() {
		if cfg.General.StartOnBoot {
			if err := autostart.Enable(); err != nil {
				log.Printf("Warning: failed to enable auto-start: %v", err)
			}
		} else {
			if err := autostart.Disable(); err != nil {
				log.Printf("Warning: failed to disable auto-start: %v", err)
			}
		}
	}

	// Tray instance
	t := tray.New("SMBridge - SpaceMouse keyboard bridge")

	modeItem := t.AddMenuItem(modeTitle(b.Status().Mode), nil)

	t.AddSeparator()

	var pauseItem int
	pauseItem = t.AddMenuItem("Pause", func() {
		paused := !b.Paused()
		b.SetPaused(paused)
		t.SetItemChecked(pauseItem, paused)
	})

	t.AddSeparator()

	t.AddMenuItem("Quit", func() {
		t.Stop()
	})

	// Push mode changes to the tray and to API subscribers
	b.SetOnModeChange(func(m engine.Mode) {
		t.SetItemTitle(modeItem, modeTitle(m))
		if apiServer != nil {
			apiServer.BroadcastMode(string(m))
		}
	})

	// Run the conversion loop
	go b.Run()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		t.Stop()
	}()

	log.Println("SMBridge service running. Press Ctrl+C to stop.")
	t.Run()

	// Tray loop exited (Quit or signal): release everything before exit
	b.Stop()
	log.Println("SMBridge stopped.")
}

func modeTitle(m engine.Mode) string {
	if m == engine.ModeHold {
		return "Mode: character (hold)"
	}
	return "Mode: camera (pulse)"
}
