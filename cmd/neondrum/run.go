package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tznthou/day-07-neon-drum/internal/app"
	"github.com/tznthou/day-07-neon-drum/internal/capture"
	"github.com/tznthou/day-07-neon-drum/internal/server"
	"github.com/tznthou/day-07-neon-drum/internal/tray"
)

var runFlags struct {
	camera    int
	addr      string
	threshold int
	cooldown  int
	volume    float64
	noAudio   bool
	noTray    bool
	noCrop    bool
	debug     bool
}

func init() {
	runCmd.Flags().IntVar(&runFlags.camera, "camera", 0, "capture device index")
	runCmd.Flags().StringVar(&runFlags.addr, "addr", ":8080", "HTTP listen address")
	runCmd.Flags().IntVar(&runFlags.threshold, "threshold", 0, "detection threshold (0 uses the default)")
	runCmd.Flags().IntVar(&runFlags.cooldown, "cooldown", 0, "per-cell cooldown in ms (0 uses the default)")
	runCmd.Flags().Float64Var(&runFlags.volume, "volume", 0, "master volume 0..1 (0 uses the default)")
	runCmd.Flags().BoolVar(&runFlags.noAudio, "no-audio", false, "run the detector without sound")
	runCmd.Flags().BoolVar(&runFlags.noTray, "no-tray", false, "run headless without the system tray")
	runCmd.Flags().BoolVar(&runFlags.noCrop, "no-crop", false, "stretch camera frames instead of center-cropping")
	runCmd.Flags().BoolVar(&runFlags.debug, "debug", false, "serve the annotated detection view at /api/debug")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the drum kit",
	Long:  `Opens the camera, starts the detection loop and serves the control panel.`,
	Run: func(cmd *cobra.Command, args []string) {
		run()
	},
}

func run() {
	fmt.Println("Neon Drum - Air Drumming Kit")

	var debugView *capture.DebugView
	if runFlags.debug {
		debugView = capture.NewDebugView(8)
	}

	a := app.New(app.Config{
		CameraID:   runFlags.camera,
		Threshold:  runFlags.threshold,
		CooldownMs: runFlags.cooldown,
		Volume:     runFlags.volume,
		Crop:       !runFlags.noCrop,
		Debug:      debugView,
	})

	if !runFlags.noAudio {
		if err := a.Engine().Init(); err != nil {
			log.Fatalf("Failed to initialize audio: %v", err)
		}
	}

	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Camera:    a.Camera(),
		Detector:  a.Detector(),
		Engine:    a.Engine(),
		Debug:     debugView,
		Crop:      !runFlags.noCrop,
	})

	var t *tray.Tray
	if !runFlags.noTray {
		t = tray.New()
	}

	a.OnTrigger(func(cell int, voice string, brightness float64) {
		srv.Hub().Broadcast(server.TriggerEvent{
			Cell:       cell,
			Voice:      voice,
			Brightness: brightness,
			Timestamp:  time.Now().UnixMilli(),
		})
		if t != nil {
			t.SetLastVoice(voice)
		}
	})

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start detection: %v", err)
	}

	go func() {
		fmt.Printf("Starting server on %s\n", runFlags.addr)
		if err := srv.ListenAndServe(runFlags.addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	shutdown := func() {
		a.Stop()
		a.Engine().Dispose()
	}

	if t == nil {
		waitForInterrupt()
		shutdown()
		return
	}

	t.OnToggle(a.SetEnabled)
	t.OnSettings(func() {
		log.Printf("Control panel: http://localhost%s/", runFlags.addr)
	})
	t.OnQuit(shutdown)

	// Blocks until Quit is picked from the menu.
	t.Run()
}

func waitForInterrupt() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	fmt.Println("\nShutting down")
}

// findWebDir searches for the web directory in common locations.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".neondrum", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
