package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/skywardcontrols/aic-attitude/internal/controller"
	"github.com/skywardcontrols/aic-attitude/internal/host"
	"github.com/skywardcontrols/aic-attitude/internal/so3"
	"github.com/skywardcontrols/aic-attitude/internal/statushub"
	"github.com/skywardcontrols/aic-attitude/sim"
)

const defaultListen = ":8090"

func runStart(args []string) {
	fs := newFlagSet("start")
	configPath := fs.String("config", "", "path to a key=value config file (optional, defaults applied otherwise)")
	listen := fs.String("listen", defaultListen, "address the status hub listens on")
	pidfile := fs.String("pidfile", "aictl.pid", "path to write this process's PID")
	rateHz := fs.Float64("rate", 100, "simulated tick rate, Hz")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("aictl start: %v", err)
	}

	if err := os.WriteFile(*pidfile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		log.Fatalf("aictl start: writing pidfile: %v", err)
	}
	defer os.Remove(*pidfile)

	ctl := controller.New(cfg)
	h := host.New(ctl)
	hub := statushub.New()
	go hub.Run()

	go func() {
		for status := range h.StatusChannel() {
			hub.Broadcast(status)
		}
	}()

	truth := sim.NewRigidBody(cfg.JInit, so3.Identity3(), so3.Vec3{})
	ref := sim.Sinusoid{Amplitude: [3]float64{0.2, 0.15, 0.1}, Omega: [3]float64{0.5, 0.4, 0.3}}

	dt := time.Duration(float64(time.Second) / *rateHz)
	go runTickLoop(h, truth, ref, dt)

	log.Printf("aictl: status hub listening on %s", *listen)
	srv := &http.Server{Addr: *listen, Handler: hub}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("aictl start: %v", err)
	}
}

// runTickLoop drives the host adapter from a simulated rigid-body
// truth model at a fixed rate, standing in for a real tick source
// (a task host reading physical pose/rate sensors) so that aictl
// start has a deterministic feed to serve over the status hub.
func runTickLoop(h *host.Host, truth *sim.RigidBody, ref sim.Trajectory, dt time.Duration) {
	var t float64
	var nowUs int64
	ticker := time.NewTicker(dt)
	defer ticker.Stop()
	for range ticker.C {
		rd, omegaD, alphaD := ref.Eval(t)
		_, emit := h.Tick(nowUs, truth.R, rd, truth.Omega, omegaD, alphaD)
		if emit {
			truth.Step(h.LastStatus().Torque, float32(dt.Seconds()))
		}
		t += dt.Seconds()
		nowUs += dt.Microseconds()
	}
}
