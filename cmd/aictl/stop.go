package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"syscall"
)

func runStop(args []string) {
	fs := newFlagSet("stop")
	pidfile := fs.String("pidfile", "aictl.pid", "path to the running instance's PID file")
	fs.Parse(args)

	raw, err := os.ReadFile(*pidfile)
	if err != nil {
		log.Fatalf("aictl stop: reading pidfile: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		log.Fatalf("aictl stop: malformed pidfile: %v", err)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		log.Fatalf("aictl stop: %v", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		log.Fatalf("aictl stop: signaling pid %d: %v", pid, err)
	}
	log.Printf("aictl: sent SIGTERM to pid %d", pid)
}
