package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

func runStatus(args []string) {
	fs := newFlagSet("status")
	addr := fs.String("listen", defaultListen, "address of a running instance's status hub")
	timeout := fs.Duration("timeout", 2*time.Second, "how long to wait for a snapshot")
	fs.Parse(args)

	url := "ws://" + trimColonPrefix(*addr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Printf("aictl status: dial %s: %v", url, err)
		os.Exit(1)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(*timeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		log.Printf("aictl status: reading snapshot: %v", err)
		os.Exit(1)
	}

	fmt.Println(string(msg))
}

// trimColonPrefix turns a bind address like ":8090" into "localhost:8090"
// for dialing, leaving a fully-qualified host:port untouched.
func trimColonPrefix(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
