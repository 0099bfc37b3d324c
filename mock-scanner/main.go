package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"strings"
)

const terminator = '\r'

// Simulates a scanner behind a serial-over-TCP bridge. Point the server's
// mock_addr at this listener and discovery will classify it like hardware.
func main() {
	addr := flag.String("addr", ":9898", "TCP listen address")
	dialect := flag.String("dialect", "uniden", "Device to simulate: uniden or aordv1")
	model := flag.String("model", "BCD436HP", "Model code reported by a uniden device")
	flag.Parse()

	listener, err := net.Listen("tcp", *addr)
	if err != nil {
		fmt.Println("Failed to start mock scanner:", err)
		return
	}
	defer listener.Close()

	fmt.Println("=== Mock Scanner ===")
	fmt.Printf("Listening on %s, dialect=%s\n", *addr, *dialect)

	for {
		conn, err := listener.Accept()
		if err != nil {
			fmt.Println("Accept error:", err)
			continue
		}
		fmt.Println("[MockScanner] Client connected:", conn.RemoteAddr())
		go handleConnection(conn, *dialect, *model)
	}
}

func handleConnection(conn net.Conn, dialect, model string) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString(terminator)
		if err != nil {
			fmt.Println("[MockScanner] Connection closed")
			return
		}
		cmd := strings.TrimRight(line, "\r")
		fmt.Printf("[MockScanner] Received %q\n", cmd)

		reply := respond(cmd, dialect, model)
		if reply != "" {
			conn.Write([]byte(reply + "\r"))
		}
	}
}

// respond mimics the identification behavior of each dialect. Unknown
// commands get the scanner's error reply rather than silence, matching how
// real units behave on a live line.
func respond(cmd, dialect, model string) string {
	switch dialect {
	case "uniden":
		switch cmd {
		case "MDL":
			return "MDL," + model
		case "VER":
			return "VER,Version 1.00.00"
		default:
			return "ERR"
		}
	case "aordv1":
		if cmd == "WI" {
			return "AR-DV1"
		}
		return "?"
	default:
		return ""
	}
}
