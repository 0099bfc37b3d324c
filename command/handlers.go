package command

import (
	"fmt"
	"strconv"
	"strings"

	"scanner-server/driver"
	"scanner-server/protocol"
)

// Default builds the standard command table for a scanner console.
// SubArgs drive second-level tab completion.
func Default() *Registry {
	return New([]Entry{
		{Name: "model", Handler: cmdModel},
		{Name: "version", Handler: cmdVersion},
		{Name: "vol", Handler: levelHandler("VOL"), SubArgs: []string{"get", "set", "up", "down"}},
		{Name: "sql", Handler: levelHandler("SQL"), SubArgs: []string{"get", "set", "up", "down"}},
		{Name: "hold", Handler: cmdHold, SubArgs: []string{"on", "off"}},
		{Name: "raw", Handler: cmdRaw},
	})
}

func cmdModel(conn *driver.Conn, args []string) (string, error) {
	conn.Clear()
	resp := conn.SendCommand(protocol.CmdModelProbe)
	if model, ok := protocol.ParseModelResponse(resp); ok {
		return model, nil
	}
	return "", fmt.Errorf("unexpected model response %q", resp)
}

func cmdVersion(conn *driver.Conn, args []string) (string, error) {
	conn.Clear()
	resp := conn.SendCommand("VER")
	if resp == "" {
		return "", fmt.Errorf("no version response")
	}
	return strings.TrimPrefix(resp, "VER,"), nil
}

// levelHandler serves the VOL/SQL family: a 0-15 level with get/set/up/down
func levelHandler(cmd string) HandlerFunc {
	return func(conn *driver.Conn, args []string) (string, error) {
		sub := "get"
		if len(args) > 0 {
			sub = args[0]
		}

		conn.Clear()
		switch sub {
		case "get":
			return conn.SendCommand(cmd), nil
		case "set":
			if len(args) < 2 {
				return "", fmt.Errorf("%s set requires a level", strings.ToLower(cmd))
			}
			level, err := strconv.Atoi(args[1])
			if err != nil || level < 0 || level > 15 {
				return "", fmt.Errorf("level must be 0-15, got %q", args[1])
			}
			return conn.SendCommand(fmt.Sprintf("%s,%d", cmd, level)), nil
		case "up", "down":
			level, err := currentLevel(conn, cmd)
			if err != nil {
				return "", err
			}
			if sub == "up" && level < 15 {
				level++
			}
			if sub == "down" && level > 0 {
				level--
			}
			return conn.SendCommand(fmt.Sprintf("%s,%d", cmd, level)), nil
		default:
			return "", fmt.Errorf("unknown argument %q", sub)
		}
	}
}

// currentLevel queries a level command and parses the "CMD,n" reply
func currentLevel(conn *driver.Conn, cmd string) (int, error) {
	resp := conn.SendCommand(cmd)
	parts := strings.Split(resp, ",")
	if len(parts) != 2 || parts[0] != cmd {
		return 0, fmt.Errorf("unexpected %s response %q", cmd, resp)
	}
	level, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("unexpected %s level %q", cmd, parts[1])
	}
	return level, nil
}

func cmdHold(conn *driver.Conn, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("hold requires on or off")
	}
	conn.Clear()
	switch args[0] {
	case "on":
		return conn.SendCommand("KEY,H,P"), nil
	case "off":
		return conn.SendCommand("KEY,S,P"), nil
	default:
		return "", fmt.Errorf("unknown argument %q", args[0])
	}
}

// cmdRaw forwards an arbitrary protocol command verbatim
func cmdRaw(conn *driver.Conn, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("raw requires a command string")
	}
	conn.Clear()
	return conn.SendCommand(strings.Join(args, " ")), nil
}
