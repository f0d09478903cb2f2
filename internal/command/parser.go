package command

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a parsed command.
type Kind int

const (
	KindStart Kind = iota
	KindStop
	KindStatus
	KindSet
	KindCalBegin
	KindCalEnd
)

// Parameters addressable through "set".
const (
	ParamKp    = "kp"
	ParamKi    = "ki"
	ParamKd    = "kd"
	ParamBase  = "base"
	ParamCycle = "cycle"
	ParamLimit = "limit"
)

// Command is one parsed protocol line.
type Command struct {
	Kind  Kind
	Param string
	Value float64
}

// Parse converts one protocol line into a Command. Lines:
//
//	start | stop | status
//	set kp|ki|kd|base|cycle|limit <value>
//	cal begin | cal end
func Parse(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	switch fields[0] {
	case "start":
		return Command{Kind: KindStart}, nil
	case "stop":
		return Command{Kind: KindStop}, nil
	case "status":
		return Command{Kind: KindStatus}, nil
	case "set":
		if len(fields) != 3 {
			return Command{}, fmt.Errorf("set wants a parameter and a value")
		}
		switch fields[1] {
		case ParamKp, ParamKi, ParamKd, ParamBase, ParamCycle, ParamLimit:
		default:
			return Command{}, fmt.Errorf("unknown parameter: %s", fields[1])
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return Command{}, fmt.Errorf("invalid value: %s", fields[2])
		}
		return Command{Kind: KindSet, Param: fields[1], Value: v}, nil
	case "cal":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("cal wants begin or end")
		}
		switch fields[1] {
		case "begin":
			return Command{Kind: KindCalBegin}, nil
		case "end":
			return Command{Kind: KindCalEnd}, nil
		}
		return Command{}, fmt.Errorf("cal wants begin or end, got %s", fields[1])
	}

	return Command{}, fmt.Errorf("unknown command: %s", fields[0])
}
