// Package command implements the tuning link: a line-oriented protocol
// over a serial (or test) device that starts and stops the follower,
// adjusts gains at runtime and drives calibration.
package command

import (
	"bufio"
	"strings"

	serial "go.bug.st/serial"
)

// Device is a line-based communication endpoint. ReadLine blocks until a
// full line arrives or the device fails, and must be called from a single
// goroutine; Serve owns that goroutine. Close unblocks a pending read.
type Device interface {
	// ReadLine reads one '\n'-terminated line, stripped of the terminator.
	ReadLine() (string, error)

	// WriteLine writes s followed by '\n'.
	WriteLine(s string) error

	// Close releases the underlying resource.
	Close() error
}

// SerialDevice implements Device on a physical serial port.
type SerialDevice struct {
	port serial.Port
	r    *bufio.Reader
}

// OpenSerial opens a serial device with the given path and baud rate.
func OpenSerial(dev string, baud int) (*SerialDevice, error) {
	p, err := serial.Open(dev, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	return &SerialDevice{port: p, r: bufio.NewReader(p)}, nil
}

func (s *SerialDevice) ReadLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *SerialDevice) WriteLine(line string) error {
	_, err := s.port.Write(append([]byte(line), '\n'))
	return err
}

func (s *SerialDevice) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}
