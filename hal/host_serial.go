//go:build !tinygo

package hal

import (
	"fmt"
	"sync"

	"go.bug.st/serial"
)

// serialLogger writes log lines to a serial device, CRLF terminated like the
// UART logger on the board.
type serialLogger struct {
	mu   sync.Mutex
	port serial.Port
}

func openSerialLogger(name string, baud int) (*serialLogger, error) {
	if baud <= 0 {
		baud = 115200
	}
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	return &serialLogger{port: port}, nil
}

func (l *serialLogger) WriteLineString(s string) {
	l.WriteLineBytes([]byte(s))
}

func (l *serialLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.port == nil {
		return
	}
	_, _ = l.port.Write(b)
	_, _ = l.port.Write([]byte{'\r', '\n'})
}

func (l *serialLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.port == nil {
		return nil
	}
	err := l.port.Close()
	l.port = nil
	return err
}
