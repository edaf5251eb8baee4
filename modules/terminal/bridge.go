package terminal

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

// ControlMessage is a JSON text frame from the browser. Raw keystrokes
// travel as binary frames; text frames carry control traffic only.
type ControlMessage struct {
	Type string `json:"type"`
	Cols int    `json:"cols,omitempty"`
	Rows int    `json:"rows,omitempty"`
}

// ParseControlMessage decodes one text frame. Unknown types are an error
// so the relay never mistakes garbled input for control traffic.
func ParseControlMessage(data []byte) (ControlMessage, error) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ControlMessage{}, errors.Wrap(err, "control message")
	}
	switch msg.Type {
	case "resize":
		if msg.Cols <= 0 || msg.Rows <= 0 {
			return ControlMessage{}, errors.Errorf("resize with invalid dimensions %dx%d", msg.Cols, msg.Rows)
		}
		return msg, nil
	case "ping":
		return msg, nil
	default:
		return ControlMessage{}, errors.Errorf("unknown control message type %q", msg.Type)
	}
}

// BridgeConfig bounds one relay's lifetime.
type BridgeConfig struct {
	DialTimeout time.Duration
	IdleTimeout time.Duration
}

// Bridge relays between one websocket and one SSH session.
type Bridge struct {
	cfg    BridgeConfig
	logger *logrus.Entry
}

func NewBridge(cfg BridgeConfig, logger *logrus.Entry) *Bridge {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 10 * time.Minute
	}
	return &Bridge{cfg: cfg, logger: logger}
}

// Run dials the session target, opens a pty-backed shell and relays until
// either side closes or the connection idles out. It always cleans up both
// ends before returning.
func (b *Bridge) Run(ws *websocket.Conn, sess *Session) error {
	addr := net.JoinHostPort(sess.Host, fmt.Sprintf("%d", sess.Port))
	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User: sess.Username,
		Auth: []ssh.AuthMethod{ssh.Password(sess.Password)},
		// Managed lab devices; host keys are not tracked in the device
		// inventory.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         b.cfg.DialTimeout,
	})
	if err != nil {
		return errors.Wrapf(err, "dialing %s", addr)
	}
	defer client.Close()

	shell, err := client.NewSession()
	if err != nil {
		return errors.Wrap(err, "opening session")
	}
	defer shell.Close()

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := shell.RequestPty("xterm-256color", 24, 80, modes); err != nil {
		return errors.Wrap(err, "requesting pty")
	}

	stdin, err := shell.StdinPipe()
	if err != nil {
		return errors.Wrap(err, "stdin pipe")
	}
	// With a pty the remote merges stderr into the stream, so one output
	// pipe covers both.
	stdout, err := shell.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "stdout pipe")
	}

	if err := shell.Shell(); err != nil {
		return errors.Wrap(err, "starting shell")
	}

	done := make(chan struct{})
	go b.pumpOutput(ws, stdout, done)
	b.pumpInput(ws, shell, stdin)
	<-done
	return nil
}

// pumpInput reads websocket frames into the shell: binary frames are
// keystrokes, text frames are control messages. Returns when the socket
// closes or idles out.
func (b *Bridge) pumpInput(ws *websocket.Conn, shell *ssh.Session, stdin io.WriteCloser) {
	defer func() { _ = stdin.Close() }()
	for {
		_ = ws.SetReadDeadline(time.Now().Add(b.cfg.IdleTimeout))
		kind, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				b.logger.WithError(err).Debug("websocket read ended")
			}
			return
		}
		switch kind {
		case websocket.BinaryMessage:
			if _, err := stdin.Write(data); err != nil {
				b.logger.WithError(err).Debug("shell stdin closed")
				return
			}
		case websocket.TextMessage:
			msg, err := ParseControlMessage(data)
			if err != nil {
				b.logger.WithError(err).Warn("dropping bad control message")
				continue
			}
			if msg.Type == "resize" {
				if err := shell.WindowChange(msg.Rows, msg.Cols); err != nil {
					b.logger.WithError(err).Debug("window change failed")
				}
			}
		}
	}
}

// pumpOutput copies shell output to the websocket as binary frames.
func (b *Bridge) pumpOutput(ws *websocket.Conn, stdout io.Reader, done chan<- struct{}) {
	defer close(done)
	buf := make([]byte, 32*1024)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			if werr := ws.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				b.logger.WithError(werr).Debug("websocket write ended")
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				b.logger.WithError(err).Debug("shell output ended")
			}
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
				time.Now().Add(time.Second))
			return
		}
	}
}
