package proxy

import (
	"bufio"
	"fmt"
	"net"
	"strings"

	"github.com/sarchlab/boardwire/hexcoord"
	"github.com/sarchlab/boardwire/probe"
)

// Client is a blocking client for Server, exposing the same SetLED /
// LinkTarget surface so it is substitutable for a direct hardware
// transport wherever one is accepted — in particular by guide.Controller.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
}

// Dial connects to a running Server at addr and performs the VERSION
// handshake.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	c := &Client{conn: conn, reader: bufio.NewReader(conn)}
	if err := c.checkVersion(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) sendLine(line string) error {
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

func (c *Client) recvLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", &ProxyError{Msg: "remote server closed the connection"}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Client) checkVersion() error {
	if err := c.sendLine("VERSION," + ProtocolVersion); err != nil {
		return err
	}
	resp, err := c.recvLine()
	if err != nil {
		return err
	}
	if resp != "OK" {
		return &ProxyError{Msg: "remote server has an incompatible protocol version"}
	}
	return nil
}

// SetLED sets the state of a diagnostic LED on the remote machine.
func (c *Client) SetLED(led int, state bool, cabinet, frame, board int) error {
	stateInt := 0
	if state {
		stateInt = 1
	}
	if err := c.sendLine(fmt.Sprintf("LED,%d,%d,%d,%d,%d", cabinet, frame, board, led, stateInt)); err != nil {
		return err
	}
	resp, err := c.recvLine()
	if err != nil {
		return err
	}
	if resp != "OK" {
		return &ProxyError{Msg: "unexpected response to LED command: " + resp}
	}
	return nil
}

// LinkTarget discovers the other end of a specified link on the remote
// machine, via the proxy.
func (c *Client) LinkTarget(s probe.Socket) (probe.Socket, bool, error) {
	if err := c.sendLine(fmt.Sprintf("TARGET,%d,%d,%d,%d", s.Cabinet, s.Frame, s.Board, int(s.Direction))); err != nil {
		return probe.Socket{}, false, err
	}
	resp, err := c.recvLine()
	if err != nil {
		return probe.Socket{}, false, err
	}
	if resp == "None" {
		return probe.Socket{}, false, nil
	}

	fields := strings.Split(resp, ",")
	if len(fields) != 4 {
		return probe.Socket{}, false, &ProxyError{Msg: "malformed TARGET response: " + resp}
	}
	nums, err := parseInts(fields)
	if err != nil {
		return probe.Socket{}, false, err
	}
	target := probe.Socket{Cabinet: nums[0], Frame: nums[1], Board: nums[2], Direction: hexcoord.Direction(nums[3])}
	return target, true, nil
}
