package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/spaghettifunk/assetforge/engine/core"
)

const (
	RequestMessage = "request compiler"
	ProvideMessage = "provide compiler"

	DefaultDiscoveryPort = 4321
	DefaultTimeout       = 500 * time.Millisecond
)

// Discover sends a discovery request to address:port and returns the IP of
// the first compile server that answers. Broadcast addresses are allowed.
func Discover(ctx context.Context, address string, port int, timeout time.Duration) (string, error) {
	ip := net.ParseIP(address)
	if ip == nil {
		return "", fmt.Errorf("invalid discovery address '%s'", address)
	}

	lc := net.ListenConfig{Control: enableBroadcast}
	pc, err := lc.ListenPacket(ctx, "udp4", ":0")
	if err != nil {
		return "", err
	}
	defer pc.Close()

	if _, err := pc.WriteTo([]byte(RequestMessage), &net.UDPAddr{IP: ip, Port: port}); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrRemoteCompilerUnavailable, err)
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := pc.SetReadDeadline(deadline); err != nil {
		return "", err
	}

	buf := make([]byte, 64)
	for {
		n, from, err := pc.ReadFrom(buf)
		if err != nil {
			return "", fmt.Errorf("%w: no answer from %s:%d: %v", core.ErrRemoteCompilerUnavailable, address, port, err)
		}
		if string(buf[:n]) != ProvideMessage {
			continue
		}
		if udp, ok := from.(*net.UDPAddr); ok {
			return udp.IP.String(), nil
		}
		host, _, err := net.SplitHostPort(from.String())
		if err != nil {
			return "", err
		}
		return host, nil
	}
}

// ServeDiscovery answers discovery requests on conn until it is closed.
func ServeDiscovery(conn net.PacketConn) error {
	buf := make([]byte, 64)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		if string(buf[:n]) != RequestMessage {
			continue
		}
		core.LogDebug("Discovery request from %s", from)
		if _, err := conn.WriteTo([]byte(ProvideMessage), from); err != nil {
			core.LogWarn("Unable to answer discovery request from %s: %s", from, err)
		}
	}
}

// Locator finds the base URL of a compile server.
type Locator interface {
	Locate(ctx context.Context) (string, error)
}

// StaticLocator always returns the same base URL.
type StaticLocator string

func (s StaticLocator) Locate(ctx context.Context) (string, error) {
	if s == "" {
		return "", core.ErrRemoteCompilerUnavailable
	}
	return string(s), nil
}

// DiscoveryLocator runs Discover and remembers the answer until Reset.
type DiscoveryLocator struct {
	Address       string
	DiscoveryPort int
	HTTPPort      int
	Timeout       time.Duration

	mutex  sync.Mutex
	cached string
}

func (d *DiscoveryLocator) Locate(ctx context.Context) (string, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.cached != "" {
		return d.cached, nil
	}
	port := d.DiscoveryPort
	if port == 0 {
		port = DefaultDiscoveryPort
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	host, err := Discover(ctx, d.Address, port, timeout)
	if err != nil {
		return "", err
	}
	d.cached = "http://" + net.JoinHostPort(host, strconv.Itoa(d.HTTPPort))
	core.LogInfo("Found remote compiler at %s", d.cached)
	return d.cached, nil
}

// Reset forgets the last discovered server.
func (d *DiscoveryLocator) Reset() {
	d.mutex.Lock()
	d.cached = ""
	d.mutex.Unlock()
}
