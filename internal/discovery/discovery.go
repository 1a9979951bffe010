// Package discovery browses the local network for metadata servers over
// mDNS/DNS-SD. Discovery only reveals presence: the client still talks plain
// HTTP to whatever it finds, and nothing is trusted until the user saves a
// profile for it.
package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/grandcat/zeroconf"

	apperr "github.com/tagdeck/tagdeck/internal/errors"
)

// DefaultService is the DNS-SD service type metadata servers advertise
// under, following the _<service>._<protocol> convention.
const DefaultService = "_metaremote._tcp"

// Server is one metadata server found on the network.
type Server struct {
	// Name is the advertised instance name, usually the machine's hostname.
	Name string

	// Host is the resolved address, IPv4 preferred.
	Host string

	// Port is the advertised HTTP port.
	Port int

	// Version is the advertised server version, "" when not in the TXT
	// records.
	Version string

	// Path is the advertised URL path prefix, "" for the root.
	Path string
}

// URL returns the server's base URL for the api client.
func (s Server) URL() string {
	u := fmt.Sprintf("http://%s:%d", s.Host, s.Port)
	if s.Path != "" {
		u += "/" + strings.TrimPrefix(s.Path, "/")
	}
	return strings.TrimRight(u, "/")
}

// Browse searches for metadata servers until the context expires and returns
// everything found. service is the DNS-SD type, "" for DefaultService.
func Browse(ctx context.Context, service string) ([]Server, error) {
	if service == "" {
		service = DefaultService
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDiscoveryFailed, "create mDNS resolver", err)
	}

	var (
		servers []Server
		mu      sync.Mutex
		wg      sync.WaitGroup
	)

	entries := make(chan *zeroconf.ServiceEntry)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for entry := range entries {
			s := fromEntry(entry)
			if s.Host == "" {
				continue
			}
			mu.Lock()
			servers = append(servers, s)
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, service, "local.", entries); err != nil {
		return nil, apperr.Wrap(apperr.CodeDiscoveryFailed, fmt.Sprintf("browse %s", service), err)
	}

	// zeroconf closes the entries channel when the context is done.
	<-ctx.Done()
	wg.Wait()

	return servers, nil
}

// fromEntry converts a resolved DNS-SD entry into a Server, preferring IPv4
// addresses and folding in the TXT metadata.
func fromEntry(entry *zeroconf.ServiceEntry) Server {
	s := Server{
		Name: entry.Instance,
		Port: entry.Port,
	}

	if len(entry.AddrIPv4) > 0 {
		s.Host = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		s.Host = entry.AddrIPv6[0].String()
	}

	for _, txt := range entry.Text {
		key, value, ok := strings.Cut(txt, "=")
		if !ok {
			continue
		}
		switch key {
		case "name":
			if value != "" {
				s.Name = value
			}
		case "version":
			s.Version = value
		case "path":
			s.Path = value
		}
	}

	return s
}
