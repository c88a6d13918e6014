// Package http_client provides a shareable *http.Client configured through a
// proxy, since http.Client has no configurable properties of its own.
package http_client

import (
	"net/http"
	"time"

	"github.com/specialistvlad/wiregrid/internal/registry"
)

// ClassName is the class of *http.Client objects.
const ClassName = "HTTPClient"

// TypeName is the logical type name mapped to ClassName.
const TypeName = "http_client"

// Module implements the registry.Module interface. It's the main entrypoint
// for the http_client module.
type Module struct{}

// ClientProxy collects the settings of an *http.Client and builds it after
// configuration.
type ClientProxy struct {
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	target *http.Client
}

// SetTarget receives the client instance the proxy configures.
func (p *ClientProxy) SetTarget(target any) {
	p.target, _ = target.(*http.Client)
}

// Unwrap returns the configured client. Unset pool settings keep the
// defaults below.
func (p *ClientProxy) Unwrap() (any, error) {
	client := p.target
	if client == nil {
		client = &http.Client{}
	}
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if p.MaxIdleConns > 0 {
		transport.MaxIdleConns = p.MaxIdleConns
	}
	if p.MaxIdleConnsPerHost > 0 {
		transport.MaxIdleConnsPerHost = p.MaxIdleConnsPerHost
	}
	if p.IdleConnTimeout > 0 {
		transport.IdleConnTimeout = p.IdleConnTimeout
	}
	client.Timeout = p.Timeout
	client.Transport = transport
	return client, nil
}

// Register registers the client class, its proxy and its type name.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClass(ClassName, func() any { return &http.Client{} })
	r.RegisterProxy(ClassName, func() any { return new(ClientProxy) })
	r.RegisterType(TypeName, ClassName)
}
