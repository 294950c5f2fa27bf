package peppol

import "github.com/xe-erp/peppol-web/internal/odoo"

// Connector opens an Invoker bound to a backend session id.
type Connector func(sessionID string) Invoker

// ClientConnector binds sessions through an odoo.Client.
func ClientConnector(client *odoo.Client) Connector {
	return func(sessionID string) Invoker {
		if client == nil {
			return nil
		}
		return client.Bind(sessionID)
	}
}

// Open returns a Gateway for sessionID, or a gateway that answers
// odoo.ErrNotConfigured when no connector is set.
func (c Connector) Open(sessionID, group string) *Gateway {
	if c == nil {
		return NewGateway(nil, group)
	}
	return NewGateway(c(sessionID), group)
}
