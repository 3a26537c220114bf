// Package distribution decides which update packages a deployment must apply.
//
// A check runs in three steps: the Gate confirms the client is entitled to
// the application, the Catalog narrows the update catalog to active packages
// newer than the installed version, and Resolve picks the minimal ordered set
// the client has to install. The Engine sequences the steps and never fails
// past its boundary; agents always receive a well-formed CheckResult.
package distribution

import (
	"context"

	"winsbygroup.com/licserver/internal/license"
)

// LicenseFinder looks up the license that entitles a client to an application.
// It returns an apperr.CodeUnentitled error when there is none.
type LicenseFinder interface {
	GetEntitled(ctx context.Context, clientID, applicationID int64) (*license.License, error)
}

// Gate guards the catalog: nothing about an application's updates is
// disclosed to a client without an active, unblocked license for it.
type Gate struct {
	licenses LicenseFinder
}

func NewGate(licenses LicenseFinder) *Gate {
	return &Gate{licenses: licenses}
}

// Check returns the entitling license or an error with CodeUnentitled.
func (g *Gate) Check(ctx context.Context, clientID, applicationID int64) (*license.License, error) {
	return g.licenses.GetEntitled(ctx, clientID, applicationID)
}
