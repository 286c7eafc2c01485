package command

import (
	"context"
	"fmt"

	"github.com/ravel-chat/ravel/internal/client"
)

// Dialer connects to a homeserver and returns its client surfaces. The auth
// surface is only consulted when no session record exists yet.
type Dialer func(ctx context.Context, addr string, sess *client.Session) (client.API, client.AuthAPI, error)

// RegisterDialer installs the transport used for remote homeservers. The
// binary ships without one wired in; builds that link a transport package
// call this from an init func.
func RegisterDialer(d Dialer) {
	dialer = d
}

var dialer Dialer

func dial(ctx context.Context, addr string, sess *client.Session) (client.API, client.AuthAPI, error) {
	if dialer == nil {
		return nil, nil, fmt.Errorf("no transport built into this binary; use --local or link a transport")
	}
	return dialer(ctx, addr, sess)
}
