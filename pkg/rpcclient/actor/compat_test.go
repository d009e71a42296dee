package actor_test

import (
	"github.com/nspcc-dev/near-go/pkg/rpcclient"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/actor"
)

// Ensure the RPC client implements the interfaces needed.
var _ = actor.RPCActor(&rpcclient.Client{})
var _ = actor.RPCPollingWaiter(&rpcclient.Client{})
