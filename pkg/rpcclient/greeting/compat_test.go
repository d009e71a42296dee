package greeting_test

import (
	"github.com/nspcc-dev/near-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/greeting"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/invoker"
)

var _ = greeting.Actor(&actor.Actor{})
var _ = greeting.Invoker(&invoker.Invoker{})
