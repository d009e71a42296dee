/*
Package greeting contains RPC wrappers for the greeter contract.

The contract keeps a single text value, it has a `get_greeting` view method
and a `set_greeting` method accepting `{"greeting": <text>}`. ContractReader
can be used with an invoker.Invoker for read-only access while Contract needs
an actor.Actor to change the greeting.
*/
package greeting

import (
	"context"

	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/actor"
)

// Method names of the greeter contract.
const (
	GetMethod = "get_greeting"
	SetMethod = "set_greeting"
)

// Invoker is used by ContractReader to call view methods.
type Invoker interface {
	CallText(ctx context.Context, contract string, method string, args any) (string, error)
}

// Actor is used by Contract to create and send transactions.
type Actor interface {
	Invoker

	MakeCall(ctx context.Context, contract string, method string, args any) (*transaction.Signed, error)
	MakeUnsignedCall(ctx context.Context, contract string, method string, args any) (*transaction.Transaction, error)
	SendCall(ctx context.Context, contract string, method string, args any) (*actor.Result, error)
}

// ContractReader implements the read-only methods of the greeter contract.
type ContractReader struct {
	invoker  Invoker
	contract string
}

// Contract provides full greeter contract interface, both safe and
// state-changing methods.
type Contract struct {
	ContractReader

	actor Actor
}

// SetArgs are the arguments of the set_greeting method.
type SetArgs struct {
	Greeting string `json:"greeting"`
}

// NewReader creates an instance of ContractReader for the given contract
// account.
func NewReader(invoker Invoker, contract string) *ContractReader {
	return &ContractReader{invoker, contract}
}

// New creates an instance of Contract for the given contract account using
// the given Actor.
func New(actor Actor, contract string) *Contract {
	return &Contract{*NewReader(actor, contract), actor}
}

// Contract returns the contract account ID.
func (c *ContractReader) Contract() string {
	return c.contract
}

// Greeting returns the current greeting.
func (c *ContractReader) Greeting(ctx context.Context) (string, error) {
	return c.invoker.CallText(ctx, c.contract, GetMethod, nil)
}

// SetGreeting creates and sends a transaction that changes the greeting.
// See actor.Actor.Send for the result semantics.
func (c *Contract) SetGreeting(ctx context.Context, text string) (*actor.Result, error) {
	return c.actor.SendCall(ctx, c.contract, SetMethod, SetArgs{Greeting: text})
}

// SetGreetingTransaction creates and signs a transaction changing the
// greeting without sending it.
func (c *Contract) SetGreetingTransaction(ctx context.Context, text string) (*transaction.Signed, error) {
	return c.actor.MakeCall(ctx, c.contract, SetMethod, SetArgs{Greeting: text})
}

// SetGreetingUnsigned creates an unsigned transaction changing the greeting.
func (c *Contract) SetGreetingUnsigned(ctx context.Context, text string) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(ctx, c.contract, SetMethod, SetArgs{Greeting: text})
}
