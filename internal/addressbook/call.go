package addressbook

import (
	"context"
	"fmt"

	"shipdesk/senderterm/internal/models"
)

// Call is a remote request the Engine has started. Execute may run on any
// goroutine; its Result must be handed back to Engine.Complete on the goroutine
// that owns the Engine.
type Call struct {
	Kind   OpKind
	Target models.Identity

	seq     uint64
	session uint64
	draft   models.AddressDraft
	fields  models.AddressFields
	store   Store
}

// Seq returns the fetch sequence number; zero for mutations.
func (c Call) Seq() uint64 {
	return c.seq
}

func (c Call) String() string {
	if c.Kind == OpFetch {
		return fmt.Sprintf("%s#%d", c.Kind, c.seq)
	}
	if c.Target.IsZero() {
		return c.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", c.Kind, c.Target)
}

// Result is the completion of a Call.
type Result struct {
	Call    Call
	Profile *models.Profile
	Err     error
}

func (c *Call) Execute(ctx context.Context) Result {
	res := Result{Call: *c}

	switch c.Kind {
	case OpFetch:
		res.Profile, res.Err = c.store.FetchOwnAddresses(ctx)
		if res.Err == nil && res.Profile == nil {
			res.Profile = &models.Profile{}
		}
	case OpCreate:
		res.Err = c.store.CreateAddress(ctx, c.draft)
	case OpUpdate:
		res.Err = c.store.UpdateAddress(ctx, c.Target.Key(), c.fields)
	case OpDelete:
		res.Err = c.store.DeleteAddress(ctx, c.Target.Key())
	default:
		res.Err = fmt.Errorf("unknown operation: %d", c.Kind)
	}

	return res
}
