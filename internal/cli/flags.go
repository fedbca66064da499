package cli

import (
	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/spf13/pflag"
)

// kindFlag validates a request kind while flags are parsed, accepting the
// aliases ParseRequestKind knows (inv, cash, cr).
type kindFlag struct {
	kind domain.RequestKind
}

var _ pflag.Value = (*kindFlag)(nil)

func (f *kindFlag) String() string { return string(f.kind) }

func (f *kindFlag) Set(s string) error {
	k, err := domain.ParseRequestKind(s)
	if err != nil {
		return err
	}
	f.kind = k
	return nil
}

func (f *kindFlag) Type() string { return "kind" }
