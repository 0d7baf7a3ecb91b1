package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Sokol111/streamflix-reliability/pkg/security/token"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// authenticator is satisfied by *token.Authenticator.
type authenticator interface {
	Authenticate(ctx context.Context, credential string) (context.Context, *token.Principal, error)
}

func validateFormat(format string) error {
	if format != formatText && format != formatJSON {
		return fmt.Errorf("invalid format %q: expected text or json", format)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
