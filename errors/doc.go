/*
Package errors provides semantic error types for the kvmodels library.

The package defines the four error classes of the record layer with specific
types that can be checked using the standard errors.Is() function or the
provided helper functions.

Common Errors:

	var (
	    ErrNotFound      = errors.New("record not found")
	    ErrValidation    = errors.New("validation failed")
	    ErrConfiguration = errors.New("invalid configuration")
	    ErrDecode        = errors.New("decode failed")
	)

Usage:

	// Check error type
	inst, err := mgr.Get(ctx, "123")
	if err != nil {
	    if errors.IsNotFound(err) {
	        // Handle not found case
	        return nil, fmt.Errorf("session %s does not exist", "123")
	    }
	    return nil, err
	}

	// Create typed errors
	err := errors.NewNotFoundError("BotSession", "123")
	err := errors.NewValidationError("status", "not an allowed choice")
	err := errors.NewConfigurationError("created__between", "unknown filter operator")

ConfigurationError is always raised before any store access; ValidationError
is raised at create/update time; DecodeError may be surfaced or downgraded to
"field absent" depending on the manager's IgnoreDecodeErrors setting.

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
